package coerce

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired             = "required"
	CodeInvalidType          = "invalid_type"
	CodeNotNull              = "not_null"
	CodeTooShort             = "too_short"
	CodeTooLong              = "too_long"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeNotMultiple          = "not_multiple"
	CodeTooFewItems          = "too_few_items"
	CodeTooManyItems         = "too_many_items"
	CodePattern              = "pattern"
	CodeInvalidEnum          = "invalid_enum"
	CodeInvalidFormat        = "invalid_format"
	CodeExtraProperty        = "extra_property"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeInvalid              = "invalid"
)

// ErrEmptyCode is returned by Validation.AddError when no error code is given.
var ErrEmptyCode = errors.New("coerce: error code must not be empty")

// SchemaError reports a schema-definition mistake: malformed shorthand, a
// non-local or unresolvable $ref, conflicting merge input, and the like.
// It is a caller bug, fails fast, and is never collected as a field error.
type SchemaError struct {
	msg string
}

func (e *SchemaError) Error() string { return "coerce: " + e.msg }

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{msg: fmt.Sprintf(format, args...)}
}

// ValidationError wraps a non-empty Validation. It is the only error type
// data-driven callers need to handle; definition bugs surface as *SchemaError.
type ValidationError struct {
	Validation *Validation
}

// Error summarizes the first few field errors.
func (e *ValidationError) Error() string {
	v := e.Validation
	if v == nil || v.IsValid() {
		return "coerce: validation failed"
	}
	const maxShown = 3
	b := &strings.Builder{}
	b.WriteString("coerce: ")
	shown, total := 0, 0
	for _, path := range v.order {
		for _, iss := range v.errors[path] {
			total++
			if shown >= maxShown {
				continue
			}
			if shown > 0 {
				b.WriteString("; ")
			}
			name := path
			if name == "" {
				name = "/"
			}
			fmt.Fprintf(b, "%s at %s", iss.Error, name)
			shown++
		}
	}
	if total > shown {
		fmt.Fprintf(b, "; ... (total %d)", total)
	}
	return b.String()
}

// AsValidationError extracts a *ValidationError using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsSchemaError extracts a *SchemaError using errors.As internally.
func AsSchemaError(err error) (*SchemaError, bool) {
	if err == nil {
		return nil, false
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
