package coerce

import (
	"context"
	"reflect"
	"regexp"
	"sync"
)

// Flag is a bit set of schema-wide validation options.
type Flag uint8

const (
	// FlagStringLengthAsUnicode checks minLength/maxLength against Unicode
	// codepoints instead of bytes.
	FlagStringLengthAsUnicode Flag = 1 << iota
	// FlagExtraPropertyNotice routes extraneous input keys to the Diag sink.
	FlagExtraPropertyNotice
	// FlagExtraPropertyException turns extraneous input keys into a hard
	// validation error listing the offending keys.
	FlagExtraPropertyException
)

// RefLookup resolves a local "#/..." reference to a schema node (map form),
// a *Schema, or nil when the ref is syntactically fine but unknown. Non-local
// refs must be rejected with an error.
type RefLookup func(ref string) (any, error)

// Filter transforms a value before type validation. Returning Invalid() after
// adding an error short-circuits the field.
type Filter func(ctx context.Context, value any, field *ValidationField) any

// Validator runs after successful type and enum validation. Returning false
// marks the field invalid; validators wanting a custom message must call
// field.AddError themselves.
type Validator func(ctx context.Context, value any, field *ValidationField) bool

// DefaultRefBase prefixes discriminator values that are not already
// "#/"-shaped refs before resolution.
const DefaultRefBase = "#/components/schemas/"

// Schema owns one canonical definition tree and validates arbitrary input
// against it. Once published, a Schema is immutable with respect to Validate:
// concurrent validations share it safely; only per-call Validation state is
// mutated.
type Schema struct {
	def   map[string]any
	flags Flag

	filters    map[string][]Filter
	validators map[string][]Validator

	lookup  RefLookup
	refBase string
	diag    Diag

	// mu guards the sparse memo; everything else is immutable once published.
	mu     sync.Mutex
	sparse *Schema
	// sparseMode marks a WithSparse product so resolved ref targets
	// sparsify too, not just the inline tree.
	sparseMode bool
}

var knownTypes = map[string]bool{
	"boolean": true, "integer": true, "number": true, "string": true,
	"array": true, "object": true, "timestamp": true, "datetime": true,
	"null": true,
}

// New builds a Schema from a canonical definition node. The definition is
// deep-copied, OpenAPI "nullable" attributes are folded into the type set,
// and unknown type names are rejected as a *SchemaError.
func New(def map[string]any) (*Schema, error) {
	node, err := normalizeNode(def)
	if err != nil {
		return nil, err
	}
	return &Schema{
		def:        node,
		filters:    map[string][]Filter{},
		validators: map[string][]Validator{},
		refBase:    DefaultRefBase,
		diag:       nopDiag{},
	}, nil
}

// MustNew is New, panicking on definition errors. Intended for package-level
// schema literals.
func MustNew(def map[string]any) *Schema {
	s, err := New(def)
	if err != nil {
		panic(err)
	}
	return s
}

// normalizeNode deep-copies a definition node, folds nullable into the type
// set, and checks type names. A node reachable twice (or cyclically)
// normalizes to one shared copy.
func normalizeNode(node map[string]any) (map[string]any, error) {
	return normalizeNodeMemo(node, map[uintptr]map[string]any{})
}

// normalizeNodeMemo registers the copy before recursing into children, which
// is what terminates cyclic definitions.
func normalizeNodeMemo(node map[string]any, memo map[uintptr]map[string]any) (map[string]any, error) {
	key := reflect.ValueOf(node).Pointer()
	if out, ok := memo[key]; ok {
		return out, nil
	}
	out := make(map[string]any, len(node))
	memo[key] = out
	for k, v := range node {
		out[k] = v
	}

	if nullable, _ := out["nullable"].(bool); nullable {
		delete(out, "nullable")
		types := typeList(out["type"])
		if !containsString(types, "null") {
			types = append(types, "null")
		}
		out["type"] = toAnySlice(types)
	}
	for _, t := range typeList(out["type"]) {
		if !knownTypes[t] {
			return nil, schemaErrorf("unknown type %q", t)
		}
	}

	if props, ok := out["properties"].(map[string]any); ok {
		np := make(map[string]any, len(props))
		for name, raw := range props {
			switch p := raw.(type) {
			case map[string]any:
				child, err := normalizeNodeMemo(p, memo)
				if err != nil {
					return nil, err
				}
				np[name] = child
			case *Schema:
				np[name] = p
			default:
				return nil, schemaErrorf("property %q is not a schema node", name)
			}
		}
		out["properties"] = np
	}
	if items, ok := out["items"].(map[string]any); ok {
		child, err := normalizeNodeMemo(items, memo)
		if err != nil {
			return nil, err
		}
		out["items"] = child
	}
	if oneOf, ok := out["oneOf"].([]any); ok {
		no := make([]any, len(oneOf))
		for i, raw := range oneOf {
			switch p := raw.(type) {
			case map[string]any:
				child, err := normalizeNodeMemo(p, memo)
				if err != nil {
					return nil, err
				}
				no[i] = child
			case *Schema:
				no[i] = p
			default:
				return nil, schemaErrorf("oneOf[%d] is not a schema node", i)
			}
		}
		out["oneOf"] = no
	}
	return out, nil
}

// Definition returns the canonical definition node. Callers must not mutate it.
func (s *Schema) Definition() map[string]any { return s.def }

// SetFlags replaces the schema-wide option flags.
func (s *Schema) SetFlags(flags Flag) *Schema { s.flags = flags; return s }

// Flags returns the schema-wide option flags.
func (s *Schema) Flags() Flag { return s.flags }

// SetRefLookup installs the reference-lookup collaborator.
func (s *Schema) SetRefLookup(fn RefLookup) *Schema { s.lookup = fn; return s }

// SetRefBase overrides the base path prepended to bare discriminator values.
func (s *Schema) SetRefBase(base string) *Schema { s.refBase = base; return s }

// SetDiag installs the warning sink (extra-property notices, unknown formats).
func (s *Schema) SetDiag(d Diag) *Schema {
	if d == nil {
		d = nopDiag{}
	}
	s.diag = d
	return s
}

// AddFilter registers a filter for a dotted field path; the empty path
// addresses the whole document. Array indexes are written as "[]"
// ("tags[]" matches tags[0], tags[7], ...).
func (s *Schema) AddFilter(path string, fn Filter) *Schema {
	path = normalizePath(path)
	s.filters[path] = append(s.filters[path], fn)
	return s
}

// AddValidator registers a custom validator for a dotted field path, run
// after type and enum validation succeed.
func (s *Schema) AddValidator(path string, fn Validator) *Schema {
	path = normalizePath(path)
	s.validators[path] = append(s.validators[path], fn)
	return s
}

var indexRe = regexp.MustCompile(`\[\d+\]`)

// normalizePath erases concrete array indexes so one registration covers
// every element of an array field.
func normalizePath(path string) string {
	return indexRe.ReplaceAllString(path, "[]")
}

// Validate walks data against the schema and returns a cleaned, type-coerced,
// whitelisted copy, or a *ValidationError carrying every field failure.
// Definition mistakes hit during the walk (an unresolvable $ref, a bad
// pattern) return a *SchemaError instead.
func (s *Schema) Validate(ctx context.Context, data any, opts ...ValidateOpt) (any, error) {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	v := NewValidation()
	f := &ValidationField{validation: v, node: s.def, name: "", opt: opt}
	result, err := s.validateField(ctx, data, f)
	if err != nil {
		return nil, err
	}
	if IsInvalid(result) || !v.IsValid() {
		return nil, &ValidationError{Validation: v}
	}
	return result, nil
}

// IsValid is the non-throwing wrapper around Validate.
func (s *Schema) IsValid(ctx context.Context, data any, opts ...ValidateOpt) bool {
	_, err := s.Validate(ctx, data, opts...)
	return err == nil
}

// ---- small shared helpers ----

func typeList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func toAnySlice(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

func stringList(v any) []string { return typeList(v) }
