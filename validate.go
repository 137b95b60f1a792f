package coerce

import (
	"context"
	"reflect"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kushiro/coerce/format"
)

// validateField is the recursive core: filter phase, reference dispatch, null
// short-circuit, type dispatch, enum check, then custom validators. It returns
// the coerced value or the Invalid sentinel (with errors collected in the
// field's Validation); the error return carries definition mistakes only.
func (s *Schema) validateField(ctx context.Context, value any, f *ValidationField) (any, error) {
	value = splitStyled(value, f)
	for _, fn := range s.filters[normalizePath(f.name)] {
		value = fn(ctx, value, f)
		if IsInvalid(value) {
			return invalidValue, nil
		}
	}

	node := f.node

	if _, ok := node["discriminator"]; ok {
		return s.validateDiscriminator(ctx, value, f)
	}
	if ref, ok := node["$ref"].(string); ok {
		target, err := s.resolveRef(ref)
		if err != nil {
			return nil, err
		}
		switch t := target.(type) {
		case *Schema:
			return s.delegate(ctx, value, f, t)
		case map[string]any:
			return s.validateField(ctx, value, f.child(t, f.name))
		}
	}

	// Null short-circuit: nil (or empty string on non-string fields) is
	// immediately valid when the type set includes "null".
	if f.HasType("null") {
		if value == nil {
			return nil, nil
		}
		if str, ok := value.(string); ok && str == "" && !f.HasType("string") {
			return nil, nil
		}
	}

	types := f.Types()
	result := value
	var err error
	switch {
	case len(types) == 1:
		result, err = s.validateType(ctx, types[0], value, f)
	case len(types) > 1:
		result, err = s.validateUnion(ctx, types, value, f)
	}
	if err != nil {
		return nil, err
	}
	if IsInvalid(result) {
		return invalidValue, nil
	}

	if enum, ok := node["enum"].([]any); ok {
		if !enumContains(enum, result) {
			f.AddError(CodeInvalidEnum, WithParam("enum", enum), WithParam("value", result))
			return invalidValue, nil
		}
	}

	for _, fn := range s.validators[normalizePath(f.name)] {
		before := f.validation.ErrorCount(f.name)
		if !fn(ctx, result, f) {
			if f.validation.ErrorCount(f.name) == before {
				f.AddError(CodeInvalid)
			}
			return invalidValue, nil
		}
	}
	return result, nil
}

// delegate runs a nested Schema's own Validate and re-homes its failures
// under the current field path ("/"-joined); at the root the child's paths
// are adopted verbatim.
func (s *Schema) delegate(ctx context.Context, value any, f *ValidationField, sub *Schema) (any, error) {
	clean, err := sub.Validate(ctx, value, f.opt)
	if err == nil {
		return clean, nil
	}
	if ve, ok := AsValidationError(err); ok {
		if f.name == "" {
			f.validation.absorb(ve.Validation)
		} else {
			f.validation.Merge(ve.Validation, f.name)
		}
		return invalidValue, nil
	}
	return nil, err
}

func (s *Schema) validateType(ctx context.Context, typ string, value any, f *ValidationField) (any, error) {
	switch typ {
	case "boolean":
		return validateBoolean(value, f), nil
	case "integer":
		return s.validateInteger(value, f), nil
	case "number":
		return s.validateNumber(value, f), nil
	case "string":
		return s.validateString(value, f)
	case "timestamp":
		return validateTimestamp(value, f), nil
	case "datetime":
		return validateDatetime(value, f), nil
	case "null":
		if value == nil {
			return nil, nil
		}
		f.AddError(CodeNotNull, WithParam("value", value))
		return invalidValue, nil
	case "array":
		return s.validateArray(ctx, value, f)
	case "object":
		return s.validateObject(ctx, value, f)
	default:
		return nil, schemaErrorf("unknown type %q", typ)
	}
}

// validateUnion dispatches a multi-type node: an exact native-representation
// match is validated directly; otherwise every declared type is tried against
// a scratch collector and the first success wins. When no branch matches, all
// attempted branches' errors surface.
func (s *Schema) validateUnion(ctx context.Context, types []string, value any, f *ValidationField) (any, error) {
	if typ, ok := nativeMatch(types, value); ok {
		return s.validateType(ctx, typ, value, f)
	}
	var tried []*Validation
	for _, typ := range types {
		sf, sv := f.scratch()
		res, err := s.validateType(ctx, typ, value, sf)
		if err != nil {
			return nil, err
		}
		if !IsInvalid(res) && sv.IsValid() {
			return res, nil
		}
		tried = append(tried, sv)
	}
	for _, sv := range tried {
		f.validation.absorb(sv)
	}
	return invalidValue, nil
}

// nativeMatch picks the declared type whose native representation the value
// already has, so cross-type coercion never shadows an exact match.
func nativeMatch(types []string, value any) (string, bool) {
	has := func(t string) bool { return containsString(types, t) }
	switch v := value.(type) {
	case bool:
		if has("boolean") {
			return "boolean", true
		}
	case string:
		if looksLikeDate(v) {
			if has("datetime") {
				return "datetime", true
			}
			if has("timestamp") {
				return "timestamp", true
			}
		}
		if has("string") {
			return "string", true
		}
	case float64:
		if has("number") {
			return "number", true
		}
		if v == float64(int64(v)) && has("integer") {
			return "integer", true
		}
	case int, int32, int64:
		if has("integer") {
			return "integer", true
		}
		if has("number") {
			return "number", true
		}
	case json.Number:
		if !strings.ContainsAny(v.String(), ".eE") && has("integer") {
			return "integer", true
		}
		if has("number") {
			return "number", true
		}
	case []any:
		if has("array") {
			return "array", true
		}
	case map[string]any:
		if has("object") {
			return "object", true
		}
	case time.Time:
		if has("datetime") {
			return "datetime", true
		}
		if has("timestamp") {
			return "timestamp", true
		}
	case nil:
		if has("null") {
			return "null", true
		}
	}
	return "", false
}

func looksLikeDate(s string) bool {
	_, err := format.ParseDateTime(s)
	return err == nil
}

// splitStyled implements OpenAPI style splitting: a plain string bound to an
// array-typed node is split before validation (form / spaceDelimited /
// pipeDelimited).
func splitStyled(value any, f *ValidationField) any {
	style, _ := f.Val("style", "").(string)
	if style == "" || !f.HasType("array") {
		return value
	}
	str, ok := value.(string)
	if !ok {
		return value
	}
	var sep string
	switch style {
	case "form":
		sep = ","
	case "spaceDelimited":
		sep = " "
	case "pipeDelimited":
		sep = "|"
	default:
		return value
	}
	parts := strings.Split(str, sep)
	out := make([]any, len(parts))
	for i := range parts {
		out[i] = parts[i]
	}
	return out
}

func enumContains(enum []any, v any) bool {
	for _, e := range enum {
		if looseEqual(e, v) {
			return true
		}
	}
	return false
}

// looseEqual compares enum literals against coerced values: numerics compare
// numerically across representations, everything else by typed equality.
func looseEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	switch at := a.(type) {
	case string:
		bs, ok := b.(string)
		return ok && at == bs
	case bool:
		bb, ok := b.(bool)
		return ok && at == bb
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}
