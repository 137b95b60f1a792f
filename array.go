package coerce

import (
	"context"
	"fmt"
	"reflect"
)

// validateArray validates list-shaped input. Elements that individually fail
// are dropped; when every element of a non-empty input fails, the whole array
// is Invalid and the attempted errors surface instead of an empty result.
func (s *Schema) validateArray(ctx context.Context, value any, f *ValidationField) (any, error) {
	list, ok := toSlice(value)
	if !ok {
		f.AddTypeError("array")
		return invalidValue, nil
	}

	items := f.node["items"]
	var out []any
	if items == nil {
		out = make([]any, len(list))
		copy(out, list)
	} else {
		out = make([]any, 0, len(list))
		var failed []*Validation
		for i, el := range list {
			name := elementName(f.name, i)
			res, sv, err := s.validateElement(ctx, el, name, items, f.opt)
			if err != nil {
				return nil, err
			}
			if IsInvalid(res) {
				failed = append(failed, sv)
				continue
			}
			out = append(out, res)
		}
		if len(list) > 0 && len(out) == 0 {
			for _, sv := range failed {
				f.validation.absorb(sv)
			}
			return invalidValue, nil
		}
	}

	ok = true
	if min, has := intAttr(f.Val("minItems", nil)); has && len(out) < min {
		f.AddError(CodeTooFewItems, WithParam("min", min))
		ok = false
	}
	if max, has := intAttr(f.Val("maxItems", nil)); has && len(out) > max {
		f.AddError(CodeTooManyItems, WithParam("max", max))
		ok = false
	}
	if !ok {
		return invalidValue, nil
	}
	return out, nil
}

// validateElement runs one element against the items node in a scratch
// collector, so callers decide whether its failures surface.
func (s *Schema) validateElement(ctx context.Context, el any, name string, items any, opt ValidateOpt) (any, *Validation, error) {
	sv := NewValidation()
	switch node := items.(type) {
	case *Schema:
		clean, err := node.Validate(ctx, el, opt)
		if err == nil {
			return clean, sv, nil
		}
		if ve, ok := AsValidationError(err); ok {
			sv.Merge(ve.Validation, name)
			return invalidValue, sv, nil
		}
		return nil, nil, err
	case map[string]any:
		sf := &ValidationField{validation: sv, node: node, name: name, opt: opt}
		res, err := s.validateField(ctx, el, sf)
		if err != nil {
			return nil, nil, err
		}
		if IsInvalid(res) || !sv.IsValid() {
			return invalidValue, sv, nil
		}
		return res, sv, nil
	default:
		return nil, nil, schemaErrorf("items is not a schema node (%T)", items)
	}
}

func elementName(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

// toSlice accepts []any directly and re-indexes other slices and arrays;
// strings and byte slices are not list-shaped.
func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case nil, string, []byte, map[string]any:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
