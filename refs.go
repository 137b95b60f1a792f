package coerce

import (
	"context"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// resolveRef resolves a local "#/..." reference through the configured
// lookup. A ref that cannot be resolved is a schema-authoring defect and
// returns a *SchemaError, never a field error.
func (s *Schema) resolveRef(ref string) (any, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, schemaErrorf("non-local ref %q: only \"#/\" fragment refs are supported", ref)
	}
	if s.lookup == nil {
		return nil, schemaErrorf("ref %q: no ref lookup configured", ref)
	}
	target, err := s.lookup(ref)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, schemaErrorf("ref %q not found", ref)
	}
	switch t := target.(type) {
	case *Schema:
		if s.sparseMode {
			return t.WithSparse(), nil
		}
		return t, nil
	case map[string]any:
		node, err := normalizeNode(t)
		if err != nil {
			return nil, err
		}
		if s.sparseMode {
			node = sparseNode(node, map[uintptr]map[string]any{})
		}
		return node, nil
	default:
		return nil, schemaErrorf("ref %q resolved to %T, want a schema node", ref, target)
	}
}

// MapLookup returns a RefLookup that walks a document tree segment by
// segment. A syntactically valid but unknown ref yields nil, leaving the
// engine to raise the "ref not found" failure.
func MapLookup(doc map[string]any) RefLookup {
	return func(ref string) (any, error) {
		if !strings.HasPrefix(ref, "#/") {
			return nil, schemaErrorf("non-local ref %q", ref)
		}
		var cur any = doc
		for _, seg := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, nil
			}
			if cur, ok = m[seg]; !ok {
				return nil, nil
			}
		}
		return cur, nil
	}
}

type discriminatorSpec struct {
	PropertyName string            `mapstructure:"propertyName"`
	Mapping      map[string]string `mapstructure:"mapping"`
}

// validateDiscriminator selects the schema to validate the whole object
// against from the runtime value of the discriminator property, honoring
// mapping aliases and an optional oneOf allow-list.
func (s *Schema) validateDiscriminator(ctx context.Context, value any, f *ValidationField) (any, error) {
	var d discriminatorSpec
	if err := mapstructure.Decode(f.node["discriminator"], &d); err != nil {
		return nil, schemaErrorf("invalid discriminator node: %v", err)
	}
	if d.PropertyName == "" {
		return nil, schemaErrorf("discriminator requires propertyName")
	}

	obj, ok := toStringMap(value)
	if !ok {
		f.AddTypeError("object")
		return invalidValue, nil
	}
	propPath := joinPath(f.name, d.PropertyName)
	tag, _ := obj[d.PropertyName].(string)
	if tag == "" {
		f.validation.AddError(propPath, CodeDiscriminatorMissing)
		return invalidValue, nil
	}

	ref := tag
	if alias, ok := d.Mapping[tag]; ok {
		ref = alias
	}
	if !strings.HasPrefix(ref, "#/") {
		ref = s.refBase + ref
	}

	if oneOf, ok := f.node["oneOf"].([]any); ok {
		found := false
		for _, cand := range oneOf {
			if m, ok := cand.(map[string]any); ok {
				if r, _ := m["$ref"].(string); r == ref {
					found = true
					break
				}
			}
		}
		if !found {
			f.validation.AddError(propPath, CodeDiscriminatorUnknown, WithParam("value", tag))
			return invalidValue, nil
		}
	}

	target, err := s.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case *Schema:
		return s.delegate(ctx, value, f, t)
	case map[string]any:
		return s.validateField(ctx, value, f.child(t, f.name))
	default:
		return nil, schemaErrorf("discriminator ref %q resolved to %T", ref, target)
	}
}
