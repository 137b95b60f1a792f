package coerce_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	coerce "github.com/kushiro/coerce"
)

func petsDoc() map[string]any {
	return map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Dog": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"kind":  map[string]any{"type": "string"},
						"barks": map[string]any{"type": "boolean"},
					},
					"required": []any{"kind", "barks"},
				},
				"Cat": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"kind":  map[string]any{"type": "string"},
						"lives": map[string]any{"type": "integer"},
					},
					"required": []any{"kind", "lives"},
				},
			},
		},
	}
}

func TestMapLookup(t *testing.T) {
	lookup := coerce.MapLookup(petsDoc())
	node, err := lookup("#/components/schemas/Dog")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if m, ok := node.(map[string]any); !ok || m["type"] != "object" {
		t.Fatalf("expected the Dog node, got %v", node)
	}
	node, err = lookup("#/components/schemas/Missing")
	if err != nil || node != nil {
		t.Fatalf("unknown refs yield nil without error, got %v %v", node, err)
	}
	if _, err = lookup("http://elsewhere/schema"); err == nil {
		t.Fatalf("non-local refs must error")
	}
}

func TestRefResolution(t *testing.T) {
	s := mustSchema(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pet": map[string]any{"$ref": "#/components/schemas/Dog"},
		},
	}).SetRefLookup(coerce.MapLookup(petsDoc()))

	clean, err := s.Validate(context.Background(), map[string]any{
		"pet": map[string]any{"kind": "dog", "barks": "true"},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := map[string]any{"pet": map[string]any{"kind": "dog", "barks": true}}
	if !reflect.DeepEqual(clean, want) {
		t.Fatalf("ref target validated in place, got %v", clean)
	}

	// errors inside an inline-resolved ref keep dotted attribution
	_, err = s.Validate(context.Background(), map[string]any{
		"pet": map[string]any{"kind": "dog"},
	})
	codes := fieldCodes(t, err, "pet.barks")
	if len(codes) != 1 || codes[0] != coerce.CodeRequired {
		t.Fatalf("expected required at pet.barks, got %v", codes)
	}
}

func TestRefNotFound(t *testing.T) {
	s := mustSchema(t, map[string]any{
		"$ref": "#/components/schemas/Missing",
	}).SetRefLookup(coerce.MapLookup(petsDoc()))
	_, err := s.Validate(context.Background(), map[string]any{})
	se, ok := coerce.AsSchemaError(err)
	if !ok {
		t.Fatalf("unresolvable ref is a definition error, got %v", err)
	}
	if !strings.Contains(se.Error(), "not found") {
		t.Fatalf("error names the failure: %v", se)
	}
}

func TestNonLocalRefRejected(t *testing.T) {
	s := mustSchema(t, map[string]any{
		"$ref": "https://example.com/schema.json",
	}).SetRefLookup(coerce.MapLookup(petsDoc()))
	if _, err := s.Validate(context.Background(), map[string]any{}); err == nil {
		t.Fatalf("non-local refs must fail fast")
	} else if _, ok := coerce.AsSchemaError(err); !ok {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
}

func TestRefToSubSchemaPaths(t *testing.T) {
	user := mustSchema(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		"required": []any{"x"},
	})
	s := mustSchema(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user": map[string]any{"$ref": "#/User"},
		},
	}).SetRefLookup(coerce.MapLookup(map[string]any{"User": user}))

	_, err := s.Validate(context.Background(), map[string]any{"user": map[string]any{}})
	// a ref resolving to a standalone Schema crosses a schema boundary, so
	// its errors re-home with a "/" separator
	codes := fieldCodes(t, err, "user/x")
	if len(codes) != 1 || codes[0] != coerce.CodeRequired {
		t.Fatalf("expected required at user/x, got %v", codes)
	}
}

func discriminatedSchema(t *testing.T) *coerce.Schema {
	t.Helper()
	return mustSchema(t, map[string]any{
		"discriminator": map[string]any{
			"propertyName": "kind",
			"mapping": map[string]any{
				"dog": "#/components/schemas/Dog",
				"cat": "Cat",
			},
		},
		"oneOf": []any{
			map[string]any{"$ref": "#/components/schemas/Dog"},
			map[string]any{"$ref": "#/components/schemas/Cat"},
		},
	}).SetRefLookup(coerce.MapLookup(petsDoc()))
}

func TestDiscriminatorDispatch(t *testing.T) {
	s := discriminatedSchema(t)
	ctx := context.Background()

	clean, err := s.Validate(ctx, map[string]any{"kind": "dog", "barks": 1})
	if err != nil {
		t.Fatalf("dog: %v", err)
	}
	if clean.(map[string]any)["barks"] != true {
		t.Fatalf("dog branch coercion, got %v", clean)
	}

	// bare mapping values resolve against the default ref base
	clean, err = s.Validate(ctx, map[string]any{"kind": "cat", "lives": "9"})
	if err != nil {
		t.Fatalf("cat: %v", err)
	}
	if clean.(map[string]any)["lives"] != int64(9) {
		t.Fatalf("cat branch coercion, got %v", clean)
	}
}

func TestDiscriminatorMissing(t *testing.T) {
	s := discriminatedSchema(t)
	_, err := s.Validate(context.Background(), map[string]any{"barks": true})
	codes := fieldCodes(t, err, "kind")
	if len(codes) != 1 || codes[0] != coerce.CodeDiscriminatorMissing {
		t.Fatalf("expected discriminator_missing at kind, got %v", codes)
	}
}

func TestDiscriminatorUnknown(t *testing.T) {
	s := discriminatedSchema(t)
	_, err := s.Validate(context.Background(), map[string]any{"kind": "ferret"})
	codes := fieldCodes(t, err, "kind")
	if len(codes) != 1 || codes[0] != coerce.CodeDiscriminatorUnknown {
		t.Fatalf("unmapped tag outside oneOf is unknown, got %v", codes)
	}
}
