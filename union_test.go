package coerce_test

import (
	"context"
	"testing"
	"time"

	coerce "github.com/kushiro/coerce"
)

func TestUnionPrefersNativeRepresentation(t *testing.T) {
	s := mustSchema(t, map[string]any{"type": []any{"integer", "string"}})
	ctx := context.Background()

	v, err := s.Validate(ctx, 5)
	if err != nil {
		t.Fatalf("validate 5: %v", err)
	}
	if n, ok := v.(int64); !ok || n != 5 {
		t.Fatalf("native int stays integer, got %T %v", v, v)
	}

	v, err = s.Validate(ctx, "5")
	if err != nil {
		t.Fatalf("validate \"5\": %v", err)
	}
	if v != "5" {
		t.Fatalf("native string stays string even though it would coerce, got %T %v", v, v)
	}
}

func TestUnionFallsBackInDeclaredOrder(t *testing.T) {
	s := mustSchema(t, map[string]any{"type": []any{"integer", "boolean"}})
	// "1" is native to neither branch; the first declared type that accepts
	// the coercion wins
	v, err := s.Validate(context.Background(), "1")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if n, ok := v.(int64); !ok || n != 1 {
		t.Fatalf("expected int64 1 from the first branch, got %T %v", v, v)
	}
}

func TestUnionTotalFailureSurfacesAllBranches(t *testing.T) {
	s := mustSchema(t, map[string]any{"type": []any{"integer", "boolean"}})
	_, err := s.Validate(context.Background(), "abc")
	codes := fieldCodes(t, err, "")
	if len(codes) != 2 {
		t.Fatalf("every attempted branch surfaces an error, got %v", codes)
	}
	for _, c := range codes {
		if c != coerce.CodeInvalidType {
			t.Fatalf("expected invalid_type per branch, got %v", codes)
		}
	}
}

func TestUnionDateStringPrefersDatetime(t *testing.T) {
	s := mustSchema(t, map[string]any{"type": []any{"string", "datetime"}})
	v, err := s.Validate(context.Background(), "2026-08-28T10:00:00Z")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	ts, ok := v.(time.Time)
	if !ok || !ts.Equal(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-shaped strings bind to the datetime branch, got %T %v", v, v)
	}
}
