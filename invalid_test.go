package coerce_test

import (
	"testing"

	coerce "github.com/kushiro/coerce"
)

func TestInvalidSentinelIdentity(t *testing.T) {
	if !coerce.IsInvalid(coerce.Invalid()) {
		t.Fatalf("the sentinel must recognize itself")
	}
	if coerce.Invalid() != coerce.Invalid() {
		t.Fatalf("Invalid returns one shared sentinel")
	}
	for _, v := range []any{nil, false, 0, "", "invalid", struct{}{}} {
		if coerce.IsInvalid(v) {
			t.Fatalf("%#v must not read as the sentinel", v)
		}
		if !coerce.IsValid(v) {
			t.Fatalf("%#v is a legitimate value", v)
		}
	}
	if coerce.IsValid(coerce.Invalid()) {
		t.Fatalf("the sentinel is never a legitimate value")
	}
}

func TestValidationFieldAccessors(t *testing.T) {
	v := coerce.NewValidation()
	node := map[string]any{"type": []any{"string", "null"}, "minLength": 2}
	f := coerce.NewValidationField(v, node, "user.name", coerce.ValidateOpt{Sparse: true})

	if f.Name() != "user.name" {
		t.Fatalf("name: %q", f.Name())
	}
	if !f.Sparse() || f.Request() || f.Response() {
		t.Fatalf("mode flags wrong")
	}
	if got := f.Val("minLength", nil); got != 2 {
		t.Fatalf("Val: %v", got)
	}
	if got := f.Val("maxLength", 99); got != 99 {
		t.Fatalf("Val default: %v", got)
	}
	if f.HasVal("maxLength") || !f.HasVal("minLength") {
		t.Fatalf("HasVal wrong")
	}
	if !f.HasType("null") || f.HasType("integer") {
		t.Fatalf("HasType wrong")
	}

	f.AddTypeError("")
	iss := v.FieldErrors("user.name")
	if len(iss) != 1 || iss[0].Error != coerce.CodeInvalidType {
		t.Fatalf("AddTypeError: %v", iss)
	}
	if iss[0].Params["type"] != "string" {
		t.Fatalf("empty typ falls back to the first declared type: %v", iss[0].Params)
	}
}
