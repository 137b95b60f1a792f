package coerce_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	coerce "github.com/kushiro/coerce"
)

func TestAddErrorRejectsEmptyCode(t *testing.T) {
	v := coerce.NewValidation()
	if err := v.AddError("name", ""); err != coerce.ErrEmptyCode {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
	if !v.IsValid() {
		t.Fatalf("rejected record must not be stored")
	}
}

func TestValidationCounts(t *testing.T) {
	v := coerce.NewValidation()
	_ = v.AddError("a", coerce.CodeRequired)
	_ = v.AddError("a", coerce.CodeTooShort, coerce.WithParam("min", 3))
	_ = v.AddError("b", coerce.CodeInvalidType)

	if v.IsValid() {
		t.Fatalf("collector with records is not valid")
	}
	if v.IsValidField("a") || !v.IsValidField("c") {
		t.Fatalf("per-field validity wrong")
	}
	if got := v.ErrorCount(); got != 3 {
		t.Fatalf("total count = %d, want 3", got)
	}
	if got := v.ErrorCount("a"); got != 2 {
		t.Fatalf("count(a) = %d, want 2", got)
	}
	fields := v.Fields()
	if len(fields) != 2 || fields[0] != "a" || fields[1] != "b" {
		t.Fatalf("fields keep insertion order, got %v", fields)
	}
}

func TestMergePrefixes(t *testing.T) {
	inner := coerce.NewValidation()
	_ = inner.AddError("", coerce.CodeInvalidType)
	_ = inner.AddError("city", coerce.CodeRequired)

	outer := coerce.NewValidation()
	outer.Merge(inner, "address")
	fields := outer.Fields()
	if len(fields) != 2 || fields[0] != "address" || fields[1] != "address/city" {
		t.Fatalf("merge paths wrong: %v", fields)
	}

	// an empty prefix never merges
	clean := coerce.NewValidation()
	clean.Merge(inner, "")
	if !clean.IsValid() {
		t.Fatalf("empty-prefix merge must be a no-op, got %v", clean.Fields())
	}
}

func TestStatusComputation(t *testing.T) {
	v := coerce.NewValidation()
	if v.Status() != 200 {
		t.Fatalf("empty collector is 200, got %d", v.Status())
	}
	_ = v.AddError("a", coerce.CodeRequired)
	if v.Status() != 400 {
		t.Fatalf("default failure status is 400, got %d", v.Status())
	}
	_ = v.AddError("b", coerce.CodeInvalid, coerce.WithStatus(422))
	if v.Status() != 422 {
		t.Fatalf("max record status wins, got %d", v.Status())
	}
	v.SetMainStatus(409)
	if v.Status() != 409 {
		t.Fatalf("explicit main status wins, got %d", v.Status())
	}
}

func TestRenderTemplates(t *testing.T) {
	v := coerce.NewValidation()

	iss := coerce.Issue{Error: coerce.CodeTooShort, Params: map[string]any{"min": 1}}
	if got := v.Render("name", iss); got != "name must be at least 1 character long." {
		t.Fatalf("singular plural form: %q", got)
	}
	iss.Params["min"] = 3
	if got := v.Render("name", iss); got != "name must be at least 3 characters long." {
		t.Fatalf("plural form: %q", got)
	}

	iss = coerce.Issue{Error: coerce.CodeRequired}
	if got := v.Render("", iss); got != "value is required." {
		t.Fatalf("empty path renders as value: %q", got)
	}

	// verbatim message beats the code template
	iss = coerce.Issue{Error: coerce.CodeRequired, Message: "give me a name"}
	if got := v.Render("name", iss); got != "give me a name" {
		t.Fatalf("verbatim message lost: %q", got)
	}

	// a message code is itself a template
	iss = coerce.Issue{
		Error:       coerce.CodeInvalid,
		MessageCode: "@{field} looked wrong: {value}",
		Params:      map[string]any{"value": strings.Repeat("x", 40)},
	}
	got := v.Render("name", iss)
	if !strings.HasPrefix(got, "name looked wrong: ") || !strings.HasSuffix(got, "...") {
		t.Fatalf("value must render truncated: %q", got)
	}
}

func TestRenderValueTruncatesOnRuneBoundary(t *testing.T) {
	v := coerce.NewValidation()
	iss := coerce.Issue{
		Error:       coerce.CodeInvalid,
		MessageCode: "@bad: {value}",
		Params:      map[string]any{"value": strings.Repeat("あ", 12)},
	}
	got := v.Render("x", iss)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated message must stay valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("long values truncate: %q", got)
	}
}

func TestRenderAtEscape(t *testing.T) {
	v := coerce.NewValidation()
	v.SetTranslate(func(s string) string { return "translated" })
	iss := coerce.Issue{Error: coerce.CodeInvalid, MessageCode: "@literal text"}
	if got := v.Render("x", iss); got != "literal text" {
		t.Fatalf("@-prefix must bypass translation, got %q", got)
	}
	iss.MessageCode = "anything"
	if got := v.Render("x", iss); got != "translated" {
		t.Fatalf("translate hook skipped, got %q", got)
	}
}

func TestMarshalPayloadShape(t *testing.T) {
	v := coerce.NewValidation()
	_ = v.AddError("name", coerce.CodeRequired)
	_ = v.AddError("age", coerce.CodeTooSmall, coerce.WithParam("min", 18), coerce.WithStatus(422))

	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
		Errors  map[string][]struct {
			Error   string `json:"error"`
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("payload is not an object: %v", err)
	}
	if payload.Message != "name is required." {
		t.Fatalf("aggregate message = %q", payload.Message)
	}
	if payload.Code != 422 {
		t.Fatalf("aggregate code = %d", payload.Code)
	}
	if len(payload.Errors["name"]) != 1 || payload.Errors["name"][0].Error != coerce.CodeRequired {
		t.Fatalf("name entry wrong: %v", payload.Errors)
	}
	age := payload.Errors["age"]
	if len(age) != 1 || age[0].Code != 422 || age[0].Message != "age must be at least 18." {
		t.Fatalf("age entry wrong: %+v", age)
	}
	// per-record code key is omitted when unset
	if strings.Count(string(raw), `"code"`) != 2 {
		t.Fatalf("expected exactly one aggregate and one record code key: %s", raw)
	}
}

func TestValidationErrorSummary(t *testing.T) {
	v := coerce.NewValidation()
	_ = v.AddError("name", coerce.CodeRequired)
	_ = v.AddError("age", coerce.CodeTooSmall)
	_ = v.AddError("bio", coerce.CodeTooLong)
	_ = v.AddError("tags", coerce.CodeTooManyItems)
	err := &coerce.ValidationError{Validation: v}
	msg := err.Error()
	if !strings.Contains(msg, "required at name") || !strings.Contains(msg, "(total 4)") {
		t.Fatalf("summary shape: %q", msg)
	}
	if strings.Contains(msg, "too_many_items") {
		t.Fatalf("summary must cap the shown records: %q", msg)
	}
}
