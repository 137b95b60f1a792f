package middleware

import (
	"context"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	coerce "github.com/kushiro/coerce"
)

// ctxKeyClean is the typed context key for the validated request body.
type ctxKeyClean struct{}

// ContextWithClean attaches validated body data to the context.
func ContextWithClean(ctx context.Context, data any) context.Context {
	return context.WithValue(ctx, ctxKeyClean{}, data)
}

// CleanFromContext retrieves the validated body data stored by ValidateBody.
func CleanFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyClean{})
	return v, v != nil
}

// MaxBodyBytes caps request bodies read by ValidateBody.
const MaxBodyBytes = 1 << 20

// ValidateBody returns standard http middleware (chi-compatible) that decodes
// the JSON request body, validates it against the schema as a request
// (readOnly properties hidden), and stores the cleaned data in the request
// context. Validation failures are written as the stable error payload with
// the Validation's own status; schema-definition mistakes become a 500.
func ValidateBody(s *coerce.Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
			if err != nil {
				http.Error(w, "cannot read body", http.StatusBadRequest)
				return
			}
			data, err := coerce.JSONBytes(body)
			if err != nil {
				v := coerce.NewValidation()
				v.AddError("", "parse_error", coerce.WithMessage("request body is not valid JSON"))
				WriteError(w, &coerce.ValidationError{Validation: v})
				return
			}
			clean, err := s.Validate(r.Context(), data, coerce.ValidateOpt{Request: true})
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClean(r.Context(), clean)))
		})
	}
}

// WriteError renders a validation failure as the wire payload
// {"message", "code", "errors"}. Non-validation errors map to a bare 500.
func WriteError(w http.ResponseWriter, err error) {
	ve, ok := coerce.AsValidationError(err)
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	payload, merr := json.Marshal(ve.Validation)
	if merr != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ve.Validation.Status())
	_, _ = w.Write(payload)
}
