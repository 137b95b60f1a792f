// Package coerce validates and coerces loosely-typed data (nested maps,
// slices, scalars) against a declarative, JSON-Schema-like definition.
//
// A Schema walks the input in lock-step with its definition tree, applying
// filters, type coercion, and custom validators at each node, and returns
// either a cleaned, whitelisted copy of the data or a *ValidationError
// carrying every field-level failure at once.
//
// Design policy:
//   - Keep the whole engine surface in the root package; messages live in
//     i18n/, format checkers in format/, HTTP glue in middleware/, the CLI in
//     cmd/coerce.
//   - Definition mistakes (bad shorthand, unresolvable $ref) surface as
//     *SchemaError and fail fast; data mistakes are always collected into a
//     Validation and surface once, at the end of Validate.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s, err := coerce.New(map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	        "id":   map[string]any{"type": "integer"},
//	        "name": map[string]any{"type": "string", "minLength": 1},
//	    },
//	    "required": []any{"id", "name"},
//	})
//	clean, err := s.Validate(ctx, payload)
package coerce
