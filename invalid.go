package coerce

// invalidValue is the process-wide "coercion failed" marker. It flows through
// the recursive validators in place of a result so that a legitimate nil can
// still mean "valid null". Comparison is by identity, never by structure.
type invalidMarker struct{ _ int8 }

var invalidValue any = &invalidMarker{}

// Invalid returns the shared sentinel meaning "validation failed for this
// node". It never appears inside data returned to a caller.
func Invalid() any { return invalidValue }

// IsInvalid reports whether v is the Invalid sentinel.
func IsInvalid(v any) bool {
	m, ok := v.(*invalidMarker)
	return ok && any(m) == invalidValue
}

// IsValid is the complement of IsInvalid.
func IsValid(v any) bool { return !IsInvalid(v) }
