package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/kushiro/coerce/format"
)

// validateBoolean coerces the usual truthy/falsy spellings; nil passes
// through untouched when it reaches this point.
func validateBoolean(value any, f *ValidationField) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return v
	case string:
		switch v {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	default:
		if n, ok := toFloat(value); ok {
			switch n {
			case 1:
				return true
			case 0:
				return false
			}
		}
	}
	f.AddTypeError("boolean")
	return invalidValue
}

func (s *Schema) validateInteger(value any, f *ValidationField) any {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) {
			f.AddTypeError("integer")
			return invalidValue
		}
		n = int64(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			f.AddTypeError("integer")
			return invalidValue
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			f.AddTypeError("integer")
			return invalidValue
		}
		n = i
	default:
		f.AddTypeError("integer")
		return invalidValue
	}
	if !s.checkNumeric(float64(n), f) {
		return invalidValue
	}
	return n
}

func (s *Schema) validateNumber(value any, f *ValidationField) any {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		x, err := v.Float64()
		if err != nil {
			f.AddTypeError("number")
			return invalidValue
		}
		n = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			f.AddTypeError("number")
			return invalidValue
		}
		n = x
	default:
		f.AddTypeError("number")
		return invalidValue
	}
	if !s.checkNumeric(n, f) {
		return invalidValue
	}
	return n
}

// checkNumeric enforces minimum/maximum/multipleOf identically for integer
// and number nodes.
func (s *Schema) checkNumeric(n float64, f *ValidationField) bool {
	ok := true
	if min, has := toFloat(f.Val("minimum", nil)); has && n < min {
		f.AddError(CodeTooSmall, WithParam("min", min), WithParam("value", n))
		ok = false
	}
	if max, has := toFloat(f.Val("maximum", nil)); has && n > max {
		f.AddError(CodeTooBig, WithParam("max", max), WithParam("value", n))
		ok = false
	}
	if mul, has := toFloat(f.Val("multipleOf", nil)); has && mul != 0 {
		if r := math.Mod(n, mul); r != 0 {
			f.AddError(CodeNotMultiple, WithParam("multiple", mul), WithParam("value", n))
			ok = false
		}
	}
	return ok
}

func (s *Schema) validateString(value any, f *ValidationField) (any, error) {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case json.Number:
		str = v.String()
	case int:
		str = strconv.Itoa(v)
	case int64:
		str = strconv.FormatInt(v, 10)
	case float64:
		str = strconv.FormatFloat(v, 'g', -1, 64)
	default:
		f.AddTypeError("string")
		return invalidValue, nil
	}

	length := len(str)
	if s.flags&FlagStringLengthAsUnicode != 0 {
		length = utf8.RuneCountInString(str)
	}
	if min, ok := intAttr(f.Val("minLength", nil)); ok && length < min {
		// An empty text field with a length-1 minimum reads as missing,
		// not too short.
		if min == 1 && length == 0 {
			f.AddError(CodeRequired)
		} else {
			f.AddError(CodeTooShort, WithParam("min", min), WithParam("value", str))
		}
		return invalidValue, nil
	}
	if max, ok := intAttr(f.Val("maxLength", nil)); ok && length > max {
		f.AddError(CodeTooLong, WithParam("max", max), WithParam("value", str))
		return invalidValue, nil
	}
	if max, ok := intAttr(f.Val("maxByteLength", nil)); ok && len(str) > max {
		f.AddError(CodeTooLong, WithParam("max", max), WithParam("value", str))
		return invalidValue, nil
	}
	if pat, ok := f.Val("pattern", nil).(string); ok {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, schemaErrorf("invalid pattern %q: %v", pat, err)
		}
		// unanchored: any match passes
		if !re.MatchString(str) {
			f.AddError(CodePattern, WithParam("value", str))
			return invalidValue, nil
		}
	}
	if name, ok := f.Val("format", nil).(string); ok && name != "" {
		chk, known := format.Lookup(name)
		if !known {
			s.diag.Warnf("unknown format %q on field %q", name, f.name)
			return str, nil
		}
		out, err := chk(str)
		if err != nil {
			f.AddError(CodeInvalidFormat, WithParam("format", name), WithParam("value", str))
			return invalidValue, nil
		}
		str = out
	}
	return str, nil
}

// validateTimestamp coerces to epoch seconds (int64).
func validateTimestamp(value any, f *ValidationField) any {
	if t, ok := value.(time.Time); ok {
		return t.Unix()
	}
	if n, ok := toFloat(value); ok {
		if n > 0 && n == math.Trunc(n) {
			return int64(n)
		}
		f.AddTypeError("timestamp")
		return invalidValue
	}
	if str, ok := value.(string); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64); err == nil && i > 0 {
			return i
		}
		if t, err := format.ParseDateTime(str); err == nil {
			return t.Unix()
		}
	}
	f.AddTypeError("timestamp")
	return invalidValue
}

// validateDatetime coerces to time.Time.
func validateDatetime(value any, f *ValidationField) any {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		if t, err := format.ParseDateTime(v); err == nil {
			return t
		}
		f.AddTypeError("datetime")
		return invalidValue
	}
	if n, ok := toFloat(value); ok && n > 0 {
		return time.Unix(int64(math.Trunc(n)), 0).UTC()
	}
	f.AddTypeError("datetime")
	return invalidValue
}

// ---- numeric helpers ----

// toFloat reads any non-string numeric representation.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		n, err := t.Float64()
		return n, err == nil
	default:
		return 0, false
	}
}

func intAttr(v any) (int, bool) {
	n, ok := toFloat(v)
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	return int(n), true
}
