package coerce

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/kushiro/coerce/i18n"
)

// Issue is a single error record collected for one field path.
type Issue struct {
	Error       string         // stable error code, e.g. CodeRequired
	Message     string         // verbatim message; used when MessageCode is empty
	MessageCode string         // interpolatable template, or a code resolved via i18n
	Status      int            // HTTP-style status suggestion (0 = unset)
	Params      map[string]any // named values referenced by the template
}

// ErrorOpt customizes an Issue passed to AddError.
type ErrorOpt func(*Issue)

// WithMessage sets a verbatim, pre-rendered message.
func WithMessage(msg string) ErrorOpt { return func(i *Issue) { i.Message = msg } }

// WithMessageCode sets an interpolatable message template ({token} syntax).
func WithMessageCode(code string) ErrorOpt { return func(i *Issue) { i.MessageCode = code } }

// WithStatus sets the numeric status suggestion for this record.
func WithStatus(status int) ErrorOpt { return func(i *Issue) { i.Status = status } }

// WithParam adds a named value for message interpolation.
func WithParam(name string, value any) ErrorOpt {
	return func(i *Issue) {
		if i.Params == nil {
			i.Params = map[string]any{}
		}
		i.Params[name] = value
	}
}

// Validation accumulates field-path-keyed error records during one validation
// pass. It is created fresh per Validate call and never shared across
// independent calls; nested schemas surface their failures here via Merge.
type Validation struct {
	order  []string
	errors map[string][]Issue

	mainMessage string
	mainStatus  int

	// translate overrides the i18n lookup for templates and field names.
	// Strings prefixed with "@" bypass it verbatim.
	translate func(string) string
}

// NewValidation returns an empty collector.
func NewValidation() *Validation {
	return &Validation{errors: map[string][]Issue{}}
}

// SetTranslate installs a localization hook used for message templates and
// field names. Passing nil restores the built-in i18n dictionary.
func (v *Validation) SetTranslate(fn func(string) string) { v.translate = fn }

// AddError appends an error record under the given field path. The code must
// be non-empty.
func (v *Validation) AddError(field, code string, opts ...ErrorOpt) error {
	if code == "" {
		return ErrEmptyCode
	}
	iss := Issue{Error: code}
	for _, o := range opts {
		o(&iss)
	}
	v.add(field, iss)
	return nil
}

func (v *Validation) add(field string, iss Issue) {
	if v.errors == nil {
		v.errors = map[string][]Issue{}
	}
	if _, ok := v.errors[field]; !ok {
		v.order = append(v.order, field)
	}
	v.errors[field] = append(v.errors[field], iss)
}

// IsValid reports whether no error records exist.
func (v *Validation) IsValid() bool { return len(v.errors) == 0 }

// IsValidField reports whether no records exist under exactly that path.
func (v *Validation) IsValidField(field string) bool { return len(v.errors[field]) == 0 }

// ErrorCount returns the total number of records, or the count for one path
// when given.
func (v *Validation) ErrorCount(field ...string) int {
	if len(field) > 0 {
		return len(v.errors[field[0]])
	}
	n := 0
	for _, list := range v.errors {
		n += len(list)
	}
	return n
}

// Fields returns the error field paths in insertion order.
func (v *Validation) Fields() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// FieldErrors returns the raw records for one field path.
func (v *Validation) FieldErrors(field string) []Issue {
	list := v.errors[field]
	out := make([]Issue, len(list))
	copy(out, list)
	return out
}

// Merge re-homes every record from other onto v, rewriting each field path to
// prefix + "/" + original (or just prefix when the original path is empty).
// An empty prefix is a no-op: unnamed errors are only merged under a name.
func (v *Validation) Merge(other *Validation, prefix string) {
	if other == nil || prefix == "" {
		return
	}
	for _, path := range other.order {
		target := prefix
		if path != "" {
			target = prefix + "/" + path
		}
		for _, iss := range other.errors[path] {
			v.add(target, iss)
		}
	}
}

// absorb copies every record from other keeping original paths. Used for
// root-level delegation and union scratch collectors, where Merge's
// empty-prefix rule would drop the errors.
func (v *Validation) absorb(other *Validation) {
	if other == nil {
		return
	}
	for _, path := range other.order {
		for _, iss := range other.errors[path] {
			v.add(path, iss)
		}
	}
}

// SetMainMessage overrides the aggregate message.
func (v *Validation) SetMainMessage(msg string) { v.mainMessage = msg }

// SetMainStatus overrides the aggregate status.
func (v *Validation) SetMainStatus(status int) { v.mainStatus = status }

// Status returns the explicit main status if set; else 200 when valid; else
// the maximum status across records, defaulting to 400 when none specify one.
func (v *Validation) Status() int {
	if v.mainStatus != 0 {
		return v.mainStatus
	}
	if v.IsValid() {
		return 200
	}
	status := 0
	for _, list := range v.errors {
		for _, iss := range list {
			if iss.Status > status {
				status = iss.Status
			}
		}
	}
	if status == 0 {
		status = 400
	}
	return status
}

// Message returns the explicit main message if set, else the first rendered
// field error, else the empty string.
func (v *Validation) Message() string {
	if v.mainMessage != "" {
		return v.mainMessage
	}
	for _, path := range v.order {
		for _, iss := range v.errors[path] {
			return v.Render(path, iss)
		}
	}
	return ""
}

// ---- message rendering ----

// tr resolves a template or field name through the translation hook. Strings
// prefixed with "@" bypass translation verbatim.
func (v *Validation) tr(s string) string {
	if strings.HasPrefix(s, "@") {
		return s[1:]
	}
	if v.translate != nil {
		return v.translate(s)
	}
	return i18n.T(s)
}

// Render produces the user-facing message for one record: MessageCode (as a
// template) wins, then Message verbatim, then the error code itself resolved
// through i18n.
func (v *Validation) Render(field string, iss Issue) string {
	var tpl string
	switch {
	case iss.MessageCode != "":
		tpl = v.tr(iss.MessageCode)
	case iss.Message != "":
		return iss.Message
	default:
		tpl = v.tr(iss.Error)
	}
	return v.interpolate(tpl, field, iss.Params)
}

var tokenRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(,plural(?:,[^,{}]*){1,2})?\}`)

func (v *Validation) interpolate(tpl, field string, params map[string]any) string {
	return tokenRe.ReplaceAllStringFunc(tpl, func(m string) string {
		sub := tokenRe.FindStringSubmatch(m)
		name, spec := sub[1], sub[2]
		if spec != "" {
			// {n,plural,one} or {n,plural,one,many}
			parts := strings.Split(spec, ",")
			one := parts[2]
			many := one + "s"
			if len(parts) > 3 {
				many = parts[3]
			}
			if countOf(params[name]) == 1 {
				return one
			}
			return many
		}
		switch name {
		case "field":
			if field == "" {
				return v.tr("value")
			}
			return v.tr(field)
		case "value":
			if params != nil {
				if val, ok := params["value"]; ok {
					return renderValue(val)
				}
			}
			return m
		}
		if params != nil {
			if val, ok := params[name]; ok {
				return renderParam(val)
			}
		}
		return m
	})
}

// renderValue JSON-renders an arbitrary value, truncated to ~20 characters.
func renderValue(val any) string {
	b, err := json.Marshal(val)
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	s := string(b)
	if len(s) > 20 {
		cut := 20
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

func renderParam(val any) string {
	switch t := val.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any:
		parts := make([]string, len(t))
		for i := range t {
			parts[i] = renderValue(t[i])
		}
		return strings.Join(parts, ", ")
	default:
		return renderValue(val)
	}
}

func countOf(val any) int {
	switch t := val.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		n, _ := t.Int64()
		return int(n)
	default:
		return 0
	}
}

// ---- wire payload ----

// MarshalJSON emits the stable API error payload:
//
//	{"message": ..., "code": ..., "errors": {"<path>": [{"error", "message", "code"?}]}}
//
// Field paths keep insertion order.
func (v *Validation) MarshalJSON() ([]byte, error) {
	b := &bytes.Buffer{}
	b.WriteString(`{"message":`)
	mb, err := json.Marshal(v.Message())
	if err != nil {
		return nil, err
	}
	b.Write(mb)
	fmt.Fprintf(b, `,"code":%d,"errors":{`, v.Status())
	for i, path := range v.order {
		if i > 0 {
			b.WriteByte(',')
		}
		pb, err := json.Marshal(path)
		if err != nil {
			return nil, err
		}
		b.Write(pb)
		b.WriteString(":[")
		for j, iss := range v.errors[path] {
			if j > 0 {
				b.WriteByte(',')
			}
			entry := map[string]any{
				"error":   iss.Error,
				"message": v.Render(path, iss),
			}
			if iss.Status != 0 {
				entry["code"] = iss.Status
			}
			eb, err := json.Marshal(entry)
			if err != nil {
				return nil, err
			}
			b.Write(eb)
		}
		b.WriteByte(']')
	}
	b.WriteString("}}")
	return b.Bytes(), nil
}
