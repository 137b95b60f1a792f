package coerce

// ValidateOpt bundles per-call validation options.
type ValidateOpt struct {
	// Sparse tolerates missing fields (even required ones) and simply omits
	// them from the clean output; used for PATCH-style partial updates.
	Sparse bool
	// Request hides readOnly properties as if absent, even when required.
	Request bool
	// Response hides writeOnly properties symmetrically.
	Response bool
}

// ValidationField carries one schema node, its dotted/bracketed field path,
// the shared error collector, and the validation-mode flags through the
// recursive walk. One instance exists per node visit; it never escapes the
// validation call stack.
type ValidationField struct {
	validation *Validation
	node       map[string]any
	name       string
	opt        ValidateOpt
}

// NewValidationField builds a context for one node visit. Mostly useful to
// filters and custom validators under test.
func NewValidationField(v *Validation, node map[string]any, name string, opt ValidateOpt) *ValidationField {
	return &ValidationField{validation: v, node: node, name: name, opt: opt}
}

// Validation returns the shared error collector.
func (f *ValidationField) Validation() *Validation { return f.validation }

// Name returns the current dotted/indexed field path (e.g. "user.tags[2]").
func (f *ValidationField) Name() string { return f.name }

// SetName repoints the context at another field path.
func (f *ValidationField) SetName(name string) { f.name = name }

// Node returns the live schema node.
func (f *ValidationField) Node() map[string]any { return f.node }

// SetNode repoints the context at another schema node.
func (f *ValidationField) SetNode(node map[string]any) { f.node = node }

// Val looks up a schema attribute, falling back to def when absent.
func (f *ValidationField) Val(key string, def any) any {
	if v, ok := f.node[key]; ok {
		return v
	}
	return def
}

// HasVal reports whether the schema node declares the attribute.
func (f *ValidationField) HasVal(key string) bool {
	_, ok := f.node[key]
	return ok
}

// Types reads the node's "type", normalizing scalar-or-array to a list.
func (f *ValidationField) Types() []string {
	switch t := f.node["type"].(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// HasType reports whether the node's type set contains t.
func (f *ValidationField) HasType(t string) bool {
	for _, x := range f.Types() {
		if x == t {
			return true
		}
	}
	return false
}

// AddError records an error for the current field path.
func (f *ValidationField) AddError(code string, opts ...ErrorOpt) {
	f.validation.AddError(f.name, code, opts...)
}

// AddTypeError records the canonical "{field} is not a valid {type}." error.
// When typ is empty the node's first declared type is used.
func (f *ValidationField) AddTypeError(typ string) {
	if typ == "" {
		if ts := f.Types(); len(ts) > 0 {
			typ = ts[0]
		}
	}
	f.AddError(CodeInvalidType, WithParam("type", typ))
}

// Sparse reports whether the active pass is sparse.
func (f *ValidationField) Sparse() bool { return f.opt.Sparse }

// Request reports whether the active pass validates a request body.
func (f *ValidationField) Request() bool { return f.opt.Request }

// Response reports whether the active pass validates a response body.
func (f *ValidationField) Response() bool { return f.opt.Response }

// child returns a fresh context for a nested node, inheriting mode flags.
func (f *ValidationField) child(node map[string]any, name string) *ValidationField {
	return &ValidationField{validation: f.validation, node: node, name: name, opt: f.opt}
}

// scratch returns a context sharing the node and name but writing into a
// throwaway collector, used for union branch trials and droppable elements.
func (f *ValidationField) scratch() (*ValidationField, *Validation) {
	v := NewValidation()
	return &ValidationField{validation: v, node: f.node, name: f.name, opt: f.opt}, v
}
