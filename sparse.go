package coerce

import "reflect"

// WithSparse returns a structurally-equivalent schema with every "required"
// list stripped at every nesting level, for PATCH-style partial validation.
// The result is memoized per schema; shared or cyclic sub-nodes sparsify to
// one shared instance, not divergent copies, and $ref targets resolve
// sparsified during validation.
func (s *Schema) WithSparse() *Schema {
	s.mu.Lock()
	if s.sparse != nil {
		sp := s.sparse
		s.mu.Unlock()
		return sp
	}
	sp := &Schema{
		flags:      s.flags,
		filters:    s.filters,
		validators: s.validators,
		lookup:     s.lookup,
		refBase:    s.refBase,
		diag:       s.diag,
		sparseMode: true,
	}
	sp.sparse = sp
	s.sparse = sp
	// publish the memo entry before building the definition so mutually
	// embedded schemas re-entering WithSparse get this instance back
	// instead of deadlocking on mu
	s.mu.Unlock()
	sp.def = sparseNode(s.def, map[uintptr]map[string]any{})
	return sp
}

// sparseNode copies a node dropping "required", keyed by node identity so a
// node reachable twice (or cyclically) maps to a single sparse copy. The memo
// entry is registered before recursing, which is what terminates cycles.
func sparseNode(node map[string]any, memo map[uintptr]map[string]any) map[string]any {
	key := reflect.ValueOf(node).Pointer()
	if sp, ok := memo[key]; ok {
		return sp
	}
	out := make(map[string]any, len(node))
	memo[key] = out
	for k, v := range node {
		if k == "required" {
			continue
		}
		out[k] = v
	}
	if props, ok := node["properties"].(map[string]any); ok {
		np := make(map[string]any, len(props))
		for name, raw := range props {
			np[name] = sparseChild(raw, memo)
		}
		out["properties"] = np
	}
	if items := node["items"]; items != nil {
		out["items"] = sparseChild(items, memo)
	}
	if oneOf, ok := node["oneOf"].([]any); ok {
		no := make([]any, len(oneOf))
		for i, raw := range oneOf {
			no[i] = sparseChild(raw, memo)
		}
		out["oneOf"] = no
	}
	return out
}

func sparseChild(raw any, memo map[uintptr]map[string]any) any {
	switch t := raw.(type) {
	case map[string]any:
		return sparseNode(t, memo)
	case *Schema:
		return t.WithSparse()
	default:
		return raw
	}
}
