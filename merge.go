package coerce

// Merge deep-merges other's definition into s. Conflicting scalar attributes
// are overwritten by other, property sets are always merged, and numeric-
// indexed attributes (enum, oneOf) are unioned with de-duplication. The
// "required" list is recomputed so only newly-introduced property names bring
// in their required-ness; an existing property never becomes required by
// accident. Not safe to call while Validate runs concurrently.
func (s *Schema) Merge(other *Schema) *Schema {
	if other == nil {
		return s
	}
	mergeNode(s.def, other.def)
	s.mu.Lock()
	s.sparse = nil
	s.mu.Unlock()
	return s
}

func mergeNode(dst, src map[string]any) {
	pre := map[string]bool{}
	if dp, ok := dst["properties"].(map[string]any); ok {
		for name := range dp {
			pre[name] = true
		}
	}

	for k, v := range src {
		switch k {
		case "required":
			// recomputed below against the pre-merge property set
		case "properties":
			sp, ok := v.(map[string]any)
			if !ok {
				continue
			}
			dp, ok := dst["properties"].(map[string]any)
			if !ok {
				dp = map[string]any{}
				dst["properties"] = dp
			}
			for name, raw := range sp {
				if cur, ok := dp[name].(map[string]any); ok {
					if rm, ok := raw.(map[string]any); ok {
						mergeNode(cur, rm)
						continue
					}
				}
				dp[name] = raw
			}
		case "enum", "oneOf":
			dst[k] = unionSlices(dst[k], v)
		default:
			if dv, ok := dst[k].(map[string]any); ok {
				if sv, ok := v.(map[string]any); ok {
					mergeNode(dv, sv)
					continue
				}
			}
			dst[k] = v
		}
	}

	if srcRequired := stringList(src["required"]); len(srcRequired) > 0 {
		cur := stringList(dst["required"])
		for _, name := range srcRequired {
			if pre[name] && !containsString(cur, name) {
				continue
			}
			if !containsString(cur, name) {
				cur = append(cur, name)
			}
		}
		if len(cur) > 0 {
			dst["required"] = toAnySlice(cur)
		}
	}
}

// Add treats s as authoritative and only fills in attributes it lacks.
// Brand-new properties from other are pulled in only when addProperties is
// set, carrying their required-ness with them.
func (s *Schema) Add(other *Schema, addProperties bool) *Schema {
	if other == nil {
		return s
	}
	addNode(s.def, other.def, addProperties)
	s.mu.Lock()
	s.sparse = nil
	s.mu.Unlock()
	return s
}

func addNode(dst, src map[string]any, addProps bool) {
	pre := map[string]bool{}
	if dp, ok := dst["properties"].(map[string]any); ok {
		for name := range dp {
			pre[name] = true
		}
	}

	for k, v := range src {
		switch k {
		case "required":
			// handled below
		case "properties":
			sp, ok := v.(map[string]any)
			if !ok {
				continue
			}
			dp, ok := dst["properties"].(map[string]any)
			if !ok {
				if addProps {
					np := make(map[string]any, len(sp))
					for name, raw := range sp {
						np[name] = raw
					}
					dst["properties"] = np
				}
				continue
			}
			for name, raw := range sp {
				if cur, ok := dp[name].(map[string]any); ok {
					if rm, ok := raw.(map[string]any); ok {
						addNode(cur, rm, addProps)
					}
					continue
				}
				if _, exists := dp[name]; !exists && addProps {
					dp[name] = raw
				}
			}
		case "enum", "oneOf":
			if _, ok := dst[k]; !ok {
				dst[k] = unionSlices(nil, v)
			}
		default:
			if _, ok := dst[k]; !ok {
				dst[k] = v
				continue
			}
			if dv, ok := dst[k].(map[string]any); ok {
				if sv, ok := v.(map[string]any); ok {
					addNode(dv, sv, addProps)
				}
			}
		}
	}

	if !addProps {
		return
	}
	if srcRequired := stringList(src["required"]); len(srcRequired) > 0 {
		cur := stringList(dst["required"])
		for _, name := range srcRequired {
			if pre[name] {
				continue
			}
			if !containsString(cur, name) {
				cur = append(cur, name)
			}
		}
		if len(cur) > 0 {
			dst["required"] = toAnySlice(cur)
		}
	}
}

// unionSlices concatenates two list attributes dropping duplicate values.
func unionSlices(a, b any) []any {
	out := []any{}
	appendUnique := func(list []any) {
		for _, v := range list {
			dup := false
			for _, x := range out {
				if looseEqual(x, v) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, v)
			}
		}
	}
	if la, ok := a.([]any); ok {
		appendUnique(la)
	}
	if lb, ok := b.([]any); ok {
		appendUnique(lb)
	}
	return out
}
