package coerce

import (
	"context"
	"sort"
	"strings"
)

// validateObject validates map-shaped input. Without declared properties the
// input passes through copied; with properties the walk whitelists, defaults,
// and recursively validates each declared name.
func (s *Schema) validateObject(ctx context.Context, value any, f *ValidationField) (any, error) {
	src, ok := toStringMap(value)
	if !ok {
		f.AddTypeError("object")
		return invalidValue, nil
	}
	rawProps, ok := f.node["properties"].(map[string]any)
	if !ok {
		out := make(map[string]any, len(src))
		for k, v := range src {
			out[k] = v
		}
		return out, nil
	}

	required := map[string]bool{}
	for _, r := range stringList(f.node["required"]) {
		required[r] = true
	}

	// Schema property names match input keys case-insensitively; the clean
	// output always carries the canonical-cased schema name. An exact-case
	// input key wins; colliding keys otherwise resolve to the
	// lexicographically smallest so the match is deterministic.
	index := make(map[string]string, len(src))
	for k := range src {
		lk := strings.ToLower(k)
		if cur, dup := index[lk]; !dup || k < cur {
			index[lk] = k
		}
	}
	consumed := make(map[string]bool, len(src))

	names := make([]string, 0, len(rawProps))
	for name := range rawProps {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any, len(names))
	for _, name := range names {
		node, sub := nodeForms(rawProps[name])
		childName := joinPath(f.name, name)

		// Mode-based hiding: the property behaves as absent, and a matching
		// input key is consumed rather than flagged extraneous.
		if (f.opt.Request && boolAttr(node, "readOnly")) ||
			(f.opt.Response && boolAttr(node, "writeOnly")) {
			if key, ok := matchKey(src, index, name); ok {
				consumed[key] = true
			}
			continue
		}

		inputKey, present := matchKey(src, index, name)
		if present {
			consumed[inputKey] = true
		}

		if !present {
			if f.opt.Sparse {
				continue
			}
			if def, ok := node["default"]; ok {
				out[name] = def
				continue
			}
			if required[name] {
				f.validation.AddError(childName, CodeRequired)
			}
			continue
		}

		val := src[inputKey]
		nullable := containsString(typeList(node["type"]), "null")
		types := typeList(node["type"])
		isStringProp := len(types) == 1 && types[0] == "string"

		// Null and empty string read as "absent" on non-nullable properties,
		// except that the empty string stays meaningful for pure strings.
		if val == nil && !nullable && sub == nil {
			if required[name] {
				f.validation.AddError(childName, CodeRequired)
			}
			continue
		}
		if str, isStr := val.(string); isStr && str == "" && !nullable && !isStringProp && sub == nil {
			if required[name] {
				f.validation.AddError(childName, CodeRequired)
			}
			continue
		}

		var res any
		var err error
		if sub != nil {
			cf := f.child(nil, childName)
			res, err = s.delegate(ctx, val, cf, sub)
		} else {
			cf := f.child(node, childName)
			res, err = s.validateField(ctx, val, cf)
		}
		if err != nil {
			return nil, err
		}
		if !IsInvalid(res) {
			out[name] = res
		}
	}

	var extras []string
	for k := range src {
		if !consumed[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	if len(extras) > 0 {
		switch {
		case s.flags&FlagExtraPropertyException != 0:
			f.AddError(CodeExtraProperty, WithParam("properties", strings.Join(extras, ", ")))
		case s.flags&FlagExtraPropertyNotice != 0:
			s.diag.Warnf("extraneous properties at %q: %s", f.name, strings.Join(extras, ", "))
		}
	}
	return out, nil
}

// matchKey resolves a property name against the input, preferring an
// exact-case key over the case-insensitive index.
func matchKey(src map[string]any, index map[string]string, name string) (string, bool) {
	if _, ok := src[name]; ok {
		return name, true
	}
	key, ok := index[strings.ToLower(name)]
	return key, ok
}

// nodeForms splits a property entry into its map node and, when the entry is
// an embedded sub-schema, the *Schema to delegate to.
func nodeForms(raw any) (map[string]any, *Schema) {
	switch t := raw.(type) {
	case map[string]any:
		return t, nil
	case *Schema:
		return t.def, t
	default:
		return nil, nil
	}
}

func boolAttr(node map[string]any, key string) bool {
	b, _ := node[key].(bool)
	return b
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// toStringMap accepts map-shaped input, normalizing map[any]any containers
// (YAML decoding) into the canonical map[string]any form.
func toStringMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}
