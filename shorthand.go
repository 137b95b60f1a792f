package coerce

import (
	"sort"
	"strings"
)

// FromShorthand compiles the compact "name:type?" definition syntax into a
// canonical object schema. Keys declare a property name, an optional
// pipe-separated type alias list, and a trailing "?" marking the property
// optional (properties are required by default). Values recurse structurally:
// a map is a nested object, a one-element slice is an array of that element
// schema, a string is a type alias list, and nil falls back to the key's
// types (or "string").
//
//	s, _ := coerce.FromShorthand(map[string]any{
//	    "id:int":      nil,
//	    "name":        "string",
//	    "tags:array?": []any{"string"},
//	    "meta?":       map[string]any{"plan:string?": nil},
//	})
//
// The shorthand is a one-way compiler into the canonical node model; it
// carries no runtime semantics of its own.
func FromShorthand(def map[string]any) (*Schema, error) {
	node, err := shorthandObject(def)
	if err != nil {
		return nil, err
	}
	return New(node)
}

var typeAliases = map[string]string{
	"bool":      "boolean",
	"boolean":   "boolean",
	"int":       "integer",
	"integer":   "integer",
	"float":     "number",
	"double":    "number",
	"number":    "number",
	"str":       "string",
	"string":    "string",
	"ts":        "timestamp",
	"timestamp": "timestamp",
	"date":      "datetime",
	"datetime":  "datetime",
	"null":      "null",
	"object":    "object",
	"array":     "array",
}

func shorthandObject(def map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(def))
	for k := range def {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make(map[string]any, len(keys))
	var required []string
	for _, key := range keys {
		name, types, optional, err := splitShorthandKey(key)
		if err != nil {
			return nil, err
		}
		if sub, ok := def[key].(*Schema); ok {
			props[name] = sub
		} else {
			node, err := shorthandNode(name, types, def[key])
			if err != nil {
				return nil, err
			}
			props[name] = node
		}
		if !optional {
			required = append(required, name)
		}
	}
	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		sort.Strings(required)
		out["required"] = toAnySlice(required)
	}
	return out, nil
}

func splitShorthandKey(key string) (name string, types []string, optional bool, err error) {
	spec := key
	if strings.HasSuffix(spec, "?") {
		optional = true
		spec = spec[:len(spec)-1]
	}
	name = spec
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		name = spec[:i]
		types, err = aliasList(spec[i+1:])
		if err != nil {
			return "", nil, false, schemaErrorf("shorthand key %q: %v", key, err)
		}
	}
	if name == "" {
		return "", nil, false, schemaErrorf("empty property name in shorthand key %q", key)
	}
	return name, types, optional, nil
}

func aliasList(spec string) ([]string, error) {
	parts := strings.Split(spec, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t, ok := typeAliases[strings.TrimSpace(p)]
		if !ok {
			return nil, schemaErrorf("unknown type alias %q", p)
		}
		out = append(out, t)
	}
	return out, nil
}

func shorthandNode(name string, types []string, val any) (map[string]any, error) {
	switch v := val.(type) {
	case nil:
		if len(types) == 0 {
			types = []string{"string"}
		}
		return typeNode(types), nil
	case string:
		vtypes, err := aliasList(v)
		if err != nil {
			return nil, err
		}
		if len(types) > 0 && !sameTypeSet(types, vtypes) {
			return nil, schemaErrorf("conflicting types for %q: key says %v, value says %v", name, types, vtypes)
		}
		return typeNode(vtypes), nil
	case map[string]any:
		if _, explicit := v["type"]; explicit {
			// explicit canonical node; the key's types, when given, must agree
			if len(types) > 0 && !sameTypeSet(types, typeList(v["type"])) {
				return nil, schemaErrorf("conflicting types for %q: key says %v, node says %v", name, types, v["type"])
			}
			return v, nil
		}
		if len(types) > 0 && !containsString(types, "object") {
			return nil, schemaErrorf("shorthand for %q declares %v but the value is an object", name, types)
		}
		return shorthandObject(v)
	case []any:
		if len(types) > 0 && !containsString(types, "array") {
			return nil, schemaErrorf("shorthand for %q declares %v but the value is an array", name, types)
		}
		if len(v) != 1 {
			return nil, schemaErrorf("array shorthand for %q must hold exactly one element schema", name)
		}
		item, err := shorthandNode(name, nil, v[0])
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": item}, nil
	default:
		return nil, schemaErrorf("unsupported shorthand value %T for %q", val, name)
	}
}

func typeNode(types []string) map[string]any {
	if len(types) == 1 {
		return map[string]any{"type": types[0]}
	}
	return map[string]any{"type": toAnySlice(types)}
}

func sameTypeSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, t := range a {
		if !containsString(b, t) {
			return false
		}
	}
	return true
}
