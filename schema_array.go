package coerce

// SchemaArray returns the definition in fully serialized canonical form:
// embedded sub-schemas are flattened into plain nodes and the internal
// pseudo-types are expanded the way they travel on the wire ("timestamp"
// becomes integer/timestamp, "datetime" becomes string/date-time).
func (s *Schema) SchemaArray() map[string]any {
	return schemaArrayNode(s.def)
}

func schemaArrayNode(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		out[k] = v
	}

	switch t := node["type"].(type) {
	case string:
		typ, fmtName := expandPseudoType(t)
		out["type"] = typ
		if fmtName != "" {
			if _, has := out["format"]; !has {
				out["format"] = fmtName
			}
		}
	case []any:
		mapped := make([]any, len(t))
		for i, raw := range t {
			if str, ok := raw.(string); ok {
				typ, _ := expandPseudoType(str)
				mapped[i] = typ
			} else {
				mapped[i] = raw
			}
		}
		out["type"] = mapped
	}

	if props, ok := node["properties"].(map[string]any); ok {
		np := make(map[string]any, len(props))
		for name, raw := range props {
			np[name] = schemaArrayChild(raw)
		}
		out["properties"] = np
	}
	if items := node["items"]; items != nil {
		out["items"] = schemaArrayChild(items)
	}
	if oneOf, ok := node["oneOf"].([]any); ok {
		no := make([]any, len(oneOf))
		for i, raw := range oneOf {
			no[i] = schemaArrayChild(raw)
		}
		out["oneOf"] = no
	}
	return out
}

func schemaArrayChild(raw any) any {
	switch t := raw.(type) {
	case map[string]any:
		return schemaArrayNode(t)
	case *Schema:
		return t.SchemaArray()
	default:
		return raw
	}
}

func expandPseudoType(t string) (typ, format string) {
	switch t {
	case "timestamp":
		return "integer", "timestamp"
	case "datetime":
		return "string", "date-time"
	}
	return t, ""
}
