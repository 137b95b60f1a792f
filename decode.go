package coerce

import (
	"bytes"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSONBytes decodes a JSON document preserving number fidelity (json.Number),
// so large integers survive until the schema decides their type.
func JSONBytes(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// YAMLBytes decodes a YAML document, normalizing map[any]any containers into
// the engine's canonical map[string]any representation.
func YAMLBytes(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return yamlNormalize(v), nil
}

func yamlNormalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if ks, ok := k.(string); ok {
				out[ks] = yamlNormalize(vv)
			}
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalize(t[i])
		}
		return arr
	default:
		return v
	}
}

// FromJSON builds a Schema from a canonical JSON definition document.
func FromJSON(data []byte) (*Schema, error) {
	v, err := JSONBytes(data)
	if err != nil {
		return nil, schemaErrorf("invalid JSON definition: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, schemaErrorf("JSON definition root must be an object, got %T", v)
	}
	return New(m)
}

// FromYAML builds a Schema from a canonical YAML definition document.
func FromYAML(data []byte) (*Schema, error) {
	v, err := YAMLBytes(data)
	if err != nil {
		return nil, schemaErrorf("invalid YAML definition: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, schemaErrorf("YAML definition root must be an object, got %T", v)
	}
	return New(m)
}
