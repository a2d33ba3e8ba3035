package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{RequiredFromJSONSchemaTags: true}
	return r.Reflect(&Config{})
}

// VerifyRequired checks that every field marked required in the reflected schema has a value
func VerifyRequired(cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	schema := GenerateSchema()
	var missing []string
	checkRequired(schema, schema.Definitions, values, "", &missing)
	if len(missing) > 0 {
		return fmt.Errorf("required fields missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// checkRequired walks schema properties following $defs references and collects
// paths of required fields with empty values
func checkRequired(s *jsonschema.Schema, defs jsonschema.Definitions, values map[string]any, prefix string, missing *[]string) {
	s = resolve(s, defs)
	if s == nil {
		return
	}

	for _, name := range s.Required {
		if isEmpty(values[name]) {
			*missing = append(*missing, prefix+name)
		}
	}

	if s.Properties == nil {
		return
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		nested, ok := values[pair.Key].(map[string]any)
		if !ok {
			continue
		}
		checkRequired(pair.Value, defs, nested, prefix+pair.Key+".", missing)
	}
}

func resolve(s *jsonschema.Schema, defs jsonschema.Definitions) *jsonschema.Schema {
	for s != nil && s.Ref != "" {
		name := strings.TrimPrefix(s.Ref, "#/$defs/")
		next, ok := defs[name]
		if !ok {
			return nil
		}
		s = next
	}
	return s
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case bool:
		return !val
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
