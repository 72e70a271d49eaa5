package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildPropertiesJSONSchema returns the JSON-Schema (draft 2020-12 subset) for
// the properties-extraction response: a flat array of property records. Used
// locally to validate completion output before the classifier consumes it.
func BuildPropertiesJSONSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"category": map[string]any{
					"type": "string",
					"enum": []string{"chemical", "material", "other"},
				},
				"property": map[string]any{"type": "string", "minLength": 1},
				"value":    map[string]any{"type": "string"},
				"unit":     map[string]any{"type": "string"},
				"notes":    map[string]any{"type": "string"},
			},
			"required": []string{"category", "property", "value"},
		},
	}
}

// ValidateJSONAgainstSchema validates raw JSON bytes against a schema given as
// a generic map.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ParseProperties validates and decodes a properties-extraction response.
func ParseProperties(raw []byte) ([]ExtractedProperty, error) {
	if err := ValidateJSONAgainstSchema(BuildPropertiesJSONSchema(), raw); err != nil {
		return nil, err
	}
	var props []ExtractedProperty
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return props, nil
}
