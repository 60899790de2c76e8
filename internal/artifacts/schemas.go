// internal/artifacts/schemas.go
package artifacts

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const encoderSchemaJSON = `{
  "type": "object",
  "required": ["feature"],
  "properties": {
    "feature": {"type": "string", "minLength": 1},
    "classes": {
      "type": "array",
      "minItems": 1,
      "uniqueItems": true,
      "items": {"type": "string"}
    },
    "mapping": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"type": "integer", "minimum": 0}
    }
  },
  "oneOf": [
    {"required": ["classes"]},
    {"required": ["mapping"]}
  ]
}`

const modelSchemaJSON = `{
  "type": "object",
  "required": ["feature_names", "n_features", "classes", "trees"],
  "properties": {
    "estimator": {"type": "string"},
    "feature_names": {"type": "array", "items": {"type": "string"}},
    "n_features": {"type": "integer", "minimum": 1},
    "classes": {"type": "array", "minItems": 2, "items": {"type": "integer"}},
    "trees": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["children_left", "children_right", "feature", "threshold", "value"],
        "properties": {
          "children_left": {"type": "array", "minItems": 1, "items": {"type": "integer"}},
          "children_right": {"type": "array", "minItems": 1, "items": {"type": "integer"}},
          "feature": {"type": "array", "minItems": 1, "items": {"type": "integer"}},
          "threshold": {"type": "array", "minItems": 1, "items": {"type": "number"}},
          "value": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "array", "items": {"type": "number", "minimum": 0}}
          }
        }
      }
    }
  }
}`

var (
	encoderSchema = mustSchema(encoderSchemaJSON)
	modelSchema   = mustSchema(modelSchemaJSON)
)

func mustSchema(doc string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("artifacts: bad embedded schema: %v", err))
	}
	return s
}

func validateDocument(schema *gojsonschema.Schema, doc []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
