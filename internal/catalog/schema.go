package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"triage-service/internal/domain"
)

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "questions"],
  "properties": {
    "id": {"type": "string", "pattern": "^[a-z0-9][a-z0-9_-]*$"},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "fork": {
      "type": "object",
      "required": ["question", "branches"],
      "properties": {
        "question": {"type": "string", "minLength": 1},
        "branches": {
          "type": "object",
          "minProperties": 1,
          "additionalProperties": {"type": "string", "minLength": 1}
        }
      },
      "additionalProperties": false
    },
    "levels": {
      "type": "object",
      "propertyNames": {"enum": ["A", "B", "C", "D"]},
      "additionalProperties": {
        "type": "object",
        "required": ["classification", "destination"],
        "properties": {
          "classification": {"type": "string"},
          "destination": {"type": "string"},
          "message": {"type": "string"}
        },
        "additionalProperties": false
      }
    },
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "text", "type", "level"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "text": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "type": {"enum": ["boolean", "select", "number", "text", "info", "branch"]},
          "options": {"type": "array", "items": {"type": "string"}},
          "level": {"enum": ["A", "B", "C", "D", "INFO", "BRANCH"]},
          "condition": {"$ref": "#/definitions/stringOrList"},
          "stopOnTrigger": {"type": "boolean"},
          "dependsOn": {"type": "string"},
          "showIf": {"$ref": "#/definitions/stringOrList"},
          "branch": {"type": "string"},
          "block": {"type": "integer", "minimum": 0},
          "subBlock": {"type": "string"}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false,
  "definitions": {
    "stringOrList": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}, "minItems": 1}
      ]
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// validateShape checks a decoded document (JSON bytes or a generic YAML
// value) against the catalog JSON schema.
func validateShape(doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, doc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidCatalog, strings.Join(msgs, "; "))
}
