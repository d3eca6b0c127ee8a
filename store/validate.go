// ABOUTME: JSON Schema for the persisted snapshot document
// ABOUTME: Stored values that fail this schema are treated as absent
package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const snapshotSchemaURL = "https://closex.local/schemas/snapshot.schema.json"

const snapshotSchema = `{
  "type": "object",
  "required": ["contacts", "opportunities", "tasks", "lastSync"],
  "properties": {
    "contacts": {"type": "object", "additionalProperties": {"$ref": "#/$defs/contact"}},
    "opportunities": {"type": "object", "additionalProperties": {"$ref": "#/$defs/opportunity"}},
    "tasks": {"type": "object", "additionalProperties": {"$ref": "#/$defs/task"}},
    "lastSync": {"type": "number", "minimum": 0}
  },
  "$defs": {
    "strings": {"type": ["array", "null"], "items": {"type": "string"}},
    "contact": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "lead": {"type": "string"},
        "emails": {"$ref": "#/$defs/strings"},
        "phones": {"$ref": "#/$defs/strings"}
      }
    },
    "opportunity": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "value": {"type": "string"},
        "status": {"type": "string"},
        "closeDate": {"type": "string"}
      }
    },
    "task": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string"},
        "description": {"type": "string"},
        "dueDate": {"type": "string"},
        "assignee": {"type": "string"},
        "isComplete": {"type": "boolean"}
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func snapshotValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchema)); err != nil {
			compileErr = fmt.Errorf("snapshot schema load failed: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(snapshotSchemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("snapshot schema compile failed: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}
