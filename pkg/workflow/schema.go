package workflow

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://stagegraph.dev/schemas/workflow.json"

// workflowSchemaJSON is the JSON Schema for workflow documents.
const workflowSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://stagegraph.dev/schemas/workflow.json",
  "type": "object",
  "properties": {
    "pipeline": {
      "type": "object",
      "properties": {
        "identifier": { "$ref": "#/$defs/identifier" },
        "name": { "type": "string" },
        "stages": { "$ref": "#/$defs/stages" }
      }
    },
    "stages": { "$ref": "#/$defs/stages" },
    "steps": { "$ref": "#/$defs/steps" }
  },
  "$defs": {
    "identifier": {
      "type": "string",
      "pattern": "^[a-zA-Z_][0-9a-zA-Z_$]*$"
    },
    "when": {
      "type": "object",
      "properties": {
        "pipelineStatus": { "enum": ["Success", "Failure", "All"] },
        "stageStatus": { "enum": ["Success", "Failure", "All"] },
        "condition": { "type": "string" }
      }
    },
    "template": {
      "type": "object",
      "required": ["templateRef"],
      "properties": {
        "templateRef": { "type": "string", "minLength": 1 },
        "versionLabel": { "type": "string" }
      }
    },
    "strategy": {
      "type": "object",
      "minProperties": 1
    },
    "stages": {
      "type": "array",
      "items": { "$ref": "#/$defs/stageElement" }
    },
    "stageElement": {
      "type": "object",
      "properties": {
        "stage": { "$ref": "#/$defs/stage" },
        "parallel": { "$ref": "#/$defs/stages" }
      }
    },
    "stage": {
      "type": "object",
      "required": ["identifier", "name"],
      "properties": {
        "identifier": { "$ref": "#/$defs/identifier" },
        "name": { "type": "string", "minLength": 1 },
        "type": { "type": "string" },
        "when": { "$ref": "#/$defs/when" },
        "strategy": { "$ref": "#/$defs/strategy" },
        "template": { "$ref": "#/$defs/template" },
        "spec": {
          "type": "object",
          "properties": {
            "execution": {
              "type": "object",
              "properties": { "steps": { "$ref": "#/$defs/steps" } }
            },
            "serviceDependencies": {
              "type": "array",
              "items": { "$ref": "#/$defs/serviceDependency" }
            }
          }
        }
      }
    },
    "steps": {
      "type": "array",
      "items": { "$ref": "#/$defs/stepElement" }
    },
    "stepElement": {
      "type": "object",
      "properties": {
        "step": { "$ref": "#/$defs/step" },
        "parallel": { "$ref": "#/$defs/steps" },
        "stepGroup": { "$ref": "#/$defs/stepGroup" }
      }
    },
    "step": {
      "type": "object",
      "required": ["identifier", "name", "type"],
      "properties": {
        "identifier": { "$ref": "#/$defs/identifier" },
        "name": { "type": "string", "minLength": 1 },
        "type": { "type": "string", "minLength": 1 },
        "when": { "$ref": "#/$defs/when" },
        "strategy": { "$ref": "#/$defs/strategy" },
        "template": { "$ref": "#/$defs/template" }
      }
    },
    "stepGroup": {
      "type": "object",
      "required": ["identifier", "name"],
      "properties": {
        "identifier": { "$ref": "#/$defs/identifier" },
        "name": { "type": "string", "minLength": 1 },
        "steps": { "$ref": "#/$defs/steps" },
        "when": { "$ref": "#/$defs/when" },
        "strategy": { "$ref": "#/$defs/strategy" },
        "template": { "$ref": "#/$defs/template" }
      }
    },
    "serviceDependency": {
      "type": "object",
      "required": ["identifier"],
      "properties": {
        "identifier": { "$ref": "#/$defs/identifier" },
        "name": { "type": "string" },
        "type": { "type": "string" }
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func workflowSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(workflowSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal workflow schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add workflow schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// Validate checks a JSON document against the workflow schema and returns
// the violations keyed by dot-separated instance path. A nil error with an
// empty map means the document is valid.
func Validate(raw []byte) (ErrorMap, error) {
	sch, err := workflowSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal workflow: %w", err)
	}

	errs := ErrorMap{}
	verr, ok := sch.Validate(doc).(*jsonschema.ValidationError)
	if !ok {
		return errs, nil
	}
	collectViolations(verr, errs)
	return errs, nil
}

func collectViolations(verr *jsonschema.ValidationError, errs ErrorMap) {
	if len(verr.Causes) == 0 {
		errs.Add(strings.Join(verr.InstanceLocation, "."), leafMessage(verr.Error()))
		return
	}
	for _, cause := range verr.Causes {
		collectViolations(cause, errs)
	}
}

// leafMessage keeps the last line of a validation error, which holds the
// violation itself without the schema header.
func leafMessage(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimPrefix(strings.TrimSpace(lines[len(lines)-1]), "- ")
}
