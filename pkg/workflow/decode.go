package workflow

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stagegraph/pkg/errors"
)

// Format identifies the encoding of a workflow document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Loaded is a decoded document with its schema violations.
type Loaded struct {
	Document *Document
	Errors   ErrorMap
	// JSON is the document normalized to JSON, suitable for hashing.
	JSON []byte
}

// Load normalizes, validates and decodes a workflow document. Schema
// violations do not fail the load; they are reported in Loaded.Errors so the
// diagram can flag the affected nodes.
func Load(data []byte, format Format) (*Loaded, error) {
	raw, err := Normalize(data, format)
	if err != nil {
		return nil, err
	}
	doc, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	errs, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	return &Loaded{Document: doc, Errors: errs, JSON: raw}, nil
}

// LoadFile reads and loads the workflow document at path.
func LoadFile(path string) (*Loaded, error) {
	if err := errors.ValidateInputPath(path, ".json", ".yaml", ".yml"); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "workflow file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Load(data, FormatFromPath(path))
}

// Decode parses a document without schema validation.
func Decode(data []byte, format Format) (*Document, error) {
	raw, err := Normalize(data, format)
	if err != nil {
		return nil, err
	}
	return decodeJSON(raw)
}

// Normalize converts a JSON or YAML document into compact JSON.
func Normalize(data []byte, format Format) ([]byte, error) {
	if format == FormatAuto {
		format = sniff(data)
	}
	switch format {
	case FormatJSON:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON workflow")
		}
		return json.Marshal(v)
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode YAML workflow")
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "convert YAML workflow")
		}
		return out, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported workflow format %q", format)
	}
}

func decodeJSON(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidWorkflow, err, "decode workflow")
	}
	if doc.Pipeline == nil && len(doc.Stages) == 0 && len(doc.Steps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidWorkflow, "document has no pipeline, stages or steps")
	}
	return &doc, nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// StagePath returns the dot path prefix of the document's stage sequence.
func (d *Document) StagePath() string {
	if d.Pipeline != nil {
		return "pipeline.stages"
	}
	return "stages"
}

// FindStage looks up a stage by identifier, searching parallel wrappers too.
// It returns the stage and the dot path of its step sequence.
func (d *Document) FindStage(identifier string) (*Stage, string, error) {
	var walk func(elems []Element, prefix string) (*Stage, string)
	walk = func(elems []Element, prefix string) (*Stage, string) {
		for i, e := range elems {
			p := fmt.Sprintf("%s.%d", prefix, i)
			if e.Stage != nil && e.Stage.Identifier == identifier {
				return e.Stage, p + ".stage.spec.execution.steps"
			}
			if s, sp := walk(e.Parallel, p+".parallel"); s != nil {
				return s, sp
			}
		}
		return nil, ""
	}
	if s, p := walk(d.StageList(), d.StagePath()); s != nil {
		return s, p, nil
	}
	return nil, "", errors.New(errors.ErrCodeStageNotFound, "stage %q not found", identifier)
}
