package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/stagegraph/pkg/errors"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/pipeline"
)

// extensions maps output formats to file extensions.
var extensions = map[string]string{
	pipeline.FormatJSON:     ".json",
	pipeline.FormatSVG:      ".svg",
	pipeline.FormatDOT:      ".dot",
	pipeline.FormatGraphviz: ".graphviz.svg",
	pipeline.FormatPNG:      ".png",
	pipeline.FormatPDF:      ".pdf",
}

// readInput reads a workflow document.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "workflow file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// readBoxes reads boxes keyed by node ID, measured by an external layout
// at the scale given with --scale.
func readBoxes(path string) (layout.MapQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boxes %s: %w", path, err)
	}
	var boxes layout.MapQuery
	if err := json.Unmarshal(data, &boxes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBoxes, err, "decode boxes %s", path)
	}
	for id, b := range boxes {
		if b.NodeID == "" {
			b.NodeID = id
			boxes[id] = b
		}
	}
	return boxes, nil
}

// writeJSONFile writes v as indented JSON.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// writeArtifacts writes each rendered format and returns the written paths
// in format order. A single format is written to output as given; with
// several formats output is a base path and each file gets its extension.
func writeArtifacts(input, output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else if len(formats) > 1 {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return paths, fmt.Errorf("no %s output was rendered", f)
		}
		path := base + extensions[f]
		if output != "" && len(formats) == 1 {
			path = output
		}
		if err := writeFile(path, data); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
