package workflow

import (
	"slices"
	"strings"
)

// ErrorMap holds validation messages keyed by dot-separated instance path,
// e.g. "pipeline.stages.0.stage.spec.execution.steps.1.step".
type ErrorMap map[string][]string

// Add appends a message under path.
func (m ErrorMap) Add(path, msg string) {
	m[path] = append(m[path], msg)
}

// HasPrefix reports whether any key starts with prefix. This is a plain
// string prefix test: "pipeline.stages.1" also matches "pipeline.stages.10".
func (m ErrorMap) HasPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	for k := range m {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// Paths returns all keys in sorted order.
func (m ErrorMap) Paths() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the total number of messages.
func (m ErrorMap) Len() int {
	n := 0
	for _, msgs := range m {
		n += len(msgs)
	}
	return n
}
