package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateInputPath validates a workflow or boxes file path given on the
// command line. Only local files with a known extension are accepted.
func ValidateInputPath(path string, exts ...string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if len(exts) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return nil
		}
	}
	return New(ErrCodeInvalidPath, "unsupported file extension %q (want one of %s)", ext, strings.Join(exts, ", "))
}

// identifierRegex matches workflow identifiers: a letter or underscore,
// followed by letters, digits, underscores or dollar signs.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][0-9a-zA-Z_$]{0,127}$`)

// ValidateIdentifier validates a stage, step or step group identifier.
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidWorkflow, "identifier cannot be empty")
	}
	if !identifierRegex.MatchString(id) {
		return New(ErrCodeInvalidWorkflow, "invalid identifier: %q", id)
	}
	return nil
}
