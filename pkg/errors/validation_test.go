package errors

import (
	"testing"
)

func TestValidateInputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		exts    []string
		wantErr bool
	}{
		{"yaml", "pipeline.yaml", []string{".yaml", ".yml", ".json"}, false},
		{"json upper case ext", "pipeline.JSON", []string{".yaml", ".json"}, false},
		{"no ext filter", "boxes", nil, false},

		{"empty", "", nil, true},
		{"too long", string(make([]byte, 2000)), nil, true},
		{"null byte", "foo\x00bar.json", nil, true},
		{"newline", "foo\nbar.json", nil, true},
		{"wrong ext", "pipeline.toml", []string{".yaml", ".json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputPath(tt.input, tt.exts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateInputPath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "build", false},
		{"underscore prefix", "_build", false},
		{"dollar", "build$1", false},
		{"digits", "stage2", false},

		{"empty", "", true},
		{"leading digit", "2stage", true},
		{"dash", "my-stage", true},
		{"space", "my stage", true},
		{"dot", "a.b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
