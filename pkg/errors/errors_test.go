package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeStageNotFound, "stage %q not found", "deploy")

	if err.Code != ErrCodeStageNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStageNotFound)
	}
	if want := `STAGE_NOT_FOUND: stage "deploy" not found`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("toml: line 3: expected '='")
	err := Wrap(ErrCodeInvalidConfig, cause, "decode config")

	if want := "INVALID_CONFIG: decode config: toml: line 3: expected '='"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestCodeLookup(t *testing.T) {
	boxes := New(ErrCodeInvalidBoxes, "box n3 has negative width")
	tests := []struct {
		name    string
		err     error
		code    Code
		is      bool
		message string
	}{
		{"direct", boxes, ErrCodeInvalidBoxes, true, "box n3 has negative width"},
		{"other code", boxes, ErrCodeInvalidScale, false, "box n3 has negative width"},
		{"fmt wrapped", fmt.Errorf("route: %w", boxes), ErrCodeInvalidBoxes, true, "box n3 has negative width"},
		{"outer code wins", Wrap(ErrCodeCache, boxes, "read route"), ErrCodeCache, true, "read route"},
		{"plain", errors.New("plain error"), "", false, "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.is {
				t.Errorf("Is(%s) = %v, want %v", tt.code, got, tt.is)
			}
			if tt.is {
				if got := GetCode(tt.err); got != tt.code {
					t.Errorf("GetCode() = %v, want %v", got, tt.code)
				}
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	if Is(nil, ErrCodeInvalidInput) || GetCode(nil) != "" {
		t.Error("nil error should carry no code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid workflow", New(ErrCodeInvalidWorkflow, "bad"), http.StatusBadRequest},
		{"invalid scale", New(ErrCodeInvalidScale, "bad"), http.StatusBadRequest},
		{"stage not found", New(ErrCodeStageNotFound, "missing"), http.StatusNotFound},
		{"node not found", fmt.Errorf("collapse: %w", New(ErrCodeNodeNotFound, "missing")), http.StatusNotFound},
		{"unsupported", New(ErrCodeUnsupported, "nope"), http.StatusNotImplemented},
		{"invalid config", New(ErrCodeInvalidConfig, "server-side"), http.StatusInternalServerError},
		{"wrapped cache", Wrap(ErrCodeCache, errors.New("down"), "get"), http.StatusInternalServerError},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
