package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/stagegraph/pkg/workflow"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		name     string
		nodes    int
		links    int
		drawable int
		cached   bool
		want     []string
		notWant  []string
	}{
		{"all drawn", 4, 5, 5, false, []string{"4 nodes", "5 links", "fresh"}, []string{"drawn"}},
		{"missing boxes", 4, 5, 3, true, []string{"3/5 links drawn", "cached"}, nil},
		{"build only", 2, 0, 0, false, []string{"2 nodes"}, []string{"links"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdout(t)
			printStats(tt.nodes, tt.links, tt.drawable, tt.cached)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output %q should not contain %q", out, w)
				}
			}
		})
	}
}

func TestPrintViolations(t *testing.T) {
	buf := captureStdout(t)
	printViolations(nil)
	if buf.Len() != 0 {
		t.Errorf("no violations should print nothing, got %q", buf.String())
	}

	errs := workflow.ErrorMap{}
	errs.Add("pipeline.stages.0.stage", "missing property 'name'")
	errs.Add("pipeline.stages.1.stage", "missing property 'name'")
	printViolations(errs)

	out := buf.String()
	if !strings.Contains(out, "2 schema violations") {
		t.Errorf("output %q should count violations", out)
	}
	if strings.Index(out, "stages.0") > strings.Index(out, "stages.1") {
		t.Errorf("violations should be sorted by path: %q", out)
	}
}

func TestPrintFileAndNextStep(t *testing.T) {
	buf := captureStdout(t)
	printFile("out/ci.svg")
	printNextStep("Render", "stagegraph render ci.yaml")
	out := buf.String()
	if !strings.Contains(out, "out/ci.svg") || !strings.Contains(out, "stagegraph render ci.yaml") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	buf := captureStdout(t)
	root := New(&bytes.Buffer{}, LogError).RootCommand()
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "stagegraph") {
		t.Error("bash completion should mention the program name")
	}
}
