package dot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

func seqIDs() graph.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func step(id string) workflow.Element {
	return workflow.Element{Step: &workflow.Step{Identifier: id, Name: id}}
}

func sample() []*graph.Node {
	items := []workflow.Element{
		step("a"),
		{Parallel: []workflow.Element{step("b"), step("c")}},
		{StepGroup: &workflow.StepGroup{Identifier: "g", Name: "Group", Steps: []workflow.Element{step("x"), step("y")}}},
	}
	// a=n1 b=n2 c=n3 g=n4 x=n5 y=n6
	return graph.Build(items, graph.Options{Path: "steps", IDFunc: seqIDs(),
		Statuses: map[string]graph.Status{"a": graph.StatusSuccess}})
}

func TestToDOT(t *testing.T) {
	out := ToDOT(sample(), Options{Editable: true})

	for _, want := range []string{
		`"start" -> "n1";`,
		`"n1" -> "n2";`,
		`"n1" -> "n3";`,
		`"n2" -> "n5";`,
		`"n3" -> "n5";`,
		`"n5" -> "n6";`,
		`"n6" -> "create";`,
		`"create" -> "end";`,
		`subgraph "cluster_n4" {`,
		`label="Group";`,
		`fillcolor="#d7f0d8"`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, `"n4" [`)
}

func TestToDOTCollapsed(t *testing.T) {
	out := ToDOT(sample(), Options{Collapsed: map[string]bool{"n4": true}})

	assert.Contains(t, out, `"n4" [label="Group"`)
	assert.Contains(t, out, `"n2" -> "n4";`)
	assert.Contains(t, out, `"n4" -> "end";`)
	assert.NotContains(t, out, "cluster_n4")
	assert.NotContains(t, out, `"n5"`)
	assert.NotContains(t, out, `"create"`)
}

func TestToDOTEmpty(t *testing.T) {
	out := ToDOT(nil, Options{})
	assert.Contains(t, out, `"start" -> "end";`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestToDOTDetailed(t *testing.T) {
	out := ToDOT(sample()[:1], Options{Detailed: true})
	assert.Contains(t, out, `label="a\nStep\nsteps.0"`)
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	require.NoError(t, err)
	assert.Contains(t, string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
	assert.Contains(t, string(svg), "Group")
}

func TestRenderPNG(t *testing.T) {
	png, err := Render(context.Background(), ToDOT(sample(), Options{}), graphviz.PNG)
	require.NoError(t, err)
	require.True(t, len(png) > 8)
	assert.Equal(t, byte(0x89), png[0])
	assert.Equal(t, byte('P'), png[1])
}

func TestRenderInvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), "digraph {")
	assert.Error(t, err)
}
