package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stagegraph/pkg/graph"
)

func TestFlowSequence(t *testing.T) {
	p := Flow([]*graph.Node{leaf("a"), leaf("b")}, WithCreateTerminal(true))

	assert.Equal(t, Rect(graph.TerminalStart, 40, 62, 20, 20), p.Boxes[graph.TerminalStart])
	assert.Equal(t, Rect("a", 130, 40, 64, 64), p.Boxes["a"])
	assert.Equal(t, Rect("b", 274, 40, 64, 64), p.Boxes["b"])
	assert.Equal(t, Rect(graph.TerminalCreate, 408, 62, 20, 20), p.Boxes[graph.TerminalCreate])
	assert.Equal(t, Rect(graph.TerminalEnd, 468, 62, 20, 20), p.Boxes[graph.TerminalEnd])
	assert.Equal(t, 528.0, p.Width)
	assert.Equal(t, 144.0, p.Height)
}

func TestFlowEmpty(t *testing.T) {
	p := Flow(nil)
	assert.Len(t, p.Boxes, 2)
	_, ok := p.Boxes[graph.TerminalCreate]
	assert.False(t, ok)
	assert.Equal(t, p.Boxes[graph.TerminalStart].CenterY(), p.Boxes[graph.TerminalEnd].CenterY())
}

func TestFlowParallelColumn(t *testing.T) {
	p := Flow([]*graph.Node{leaf("b", leaf("c"))})
	b, c := p.Boxes["b"], p.Boxes["c"]
	assert.Equal(t, b.Left, c.Left)
	assert.Equal(t, b.Bottom+DefaultSpacing().ParallelGap, c.Top)
}

func TestFlowGroup(t *testing.T) {
	nodes := []*graph.Node{group("g", leaf("x"))}

	p := Flow(nodes)
	assert.Equal(t, Rect("g", 100, 40, 206, 152), p.Boxes["g"])
	assert.Equal(t, Rect("x", 171, 74, 64, 64), p.Boxes["x"])
	header, ok := p.Boxes[graph.HeaderID("g")]
	require.True(t, ok)
	assert.Equal(t, 285.0, header.Left)
	assert.Equal(t, 106.0, header.CenterY())
	assert.Equal(t, Dimension{Width: 124, Height: 84, Type: DimensionStepGroup}, p.Dimensions["g"])

	collapsed := Flow(nodes, WithCollapsed(map[string]bool{"g": true}))
	assert.Equal(t, Rect("g", 130, 40, 64, 64), collapsed.Boxes["g"])
	_, ok = collapsed.Boxes["x"]
	assert.False(t, ok)
	_, ok = collapsed.Boxes[graph.HeaderID("g")]
	assert.False(t, ok)
}

func TestFlowMeasuredOverride(t *testing.T) {
	p := Flow([]*graph.Node{leaf("a")}, WithMeasured(Table{"a": {Width: 100, Height: 30}}), WithNodeSize(10, 10))
	assert.Equal(t, 100.0, p.Boxes["a"].Width())
	assert.Equal(t, 30.0, p.Boxes["a"].Height())
	assert.Equal(t, 160.0, p.Dimensions["a"].Width)

	tight := Flow([]*graph.Node{leaf("a")}, WithNodePadding(0))
	assert.Equal(t, Rect("a", 100, 40, 64, 64), tight.Boxes["a"])
}
