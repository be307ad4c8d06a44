package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stagegraph/pkg/graph"
)

func leaf(id string, children ...*graph.Node) *graph.Node {
	return &graph.Node{ID: id, Identifier: id, Kind: graph.KindStep, Children: children}
}

func group(id string, steps ...*graph.Node) *graph.Node {
	return &graph.Node{ID: id, Identifier: id, Kind: graph.KindStepGroup, Data: graph.Data{Steps: steps}}
}

func leaves(ids ...string) Table {
	t := Table{}
	for _, id := range ids {
		t[id] = Dimension{Width: 64, Height: 64}
	}
	return t
}

func TestGroupDimension(t *testing.T) {
	sp := DefaultSpacing()
	tests := []struct {
		name  string
		steps []*graph.Node
		dims  Table
		want  Dimension
	}{
		{
			name: "empty",
			want: Dimension{},
		},
		{
			name:  "single leaf",
			steps: []*graph.Node{leaf("a")},
			dims:  leaves("a"),
			want:  Dimension{Width: 64, Height: 84},
		},
		{
			name:  "sequence with parallel column",
			steps: []*graph.Node{leaf("a"), leaf("b", leaf("c"))},
			dims:  leaves("a", "b", "c"),
			want:  Dimension{Width: 148, Height: 268},
		},
		{
			name:  "missing measurements count as zero",
			steps: []*graph.Node{leaf("a"), leaf("b")},
			dims:  leaves("a"),
			want:  Dimension{Width: 84, Height: 84},
		},
		{
			name:  "expanded group child adds chrome",
			steps: []*graph.Node{leaf("g")},
			dims:  Table{"g": {Width: 148, Height: 268, Type: DimensionStepGroup}},
			want:  Dimension{Width: 230, Height: 356},
		},
		{
			name:  "matrix group child",
			steps: []*graph.Node{leaf("g")},
			dims:  Table{"g": {Width: 148, Height: 268, Type: DimensionMatrix}},
			want:  Dimension{Width: 210, Height: 401},
		},
		{
			name:  "collapsed group child",
			steps: []*graph.Node{leaf("g")},
			dims:  Table{"g": {Width: 64, Height: 64, Type: DimensionStepGroup, Collapsed: true}},
			want:  Dimension{Width: 64, Height: 84},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GroupDimension(tt.steps, tt.dims, sp))
		})
	}
}

func TestAggregateNested(t *testing.T) {
	inner := group("g", leaf("a"), leaf("b", leaf("c")))
	outer := group("G", inner)
	nodes := []*graph.Node{leaf("x"), outer}

	table := Aggregate(nodes, leaves("x", "a", "b", "c"), nil, DefaultSpacing())

	assert.Equal(t, Dimension{Width: 148, Height: 268, Type: DimensionStepGroup}, table["g"])
	assert.Equal(t, Dimension{Width: 230, Height: 356, Type: DimensionStepGroup}, table["G"])
	assert.Equal(t, Dimension{Width: 64, Height: 64}, table["x"])
}

func TestAggregateCollapsedAndMatrix(t *testing.T) {
	inner := group("g", leaf("a"))
	outer := group("G", inner)

	table := Aggregate([]*graph.Node{outer}, leaves("a", "g"), map[string]bool{"g": true}, DefaultSpacing())
	assert.Equal(t, Dimension{Width: 64, Height: 64, Type: DimensionStepGroup, Collapsed: true}, table["g"])
	assert.Equal(t, Dimension{Width: 64, Height: 84, Type: DimensionStepGroup}, table["G"])
	_, measuredInner := table["a"]
	assert.False(t, measuredInner)

	m := group("m", leaf("a"))
	m.Data.StrategyType = "matrix"
	table = Aggregate([]*graph.Node{m}, leaves("a"), nil, DefaultSpacing())
	assert.Equal(t, DimensionMatrix, table["m"].Type)
}

func TestAggregateIdempotent(t *testing.T) {
	nodes := []*graph.Node{group("G", group("g", leaf("a")), leaf("b"))}
	measured := leaves("a", "b")
	first := Aggregate(nodes, measured, nil, DefaultSpacing())
	second := Aggregate(nodes, measured, nil, DefaultSpacing())
	assert.Equal(t, first, second)
}

func TestStoreCommit(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("g")
	assert.False(t, ok)

	table := Table{"g": {Width: 10, Height: 20, Type: DimensionStepGroup}}
	s.Commit(table)
	table["g"] = Dimension{}

	d, ok := s.Get("g")
	require.True(t, ok)
	assert.Equal(t, 10.0, d.Width)
	assert.Equal(t, uint64(1), s.Version())

	s.Commit(nil)
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, uint64(2), s.Version())
}
