package render

import (
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/route"
	"github.com/matzehuels/stagegraph/pkg/viewport"
)

// Scene is everything a renderer draws. Boxes are absolute and unscaled;
// the viewport is applied as a transform.
type Scene struct {
	Nodes     []*graph.Node
	Boxes     layout.MapQuery
	Paths     route.Paths
	Width     float64
	Height    float64
	Viewport  viewport.Viewport
	Collapsed map[string]bool
	Editable  bool
}

// NewScene builds a scene from a built-in placement.
func NewScene(nodes []*graph.Node, p layout.Placement, paths route.Paths) Scene {
	return Scene{
		Nodes:    nodes,
		Boxes:    p.Boxes,
		Paths:    paths,
		Width:    p.Width,
		Height:   p.Height,
		Viewport: viewport.Viewport{Scale: 1},
	}
}

// Visible calls fn for every drawn node in sequence order: everything
// except what sits inside a collapsed group.
func (s Scene) Visible(fn func(n, parent *graph.Node)) {
	s.visible(s.Nodes, nil, fn)
}

func (s Scene) visible(nodes []*graph.Node, parent *graph.Node, fn func(n, parent *graph.Node)) {
	for _, n := range nodes {
		for _, m := range n.Members() {
			fn(m, parent)
			if m.IsGroup() && !s.Collapsed[m.ID] {
				s.visible(m.Data.Steps, m, fn)
			}
		}
	}
}
