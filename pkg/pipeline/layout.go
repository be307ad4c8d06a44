package pipeline

import (
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/route"
)

// =============================================================================
// Placement and Routing
// =============================================================================

// Route places the nodes and routes every link between them.
//
// With opts.Boxes set, the boxes are taken as measured on screen at
// opts.Scale and no placement is computed. Otherwise the built-in flow
// placement stands in for a renderer and is zoomed to opts.Scale before
// routing, the same way the interactive diagram previews. Either way the
// returned boxes and paths are normalized to scale 1.
func Route(nodes []*graph.Node, opts Options) Routed {
	opts.SetRouteDefaults()
	collapsed := opts.CollapsedSet()

	var out Routed
	var query layout.BoxQuery
	if opts.Boxes != nil {
		query = opts.Boxes
		out.Boxes = normalize(opts.Boxes, opts.Scale)
	} else {
		out.Placement = layout.Flow(nodes,
			layout.WithSpacing(opts.Spacing),
			layout.WithCollapsed(collapsed),
			layout.WithCreateTerminal(opts.Editable),
		)
		out.Boxes = out.Placement.Boxes
		query = layout.Zoom(out.Placement.Boxes, opts.Scale)
	}

	out.Paths = route.Route(nodes, route.Context{
		Query:     query,
		Scale:     opts.Scale,
		Editable:  opts.Editable,
		Collapsed: collapsed,
		Geometry:  opts.Geometry,
		Logger:    opts.Logger,
	})
	return out
}

// Size returns the drawing size of a routed result: the placement's when
// there is one, else the lower-right corner of the furthest box.
func (r Routed) Size() (width, height float64) {
	if r.Placement.Width > 0 || r.Placement.Height > 0 {
		return r.Placement.Width, r.Placement.Height
	}
	for _, b := range r.Boxes {
		width = max(width, b.Right)
		height = max(height, b.Bottom)
	}
	return width, height
}

func normalize(boxes layout.MapQuery, scale float64) layout.MapQuery {
	out := make(layout.MapQuery, len(boxes))
	for id, b := range boxes {
		out[id] = layout.Box{
			NodeID: b.NodeID,
			Left:   route.Scaled(b.Left, scale),
			Top:    route.Scaled(b.Top, scale),
			Right:  route.Scaled(b.Right, scale),
			Bottom: route.Scaled(b.Bottom, scale),
		}
	}
	return out
}
