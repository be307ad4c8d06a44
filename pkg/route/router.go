package route

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
)

// Context carries everything a routing pass reads besides the tree itself.
type Context struct {
	// Query resolves node boxes.
	Query layout.BoxQuery
	// Container is passed to every box query. Empty means the diagram root.
	Container string
	// Scale is the current viewport zoom. Zero is treated as 1.
	Scale float64
	// Editable adds the create terminal between the last node and end.
	Editable bool
	// NoTerminals routes the tree without start, create and end.
	NoTerminals bool
	// SkipRightPath omits the fan-out of a trailing top-level branch that
	// has nothing to join.
	SkipRightPath bool
	// Collapsed lists groups rendered collapsed.
	Collapsed map[string]bool
	// Geometry overrides DefaultGeometry when non-zero.
	Geometry Geometry
	Logger   *log.Logger
}

// Route computes the paths of every edge in the tree: sequential links,
// parallel fan-in and fan-out, group interiors with their boundary edges and,
// unless disabled, the terminal links.
func Route(nodes []*graph.Node, ctx Context) Paths {
	r := &router{
		ctx:   ctx,
		geo:   ctx.Geometry,
		ix:    graph.NewIndex(nodes),
		log:   ctx.Logger,
		paths: Paths{},
	}
	if r.geo == (Geometry{}) {
		r.geo = DefaultGeometry()
	}
	if r.log == nil {
		r.log = log.New(io.Discard)
	}
	if r.ctx.Query == nil {
		r.ctx.Query = layout.MapQuery{}
	}

	r.sequence(nodes, nil)
	switch {
	case !ctx.NoTerminals:
		r.terminals(nodes)
	case len(nodes) > 0 && nodes[len(nodes)-1].IsBranch():
		r.fanOut(nodes[len(nodes)-1], "", nil)
	}
	return r.paths
}

type router struct {
	ctx   Context
	geo   Geometry
	ix    *graph.Index
	log   *log.Logger
	paths Paths
}

func (r *router) box(id string) (layout.Box, bool) {
	b, ok := r.ctx.Query.Box(id, r.ctx.Container)
	if !ok {
		return layout.Box{}, false
	}
	return scaledBox(b, r.ctx.Scale), true
}

func (r *router) expanded(n *graph.Node) bool {
	return n != nil && n.IsGroup() && !r.ctx.Collapsed[n.ID]
}

func (r *router) add(spec PathSpec, cmds []Command) {
	spec.Commands = cmds
	if cmds == nil {
		r.log.Debug("skipping edge without boxes", "key", spec.Key)
	}
	r.paths[spec.Key] = spec
}

func newSpec(key, from, to string, kind Kind, executed bool) PathSpec {
	return PathSpec{
		Key:  key,
		From: from,
		To:   to,
		Kind: kind,
		Meta: map[string]any{MetaLinkExecuted: executed},
	}
}

func (r *router) sequence(nodes []*graph.Node, parent *graph.Node) {
	for i, n := range nodes {
		if n.IsBranch() {
			r.fanIn(n, parent)
		}
		for _, m := range n.Members() {
			if m.IsGroup() {
				r.group(m)
			}
		}
		if i+1 < len(nodes) {
			r.connect(n, nodes[i+1].ID, parent)
		}
	}
}

// connect links n to the node with ID next: a fan-out when n is a branch,
// a sequential path otherwise.
func (r *router) connect(n *graph.Node, next string, parent *graph.Node) {
	if n.IsBranch() {
		r.fanOut(n, next, parent)
		return
	}
	r.sequential(n.ID, next, KindSequential, RightToLeft, n.Executed())
}

func (r *router) sequential(from, to string, kind Kind, dir Direction, executed bool) {
	spec := newSpec(fmt.Sprintf("%s->%s", from, to), from, to, kind, executed)
	a, okA := r.box(from)
	b, okB := r.box(to)
	if !okA || !okB {
		r.add(spec, nil)
		return
	}
	s, e := dir.anchors(a, b)
	r.add(spec, elbow(s, (s.X+e.X)/2, e, r.geo.CurveRadius))
}

// group routes a group's interior and its two boundary edges. Collapsed
// groups are routed too; their inner boxes normally do not resolve.
func (r *router) group(g *graph.Node) {
	steps := g.Data.Steps
	if len(steps) == 0 {
		return
	}
	first, last := steps[0], steps[len(steps)-1]
	r.sequential(g.ID, first.ID, KindBoundary, LeftToLeft, first.Executed())
	r.sequence(steps, g)
	if last.IsBranch() {
		r.fanOut(last, "", g)
	}
	r.sequential(last.ID, g.ID, KindBoundary, RightToRight, last.Executed())
}

// fanIn draws a path from a point left of the branch node to every parallel
// sibling.
func (r *router) fanIn(branch, parent *graph.Node) {
	bb, okB := r.box(branch.ID)
	dy := 0.0
	if r.expandedParent(branch, parent) {
		dy = r.geo.FanInGroupOffsetY
	}
	rad := r.geo.CurveRadius
	for _, c := range branch.Children {
		spec := newSpec(fmt.Sprintf("%s->%s#fan-in", branch.ID, c.ID), branch.ID, c.ID, KindFanIn, c.Executed())
		cb, okC := r.box(c.ID)
		if !okB || !okC {
			r.add(spec, nil)
			continue
		}
		s := Point{X: bb.Left - r.geo.FanInOffset, Y: bb.CenterY() + dy}
		r.add(spec, elbow(s, s.X+rad, Point{X: cb.Left, Y: cb.CenterY()}, rad))
	}
}

func (r *router) expandedParent(n, parent *graph.Node) bool {
	if parent == nil && n.ParentID != "" {
		parent, _ = r.ix.Node(n.ParentID)
	}
	return r.expanded(parent)
}

// fanOut draws a path from every member of the parallel set to a shared rail
// right of the widest member and on into next. Without a next node, a branch
// that is itself a group joins the header of its enclosing group. Any other
// branch merges back into its own right edge, with the branch itself drawing
// the stub out to the rail.
func (r *router) fanOut(branch *graph.Node, next string, parent *graph.Node) {
	target := next
	if target == "" && branch.Kind == graph.KindStepGroup && parent != nil {
		target = graph.HeaderID(parent.ID)
	}
	if target == "" && parent == nil && r.ctx.SkipRightPath {
		return
	}

	bb, okB := r.box(branch.ID)
	var (
		nb     layout.Box
		okNext = true
	)
	if target != "" {
		nb, okNext = r.box(target)
	}
	nextNode, _ := r.ix.Node(next)
	to := target
	if to == "" {
		to = branch.ID
	}

	members := branch.Members()
	railX := bb.Right
	for _, m := range members {
		if mb, ok := r.box(m.ID); ok {
			railX = max(railX, mb.Right)
		}
	}
	railX += r.geo.FanOutRailOffset

	rad := r.geo.CurveRadius
	for _, m := range members {
		spec := newSpec(fmt.Sprintf("%s->%s#fan-out", m.ID, to), m.ID, to, KindFanOut, m.Executed())
		mb, okM := r.box(m.ID)
		if !okB || !okM || !okNext {
			r.add(spec, nil)
			continue
		}
		t := Point{X: bb.Right, Y: bb.CenterY()}
		switch {
		case target != "":
			t = Point{X: nb.Left, Y: nb.CenterY()}
			if r.expanded(nextNode) {
				t.X += r.geo.JoinOffsetX
				t.Y += r.geo.NextGroupOffsetY
			}
			if nextNode != nil && !nextNode.IsGroup() && m.ParentID != "" {
				t.Y += r.geo.InGroupOffsetY
			}
		case m == branch:
			t.X = railX
		}
		r.add(spec, elbow(Point{X: mb.Right, Y: mb.CenterY()}, railX, t, rad))
	}
}

// terminals links the synthetic start, create and end nodes.
func (r *router) terminals(nodes []*graph.Node) {
	tail := graph.TerminalEnd
	if r.ctx.Editable {
		tail = graph.TerminalCreate
	}
	if len(nodes) == 0 {
		r.sequential(graph.TerminalStart, tail, KindTerminal, RightToLeft, false)
	} else {
		first, last := nodes[0], nodes[len(nodes)-1]
		r.sequential(graph.TerminalStart, first.ID, KindTerminal, RightToLeft, first.Executed())
		if last.IsBranch() {
			r.fanOut(last, tail, nil)
		} else {
			r.sequential(last.ID, tail, KindTerminal, RightToLeft, last.Executed())
		}
	}
	if r.ctx.Editable {
		r.sequential(graph.TerminalCreate, graph.TerminalEnd, KindTerminal, RightToLeft, false)
	}
}
