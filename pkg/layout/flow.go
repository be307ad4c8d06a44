package layout

import "github.com/matzehuels/stagegraph/pkg/graph"

const (
	defaultNodeSize     = 64
	defaultTerminalSize = 20
	defaultMargin       = 40
	defaultNodePadding  = 30
)

type flowConfig struct {
	spacing    Spacing
	nodeWidth  float64
	nodeHeight float64
	terminal   float64
	margin     float64
	padding    float64
	collapsed  map[string]bool
	measured   Table
	withCreate bool
}

// FlowOption configures [Flow].
type FlowOption func(*flowConfig)

// WithSpacing sets the gaps and group chrome. Default: [DefaultSpacing].
func WithSpacing(sp Spacing) FlowOption {
	return func(c *flowConfig) { c.spacing = sp }
}

// WithNodeSize sets the size of leaf nodes. Default: 64x64.
func WithNodeSize(width, height float64) FlowOption {
	return func(c *flowConfig) { c.nodeWidth, c.nodeHeight = width, height }
}

// WithTerminalSize sets the size of the start, create and end terminals.
func WithTerminalSize(size float64) FlowOption {
	return func(c *flowConfig) { c.terminal = size }
}

// WithNodePadding sets the horizontal room reserved on both sides of every
// leaf box for its label. Default: 30.
func WithNodePadding(p float64) FlowOption {
	return func(c *flowConfig) { c.padding = p }
}

// WithMargin sets the gap between terminals and nodes and around the diagram.
func WithMargin(m float64) FlowOption {
	return func(c *flowConfig) { c.margin = m }
}

// WithCollapsed marks groups that render as a single leaf-sized node.
func WithCollapsed(ids map[string]bool) FlowOption {
	return func(c *flowConfig) { c.collapsed = ids }
}

// WithMeasured overrides the size of individual leaves.
func WithMeasured(t Table) FlowOption {
	return func(c *flowConfig) { c.measured = t }
}

// WithCreateTerminal places the create terminal between the last node and end.
func WithCreateTerminal(enabled bool) FlowOption {
	return func(c *flowConfig) { c.withCreate = enabled }
}

// Placement is the result of [Flow].
type Placement struct {
	Boxes      MapQuery
	Dimensions Table
	Width      float64
	Height     float64
}

// Flow places nodes left to right and returns absolute boxes for every
// rendered node, every expanded group's header anchor and the terminals.
// Leaves occupy a slot as wide as their box plus padding on both sides and
// their box is centered in it. Nodes inside collapsed groups get no box.
func Flow(nodes []*graph.Node, opts ...FlowOption) Placement {
	cfg := flowConfig{
		spacing:    DefaultSpacing(),
		nodeWidth:  defaultNodeSize,
		nodeHeight: defaultNodeSize,
		terminal:   defaultTerminalSize,
		margin:     defaultMargin,
		padding:    defaultNodePadding,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	measured := Table{}
	graph.Walk(nodes, func(n, _ *graph.Node) bool {
		d, ok := cfg.measured[n.ID]
		if !ok {
			d = Dimension{Width: cfg.nodeWidth, Height: cfg.nodeHeight}
		}
		d.Width += 2 * cfg.padding
		measured[n.ID] = d
		return true
	})

	p := &placer{cfg: cfg, dims: Aggregate(nodes, measured, cfg.collapsed, cfg.spacing), boxes: MapQuery{}}

	t, m := cfg.terminal, cfg.margin
	center := m + max(p.firstHalf(nodes), t/2)
	x := m
	p.terminal(graph.TerminalStart, x, center)
	x += t + m
	if len(nodes) > 0 {
		x = p.sequence(nodes, x, center) + m
	}
	if cfg.withCreate {
		p.terminal(graph.TerminalCreate, x, center)
		x += t + m
	}
	p.terminal(graph.TerminalEnd, x, center)

	var bottom float64
	for _, b := range p.boxes {
		bottom = max(bottom, b.Bottom)
	}
	return Placement{
		Boxes:      p.boxes,
		Dimensions: p.dims,
		Width:      x + t + m,
		Height:     bottom + m,
	}
}

type placer struct {
	cfg   flowConfig
	dims  Table
	boxes MapQuery
}

func (p *placer) outer(n *graph.Node) (float64, float64) {
	return p.cfg.spacing.Outer(p.dims[n.ID])
}

func (p *placer) firstHalf(nodes []*graph.Node) float64 {
	var half float64
	for _, n := range nodes {
		_, h := p.outer(n)
		half = max(half, h/2)
	}
	return half
}

func (p *placer) terminal(id string, left, center float64) {
	t := p.cfg.terminal
	p.boxes[id] = Rect(id, left, center-t/2, t, t)
}

// sequence places a sequence with first members centered on center and
// returns the right edge of the last column.
func (p *placer) sequence(nodes []*graph.Node, left, center float64) float64 {
	sp := p.cfg.spacing
	x := left
	for _, n := range nodes {
		_, h0 := p.outer(n)
		y := center - h0/2
		var colWidth float64
		for k, m := range n.Members() {
			w, h := p.outer(m)
			if k > 0 {
				y += sp.ParallelGap
			}
			p.place(m, x, y, w, h)
			y += h
			colWidth = max(colWidth, w)
		}
		x += colWidth + sp.NodeGap
	}
	if len(nodes) > 0 {
		x -= sp.NodeGap
	}
	return x
}

func (p *placer) place(n *graph.Node, x, y, w, h float64) {
	if !n.IsGroup() || p.cfg.collapsed[n.ID] {
		pad := p.cfg.padding
		p.boxes[n.ID] = Rect(n.ID, x+pad, y, w-2*pad, h)
		return
	}
	p.boxes[n.ID] = Rect(n.ID, x, y, w, h)

	sp := p.cfg.spacing
	innerLeft := x + sp.GroupPadWidth/2
	innerTop := y + sp.GroupPadHeight/2
	if p.dims[n.ID].Type == DimensionMatrix {
		innerLeft += sp.MatrixExtraWidth / 2
		innerTop += sp.MatrixExtraHeight / 2
	}
	center := innerTop + p.firstHalf(n.Data.Steps)
	right := p.sequence(n.Data.Steps, innerLeft, center)

	hx := min(max(right, innerLeft)+sp.NodeGap, x+w)
	id := graph.HeaderID(n.ID)
	p.boxes[id] = Box{NodeID: id, Left: hx, Right: hx, Top: center, Bottom: center}
}
