package sink

import "bytes"

// Style defines how diagram elements are drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content (markers, filters).
	RenderDefs(buf *bytes.Buffer)
	// RenderGroup writes the frame of an expanded step group.
	RenderGroup(buf *bytes.Buffer, n Node)
	// RenderNode writes a leaf node or a collapsed group.
	RenderNode(buf *bytes.Buffer, n Node)
	// RenderLink writes one routed path.
	RenderLink(buf *bytes.Buffer, l Link)
	// RenderLabel writes a node's name.
	RenderLabel(buf *bytes.Buffer, n Node)
	// RenderTerminal writes the start, create or end marker.
	RenderTerminal(buf *bytes.Buffer, t Terminal)
}

// Node contains all data needed to draw one node.
type Node struct {
	ID          string
	Label       string
	Kind        string
	Type        string
	Status      string
	X, Y, W, H  float64
	CX, CY      float64
	Group       bool
	Collapsed   bool
	Incomplete  bool
	Conditional bool
	Looping     bool
	Template    bool
}

// Link is one routed path.
type Link struct {
	Key      string
	From, To string
	Kind     string
	D        string
	Executed bool
}

// Terminal is a start, create or end marker.
type Terminal struct {
	ID     string
	CX, CY float64
	R      float64
}
