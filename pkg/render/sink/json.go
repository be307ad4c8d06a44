package sink

import (
	json "github.com/goccy/go-json"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/render"
	"github.com/matzehuels/stagegraph/pkg/route"
	"github.com/matzehuels/stagegraph/pkg/viewport"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	tree   bool
	indent bool
}

// WithJSONTree includes the full graph-state tree next to the flat node list.
func WithJSONTree() JSONOption { return func(r *jsonRenderer) { r.tree = true } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Width     float64           `json:"width"`
	Height    float64           `json:"height"`
	Viewport  viewport.Viewport `json:"viewport"`
	Nodes     []jsonNode        `json:"nodes"`
	Terminals []layout.Box      `json:"terminals"`
	Links     []route.PathSpec  `json:"links"`
	Tree      []*graph.Node     `json:"tree,omitempty"`
}

type jsonNode struct {
	ID          string      `json:"id"`
	Identifier  string      `json:"identifier"`
	Name        string      `json:"name,omitempty"`
	Kind        graph.Kind  `json:"kind"`
	NodeType    string      `json:"nodeType"`
	Status      string      `json:"status,omitempty"`
	ParentID    string      `json:"parentId,omitempty"`
	Path        string      `json:"path"`
	Box         *layout.Box `json:"box,omitempty"`
	Collapsed   bool        `json:"collapsed,omitempty"`
	Incomplete  bool        `json:"incomplete,omitempty"`
	Conditional bool        `json:"conditional,omitempty"`
	Looping     bool        `json:"looping,omitempty"`
}

// RenderJSON writes the scene as JSON. Links without a path are included
// with an empty "d" so consumers can tell skipped edges from absent ones.
func RenderJSON(s render.Scene, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:     s.Width,
		Height:    s.Height,
		Viewport:  s.Viewport,
		Nodes:     []jsonNode{},
		Terminals: []layout.Box{},
		Links:     make([]route.PathSpec, 0, len(s.Paths)),
	}
	s.Visible(func(n, _ *graph.Node) {
		jn := jsonNode{
			ID:          n.ID,
			Identifier:  n.Identifier,
			Name:        n.Name,
			Kind:        n.Kind,
			NodeType:    n.NodeType,
			Status:      string(n.Status),
			ParentID:    n.ParentID,
			Path:        n.Data.Path,
			Collapsed:   s.Collapsed[n.ID],
			Incomplete:  n.Data.Incomplete,
			Conditional: n.Data.Conditional,
			Looping:     n.Data.Looping,
		}
		if b, ok := s.Boxes[n.ID]; ok {
			jn.Box = &b
		}
		out.Nodes = append(out.Nodes, jn)
	})
	for _, id := range []string{graph.TerminalStart, graph.TerminalCreate, graph.TerminalEnd} {
		if b, ok := s.Boxes[id]; ok {
			out.Terminals = append(out.Terminals, b)
		}
	}
	for _, key := range s.Paths.Keys() {
		out.Links = append(out.Links, s.Paths[key])
	}
	if r.tree {
		out.Tree = s.Nodes
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
