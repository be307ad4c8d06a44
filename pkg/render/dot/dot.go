// Package dot exports the graph-state tree as a Graphviz diagram.
//
// Graphviz picks its own layout, so the output is an overview of the
// workflow's structure rather than the routed diagram: step groups become
// clusters, parallel siblings share their predecessor and successor, and
// collapsed groups are drawn as a single node.
//
//	src := dot.ToDOT(nodes, dot.Options{Editable: true})
//	svg, err := dot.RenderSVG(ctx, src)
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stagegraph/pkg/graph"
)

// Options configures DOT export.
type Options struct {
	// Editable adds the create terminal.
	Editable bool
	// Collapsed groups are drawn as one node.
	Collapsed map[string]bool
	// Detailed adds the node type and path to labels.
	Detailed bool
}

var statusFill = map[graph.Status]string{
	graph.StatusSuccess:          "#d7f0d8",
	graph.StatusRunning:          "#d6eaf8",
	graph.StatusFailed:           "#f5d5d3",
	graph.StatusErrored:          "#f5d5d3",
	graph.StatusApprovalRejected: "#f5d5d3",
	graph.StatusIgnoreFailed:     "#fbe5cc",
	graph.StatusAborted:          "#e8e8e8",
}

// ToDOT converts the tree to Graphviz DOT.
func ToDOT(nodes []*graph.Node, opts Options) string {
	w := &writer{opts: opts}
	w.line("digraph G {")
	w.line("  rankdir=LR;")
	w.line("  bgcolor=\"transparent\";")
	w.line("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];")
	w.line("  edge [color=\"#9293ab\"];")
	w.line("")
	w.line("  %q [shape=circle, label=\"\", width=0.25];", graph.TerminalStart)
	if opts.Editable {
		w.line("  %q [shape=circle, label=\"+\", width=0.25];", graph.TerminalCreate)
	}
	w.line("  %q [shape=doublecircle, label=\"\", width=0.2];", graph.TerminalEnd)
	w.line("")

	w.declare(nodes, "  ")
	w.line("")
	w.sequence(nodes)

	tail := graph.TerminalEnd
	if opts.Editable {
		tail = graph.TerminalCreate
	}
	if len(nodes) == 0 {
		w.edge(graph.TerminalStart, tail)
	} else {
		for _, e := range w.entries(nodes[0]) {
			w.edge(graph.TerminalStart, e)
		}
		for _, x := range w.exits(nodes[len(nodes)-1]) {
			w.edge(x, tail)
		}
	}
	if opts.Editable {
		w.edge(graph.TerminalCreate, graph.TerminalEnd)
	}
	w.line("}")
	return w.buf.String()
}

type writer struct {
	opts Options
	buf  bytes.Buffer
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *writer) expanded(n *graph.Node) bool {
	return n.IsGroup() && len(n.Data.Steps) > 0 && !w.opts.Collapsed[n.ID]
}

// declare writes nodes and clusters.
func (w *writer) declare(nodes []*graph.Node, indent string) {
	for _, n := range nodes {
		for _, m := range n.Members() {
			if !w.expanded(m) {
				w.line("%s%q [%s];", indent, m.ID, strings.Join(w.attrs(m), ", "))
				continue
			}
			w.line("%ssubgraph %q {", indent, "cluster_"+m.ID)
			w.line("%s  label=%q;", indent, label(m))
			w.line("%s  style=\"rounded,dashed\";", indent)
			w.declare(m.Data.Steps, indent+"  ")
			w.line("%s}", indent)
		}
	}
}

// sequence writes the edges between consecutive elements and inside groups.
func (w *writer) sequence(nodes []*graph.Node) {
	for i, n := range nodes {
		for _, m := range n.Members() {
			if w.expanded(m) {
				w.sequence(m.Data.Steps)
			}
		}
		if i+1 == len(nodes) {
			continue
		}
		for _, x := range w.exits(n) {
			for _, e := range w.entries(nodes[i+1]) {
				w.edge(x, e)
			}
		}
	}
}

// entries are the IDs an edge into element n lands on.
func (w *writer) entries(n *graph.Node) []string {
	var out []string
	for _, m := range n.Members() {
		if w.expanded(m) {
			out = append(out, w.entries(m.Data.Steps[0])...)
			continue
		}
		out = append(out, m.ID)
	}
	return out
}

// exits are the IDs an edge out of element n leaves from.
func (w *writer) exits(n *graph.Node) []string {
	var out []string
	for _, m := range n.Members() {
		if w.expanded(m) {
			steps := m.Data.Steps
			out = append(out, w.exits(steps[len(steps)-1])...)
			continue
		}
		out = append(out, m.ID)
	}
	return out
}

func (w *writer) edge(from, to string) {
	w.line("  %q -> %q;", from, to)
}

func (w *writer) attrs(n *graph.Node) []string {
	text := label(n)
	if w.opts.Detailed {
		text += "\n" + n.NodeType + "\n" + n.Data.Path
	}
	attrs := []string{fmt.Sprintf("label=%q", text)}
	if fill, ok := statusFill[n.Status]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	switch {
	case n.Data.Incomplete:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "color=\"#cf2318\"")
	case n.IsGroup():
		attrs = append(attrs, "style=\"rounded,filled,bold\"")
	}
	if n.Data.Conditional {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

func label(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	if n.Identifier != "" {
		return n.Identifier
	}
	return n.NodeType
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := Render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// Render renders a DOT graph in any Graphviz output format.
func Render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based svg tag with a plain
// viewBox so the output scales like the routed SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
