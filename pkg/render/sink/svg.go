package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/render"
	"github.com/matzehuels/stagegraph/pkg/viewport"
)

const linkInteractionCSS = `
    .link { transition: stroke-width 0.2s ease; }
    .link.highlight { stroke-width: 3; }
    .node.highlight { stroke-width: 4; }
    .node { cursor: pointer; }`

const linkInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.link').forEach(l => l.classList.toggle('highlight', l.dataset.from === id || l.dataset.to === id));
      document.querySelectorAll('.node').forEach(n => n.classList.toggle('highlight', n.id === 'node-' + id));
    }
    function clearHighlight() {
      document.querySelectorAll('.link, .node').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('node-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       Style
	viewport    *viewport.Viewport
	interactive bool
	title       string
	terminal    float64
}

// WithStyle sets the drawing style. Default: [Simple].
func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithViewport applies the scene's viewport instead of drawing at scale 1.
func WithViewport(v viewport.Viewport) SVGOption {
	return func(r *svgRenderer) { r.viewport = &v }
}

// WithInteraction adds hover highlighting of a node's links.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG draws the scene as a standalone SVG document.
func RenderSVG(s render.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{style: Simple{}}
	for _, opt := range opts {
		opt(&r)
	}

	groups, leaves := buildNodes(s)
	links := buildLinks(s)

	w, h := s.Width, s.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", EscapeXML(r.title))
	}
	r.style.RenderDefs(&buf)

	if r.viewport != nil {
		fmt.Fprintf(&buf, "  <g class=\"viewport\" transform=\"%s\">\n", r.viewport.Transform())
	}
	for _, g := range groups {
		r.style.RenderGroup(&buf, g)
	}
	for _, l := range links {
		r.style.RenderLink(&buf, l)
	}
	for _, n := range leaves {
		r.style.RenderNode(&buf, n)
	}
	for _, n := range leaves {
		r.style.RenderLabel(&buf, n)
	}
	for _, t := range buildTerminals(s) {
		r.style.RenderTerminal(&buf, t)
	}
	if r.viewport != nil {
		buf.WriteString("  </g>\n")
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", linkInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", linkInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// buildNodes splits the drawn nodes into expanded group frames and
// everything drawn as a single box. Nodes without a box are left out.
func buildNodes(s render.Scene) (groups, leaves []Node) {
	s.Visible(func(n, _ *graph.Node) {
		b, ok := s.Boxes[n.ID]
		if !ok {
			return
		}
		collapsed := s.Collapsed[n.ID]
		node := Node{
			ID:          n.ID,
			Label:       label(n),
			Kind:        string(n.Kind),
			Type:        n.NodeType,
			Status:      string(n.Status),
			X:           b.Left,
			Y:           b.Top,
			W:           b.Width(),
			H:           b.Height(),
			CX:          b.CenterX(),
			CY:          b.CenterY(),
			Group:       n.IsGroup(),
			Collapsed:   n.IsGroup() && collapsed,
			Incomplete:  n.Data.Incomplete,
			Conditional: n.Data.Conditional,
			Looping:     n.Data.Looping,
			Template:    n.Data.Template != "",
		}
		if node.Group && !node.Collapsed {
			groups = append(groups, node)
			return
		}
		leaves = append(leaves, node)
	})
	return groups, leaves
}

func buildLinks(s render.Scene) []Link {
	links := make([]Link, 0, len(s.Paths))
	for _, key := range s.Paths.Keys() {
		p := s.Paths[key]
		if p.Empty() {
			continue
		}
		links = append(links, Link{
			Key:      key,
			From:     p.From,
			To:       p.To,
			Kind:     string(p.Kind),
			D:        p.String(),
			Executed: p.Executed(),
		})
	}
	return links
}

func buildTerminals(s render.Scene) []Terminal {
	var out []Terminal
	for _, id := range []string{graph.TerminalStart, graph.TerminalCreate, graph.TerminalEnd} {
		b, ok := s.Boxes[id]
		if !ok {
			continue
		}
		out = append(out, Terminal{ID: id, CX: b.CenterX(), CY: b.CenterY(), R: min(b.Width(), b.Height()) / 2})
	}
	return out
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
