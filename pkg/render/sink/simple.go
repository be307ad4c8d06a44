package sink

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	cornerRadius   = 8
	groupRadius    = 12
	labelGap       = 16
	badgeSize      = 10
	colorNode      = "#ffffff"
	colorBorder    = "#4f5162"
	colorLink      = "#9293ab"
	colorExecuted  = "#1b841d"
	colorGroupFill = "#f3f3fa"
	colorText      = "#22222a"
)

var statusColors = map[string]string{
	"Success":          "#1b841d",
	"Running":          "#0278d5",
	"Failed":           "#cf2318",
	"Errored":          "#cf2318",
	"Aborted":          "#6b6d85",
	"IgnoreFailed":     "#e67a00",
	"ApprovalRejected": "#cf2318",
	"Waiting":          "#e67a00",
}

// Simple draws flat rounded boxes with status-colored borders.
type Simple struct{}

// RenderDefs implements [Style].
func (Simple) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker>`+"\n", colorLink)
	buf.WriteString("  </defs>\n")
}

// RenderGroup implements [Style].
func (Simple) RenderGroup(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, `  <rect id="node-%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%d" fill="%s" stroke="%s"%s/>`+"\n",
		EscapeXML(n.ID), classes(n), n.X, n.Y, n.W, n.H, groupRadius, colorGroupFill, border(n), dash(n))
	fmt.Fprintf(buf, `  <text class="group-label" x="%.2f" y="%.2f" font-size="%.0f" fill="%s">%s</text>`+"\n",
		n.X+groupRadius, n.Y+fontSize+labelPadding, fontSize, colorText, EscapeXML(TruncateLabel(n.Label, n.W)))
}

// RenderNode implements [Style].
func (Simple) RenderNode(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, `  <rect id="node-%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%d" fill="%s" stroke="%s" stroke-width="2"%s/>`+"\n",
		EscapeXML(n.ID), classes(n), n.X, n.Y, n.W, n.H, cornerRadius, colorNode, border(n), dash(n))
	if n.Conditional {
		x, y := n.X+n.W-badgeSize, n.Y
		fmt.Fprintf(buf, `  <path class="badge-conditional" d="M %.2f,%.2f l %d,%d l %d,%d l %d,%d z" fill="%s"/>`+"\n",
			x, y, badgeSize/2, badgeSize/2, -badgeSize/2, badgeSize/2, -badgeSize/2, -badgeSize/2, colorBorder)
	}
	if n.Looping {
		fmt.Fprintf(buf, `  <circle class="badge-looping" cx="%.2f" cy="%.2f" r="%d" fill="none" stroke="%s"/>`+"\n",
			n.X+badgeSize/2, n.Y+badgeSize/2, badgeSize/2-1, colorBorder)
	}
	if n.Collapsed {
		fmt.Fprintf(buf, `  <text class="collapsed-marker" x="%.2f" y="%.2f" text-anchor="middle" font-size="%.0f" fill="%s">+</text>`+"\n",
			n.CX, n.CY+fontSize/3, fontSize*1.5, colorText)
	}
}

// RenderLink implements [Style].
func (Simple) RenderLink(buf *bytes.Buffer, l Link) {
	color := colorLink
	if l.Executed {
		color = colorExecuted
	}
	class := "link link-" + l.Kind
	if l.Executed {
		class += " executed"
	}
	fmt.Fprintf(buf, `  <path class="%s" data-from="%s" data-to="%s" d="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
		class, EscapeXML(l.From), EscapeXML(l.To), l.D, color)
}

// RenderLabel implements [Style].
func (Simple) RenderLabel(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, `  <text class="node-label" data-node="%s" x="%.2f" y="%.2f" text-anchor="middle" font-size="%.0f" fill="%s">%s</text>`+"\n",
		EscapeXML(n.ID), n.CX, n.Y+n.H+labelGap, fontSize, colorText, EscapeXML(TruncateLabel(n.Label, n.W+2*labelGap)))
}

// RenderTerminal implements [Style].
func (Simple) RenderTerminal(buf *bytes.Buffer, t Terminal) {
	fill := colorNode
	if t.ID == "create" {
		fill = colorGroupFill
	}
	fmt.Fprintf(buf, `  <circle id="terminal-%s" class="terminal" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
		t.ID, t.CX, t.CY, t.R, fill, colorBorder)
}

func classes(n Node) string {
	c := []string{"node", "kind-" + strings.ToLower(n.Kind)}
	if n.Status != "" {
		c = append(c, "status-"+strings.ToLower(n.Status))
	}
	if n.Incomplete {
		c = append(c, "incomplete")
	}
	if n.Collapsed {
		c = append(c, "collapsed")
	}
	if n.Template {
		c = append(c, "template")
	}
	return strings.Join(c, " ")
}

func border(n Node) string {
	if n.Incomplete {
		return statusColors["Failed"]
	}
	if c, ok := statusColors[n.Status]; ok {
		return c
	}
	return colorBorder
}

func dash(n Node) string {
	if n.Incomplete {
		return ` stroke-dasharray="4 3"`
	}
	return ""
}
