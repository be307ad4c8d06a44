// Package tui is an interactive terminal view of a [diagram.Diagram].
//
// The view lists the visible nodes in execution order and keeps a status
// line with the viewport and the latest routing pass. Keys and the mouse
// drive the diagram's viewport controller the same way pointer input does
// in a browser: arrows and left-drag pan, +/- and ctrl+wheel zoom.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stagegraph/pkg/diagram"
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/viewport"
)

// Terminal cells are converted to diagram units with these factors.
const (
	cellWidth  = 8
	cellHeight = 16
	panStep    = 40
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("178")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("242")
	colorWhite  = lipgloss.Color("252")

	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleNormal   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleError    = lipgloss.NewStyle().Foreground(colorRed)
	styleStatus   = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236")).Padding(0, 1)
)

// EventMsg carries a diagram event into the bubbletea loop.
type EventMsg struct {
	Event diagram.Event
}

// row is one visible line of the node list.
type row struct {
	id       string
	depth    int
	parallel bool
	node     *graph.Node
}

// Model is the bubbletea model.
type Model struct {
	d      *diagram.Diagram
	title  string
	width  int
	height int

	rows   []row
	cursor int
	routed *diagram.RoutePayload
	last   string
	err    error
}

// New returns a model for d.
func New(d *diagram.Diagram, title string) Model {
	m := Model{d: d, title: title}
	m.rows = visibleRows(d)
	return m
}

func (m Model) Init() tea.Cmd {
	if m.title == "" {
		return nil
	}
	return tea.SetWindowTitle(m.title)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.key(msg)
	case tea.MouseMsg:
		m.mouse(msg)
	case EventMsg:
		m.event(msg.Event)
	}
	return m, nil
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := m.d.Viewport()
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.d.Close()
		return m, tea.Quit
	case "left", "h":
		m.pan(-panStep, 0)
	case "right", "l":
		m.pan(panStep, 0)
	case "up":
		m.pan(0, -panStep)
	case "down":
		m.pan(0, panStep)
	case "+", "=":
		vp.ZoomIn()
	case "-":
		vp.ZoomOut()
	case "0":
		vp.Reset()
	case "f":
		w, h := m.canvas()
		m.err = m.d.Fit(w, h, viewport.Point{})
	case "r":
		m.d.Flush()
	case "tab", "j":
		if len(m.rows) > 0 {
			m.cursor = (m.cursor + 1) % len(m.rows)
		}
	case "shift+tab", "k":
		if len(m.rows) > 0 {
			m.cursor = (m.cursor - 1 + len(m.rows)) % len(m.rows)
		}
	case "enter":
		if id, ok := m.selected(); ok {
			m.d.Press(viewport.ButtonPrimary, viewport.Point{}, id)
		}
	case "c":
		if id, ok := m.selected(); ok {
			_, m.err = m.d.ToggleCollapse(id)
			m.rows = visibleRows(m.d)
			m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
		}
	case "x":
		if id, ok := m.selected(); ok {
			m.err = m.d.RemoveNode(id)
		}
	case "p":
		if id, ok := m.selected(); ok {
			m.err = m.d.AddParallel(id)
		}
	}
	return m, nil
}

// pan emulates a surface drag by (dx, dy).
func (m Model) pan(dx, dy float64) {
	m.d.Press(viewport.ButtonPrimary, viewport.Point{}, "")
	m.d.Move(viewport.Point{X: dx, Y: dy})
	m.d.Release()
}

func (m *Model) mouse(msg tea.MouseMsg) {
	at := viewport.Point{X: float64(msg.X * cellWidth), Y: float64(msg.Y * cellHeight)}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.d.Viewport().Wheel(-1, msg.Ctrl)
	case msg.Button == tea.MouseButtonWheelDown:
		m.d.Viewport().Wheel(1, msg.Ctrl)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.d.Press(viewport.ButtonPrimary, at, "")
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		m.d.Press(viewport.ButtonSecondary, at, "")
	case msg.Action == tea.MouseActionMotion:
		m.d.Move(at)
	case msg.Action == tea.MouseActionRelease:
		m.d.Release()
	}
}

func (m *Model) event(e diagram.Event) {
	switch p := e.Payload.(type) {
	case diagram.RoutePayload:
		m.routed = &p
		m.rows = visibleRows(m.d)
		m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
		m.last = fmt.Sprintf("%s (%s)", e.Type, p.Reason)
	case diagram.NodePayload:
		m.last = fmt.Sprintf("%s %s", e.Type, p.Identifier)
	case diagram.DragPayload:
		m.last = fmt.Sprintf("%s at %g,%g", e.Type, p.Viewport.Pan.X, p.Viewport.Pan.Y)
	default:
		m.last = string(e.Type)
	}
}

func (m Model) selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return "", false
	}
	return m.rows[m.cursor].id, true
}

// canvas returns the terminal size in diagram units, minus the header and
// status lines.
func (m Model) canvas() (float64, float64) {
	w, h := m.width, m.height-4
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 20
	}
	return float64(w * cellWidth), float64(h * cellHeight)
}

// View renders the node list and the status line.
func (m Model) View() string {
	var b strings.Builder

	title := m.title
	if title == "" {
		title = "stagegraph"
	}
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("arrows pan  +/- zoom  0 reset  f fit  tab select  c collapse  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(styleDim.Render("  (empty)"))
		b.WriteString("\n")
	}
	for i, r := range m.rows {
		b.WriteString(m.renderRow(r, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styleError.Render(m.err.Error()))
	}
	return b.String()
}

func (m Model) renderRow(r row, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	indent := strings.Repeat("  ", r.depth)
	branch := ""
	if r.parallel {
		branch = "┃ "
	}

	n := r.node
	label := n.Identifier
	if n.Name != "" && n.Name != n.Identifier {
		label = fmt.Sprintf("%s (%s)", n.Identifier, n.Name)
	}
	if len(n.Data.Steps) > 0 {
		marker := "[-]"
		if m.d.Collapsed(n.ID) {
			marker = "[+]"
		}
		label = marker + " " + label
	}

	line := cursor + indent + branch + statusIcon(n.Status) + " " + label
	if selected {
		return styleSelected.Render(line) + " " + styleDim.Render(n.NodeType)
	}
	return styleNormal.Render(line)
}

func (m Model) statusLine() string {
	vp := m.d.Viewport().Visual()
	parts := []string{
		fmt.Sprintf("scale %.2f", vp.Scale),
		fmt.Sprintf("pan %g,%g", vp.Pan.X, vp.Pan.Y),
	}
	if m.routed != nil {
		parts = append(parts, fmt.Sprintf("links %d/%d", m.routed.Drawable, m.routed.Links))
	}
	if m.d.Pending() {
		parts = append(parts, "routing…")
	}
	if m.last != "" {
		parts = append(parts, m.last)
	}
	return styleStatus.Render(strings.Join(parts, "  "))
}

func statusIcon(s graph.Status) string {
	switch s {
	case graph.StatusSuccess, graph.StatusIgnoreFailed:
		return lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	case graph.StatusFailed, graph.StatusErrored, graph.StatusAborted, graph.StatusApprovalRejected:
		return lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	case graph.StatusRunning, graph.StatusWaiting:
		return lipgloss.NewStyle().Foreground(colorYellow).Render("●")
	default:
		return styleDim.Render("○")
	}
}

// visibleRows flattens the tree in execution order, skipping the contents
// of collapsed groups.
func visibleRows(d *diagram.Diagram) []row {
	var rows []row
	var visit func(nodes []*graph.Node, depth int)
	visit = func(nodes []*graph.Node, depth int) {
		for _, n := range nodes {
			for _, member := range n.Members() {
				rows = append(rows, row{id: member.ID, depth: depth, parallel: n.IsBranch(), node: member})
				if len(member.Data.Steps) > 0 && !d.Collapsed(member.ID) {
					visit(member.Data.Steps, depth+1)
				}
			}
		}
	}
	visit(d.Nodes(), 0)
	return rows
}
