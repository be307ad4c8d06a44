package tui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/matzehuels/stagegraph/pkg/diagram"
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

func seqIDs() graph.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func step(id string) workflow.Element {
	return workflow.Element{Step: &workflow.Step{Identifier: id, Name: id}}
}

// newModel builds a diagram of checkout, a group holding build, and a
// parallel test/lint pair, routes it once and wraps it in a model.
func newModel(t *testing.T) (Model, *diagram.Diagram, *[]diagram.Event) {
	t.Helper()
	d := diagram.New(diagram.Options{
		Build: graph.Options{Path: "steps", IDFunc: seqIDs()},
		Clock: testingclock.NewFakeClock(time.Unix(0, 0)),
	})
	t.Cleanup(d.Close)

	var events []diagram.Event
	d.Bus().SubscribeAll(func(e diagram.Event) { events = append(events, e) })

	d.SetData([]workflow.Element{
		step("checkout"),
		{StepGroup: &workflow.StepGroup{Identifier: "ci", Name: "ci", Steps: []workflow.Element{step("build")}}},
		{Parallel: []workflow.Element{step("test"), step("lint")}},
	})
	d.Flush()
	return New(d, "demo"), d, &events
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func lastType(events []diagram.Event) diagram.EventType {
	if len(events) == 0 {
		return ""
	}
	return events[len(events)-1].Type
}

func TestVisibleRows(t *testing.T) {
	m, d, _ := newModel(t)

	var ids []string
	for _, r := range m.rows {
		ids = append(ids, r.node.Identifier)
	}
	assert.Equal(t, []string{"checkout", "ci", "build", "test", "lint"}, ids)
	assert.Equal(t, 1, m.rows[2].depth)
	assert.True(t, m.rows[3].parallel)
	assert.True(t, m.rows[4].parallel)
	assert.False(t, m.rows[0].parallel)

	_, err := d.ToggleCollapse(m.rows[1].id)
	require.NoError(t, err)
	assert.Len(t, visibleRows(d), 4)
}

func TestKeysDriveViewport(t *testing.T) {
	m, d, events := newModel(t)
	vp := d.Viewport()

	m = update(t, m, runes("+"))
	assert.Equal(t, 1.1, vp.Viewport().Scale)
	assert.Equal(t, diagram.EventLinksRouted, lastType(*events))

	m = update(t, m, runes("-"))
	m = update(t, m, runes("-"))
	assert.Equal(t, 0.9, vp.Viewport().Scale)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, float64(panStep), vp.Viewport().Pan.X)
	assert.Equal(t, float64(panStep), vp.Viewport().Pan.Y)
	assert.False(t, vp.Viewport().Dragging)

	m = update(t, m, runes("0"))
	assert.Equal(t, 1.0, vp.Viewport().Scale)
	assert.Zero(t, vp.Viewport().Pan.X)

	m = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 10})
	update(t, m, runes("f"))
	assert.Less(t, vp.Viewport().Scale, 1.0)
}

func TestSelectionAndNodeActions(t *testing.T) {
	m, d, events := newModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, diagram.EventNodeClicked, lastType(*events))
	assert.Equal(t, "checkout", (*events)[len(*events)-1].Payload.(diagram.NodePayload).Identifier)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 4, m.cursor)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.cursor)

	m = update(t, m, runes("c"))
	require.NoError(t, m.err)
	assert.True(t, d.Collapsed(m.rows[1].id))
	assert.Len(t, m.rows, 4)
	assert.Contains(t, m.View(), "[+] ci")

	m = update(t, m, runes("p"))
	assert.Equal(t, diagram.EventParallelNodeAdded, lastType(*events))
	m = update(t, m, runes("x"))
	assert.Equal(t, diagram.EventNodeRemoved, lastType(*events))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, runes("c"))
	assert.Error(t, m.err, "a step cannot collapse")
}

func TestMouse(t *testing.T) {
	m, d, events := newModel(t)
	vp := d.Viewport()

	update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Equal(t, 1.0, vp.Viewport().Scale, "wheel without ctrl scrolls")

	update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress, Ctrl: true})
	assert.InDelta(t, 1.05, vp.Viewport().Scale, 1e-9)

	m = update(t, m, tea.MouseMsg{X: 1, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, diagram.EventDragStart, lastType(*events))
	m = update(t, m, tea.MouseMsg{X: 3, Y: 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	assert.Equal(t, float64(2*cellWidth), vp.Visual().Pan.X)
	assert.Zero(t, vp.Viewport().Pan.X, "committed on release")

	update(t, m, tea.MouseMsg{X: 3, Y: 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	assert.Equal(t, float64(2*cellWidth), vp.Viewport().Pan.X)
	assert.Equal(t, float64(cellHeight), vp.Viewport().Pan.Y)

	update(t, m, tea.MouseMsg{X: 5, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	update(t, m, tea.MouseMsg{X: 5, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	assert.Equal(t, diagram.EventCanvasClicked, lastType(*events))
}

func TestEventsUpdateStatusLine(t *testing.T) {
	m, _, events := newModel(t)
	require.NotEmpty(t, *events)

	for _, e := range *events {
		m = update(t, m, EventMsg{Event: e})
	}
	require.NotNil(t, m.routed)
	assert.Equal(t, diagram.ReasonFlush, m.routed.Reason)

	view := m.View()
	assert.Contains(t, view, "demo")
	assert.Contains(t, view, "scale 1.00")
	assert.Contains(t, view, fmt.Sprintf("links %d/%d", m.routed.Drawable, m.routed.Links))
	assert.Contains(t, view, "checkout")
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
