package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stagegraph/pkg/layout"
)

func newRecorded(opts Options) (*Controller, *[]Change) {
	c := NewController(opts)
	var changes []Change
	c.OnChange(func(ch Change) { changes = append(changes, ch) })
	return c, &changes
}

func TestDragCommitsOnRelease(t *testing.T) {
	c, changes := newRecorded(DefaultOptions())

	require.True(t, c.PointerDown(ButtonPrimary, TargetSurface, Point{X: 10, Y: 10}))
	assert.Equal(t, Dragging, c.State())

	c.PointerMove(Point{X: 30, Y: 50})
	assert.Equal(t, Point{X: 20, Y: 40}, c.Visual().Pan)
	assert.True(t, c.Visual().Dragging)
	assert.Equal(t, Point{}, c.Viewport().Pan)
	assert.Empty(t, *changes)

	c.PointerMove(Point{X: 40, Y: 60})
	require.True(t, c.PointerUp())
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, Point{X: 30, Y: 50}, c.Viewport().Pan)
	require.Len(t, *changes, 1)
	assert.Equal(t, ReasonPan, (*changes)[0].Reason)
	assert.Equal(t, Point{X: 30, Y: 50}, (*changes)[0].Viewport.Pan)

	// A second drag continues from the committed pan.
	c.PointerDown(ButtonPrimary, TargetSurface, Point{})
	c.PointerMove(Point{X: -5, Y: 0})
	assert.Equal(t, Point{X: 25, Y: 50}, c.Visual().Pan)
}

func TestDragIgnoresOtherPresses(t *testing.T) {
	c, _ := newRecorded(DefaultOptions())
	assert.False(t, c.PointerDown(ButtonPrimary, TargetNode, Point{}))
	assert.False(t, c.PointerDown(ButtonSecondary, TargetSurface, Point{}))
	assert.Equal(t, Idle, c.State())

	c.PointerMove(Point{X: 100, Y: 100})
	assert.False(t, c.PointerUp())
	assert.Equal(t, Point{}, c.Visual().Pan)
}

func TestBlurCancelsDrag(t *testing.T) {
	c, changes := newRecorded(DefaultOptions())
	c.PointerDown(ButtonPrimary, TargetSurface, Point{})
	c.PointerMove(Point{X: 10, Y: 10})
	c.PointerUp()

	c.PointerDown(ButtonPrimary, TargetSurface, Point{})
	c.PointerMove(Point{X: 50, Y: 50})
	c.Blur()

	assert.Equal(t, Idle, c.State())
	assert.Equal(t, Point{X: 10, Y: 10}, c.Viewport().Pan)
	assert.Equal(t, Point{X: 10, Y: 10}, c.Visual().Pan)
	assert.Len(t, *changes, 1)
	assert.False(t, c.PointerUp())
}

func TestClickWithoutMoveDoesNotCommit(t *testing.T) {
	c, changes := newRecorded(DefaultOptions())
	c.PointerDown(ButtonPrimary, TargetSurface, Point{X: 3, Y: 3})
	assert.True(t, c.PointerUp())
	assert.Empty(t, *changes)
}

func TestWheelZoom(t *testing.T) {
	c, changes := newRecorded(DefaultOptions())

	assert.False(t, c.Wheel(-1, false))
	assert.Empty(t, *changes)

	assert.True(t, c.Wheel(-1, true))
	assert.InDelta(t, 1.05, c.Viewport().Scale, 1e-9)
	assert.True(t, c.Wheel(1, true))
	assert.InDelta(t, 1.0, c.Viewport().Scale, 1e-9)
	assert.Len(t, *changes, 2)
	assert.Equal(t, ReasonZoom, (*changes)[0].Reason)

	for range 100 {
		c.Wheel(-1, true)
	}
	assert.Equal(t, 2.0, c.Viewport().Scale)
}

func TestZoomSteps(t *testing.T) {
	c, changes := newRecorded(DefaultOptions())

	c.ZoomOut()
	assert.Equal(t, 0.9, c.Viewport().Scale)
	c.ZoomIn()
	c.ZoomIn()
	assert.Equal(t, 1.1, c.Viewport().Scale)
	assert.Len(t, *changes, 3)

	require.NoError(t, c.SetScale(1.95))
	c.ZoomIn()
	assert.Equal(t, 2.0, c.Viewport().Scale)
	n := len(*changes)
	c.ZoomIn()
	assert.Len(t, *changes, n, "no change at the maximum")

	require.NoError(t, c.SetScale(0.01))
	assert.Equal(t, 0.1, c.Viewport().Scale)
	assert.ErrorIs(t, c.SetScale(0), ErrInvalidScale)
	assert.ErrorIs(t, c.SetScale(-1), ErrInvalidScale)
}

func TestReset(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultPan = Point{X: 40, Y: 20}
	c, changes := newRecorded(opts)
	assert.Equal(t, Point{X: 40, Y: 20}, c.Viewport().Pan)

	c.ZoomIn()
	c.PointerDown(ButtonPrimary, TargetSurface, Point{})
	c.PointerMove(Point{X: 5, Y: 5})
	c.PointerUp()

	c.Reset()
	v := c.Viewport()
	assert.Equal(t, 1.0, v.Scale)
	assert.Equal(t, Point{X: 40, Y: 20}, v.Pan)
	assert.Equal(t, ReasonReset, (*changes)[len(*changes)-1].Reason)
}

func TestScaleToFit(t *testing.T) {
	c, changes := newRecorded(DefaultOptions())
	content := layout.Rect("", 0, 0, 1000, 200)

	require.NoError(t, c.ScaleToFit(content, 500, 400, Point{}))
	assert.Equal(t, 0.5, c.Viewport().Scale)
	assert.Equal(t, ReasonFit, (*changes)[0].Reason)

	// Content measured at scale 0.5 has the same natural size.
	require.NoError(t, c.ScaleToFit(layout.Rect("", 0, 0, 500, 100), 1100, 400, Point{X: 100}))
	assert.Equal(t, 1.0, c.Viewport().Scale)

	require.NoError(t, c.ScaleToFit(layout.Rect("", 0, 0, 10, 10), 5000, 5000, Point{}))
	assert.Equal(t, 2.0, c.Viewport().Scale)

	assert.ErrorIs(t, c.ScaleToFit(layout.Box{}, 100, 100, Point{}), ErrInvalidScale)
	assert.ErrorIs(t, c.ScaleToFit(content, 100, 100, Point{X: 200}), ErrInvalidScale)
}

func TestNewControllerFillsDefaults(t *testing.T) {
	c := NewController(Options{MaxScale: 3})
	assert.Equal(t, 1.0, c.Viewport().Scale)
	require.NoError(t, c.SetScale(2.5))
	assert.Equal(t, 2.5, c.Viewport().Scale)
}

func TestTransform(t *testing.T) {
	v := Viewport{Scale: 1.5, Pan: Point{X: 20, Y: -40}}
	if got, want := v.Transform(), "translate(20 -40) scale(1.5)"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
	if got := Dragging.String(); got != "dragging" {
		t.Errorf("String() = %q, want dragging", got)
	}
}
