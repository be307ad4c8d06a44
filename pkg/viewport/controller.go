package viewport

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/matzehuels/stagegraph/pkg/layout"
)

// ErrInvalidScale is returned for non-positive scales.
var ErrInvalidScale = errors.New("scale must be positive")

// State is the drag state of the controller.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Target is what a pointer press landed on.
type Target int

const (
	TargetSurface Target = iota
	TargetNode
)

// Point is a pan offset or pointer position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the transform applied to the node container.
type Viewport struct {
	Scale    float64 `json:"scale"`
	Pan      Point   `json:"pan"`
	Dragging bool    `json:"dragging"`
}

// Transform returns the viewport as an SVG/CSS transform.
func (v Viewport) Transform() string {
	return fmt.Sprintf("translate(%g %g) scale(%g)", v.Pan.X, v.Pan.Y, v.Scale)
}

// Reason says why the committed viewport changed.
type Reason string

const (
	ReasonZoom  Reason = "zoom"
	ReasonPan   Reason = "pan"
	ReasonReset Reason = "reset"
	ReasonFit   Reason = "fit"
)

// Change is delivered to listeners after every committed change.
type Change struct {
	Viewport Viewport
	Reason   Reason
}

// Options configure a controller.
type Options struct {
	DefaultScale float64
	DefaultPan   Point
	MinScale     float64
	MaxScale     float64
	// ZoomStep is added or subtracted by ZoomIn and ZoomOut.
	ZoomStep float64
	// WheelFactor multiplies or divides the scale per modified wheel tick.
	WheelFactor float64
}

// DefaultOptions returns the standard viewport limits.
func DefaultOptions() Options {
	return Options{
		DefaultScale: 1,
		DefaultPan:   Point{X: 0, Y: 0},
		MinScale:     0.1,
		MaxScale:     2,
		ZoomStep:     0.1,
		WheelFactor:  1.05,
	}
}

// Controller owns the viewport state. It is safe for concurrent use;
// listeners run on the calling goroutine after the state lock is released.
type Controller struct {
	mu        sync.Mutex
	opts      Options
	state     State
	scale     float64
	pan       Point
	pending   Point
	origin    Point
	listeners []func(Change)
}

// NewController returns a controller at the default scale and pan.
func NewController(opts Options) *Controller {
	def := DefaultOptions()
	if opts.DefaultScale <= 0 {
		opts.DefaultScale = def.DefaultScale
	}
	if opts.MinScale <= 0 {
		opts.MinScale = def.MinScale
	}
	if opts.MaxScale < opts.MinScale {
		opts.MaxScale = max(def.MaxScale, opts.MinScale)
	}
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = def.ZoomStep
	}
	if opts.WheelFactor <= 1 {
		opts.WheelFactor = def.WheelFactor
	}
	return &Controller{opts: opts, scale: opts.DefaultScale, pan: opts.DefaultPan}
}

// OnChange registers fn for committed changes.
func (c *Controller) OnChange(fn func(Change)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// State returns the drag state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Viewport returns the committed viewport.
func (c *Controller) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Viewport{Scale: c.scale, Pan: c.pan, Dragging: c.state == Dragging}
}

// Visual returns the viewport to draw now, which during a drag follows the
// pointer ahead of the committed pan.
func (c *Controller) Visual() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := Viewport{Scale: c.scale, Pan: c.pan}
	if c.state == Dragging {
		v.Pan, v.Dragging = c.pending, true
	}
	return v
}

// PointerDown starts a drag for a primary press on the surface and reports
// whether it did.
func (c *Controller) PointerDown(b Button, t Target, at Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b != ButtonPrimary || t != TargetSurface || c.state == Dragging {
		return false
	}
	c.state = Dragging
	c.origin = at
	c.pending = c.pan
	return true
}

// PointerMove moves the visual offset while dragging.
func (c *Controller) PointerMove(at Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Dragging {
		return
	}
	c.pending = Point{X: c.pan.X + at.X - c.origin.X, Y: c.pan.Y + at.Y - c.origin.Y}
}

// PointerUp ends a drag and commits the pan.
func (c *Controller) PointerUp() bool {
	c.mu.Lock()
	if c.state != Dragging {
		c.mu.Unlock()
		return false
	}
	c.state = Idle
	moved := c.pending != c.pan
	c.pan = c.pending
	change := c.changeLocked(ReasonPan)
	c.mu.Unlock()

	if moved {
		c.notify(change)
	}
	return true
}

// Blur cancels a drag without committing it.
func (c *Controller) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Idle
	c.pending = c.pan
}

// Wheel zooms by one tick when the zoom modifier is held: in for negative
// deltaY, out for positive. It reports whether the event was consumed.
func (c *Controller) Wheel(deltaY float64, modifier bool) bool {
	if !modifier || deltaY == 0 {
		return false
	}
	c.mu.Lock()
	next := c.scale * c.opts.WheelFactor
	if deltaY > 0 {
		next = c.scale / c.opts.WheelFactor
	}
	c.setScaleLocked(next)
	return true
}

// ZoomIn increases the scale by one step.
func (c *Controller) ZoomIn() {
	c.mu.Lock()
	c.setScaleLocked(round2(c.scale + c.opts.ZoomStep))
}

// ZoomOut decreases the scale by one step.
func (c *Controller) ZoomOut() {
	c.mu.Lock()
	c.setScaleLocked(round2(c.scale - c.opts.ZoomStep))
}

// SetScale sets the scale, clamped to the configured range.
func (c *Controller) SetScale(s float64) error {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, s)
	}
	c.mu.Lock()
	c.setScaleLocked(s)
	return nil
}

// setScaleLocked must be called with c.mu held and releases it.
func (c *Controller) setScaleLocked(s float64) {
	s = c.clamp(s)
	if s == c.scale {
		c.mu.Unlock()
		return
	}
	c.scale = s
	change := c.changeLocked(ReasonZoom)
	c.mu.Unlock()
	c.notify(change)
}

// Reset restores the default scale and pan.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state = Idle
	c.scale = c.opts.DefaultScale
	c.pan, c.pending = c.opts.DefaultPan, c.opts.DefaultPan
	change := c.changeLocked(ReasonReset)
	c.mu.Unlock()
	c.notify(change)
}

// ScaleToFit picks the scale at which content, measured at the current
// scale, fits a container of the given size minus offset, and recenters
// the pan on the default offset.
func (c *Controller) ScaleToFit(content layout.Box, width, height float64, offset Point) error {
	c.mu.Lock()
	cw, ch := content.Width()/c.scale, content.Height()/c.scale
	aw, ah := width-offset.X, height-offset.Y
	if cw <= 0 || ch <= 0 || aw <= 0 || ah <= 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot fit %vx%v into %vx%v", ErrInvalidScale, cw, ch, aw, ah)
	}
	c.state = Idle
	c.scale = c.clamp(round2(math.Min(aw/cw, ah/ch)))
	c.pan, c.pending = c.opts.DefaultPan, c.opts.DefaultPan
	change := c.changeLocked(ReasonFit)
	c.mu.Unlock()
	c.notify(change)
	return nil
}

func (c *Controller) clamp(s float64) float64 {
	return math.Max(c.opts.MinScale, math.Min(c.opts.MaxScale, s))
}

func (c *Controller) changeLocked(r Reason) Change {
	return Change{Viewport: Viewport{Scale: c.scale, Pan: c.pan, Dragging: c.state == Dragging}, Reason: r}
}

func (c *Controller) notify(ch Change) {
	c.mu.Lock()
	listeners := append([]func(Change){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(ch)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
