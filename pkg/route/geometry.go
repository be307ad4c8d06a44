package route

import (
	"math"

	"github.com/matzehuels/stagegraph/pkg/layout"
)

// Geometry holds the fixed offsets used when shaping paths. All values are in
// routing space.
type Geometry struct {
	// CurveRadius is the size of every rounded corner.
	CurveRadius float64
	// FanInOffset is how far left of a branch node fan-in paths start.
	FanInOffset float64
	// FanInGroupOffsetY shifts the fan-in start inside expanded groups.
	FanInGroupOffsetY float64
	// FanOutRailOffset places the fan-out rail right of the widest member.
	FanOutRailOffset float64
	// NextGroupOffsetY shifts the fan-out target when it is an expanded group.
	NextGroupOffsetY float64
	// InGroupOffsetY shifts the fan-out target for members inside a group
	// joining a node that is not a group.
	InGroupOffsetY float64
	// JoinOffsetX moves the fan-out join point into an expanded group.
	JoinOffsetX float64
}

// DefaultGeometry returns the standard path geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		CurveRadius:       20,
		FanInOffset:       45,
		FanInGroupOffsetY: -30,
		FanOutRailOffset:  20,
		NextGroupOffsetY:  -10,
		InGroupOffsetY:    30,
		JoinOffsetX:       5,
	}
}

// Direction selects which box edges a sequential path connects.
type Direction int

const (
	// RightToLeft connects the right edge of the source to the left edge of
	// the target.
	RightToLeft Direction = iota
	// LeftToLeft connects a group's left edge to its first inner node.
	LeftToLeft
	// LeftToRight connects the left edge of the source to the right edge of
	// the target.
	LeftToRight
	// RightToRight connects a group's last inner node to the group's right edge.
	RightToRight
)

func (d Direction) String() string {
	switch d {
	case LeftToLeft:
		return "left-to-left"
	case LeftToRight:
		return "left-to-right"
	case RightToRight:
		return "right-to-right"
	default:
		return "right-to-left"
	}
}

func (d Direction) anchors(from, to layout.Box) (Point, Point) {
	s := Point{X: from.Right, Y: from.CenterY()}
	if d == LeftToLeft || d == LeftToRight {
		s.X = from.Left
	}
	e := Point{X: to.Left, Y: to.CenterY()}
	if d == LeftToRight || d == RightToRight {
		e.X = to.Right
	}
	return s, e
}

// Scaled converts a measured coordinate into routing space. Measured boxes
// grow with the zoom factor, so they are divided by scale and rounded to two
// decimals. A scale of 1 (or a non-positive one) leaves v unchanged.
func Scaled(v, scale float64) float64 {
	switch {
	case scale > 1:
		return round2(v / scale)
	case scale > 0 && scale < 1:
		return round2(v * (1 / scale))
	default:
		return v
	}
}

func scaledBox(b layout.Box, scale float64) layout.Box {
	return layout.Box{
		NodeID: b.NodeID,
		Left:   Scaled(b.Left, scale),
		Top:    Scaled(b.Top, scale),
		Right:  Scaled(b.Right, scale),
		Bottom: Scaled(b.Bottom, scale),
	}
}

// elbow leads from s horizontally to the vertical line at x, follows it to
// t.Y and continues horizontally to t, rounding both corners by r. The radius
// shrinks to fit short runs so the path never doubles back. Points on the same
// row are joined by a straight line.
func elbow(s Point, x float64, t Point, r float64) []Command {
	b := &pathBuilder{}
	b.move(s)
	if round2(s.Y) == round2(t.Y) {
		return b.line(t).cmds
	}
	r = max(0, min(r, math.Abs(t.Y-s.Y)/2, math.Abs(x-s.X), math.Abs(t.X-x)))
	dy := sign(t.Y - s.Y)
	in, out := sign(x-s.X), sign(t.X-x)

	if s.X != x-in*r {
		b.line(Point{x - in*r, s.Y})
	}
	if r > 0 {
		b.quad(Point{x, s.Y}, Point{x, s.Y + dy*r})
	}
	if s.Y+dy*r != t.Y-dy*r {
		b.line(Point{x, t.Y - dy*r})
	}
	if r > 0 {
		b.quad(Point{x, t.Y}, Point{x + out*r, t.Y})
	}
	if x+out*r != t.X {
		b.line(t)
	}
	return b.cmds
}

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
