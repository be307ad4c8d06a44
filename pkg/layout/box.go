package layout

import "math"

// Box is the measured rectangle of a rendered node. Coordinates are relative
// to the container the box was queried against; y grows downward.
type Box struct {
	NodeID string  `json:"nodeId,omitempty"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Rect returns the box with the given origin and size.
func Rect(id string, left, top, width, height float64) Box {
	return Box{NodeID: id, Left: left, Top: top, Right: left + width, Bottom: top + height}
}

// Width returns the horizontal span of the box.
func (b Box) Width() float64 { return b.Right - b.Left }

// Height returns the vertical span of the box.
func (b Box) Height() float64 { return b.Bottom - b.Top }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return (b.Left + b.Right) / 2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return (b.Top + b.Bottom) / 2 }

// Translate returns the box moved by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	b.Left += dx
	b.Right += dx
	b.Top += dy
	b.Bottom += dy
	return b
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		NodeID: b.NodeID,
		Left:   math.Min(b.Left, o.Left),
		Top:    math.Min(b.Top, o.Top),
		Right:  math.Max(b.Right, o.Right),
		Bottom: math.Max(b.Bottom, o.Bottom),
	}
}

// Dimension returns the size of the box as a leaf dimension.
func (b Box) Dimension() Dimension {
	return Dimension{Width: b.Width(), Height: b.Height()}
}
