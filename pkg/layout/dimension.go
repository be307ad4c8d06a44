package layout

// DimensionType tags what a dimension was measured from.
type DimensionType string

const (
	DimensionLeaf      DimensionType = ""
	DimensionStepGroup DimensionType = "STEP_GROUP"
	DimensionMatrix    DimensionType = "matrix"
)

// Dimension is the size of a node. For groups it is the size of the interior
// computed by [GroupDimension], without the group's own chrome.
type Dimension struct {
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Type      DimensionType `json:"type,omitempty"`
	Collapsed bool          `json:"isNodeCollapsed,omitempty"`
}

// IsGroup reports whether the dimension belongs to a group.
func (d Dimension) IsGroup() bool {
	return d.Type == DimensionStepGroup || d.Type == DimensionMatrix
}

// Spacing holds the fixed gaps and chrome sizes used when summing dimensions.
type Spacing struct {
	NodeGap           float64
	ParallelGap       float64
	GroupPadHeight    float64
	GroupPadWidth     float64
	MatrixExtraHeight float64
	MatrixExtraWidth  float64
}

// DefaultSpacing returns the standard diagram spacing.
func DefaultSpacing() Spacing {
	return Spacing{
		NodeGap:           20,
		ParallelGap:       120,
		GroupPadHeight:    68,
		GroupPadWidth:     82,
		MatrixExtraHeight: 45,
		MatrixExtraWidth:  -20,
	}
}

// Outer returns the size d occupies inside its parent. Expanded groups add
// their chrome; collapsed groups and leaves occupy exactly their dimension.
func (s Spacing) Outer(d Dimension) (width, height float64) {
	width, height = d.Width, d.Height
	if !d.IsGroup() || d.Collapsed {
		return width, height
	}
	width += s.GroupPadWidth
	height += s.GroupPadHeight
	if d.Type == DimensionMatrix {
		width += s.MatrixExtraWidth
		height += s.MatrixExtraHeight
	}
	return width, height
}
