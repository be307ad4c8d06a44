package layout

import "errors"

// ErrNoBox is returned when none of the requested nodes has a box.
var ErrNoBox = errors.New("no box for node")

// BoxQuery reports the rectangle of a rendered node relative to a container.
// An empty container means the diagram root. Implementations return false,
// never an error, when the node is not currently rendered.
type BoxQuery interface {
	Box(nodeID, container string) (Box, bool)
}

// QueryFunc adapts a function to [BoxQuery].
type QueryFunc func(nodeID, container string) (Box, bool)

// Box implements [BoxQuery].
func (f QueryFunc) Box(nodeID, container string) (Box, bool) { return f(nodeID, container) }

// MapQuery answers box queries from absolute boxes keyed by node ID. A
// container-relative query subtracts the container's own top-left corner.
type MapQuery map[string]Box

// Box implements [BoxQuery].
func (q MapQuery) Box(nodeID, container string) (Box, bool) {
	b, ok := q[nodeID]
	if !ok {
		return Box{}, false
	}
	if container == "" {
		return b, true
	}
	c, ok := q[container]
	if !ok {
		return Box{}, false
	}
	return b.Translate(-c.Left, -c.Top), true
}

// Extent returns the union of the boxes of ids that resolve.
func Extent(q BoxQuery, container string, ids ...string) (Box, error) {
	var (
		out   Box
		found bool
	)
	for _, id := range ids {
		b, ok := q.Box(id, container)
		if !ok {
			continue
		}
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	if !found {
		return Box{}, ErrNoBox
	}
	out.NodeID = ""
	return out, nil
}

// Zoom reports the boxes of q the way they measure on screen at scale.
// A non-positive scale leaves boxes untouched.
func Zoom(q BoxQuery, scale float64) BoxQuery {
	return zoomed{query: q, scale: scale}
}

type zoomed struct {
	query BoxQuery
	scale float64
}

func (z zoomed) Box(nodeID, container string) (Box, bool) {
	b, ok := z.query.Box(nodeID, container)
	if !ok || z.scale <= 0 {
		return b, ok
	}
	return Box{
		NodeID: b.NodeID,
		Left:   b.Left * z.scale,
		Top:    b.Top * z.scale,
		Right:  b.Right * z.scale,
		Bottom: b.Bottom * z.scale,
	}, true
}
