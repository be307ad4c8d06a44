// Package route computes connector paths between already placed node boxes.
//
// Boxes are never computed here. [Route] asks a [layout.BoxQuery] for the
// rectangle of every node it links, normalizes the measured coordinates by
// the viewport scale (see [Scaled]) and produces one [PathSpec] per edge,
// keyed "from->to" by node ID.
//
// # Edge shapes
//
//   - Sequential: right edge midpoint of one node to the left edge midpoint
//     of the next. Equal midpoints give a straight line, otherwise an elbow
//     turning at the horizontal midpoint with rounded corners.
//   - Fan-in (key suffix "#fan-in"): from a point left of a branch node to
//     the left edge of each parallel sibling.
//   - Fan-out (key suffix "#fan-out"): from the right edge of every member of
//     a parallel set to a shared vertical rail, then into the node that
//     follows the set.
//   - Group boundary: a group's left edge to its first inner node, and its
//     last inner node to the group's right edge.
//   - Terminals: the synthetic start, create and end nodes bounding the
//     diagram.
//
// # Degradation
//
// An edge whose endpoint box does not resolve still gets an entry, with no
// commands. Routing never fails; at worst fewer links are drawn.
package route
