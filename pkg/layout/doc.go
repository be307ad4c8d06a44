// Package layout measures diagram boxes: the rectangles rendered nodes occupy
// and the space step groups must reserve for their nested sub-graphs.
//
// # Boxes
//
// A [Box] is the measured rectangle of a rendered node in the coordinate
// space of some container, with y growing downward. Boxes are obtained
// through a [BoxQuery], which reports false for nodes that are not rendered
// (collapsed or not yet mounted). [MapQuery] answers queries from a plain
// map of absolute boxes and translates them into container space.
//
// # Group dimensions
//
// [GroupDimension] computes the size a group's interior needs from the
// measured sizes of its members. Each top-level entry of the group forms a
// column: the entry and its parallel siblings stacked vertically, every
// member followed by a gap ([Spacing].NodeGap for the first, ParallelGap for
// the rest). A column is as wide as its widest member plus NodeGap. The
// interior is as tall as its tallest column and as wide as all columns
// together minus the trailing gap.
//
// Members that are expanded groups themselves contribute their own interior
// plus fixed chrome (GroupPadHeight, GroupPadWidth), and matrix groups add
// MatrixExtraHeight and MatrixExtraWidth on top; see [Spacing.Outer].
//
// # Two-phase aggregation
//
// [Aggregate] walks the tree post-order and computes every group's dimension
// into a fresh [Table], children before parents. Nothing is published until
// [Store.Commit] swaps the table in, so readers never observe a partially
// updated set of dimensions.
//
// # Flow placement
//
// [Flow] is a simple left-to-right placement used by previews and tests in
// place of the external flex layout: columns side by side, parallel members
// stacked below the first, groups sized from their aggregated dimension.
package layout
