// Package graph turns workflow descriptions into the graph-state tree that
// diagrams are laid out and routed from.
//
// # Tree shape
//
// [Build] returns the top-level sequence of a diagram as []*[Node]. The tree
// has two kinds of nesting:
//
//   - Parallel branches: a [Node] with non-empty Children is a branch point.
//     The node itself sits in the parent sequence and Children holds the
//     other members that run concurrently with it.
//   - Groups: a [KindStepGroup] node carries its own ordered sub-sequence in
//     Data.Steps, structured exactly like the top level and nested without a
//     depth limit.
//
// Every node nested inside a group records the group's ID in ParentID, and
// [NewIndex] builds an id-to-node and id-to-parent table in one pass, so
// consumers never have to rediscover ownership from rendered output.
//
// # Paths
//
// Each node carries the dot-separated path of its source item (Data.Path),
// used only to look up validation errors. A plain item at index i of a
// sequence rooted at P gets "P.i". In a parallel wrapper at index i the first
// member keeps "P.i" and the remaining members are numbered from zero as
// "P.i.parallel.0", "P.i.parallel.1" and so on. The inner sequence of a step
// group at path G is rooted at "G.stepGroup.steps".
//
// # IDs
//
// Node IDs are generated per build (uuid by default, see [Options.IDFunc])
// and are not stable across rebuilds. Identifiers come from the workflow and
// are only unique within their structural scope.
package graph
