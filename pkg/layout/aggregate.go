package layout

import (
	"maps"
	"sync"

	"github.com/matzehuels/stagegraph/pkg/graph"
)

// Table maps node IDs to dimensions.
type Table map[string]Dimension

// GroupDimension computes the interior size of a group whose top-level
// sequence is steps. Sizes are looked up in dims; missing entries count as
// zero.
func GroupDimension(steps []*graph.Node, dims Table, sp Spacing) Dimension {
	var width, height float64
	for _, n := range steps {
		var colWidth, colHeight float64
		for k, m := range n.Members() {
			w, h := sp.Outer(dims[m.ID])
			gap := sp.NodeGap
			if k > 0 {
				gap = sp.ParallelGap
			}
			colHeight += h + gap
			colWidth = max(colWidth, w)
		}
		width += colWidth + sp.NodeGap
		height = max(height, colHeight)
	}
	if len(steps) > 0 {
		width -= sp.NodeGap
	}
	return Dimension{Width: width, Height: height}
}

// Aggregate computes the dimension of every group in the tree, post-order.
// Leaf sizes come from measured; groups listed in collapsed keep their
// measured size and are tagged collapsed. The result holds leaves and groups
// and is not published anywhere until committed to a [Store].
func Aggregate(nodes []*graph.Node, measured Table, collapsed map[string]bool, sp Spacing) Table {
	out := make(Table, len(measured))
	aggregate(nodes, measured, collapsed, sp, out)
	return out
}

func aggregate(nodes []*graph.Node, measured Table, collapsed map[string]bool, sp Spacing, out Table) {
	for _, n := range nodes {
		for _, m := range n.Members() {
			if !m.IsGroup() {
				out[m.ID] = measured[m.ID]
				continue
			}
			typ := DimensionStepGroup
			if m.Matrix() {
				typ = DimensionMatrix
			}
			if collapsed[m.ID] {
				d := measured[m.ID]
				d.Type, d.Collapsed = typ, true
				out[m.ID] = d
				continue
			}
			aggregate(m.Data.Steps, measured, collapsed, sp, out)
			d := GroupDimension(m.Data.Steps, out, sp)
			d.Type = typ
			out[m.ID] = d
		}
	}
}

// Store holds the committed dimensions of a diagram. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	dims    Table
	version uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{dims: Table{}}
}

// Commit replaces the stored dimensions with t in one step.
func (s *Store) Commit(t Table) {
	next := maps.Clone(t)
	if next == nil {
		next = Table{}
	}
	s.mu.Lock()
	s.dims = next
	s.version++
	s.mu.Unlock()
}

// Get returns the committed dimension of a node.
func (s *Store) Get(id string) (Dimension, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dims[id]
	return d, ok
}

// Snapshot returns a copy of the committed table.
func (s *Store) Snapshot() Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.dims)
}

// Version counts commits.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
