package graph

// Walk visits every node depth-first in sequence order: each member of a
// parallel set, then the inner sequence of each group. The parent passed to
// fn is the enclosing group, or nil at the top level. Returning false from fn
// stops the walk.
func Walk(nodes []*Node, fn func(n, parent *Node) bool) {
	walk(nodes, nil, fn)
}

func walk(nodes []*Node, parent *Node, fn func(n, parent *Node) bool) bool {
	for _, n := range nodes {
		for _, m := range n.Members() {
			if !fn(m, parent) {
				return false
			}
			if m.IsGroup() && !walk(m.Data.Steps, m, fn) {
				return false
			}
		}
	}
	return true
}

// Find returns the first node matching pred, or nil.
func Find(nodes []*Node, pred func(*Node) bool) *Node {
	var found *Node
	Walk(nodes, func(n, _ *Node) bool {
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindIdentifier returns the first node with the given identifier, or nil.
func FindIdentifier(nodes []*Node, identifier string) *Node {
	return Find(nodes, func(n *Node) bool { return n.Identifier == identifier })
}

// Count returns the number of nodes in the tree, nested ones included.
func Count(nodes []*Node) int {
	c := 0
	Walk(nodes, func(*Node, *Node) bool {
		c++
		return true
	})
	return c
}

// Index is an id-to-node and id-to-parent lookup table over one built tree.
type Index struct {
	nodes   map[string]*Node
	parents map[string]string
}

// NewIndex indexes every node of the tree.
func NewIndex(nodes []*Node) *Index {
	ix := &Index{nodes: make(map[string]*Node), parents: make(map[string]string)}
	Walk(nodes, func(n, parent *Node) bool {
		ix.nodes[n.ID] = n
		if parent != nil {
			ix.parents[n.ID] = parent.ID
		}
		return true
	})
	return ix
}

// Node returns the node with the given ID.
func (ix *Index) Node(id string) (*Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Parent returns the group enclosing the node with the given ID.
func (ix *Index) Parent(id string) (*Node, bool) {
	pid, ok := ix.parents[id]
	if !ok {
		return nil, false
	}
	return ix.Node(pid)
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int { return len(ix.nodes) }
