package merkle

import "encoding"

// navigator binds the position arithmetic of positions.go to a concrete
// tree, resolving a position into a node by replaying the path over real
// child links.
type navigator[V encoding.BinaryMarshaler] struct {
	t *Tree[V]
}

// fetch walks the path from the root. It stops early, returning the current
// node, if it reaches a leaf before the path completes or if a required
// child link is absent.
func (n navigator[V]) fetch(path Path) node[V] {
	var cur node[V] = n.t.root
	for {
		in, ok := cur.(*internalNode[V])
		if !ok {
			return cur
		}
		switch path.Next() {
		case StepDone:
			return cur
		case StepLeft:
			if in.left == nil {
				return cur
			}
			cur = in.left
		case StepRight:
			if in.right == nil {
				return cur
			}
			cur = in.right
		}
	}
}

// nodeAt resolves the node at a 1-based position.
func (n navigator[V]) nodeAt(position uint64) node[V] {
	return n.fetch(PathTo(position))
}

// insertionNode resolves the node occupying the slot where the next leaf
// must be spliced in.
func (n navigator[V]) insertionNode() node[V] {
	return n.fetch(PathTo(InsertionPoint(uint64(n.t.nodeCount))))
}
