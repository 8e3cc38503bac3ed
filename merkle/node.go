package merkle

import (
	"encoding"

	"github.com/servercurio/fabric-sub001/digest"
)

// node is the common contract of internal and leaf nodes.
//
// Ownership runs strictly downward: an internal node owns its children
// through the left/right links. The parent link is a non owning back
// reference used only for invalidation walks and path finding; it must never
// be used to manage a node's lifetime.
type node[V encoding.BinaryMarshaler] interface {
	parent() *internalNode[V]
	setParent(p *internalNode[V])

	// hash returns the node's digest, computing and caching it if needed.
	// It returns nil for an internal node with no children.
	hash() (*digest.Digest, error)

	cached() *digest.Digest
	invalidate()
}

// nodeBase carries the state shared by both node kinds: the owning tree (for
// algorithm and engine access), the parent back reference and the lazily
// cached digest.
type nodeBase[V encoding.BinaryMarshaler] struct {
	tree *Tree[V]
	up   *internalNode[V]
	dig  *digest.Digest
}

func (n *nodeBase[V]) parent() *internalNode[V] { return n.up }

func (n *nodeBase[V]) cached() *digest.Digest { return n.dig }

// invalidate clears the cached digest and cascades the clear upward, stopping
// at the first ancestor that holds no cached digest. Ancestors beyond that
// point are already invalid, so the walk never visits them. This is a pure
// invalidation: nothing is recomputed until the next hash read.
func (n *nodeBase[V]) invalidate() {
	n.dig = nil
	for p := n.up; p != nil && p.dig != nil; p = p.up {
		p.dig = nil
	}
}

// setParent updates the back reference. Re-binding to the current parent is a
// no-op; any real change invalidates this node and its old ancestry first.
func (n *nodeBase[V]) setParent(p *internalNode[V]) {
	if n.up == p {
		return
	}
	n.invalidate()
	n.up = p
}

// internalNode is a branch of the tree. It is empty (no children, only legal
// for the root of an empty tree), partial (one child) or full.
type internalNode[V encoding.BinaryMarshaler] struct {
	nodeBase[V]
	left  node[V]
	right node[V]
}

// setLeft replaces the left child link. Assigning the identical node is a
// no-op; otherwise the digest cache is invalidated before the link moves and
// the new child is re-parented here.
func (in *internalNode[V]) setLeft(c node[V]) {
	if in.left == c {
		return
	}
	in.invalidate()
	in.left = c
	if c != nil {
		c.setParent(in)
	}
}

func (in *internalNode[V]) setRight(c node[V]) {
	if in.right == c {
		return
	}
	in.invalidate()
	in.right = c
	if c != nil {
		c.setParent(in)
	}
}

// hash digests the pair of child digests, substituting the empty sentinel
// for an absent child. An empty internal node has no digest at all.
func (in *internalNode[V]) hash() (*digest.Digest, error) {
	if in.dig != nil {
		return in.dig, nil
	}
	if in.left == nil && in.right == nil {
		return nil, nil
	}
	var left, right *digest.Digest
	var err error
	if in.left != nil {
		if left, err = in.left.hash(); err != nil {
			return nil, err
		}
	}
	if in.right != nil {
		if right, err = in.right.hash(); err != nil {
			return nil, err
		}
	}
	d, err := in.tree.engine.HashPair(in.tree.alg, left, right)
	if err != nil {
		return nil, err
	}
	in.dig = &d
	return in.dig, nil
}

// leafNode holds one stored value.
type leafNode[V encoding.BinaryMarshaler] struct {
	nodeBase[V]
	value V
}

func (l *leafNode[V]) hash() (*digest.Digest, error) {
	if l.dig != nil {
		return l.dig, nil
	}
	d, err := l.tree.engine.HashValue(l.tree.alg, l.value)
	if err != nil {
		return nil, err
	}
	l.dig = &d
	return l.dig, nil
}
