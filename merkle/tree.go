package merkle

import (
	"encoding"
	"fmt"

	"github.com/servercurio/fabric-sub001/digest"
)

// Tree is an incrementally hashed, nearly complete binary tree of values.
//
// Every level of the tree is fully populated except possibly the last, which
// fills strictly left to right. The invariant holds before and after every
// Add and every iterator removal, and is what makes the position arithmetic
// of positions.go valid. Subtree digests are computed lazily on read and
// cached per node; any mutation invalidates the caches along the affected
// ancestry only.
//
// A Tree is not safe for concurrent use. Mutation during iteration is
// detected by a modification counter and fails the iterator, it is not
// prevented.
type Tree[V encoding.BinaryMarshaler] struct {
	engine *digest.Engine
	alg    digest.Algorithm

	// root is always present, even for an empty tree.
	root *internalNode[V]

	// rightmost is a non owning cursor to the leaf in the last position,
	// recomputed after every structural change. It designates the node used
	// for shape preserving removal.
	rightmost *leafNode[V]

	leafCount uint32
	nodeCount uint32

	// mods counts structural mutations and is what iterators check to fail
	// fast on concurrent modification.
	mods uint64
}

// NewTree builds an empty tree that digests values with the given engine and
// algorithm.
func NewTree[V encoding.BinaryMarshaler](engine *digest.Engine, alg digest.Algorithm) (*Tree[V], error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrBadAlgorithm, alg)
	}
	t := &Tree[V]{engine: engine, alg: alg}
	t.root = &internalNode[V]{nodeBase: nodeBase[V]{tree: t}}
	t.nodeCount = 1
	return t, nil
}

// Size returns the number of stored values.
func (t *Tree[V]) Size() int { return int(t.leafCount) }

func (t *Tree[V]) LeafCount() uint32 { return t.leafCount }

// NodeCount returns the total node count, internal nodes and leaves, root
// included.
func (t *Tree[V]) NodeCount() uint32 { return t.nodeCount }

func (t *Tree[V]) Algorithm() digest.Algorithm { return t.alg }

func (t *Tree[V]) Engine() *digest.Engine { return t.engine }

// Hash returns the aggregate digest of the whole tree, computing and caching
// any invalidated subtree digests on the way. An empty tree has no digest
// and returns nil.
func (t *Tree[V]) Hash() (*digest.Digest, error) {
	return t.root.hash()
}

// Add appends a value, preserving the nearly complete shape.
//
// The first two leaves become the root's direct children. After that the new
// leaf is spliced in at the insertion point: the occupant of that slot and
// the new leaf become the children of a fresh internal node which takes the
// occupant's place. Digest caches along the touched ancestry are invalidated
// as the links move, so the next Hash read is correct without any explicit
// recomputation here.
func (t *Tree[V]) Add(value V) {
	leaf := &leafNode[V]{nodeBase: nodeBase[V]{tree: t}, value: value}

	switch {
	case t.leafCount == 0:
		t.root.setLeft(leaf)
	case t.leafCount == 1:
		t.root.setRight(leaf)
	default:
		nav := navigator[V]{t}
		at := nav.insertionNode()
		atParent := at.parent()
		onLeft := atParent.left == at

		in := &internalNode[V]{nodeBase: nodeBase[V]{tree: t}}
		in.setLeft(at)
		in.setRight(leaf)
		if onLeft {
			atParent.setLeft(in)
		} else {
			atParent.setRight(in)
		}
		t.nodeCount++
	}

	t.leafCount++
	t.nodeCount++
	t.rightmost = leaf
	t.mods++
}

// Leaves returns the stored values ordered so that adding them to an empty
// tree reproduces this tree slot for slot, including the root digest. This
// is the order snapshots persist.
func (t *Tree[V]) Leaves() []V {
	out := make([]V, 0, t.leafCount)
	nav := navigator[V]{t}
	n := uint64(t.leafCount)
	for k := uint64(1); k <= n; k++ {
		leaf := nav.nodeAt(AddOrderPosition(n, k)).(*leafNode[V])
		out = append(out, leaf.value)
	}
	return out
}

// removeLeaf unlinks the given leaf while preserving the nearly complete
// shape: the rightmost leaf is detached first, collapsing its parent if that
// parent is not the root, and is then reused in the removed leaf's slot.
// This is the swap-with-last pattern of binary heap deletion, carrying
// digests instead of priorities.
func (t *Tree[V]) removeLeaf(removed *leafNode[V]) {
	rightmost := t.rightmost
	rp := rightmost.parent()
	internalRemoved := false

	if rp == t.root {
		// No internal node to collapse; just vacate the slot.
		if t.root.right == node[V](rightmost) {
			t.root.setRight(nil)
		} else {
			t.root.setLeft(nil)
		}
	} else {
		// Collapse: the surviving sibling takes the parent's own slot.
		var sibling node[V]
		if rp.right == node[V](rightmost) {
			sibling = rp.left
		} else {
			sibling = rp.right
		}
		gp := rp.parent()
		onLeft := gp.left == node[V](rp)
		rp.setLeft(nil)
		rp.setRight(nil)
		if onLeft {
			gp.setLeft(sibling)
		} else {
			gp.setRight(sibling)
		}
		rp.setParent(nil)
		internalRemoved = true
	}
	rightmost.setParent(nil)

	if removed != rightmost {
		// Reuse the rightmost leaf node in the removed leaf's old slot. The
		// parent is read after the collapse: if the removed leaf was the
		// rightmost leaf's sibling it has just been spliced one level up.
		p := removed.parent()
		if p.left == node[V](removed) {
			p.setLeft(rightmost)
		} else {
			p.setRight(rightmost)
		}
		removed.setParent(nil)
	}

	t.leafCount--
	if internalRemoved {
		t.nodeCount -= 2
	} else {
		t.nodeCount--
	}

	switch {
	case t.leafCount > 2:
		nav := navigator[V]{t}
		t.rightmost = nav.nodeAt(uint64(t.nodeCount)).(*leafNode[V])
	case t.leafCount == 2:
		t.rightmost = t.root.right.(*leafNode[V])
	case t.leafCount == 1:
		if t.root.left != nil {
			t.rightmost = t.root.left.(*leafNode[V])
		} else {
			t.rightmost = t.root.right.(*leafNode[V])
		}
	default:
		t.rightmost = nil
	}

	t.mods++
}
