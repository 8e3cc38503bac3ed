package merkle

import "encoding"

// Iterator enumerates a tree's leaf values.
//
// The work list is a queue seeded with the root: internal nodes are expanded
// by appending their children, leaves are yielded as they surface. Because
// every internal node occupies a lower position than every leaf, all
// expansion happens before the first value is yielded and the enumeration
// visits leaves in ascending position order. That also makes removal during
// iteration sound: a relocated rightmost leaf is still pending by reference,
// and no pending entry can be an internal node that a collapse detaches.
//
// Iteration is fail fast: a structural mutation made through any other
// handle is detected on the next operation via the tree's modification
// counter, and that operation fails with ErrStaleIterator.
type Iterator[V encoding.BinaryMarshaler] struct {
	tree *Tree[V]
	mods uint64
	work []node[V]

	// last is the leaf returned by the most recent Next, cleared by Remove.
	last *leafNode[V]
	err  error
}

// Iterator starts a new enumeration of the tree's current contents.
func (t *Tree[V]) Iterator() *Iterator[V] {
	it := &Iterator[V]{tree: t, mods: t.mods}
	if t.leafCount > 0 {
		it.work = append(it.work, t.root)
	}
	return it
}

func (it *Iterator[V]) check() error {
	if it.mods != it.tree.mods {
		return ErrStaleIterator
	}
	return nil
}

// Next advances to the next leaf, reporting false when the enumeration is
// exhausted or has failed. Exhaustion and failure are distinguished by Err.
func (it *Iterator[V]) Next() bool {
	if it.err != nil {
		return false
	}
	if err := it.check(); err != nil {
		it.err = err
		return false
	}
	it.last = nil
	for len(it.work) > 0 {
		n := it.work[0]
		it.work = it.work[1:]
		switch n := n.(type) {
		case *leafNode[V]:
			it.last = n
			return true
		case *internalNode[V]:
			if n.left != nil {
				it.work = append(it.work, n.left)
			}
			if n.right != nil {
				it.work = append(it.work, n.right)
			}
		}
	}
	return false
}

// Value returns the leaf value produced by the last successful Next. It is
// the zero value before the first Next and after a Remove.
func (it *Iterator[V]) Value() V {
	var zero V
	if it.last == nil {
		return zero
	}
	return it.last.value
}

// Err returns the error that terminated the iteration, if any.
func (it *Iterator[V]) Err() error { return it.err }

// Remove deletes the leaf returned by the last Next, preserving the tree
// shape. It is valid exactly once per successful Next; calling it before any
// Next, or twice, fails with ErrRemoveNotReady and leaves the tree intact.
// The iterator re-arms itself against the tree's new modification count and
// may continue enumerating.
func (it *Iterator[V]) Remove() error {
	if err := it.check(); err != nil {
		it.err = err
		return err
	}
	if it.last == nil {
		return ErrRemoveNotReady
	}
	it.tree.removeLeaf(it.last)
	it.mods = it.tree.mods
	it.last = nil
	return nil
}
