package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servercurio/fabric-sub001/merkletesting"
)

func collect(t *testing.T, tree *Tree[merkletesting.Blob]) []string {
	t.Helper()
	var out []string
	it := tree.Iterator()
	for it.Next() {
		out = append(out, string(it.Value()))
	}
	require.NoError(t, it.Err())
	return out
}

func addAll(tree *Tree[merkletesting.Blob], values ...string) {
	for _, v := range values {
		tree.Add(merkletesting.Blob(v))
	}
}

func TestIteratorEmptyTree(t *testing.T) {
	tree := newTestTree(t)
	it := tree.Iterator()
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
	assert.Nil(t, it.Value())
}

// Leaves surface in ascending position order. With five adds the first three
// values have been displaced one level down, so enumeration order differs
// from insertion order.
func TestIteratorOrder(t *testing.T) {
	tree := newTestTree(t)
	addAll(tree, "A", "B", "C", "D", "E")
	assert.Equal(t, []string{"C", "B", "D", "A", "E"}, collect(t, tree))
}

func TestIteratorSingleLeaf(t *testing.T) {
	tree := newTestTree(t)
	addAll(tree, "A")
	assert.Equal(t, []string{"A"}, collect(t, tree))
}

// Removing C from the five leaf tree relocates the rightmost leaf E into C's
// vacated slot and collapses one internal node.
func TestRemoveRelocatesRightmost(t *testing.T) {
	tree := newTestTree(t)
	addAll(tree, "A", "B", "C", "D", "E")
	require.Equal(t, uint32(9), tree.NodeCount())

	it := tree.Iterator()
	require.True(t, it.Next())
	require.Equal(t, "C", string(it.Value()))
	require.NoError(t, it.Remove())

	assert.Equal(t, uint32(4), tree.LeafCount())
	assert.Equal(t, uint32(7), tree.NodeCount())
	assert.Equal(t, []string{"A", "E", "B", "D"}, collect(t, tree))

	// The surviving shape digests identically to a tree whose adds land the
	// same values in the same slots.
	same := newTestTree(t)
	addAll(same, "A", "B", "E", "D")
	h1, err := tree.Hash()
	require.NoError(t, err)
	h2, err := same.Hash()
	require.NoError(t, err)
	assert.True(t, h1.Equal(*h2))
}

// A removal keeps the iterator live: everything still pending is yielded.
func TestIteratorContinuesAfterRemove(t *testing.T) {
	tree := newTestTree(t)
	addAll(tree, "A", "B", "C", "D", "E")

	var seen []string
	it := tree.Iterator()
	require.True(t, it.Next())
	seen = append(seen, string(it.Value()))
	require.NoError(t, it.Remove())
	for it.Next() {
		seen = append(seen, string(it.Value()))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"C", "B", "D", "A", "E"}, seen)
}

func TestRemoveAllThroughIterator(t *testing.T) {
	tree := newTestTree(t)
	addAll(tree, "A", "B", "C", "D", "E")

	it := tree.Iterator()
	removed := 0
	for it.Next() {
		require.NoError(t, it.Remove())
		removed++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 5, removed)
	assert.Equal(t, 0, tree.Size())
	assert.Equal(t, uint32(1), tree.NodeCount())

	h, err := tree.Hash()
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestRemoveNotReady(t *testing.T) {
	tree := newTestTree(t)
	addAll(tree, "A", "B")

	it := tree.Iterator()
	assert.ErrorIs(t, it.Remove(), ErrRemoveNotReady)

	require.True(t, it.Next())
	require.NoError(t, it.Remove())
	assert.ErrorIs(t, it.Remove(), ErrRemoveNotReady)
	assert.Nil(t, it.Value())
}

func TestIteratorFailsAfterOutsideMutation(t *testing.T) {
	tree := newTestTree(t)
	addAll(tree, "A", "B", "C")

	it := tree.Iterator()
	require.True(t, it.Next())

	tree.Add(merkletesting.Blob("D"))
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), ErrStaleIterator)
	assert.ErrorIs(t, it.Remove(), ErrStaleIterator)
}

// A removal through one iterator invalidates every other iterator.
func TestCompetingIteratorsFail(t *testing.T) {
	tree := newTestTree(t)
	addAll(tree, "A", "B", "C")

	it1 := tree.Iterator()
	it2 := tree.Iterator()
	require.True(t, it1.Next())
	require.NoError(t, it1.Remove())

	assert.False(t, it2.Next())
	assert.ErrorIs(t, it2.Err(), ErrStaleIterator)
}
