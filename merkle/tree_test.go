package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servercurio/fabric-sub001/digest"
	"github.com/servercurio/fabric-sub001/merkletesting"
)

func newTestTree(t *testing.T) *Tree[merkletesting.Blob] {
	t.Helper()
	tree, err := NewTree[merkletesting.Blob](digest.NewEngine(), digest.Sha256)
	require.NoError(t, err)
	return tree
}

func TestNewTreeRejectsBadArguments(t *testing.T) {
	_, err := NewTree[merkletesting.Blob](nil, digest.Sha256)
	assert.ErrorIs(t, err, ErrNilEngine)

	_, err = NewTree[merkletesting.Blob](digest.NewEngine(), digest.AlgInvalid)
	assert.ErrorIs(t, err, ErrBadAlgorithm)
}

// The root is always materialized: 1 node when empty, 2 with a single leaf,
// and 2n-1 for two or more leaves.
func TestNodeCounts(t *testing.T) {
	tree := newTestTree(t)
	assert.Equal(t, 0, tree.Size())
	assert.Equal(t, uint32(1), tree.NodeCount())

	tree.Add(merkletesting.Blob("first"))
	assert.Equal(t, 1, tree.Size())
	assert.Equal(t, uint32(2), tree.NodeCount())

	for n := uint32(2); n <= 40; n++ {
		tree.Add(merkletesting.UniqueBlob("v"))
		assert.Equal(t, n, tree.LeafCount())
		assert.Equal(t, 2*n-1, tree.NodeCount())
	}
}

func TestEmptyTreeHasNoHash(t *testing.T) {
	tree := newTestTree(t)
	h, err := tree.Hash()
	require.NoError(t, err)
	assert.Nil(t, h)
}

// A single leaf tree digests as pair(value digest, empty sentinel): the
// absent right child is substituted, never skipped.
func TestSingleLeafHash(t *testing.T) {
	engine := digest.NewEngine()
	tree := newTestTree(t)
	v := merkletesting.Blob("only")
	tree.Add(v)

	got, err := tree.Hash()
	require.NoError(t, err)
	require.NotNil(t, got)

	vd, err := engine.HashValue(digest.Sha256, v)
	require.NoError(t, err)
	want, err := engine.HashPair(digest.Sha256, &vd, nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))
}

func TestTwoLeafHash(t *testing.T) {
	engine := digest.NewEngine()
	tree := newTestTree(t)
	a, b := merkletesting.Blob("a"), merkletesting.Blob("b")
	tree.Add(a)
	tree.Add(b)

	got, err := tree.Hash()
	require.NoError(t, err)

	ad, err := engine.HashValue(digest.Sha256, a)
	require.NoError(t, err)
	bd, err := engine.HashValue(digest.Sha256, b)
	require.NoError(t, err)
	want, err := engine.HashPair(digest.Sha256, &ad, &bd)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))
}

func TestHashIsStableUntilMutation(t *testing.T) {
	tree := newTestTree(t)
	for _, b := range merkletesting.Blobs(7) {
		tree.Add(b)
	}

	h1, err := tree.Hash()
	require.NoError(t, err)
	h2, err := tree.Hash()
	require.NoError(t, err)
	assert.True(t, h1.Equal(*h2))

	tree.Add(merkletesting.Blob("more"))
	h3, err := tree.Hash()
	require.NoError(t, err)
	assert.False(t, h1.Equal(*h3))
}

func TestHashDependsOnOrder(t *testing.T) {
	forward := newTestTree(t)
	forward.Add(merkletesting.Blob("a"))
	forward.Add(merkletesting.Blob("b"))
	reversed := newTestTree(t)
	reversed.Add(merkletesting.Blob("b"))
	reversed.Add(merkletesting.Blob("a"))

	hf, err := forward.Hash()
	require.NoError(t, err)
	hr, err := reversed.Hash()
	require.NoError(t, err)
	assert.False(t, hf.Equal(*hr))
}

// Adding the output of Leaves to an empty tree must reproduce the original
// root digest for any size, including sizes where leaves span two levels.
func TestLeavesReplayReproducesHash(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 6, 7, 8, 11, 16, 23} {
		tree := newTestTree(t)
		for _, b := range merkletesting.Blobs(n) {
			tree.Add(b)
		}
		want, err := tree.Hash()
		require.NoError(t, err)

		replay := newTestTree(t)
		for _, b := range tree.Leaves() {
			replay.Add(b)
		}
		got, err := replay.Hash()
		require.NoError(t, err)
		assert.True(t, got.Equal(*want), "replay mismatch for %d leaves", n)
	}
}

func TestAccessors(t *testing.T) {
	engine := digest.NewEngine()
	tree, err := NewTree[merkletesting.Blob](engine, digest.Sha384)
	require.NoError(t, err)
	assert.Equal(t, digest.Sha384, tree.Algorithm())
	assert.Same(t, engine, tree.Engine())
}
