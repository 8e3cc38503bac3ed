package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servercurio/fabric-sub001/digest"
	"github.com/servercurio/fabric-sub001/merkle"
	"github.com/servercurio/fabric-sub001/merkletesting"
)

func newTestCodec(t *testing.T) Codec {
	t.Helper()
	codec, err := NewCodec()
	require.NoError(t, err)
	return codec
}

func buildTree(t *testing.T, n int) *merkle.Tree[merkletesting.Blob] {
	t.Helper()
	tree, err := merkle.NewTree[merkletesting.Blob](digest.NewEngine(), digest.Sha256)
	require.NoError(t, err)
	for _, b := range merkletesting.Blobs(n) {
		tree.Add(b)
	}
	return tree
}

func buildMap(t *testing.T, n int) *merkle.Map[merkletesting.Word, merkletesting.Blob] {
	t.Helper()
	m, err := merkle.NewMap[merkletesting.Word, merkletesting.Blob](digest.NewEngine(), digest.Sha256)
	require.NoError(t, err)
	for i, w := range merkletesting.Words(n) {
		_, _, err := m.Put(w, merkletesting.Blobs(n)[i])
		require.NoError(t, err)
	}
	return m
}

func TestTreeRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	for _, n := range []int{0, 1, 2, 5, 8, 13} {
		tree := buildTree(t, n)
		data, err := PersistTree(codec, tree)
		require.NoError(t, err)

		restored, err := RestoreTree(codec, digest.NewEngine(), data, merkletesting.DecodeBlob)
		require.NoError(t, err, "restore failed for %d leaves", n)
		assert.Equal(t, tree.LeafCount(), restored.LeafCount())
		assert.Equal(t, tree.Algorithm(), restored.Algorithm())

		want, err := tree.Hash()
		require.NoError(t, err)
		got, err := restored.Hash()
		require.NoError(t, err)
		if n == 0 {
			assert.Nil(t, got)
		} else {
			assert.True(t, got.Equal(*want))
		}
	}
}

// A tampered leaf survives decoding but cannot reproduce the persisted root.
func TestRestoreTreeDetectsTamperedLeaf(t *testing.T) {
	codec := newTestCodec(t)
	data, err := PersistTree(codec, buildTree(t, 5))
	require.NoError(t, err)

	var env envelope
	require.NoError(t, codec.UnmarshalCBOR(data, &env))
	var body treeBodyV1
	require.NoError(t, codec.UnmarshalCBOR(env.Body, &body))
	body.Leaves[2] = []byte("tampered")
	tampered, err := seal(codec, KindTree, body)
	require.NoError(t, err)

	_, err = RestoreTree(codec, digest.NewEngine(), tampered, merkletesting.DecodeBlob)
	assert.ErrorIs(t, err, ErrDigestMismatch)
}

func TestRestoreTreeDetectsTamperedRoot(t *testing.T) {
	codec := newTestCodec(t)
	data, err := PersistTree(codec, buildTree(t, 3))
	require.NoError(t, err)

	var env envelope
	require.NoError(t, codec.UnmarshalCBOR(data, &env))
	var body treeBodyV1
	require.NoError(t, codec.UnmarshalCBOR(env.Body, &body))
	body.Root[0] ^= 0xFF
	tampered, err := seal(codec, KindTree, body)
	require.NoError(t, err)

	_, err = RestoreTree(codec, digest.NewEngine(), tampered, merkletesting.DecodeBlob)
	assert.ErrorIs(t, err, ErrDigestMismatch)
}

// Kind and version failures are distinct from corruption: the data may be
// perfectly intact and simply not ours to read.
func TestOpenErrorTaxonomy(t *testing.T) {
	codec := newTestCodec(t)
	engine := digest.NewEngine()

	t.Run("wrong kind", func(t *testing.T) {
		data, err := PersistMap(codec, buildMap(t, 3))
		require.NoError(t, err)
		_, err = RestoreTree(codec, engine, data, merkletesting.DecodeBlob)
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("unknown version", func(t *testing.T) {
		data, err := PersistTree(codec, buildTree(t, 2))
		require.NoError(t, err)
		var env envelope
		require.NoError(t, codec.UnmarshalCBOR(data, &env))
		env.Version = 9
		reframed, err := codec.MarshalCBOR(env)
		require.NoError(t, err)
		_, err = RestoreTree(codec, engine, reframed, merkletesting.DecodeBlob)
		assert.ErrorIs(t, err, ErrUnknownVersion)
	})

	t.Run("garbage bytes", func(t *testing.T) {
		_, err := RestoreTree(codec, engine, []byte("not cbor at all"), merkletesting.DecodeBlob)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("leaf count lies", func(t *testing.T) {
		data, err := PersistTree(codec, buildTree(t, 4))
		require.NoError(t, err)
		var env envelope
		require.NoError(t, codec.UnmarshalCBOR(data, &env))
		var body treeBodyV1
		require.NoError(t, codec.UnmarshalCBOR(env.Body, &body))
		body.LeafCount = 99
		reframed, err := seal(codec, KindTree, body)
		require.NoError(t, err)
		_, err = RestoreTree(codec, engine, reframed, merkletesting.DecodeBlob)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("nil engine", func(t *testing.T) {
		data, err := PersistTree(codec, buildTree(t, 2))
		require.NoError(t, err)
		_, err = RestoreTree(codec, nil, data, merkletesting.DecodeBlob)
		assert.ErrorIs(t, err, ErrNilEngine)
	})
}

func TestMapRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	for _, n := range []int{0, 1, 4, 9} {
		m := buildMap(t, n)
		data, err := PersistMap(codec, m)
		require.NoError(t, err)

		restored, err := RestoreMap(codec, digest.NewEngine(), data,
			merkletesting.DecodeWord, merkletesting.DecodeBlob)
		require.NoError(t, err, "restore failed for %d entries", n)
		assert.Equal(t, m.Len(), restored.Len())

		want, err := m.Hash()
		require.NoError(t, err)
		got, err := restored.Hash()
		require.NoError(t, err)
		if n == 0 {
			assert.Nil(t, got)
		} else {
			assert.True(t, got.Equal(*want))
		}

		for _, w := range merkletesting.Words(n) {
			wantV, ok := m.Get(w)
			require.True(t, ok)
			gotV, ok := restored.Get(w)
			require.True(t, ok)
			assert.Equal(t, wantV, gotV)
		}
	}
}

func TestRestoreMapDetectsTamperedValue(t *testing.T) {
	codec := newTestCodec(t)
	data, err := PersistMap(codec, buildMap(t, 5))
	require.NoError(t, err)

	var env envelope
	require.NoError(t, codec.UnmarshalCBOR(data, &env))
	var body mapBodyV1
	require.NoError(t, codec.UnmarshalCBOR(env.Body, &body))
	body.Values[1] = []byte("tampered")
	tampered, err := seal(codec, KindMap, body)
	require.NoError(t, err)

	_, err = RestoreMap(codec, digest.NewEngine(), tampered,
		merkletesting.DecodeWord, merkletesting.DecodeBlob)
	assert.ErrorIs(t, err, ErrDigestMismatch)
}

func TestProbablyContains(t *testing.T) {
	codec := newTestCodec(t)
	engine := digest.NewEngine()
	n := 32
	data, err := PersistMap(codec, buildMap(t, n))
	require.NoError(t, err)

	// Every present key must report "maybe".
	for _, w := range merkletesting.Words(n) {
		ok, err := ProbablyContains(codec, engine, data, w)
		require.NoError(t, err)
		assert.True(t, ok, "present key %q reported absent", w)
	}

	// Absent keys come back negative at roughly the configured rate.
	misses := 0
	for i := 0; i < 200; i++ {
		ok, err := ProbablyContains(codec, engine, data, merkletesting.UniqueBlob("absent-"))
		require.NoError(t, err)
		if !ok {
			misses++
		}
	}
	assert.GreaterOrEqual(t, misses, 190)
}

func TestProbablyContainsEmptyMap(t *testing.T) {
	codec := newTestCodec(t)
	data, err := PersistMap(codec, buildMap(t, 0))
	require.NoError(t, err)

	ok, err := ProbablyContains(codec, digest.NewEngine(), data, merkletesting.Word("anything"))
	require.NoError(t, err)
	assert.False(t, ok)
}
