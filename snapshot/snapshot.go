package snapshot

import (
	"bytes"
	"encoding"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/servercurio/fabric-sub001/bloom"
	"github.com/servercurio/fabric-sub001/digest"
	"github.com/servercurio/fabric-sub001/merkle"
)

const (
	KindTree uint16 = 1
	KindMap  uint16 = 2

	VersionV1 uint16 = 1

	// Bloom sidecar sizing: ~1% false positive rate.
	bloomBitsPerKey = 10
	bloomHashes     = 7
)

// envelope is the outer frame of every snapshot: the kind and format
// version are resolved before any body decoding is attempted, so "cannot
// understand this data" surfaces distinctly from "this data is corrupt".
type envelope struct {
	Kind    uint16          `cbor:"1,keyasint"`
	Version uint16          `cbor:"2,keyasint"`
	Body    cbor.RawMessage `cbor:"3,keyasint"`
}

type treeBodyV1 struct {
	Algorithm uint32   `cbor:"1,keyasint"`
	LeafCount uint32   `cbor:"2,keyasint"`
	Root      []byte   `cbor:"3,keyasint"`
	Leaves    [][]byte `cbor:"4,keyasint"`
}

type mapBodyV1 struct {
	Algorithm  uint32   `cbor:"1,keyasint"`
	EntryCount uint32   `cbor:"2,keyasint"`
	Root       []byte   `cbor:"3,keyasint"`
	Keys       [][]byte `cbor:"4,keyasint"`
	Values     [][]byte `cbor:"5,keyasint"`
	Bloom      []byte   `cbor:"6,keyasint"`
}

// PersistTree renders the tree as a self-verifying snapshot: algorithm,
// leaf count, root digest and the leaf values in replay order.
func PersistTree[V encoding.BinaryMarshaler](codec Codec, t *merkle.Tree[V]) ([]byte, error) {
	root, err := t.Hash()
	if err != nil {
		return nil, err
	}
	body := treeBodyV1{
		Algorithm: uint32(t.Algorithm()),
		LeafCount: t.LeafCount(),
	}
	if root != nil {
		body.Root = root.Bytes()
	}
	for _, v := range t.Leaves() {
		b, err := v.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("snapshot: marshaling leaf: %w", err)
		}
		body.Leaves = append(body.Leaves, b)
	}
	return seal(codec, KindTree, body)
}

// RestoreTree rebuilds a tree from a snapshot produced by PersistTree,
// decoding each leaf with decode, and verifies the rebuilt root digest
// against the persisted one. A mismatch is fatal: the returned error wraps
// ErrDigestMismatch and no tree is returned.
func RestoreTree[V encoding.BinaryMarshaler](
	codec Codec,
	engine *digest.Engine,
	data []byte,
	decode func([]byte) (V, error),
) (*merkle.Tree[V], error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	var body treeBodyV1
	if err := open(codec, data, KindTree, &body); err != nil {
		return nil, err
	}
	if uint32(len(body.Leaves)) != body.LeafCount {
		return nil, fmt.Errorf("%w: %d leaves recorded, %d present", ErrMalformed, body.LeafCount, len(body.Leaves))
	}

	t, err := merkle.NewTree[V](engine, digest.Algorithm(body.Algorithm))
	if err != nil {
		return nil, err
	}
	for _, lb := range body.Leaves {
		v, err := decode(lb)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding leaf: %v", ErrMalformed, err)
		}
		t.Add(v)
	}

	if err := verifyRoot(t.Hash, body.Root); err != nil {
		return nil, err
	}
	return t, nil
}

// PersistMap renders the map's backing tree of key/value pairs plus a bloom
// filter sidecar over the key digests, so ProbablyContains can answer
// membership against the raw snapshot bytes.
func PersistMap[K merkle.Key, V encoding.BinaryMarshaler](codec Codec, m *merkle.Map[K, V]) ([]byte, error) {
	t := m.Tree()
	root, err := t.Hash()
	if err != nil {
		return nil, err
	}
	alg := t.Algorithm()
	body := mapBodyV1{
		Algorithm:  uint32(alg),
		EntryCount: t.LeafCount(),
	}
	if root != nil {
		body.Root = root.Bytes()
	}

	entries := t.Leaves()
	engine := t.Engine()
	var keyDigests [][]byte
	for _, e := range entries {
		kb, err := e.Key().MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("snapshot: marshaling key: %w", err)
		}
		vb, err := e.Value().MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("snapshot: marshaling value: %w", err)
		}
		body.Keys = append(body.Keys, kb)
		body.Values = append(body.Values, vb)

		kd, err := engine.HashValue(alg, e.Key())
		if err != nil {
			return nil, err
		}
		keyDigests = append(keyDigests, kd.Bytes())
	}

	if len(entries) > 0 {
		region, err := buildBloom(keyDigests, uint16(alg.Size()))
		if err != nil {
			return nil, err
		}
		body.Bloom = region
	}

	return seal(codec, KindMap, body)
}

// RestoreMap rebuilds a map from a snapshot produced by PersistMap and
// verifies the rebuilt aggregate digest against the persisted one.
func RestoreMap[K merkle.Key, V encoding.BinaryMarshaler](
	codec Codec,
	engine *digest.Engine,
	data []byte,
	decodeKey func([]byte) (K, error),
	decodeValue func([]byte) (V, error),
) (*merkle.Map[K, V], error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	var body mapBodyV1
	if err := open(codec, data, KindMap, &body); err != nil {
		return nil, err
	}
	if len(body.Keys) != len(body.Values) || uint32(len(body.Keys)) != body.EntryCount {
		return nil, fmt.Errorf("%w: %d entries recorded, %d keys, %d values",
			ErrMalformed, body.EntryCount, len(body.Keys), len(body.Values))
	}

	m, err := merkle.NewMap[K, V](engine, digest.Algorithm(body.Algorithm))
	if err != nil {
		return nil, err
	}
	for i := range body.Keys {
		k, err := decodeKey(body.Keys[i])
		if err != nil {
			return nil, fmt.Errorf("%w: decoding key: %v", ErrMalformed, err)
		}
		v, err := decodeValue(body.Values[i])
		if err != nil {
			return nil, fmt.Errorf("%w: decoding value: %v", ErrMalformed, err)
		}
		if _, _, err := m.Put(k, v); err != nil {
			return nil, err
		}
	}

	if err := verifyRoot(m.Hash, body.Root); err != nil {
		return nil, err
	}
	return m, nil
}

// ProbablyContains consults a map snapshot's bloom sidecar for key without
// restoring the map. False means definitely absent; true means the key may
// be present and only a restore (or the lookup of a live map) can confirm.
func ProbablyContains(codec Codec, engine *digest.Engine, data []byte, key encoding.BinaryMarshaler) (bool, error) {
	if engine == nil {
		return false, ErrNilEngine
	}
	var body mapBodyV1
	if err := open(codec, data, KindMap, &body); err != nil {
		return false, err
	}
	if body.EntryCount == 0 {
		return false, nil
	}
	kd, err := engine.HashValue(digest.Algorithm(body.Algorithm), key)
	if err != nil {
		return false, err
	}
	return bloom.MaybeContainsV1(body.Bloom, kd.Bytes())
}

func buildBloom(keyDigests [][]byte, elemBytes uint16) ([]byte, error) {
	mBits := bloom.MBitsSafeCast(bloom.MBitsV1(uint64(len(keyDigests)), bloomBitsPerKey))
	if mBits == 0 {
		return nil, bloom.ErrMBitsOverflow
	}
	region := make([]byte, bloom.RegionBytesV1(mBits))
	if err := bloom.InitV1(region, uint64(len(keyDigests)), bloomBitsPerKey, bloomHashes, elemBytes); err != nil {
		return nil, err
	}
	for _, kd := range keyDigests {
		if err := bloom.InsertV1(region, kd); err != nil {
			return nil, err
		}
	}
	return region, nil
}

func seal(codec Codec, kind uint16, body any) ([]byte, error) {
	raw, err := codec.MarshalCBOR(body)
	if err != nil {
		return nil, err
	}
	return codec.MarshalCBOR(envelope{Kind: kind, Version: VersionV1, Body: raw})
}

func open(codec Codec, data []byte, kind uint16, body any) error {
	var env envelope
	if err := codec.UnmarshalCBOR(data, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Kind != kind {
		return fmt.Errorf("%w: kind %d", ErrUnknownKind, env.Kind)
	}
	if env.Version != VersionV1 {
		return fmt.Errorf("%w: version %d", ErrUnknownVersion, env.Version)
	}
	if err := codec.UnmarshalCBOR(env.Body, body); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func verifyRoot(hash func() (*digest.Digest, error), persisted []byte) error {
	root, err := hash()
	if err != nil {
		return err
	}
	switch {
	case root == nil && len(persisted) == 0:
		return nil
	case root == nil || len(persisted) == 0:
		return ErrDigestMismatch
	}
	if !bytes.Equal(root.Bytes(), persisted) {
		return ErrDigestMismatch
	}
	return nil
}
