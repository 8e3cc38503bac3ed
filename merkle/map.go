package merkle

import (
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/servercurio/fabric-sub001/digest"
)

// Key is the constraint for map keys: usable as a Go map key and
// serializable for digesting.
type Key interface {
	comparable
	encoding.BinaryMarshaler
}

// Entry is one key/value pair held by a Map. It lives in two places at once:
// the map's lookup table owns it by key, and the backing tree stores it as a
// leaf value. Its digest commits to both halves of the pair:
//
//	digest(digest(key), digest(value))
//
// and is computed eagerly on every value change, so the backing tree can
// reuse it through the digest.Prehashed contract without re-serializing.
type Entry[K Key, V encoding.BinaryMarshaler] struct {
	m     *Map[K, V]
	key   K
	value V
	dig   *digest.Digest
	leaf  *leafNode[*Entry[K, V]]
}

func (e *Entry[K, V]) Key() K { return e.key }

func (e *Entry[K, V]) Value() V { return e.value }

// SetValue replaces the entry's value in place, re-digesting the pair and
// invalidating the backing tree's ancestry so the aggregate hash reflects
// the change on next read.
func (e *Entry[K, V]) SetValue(value V) error {
	e.value = value
	if err := e.rehash(); err != nil {
		return err
	}
	if e.leaf != nil {
		e.leaf.invalidate()
	}
	return nil
}

// CachedHash implements digest.Prehashed for the backing tree.
func (e *Entry[K, V]) CachedHash() *digest.Digest { return e.dig }

// MarshalBinary renders the pair as length prefixed key bytes followed by
// value bytes. Digesting never takes this path while the pair digest is
// cached, but snapshots and debugging do.
func (e *Entry[K, V]) MarshalBinary() ([]byte, error) {
	kb, err := e.key.MarshalBinary()
	if err != nil {
		return nil, err
	}
	vb, err := e.value.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 4+len(kb)+len(vb))
	out = binary.BigEndian.AppendUint32(out, uint32(len(kb)))
	out = append(out, kb...)
	out = append(out, vb...)
	return out, nil
}

func (e *Entry[K, V]) rehash() error {
	engine, alg := e.m.tree.engine, e.m.tree.alg
	kd, err := engine.HashValue(alg, e.key)
	if err != nil {
		return fmt.Errorf("merkle: digesting key: %w", err)
	}
	vd, err := engine.HashValue(alg, e.value)
	if err != nil {
		return fmt.Errorf("merkle: digesting value: %w", err)
	}
	d, err := engine.HashPair(alg, &kd, &vd)
	if err != nil {
		return err
	}
	e.dig = &d
	return nil
}

// Map is an associative collection with a verifiable aggregate hash. A plain
// Go map gives O(1) lookup by key while a backing Tree of entries maintains
// the authenticated fingerprint of the whole key/value set.
type Map[K Key, V encoding.BinaryMarshaler] struct {
	tree   *Tree[*Entry[K, V]]
	lookup map[K]*Entry[K, V]
}

// NewMap builds an empty map digesting with the given engine and algorithm.
func NewMap[K Key, V encoding.BinaryMarshaler](engine *digest.Engine, alg digest.Algorithm) (*Map[K, V], error) {
	tree, err := NewTree[*Entry[K, V]](engine, alg)
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{
		tree:   tree,
		lookup: make(map[K]*Entry[K, V]),
	}, nil
}

func (m *Map[K, V]) Len() int { return len(m.lookup) }

func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.lookup[key]
	return ok
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	e, ok := m.lookup[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, returning the previous value if the key was
// already present. A replaced key's old entry is removed from the backing
// tree before the new entry is inserted.
func (m *Map[K, V]) Put(key K, value V) (V, bool, error) {
	var prev V
	e := &Entry[K, V]{m: m, key: key, value: value}
	if err := e.rehash(); err != nil {
		return prev, false, err
	}

	replaced := false
	if old, ok := m.lookup[key]; ok {
		m.tree.removeLeaf(old.leaf)
		old.leaf = nil
		prev = old.value
		replaced = true
	}

	m.lookup[key] = e
	m.tree.Add(e)
	// Add always places the new leaf in the rightmost position.
	e.leaf = m.tree.rightmost
	return prev, replaced, nil
}

// Remove deletes key, returning the removed value if it was present.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	e, ok := m.lookup[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(m.lookup, key)
	m.tree.removeLeaf(e.leaf)
	e.leaf = nil
	return e.value, true
}

// Hash returns the aggregate digest of the full key/value set: the backing
// tree's root digest, nil while the map is empty.
func (m *Map[K, V]) Hash() (*digest.Digest, error) {
	return m.tree.Hash()
}

// Tree exposes the backing tree for read only uses such as persistence.
// Mutating it directly bypasses the lookup table and corrupts the map.
func (m *Map[K, V]) Tree() *Tree[*Entry[K, V]] { return m.tree }

// Iterator enumerates the map's entries in the backing tree's order.
type MapIterator[K Key, V encoding.BinaryMarshaler] struct {
	m  *Map[K, V]
	it *Iterator[*Entry[K, V]]
}

func (m *Map[K, V]) Iterator() *MapIterator[K, V] {
	return &MapIterator[K, V]{m: m, it: m.tree.Iterator()}
}

func (mi *MapIterator[K, V]) Next() bool { return mi.it.Next() }

// Entry returns the entry produced by the last successful Next, nil before
// the first Next and after a Remove.
func (mi *MapIterator[K, V]) Entry() *Entry[K, V] { return mi.it.Value() }

func (mi *MapIterator[K, V]) Err() error { return mi.it.Err() }

// Remove deletes the current entry from both the backing tree and the
// lookup table.
func (mi *MapIterator[K, V]) Remove() error {
	e := mi.it.Value()
	if err := mi.it.Remove(); err != nil {
		return err
	}
	delete(mi.m.lookup, e.Key())
	e.leaf = nil
	return nil
}
