package digest

import (
	"crypto/sha512"
	"encoding"
	"fmt"
	"hash"

	sha256 "github.com/minio/sha256-simd"
)

// Prehashed is implemented by values that may already carry a computed
// digest. HashValue consults it before falling back to serialization, so
// expensive values can memoize their own digests.
type Prehashed interface {
	CachedHash() *Digest
}

// Engine computes digests for raw bytes, digest pairs and serializable
// values. It is stateless apart from per algorithm hash constructors and is
// safe to share between trees using different algorithms.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

func (e *Engine) newHasher(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case Sha256:
		return sha256.New(), nil
	case Sha384:
		return sha512.New384(), nil
	case Sha512:
		return sha512.New(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
}

// HashBytes digests the concatenation of the given byte strings.
func (e *Engine) HashBytes(alg Algorithm, data ...[]byte) (Digest, error) {
	hasher, err := e.newHasher(alg)
	if err != nil {
		return Digest{}, err
	}
	for _, b := range data {
		hasher.Write(b)
	}
	return Digest{alg: alg, b: hasher.Sum(nil)}, nil
}

// HashPair combines two digests into one. A nil operand is replaced by the
// Empty sentinel of the algorithm, so partial nodes digest deterministically.
func (e *Engine) HashPair(alg Algorithm, left, right *Digest) (Digest, error) {
	lb, err := e.operandBytes(alg, left)
	if err != nil {
		return Digest{}, err
	}
	rb, err := e.operandBytes(alg, right)
	if err != nil {
		return Digest{}, err
	}
	return e.HashBytes(alg, lb, rb)
}

func (e *Engine) operandBytes(alg Algorithm, d *Digest) ([]byte, error) {
	if d == nil {
		return Empty(alg).Bytes(), nil
	}
	if d.alg != alg {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrAlgorithmMismatch, d.alg, alg)
	}
	if len(d.b) != alg.Size() {
		return nil, fmt.Errorf("%w: got %d bytes for %s", ErrBadDigestSize, len(d.b), alg)
	}
	return d.b, nil
}

// HashValue digests a serializable value. If the value carries a matching
// cached digest it is reused without re-serializing.
func (e *Engine) HashValue(alg Algorithm, v encoding.BinaryMarshaler) (Digest, error) {
	if v == nil {
		return Digest{}, ErrNilValue
	}
	if p, ok := v.(Prehashed); ok {
		if d := p.CachedHash(); d != nil && d.alg == alg {
			return *d, nil
		}
	}
	b, err := v.MarshalBinary()
	if err != nil {
		return Digest{}, fmt.Errorf("digest: marshaling value: %w", err)
	}
	return e.HashBytes(alg, b)
}
