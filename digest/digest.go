package digest

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
)

// Algorithm identifies a supported digest algorithm. The zero value is
// invalid and is rejected wherever an algorithm is required.
type Algorithm uint32

const (
	AlgInvalid Algorithm = iota
	Sha256
	Sha384
	Sha512
)

var (
	ErrUnknownAlgorithm  = errors.New("digest: unknown digest algorithm")
	ErrAlgorithmMismatch = errors.New("digest: operand algorithms do not match")
	ErrBadDigestSize     = errors.New("digest: digest length does not match the algorithm width")
	ErrNilValue          = errors.New("digest: a value must be provided")
)

// Size returns the digest width in bytes, 0 for unknown algorithms.
func (a Algorithm) Size() int {
	switch a {
	case Sha256:
		return 32
	case Sha384:
		return 48
	case Sha512:
		return 64
	}
	return 0
}

func (a Algorithm) Valid() bool { return a.Size() != 0 }

func (a Algorithm) String() string {
	switch a {
	case Sha256:
		return "sha-256"
	case Sha384:
		return "sha-384"
	case Sha512:
		return "sha-512"
	}
	return fmt.Sprintf("invalid(%d)", uint32(a))
}

// Digest is the fixed width output of a digest algorithm, paired with the
// algorithm that produced it. Equality is byte for byte.
//
// The zero Digest carries no algorithm and represents "no digest".
type Digest struct {
	alg Algorithm
	b   []byte
}

// New builds a Digest from raw bytes, rejecting widths that do not match the
// algorithm.
func New(alg Algorithm, b []byte) (Digest, error) {
	if !alg.Valid() {
		return Digest{}, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
	if len(b) != alg.Size() {
		return Digest{}, fmt.Errorf("%w: got %d bytes for %s", ErrBadDigestSize, len(b), alg)
	}
	d := Digest{alg: alg, b: make([]byte, len(b))}
	copy(d.b, b)
	return d, nil
}

// Empty returns the sentinel digest substituted for an absent operand: zero
// bytes of algorithm appropriate width.
func Empty(alg Algorithm) Digest {
	return Digest{alg: alg, b: make([]byte, alg.Size())}
}

func (d Digest) Algorithm() Algorithm { return d.alg }

// Bytes returns the digest bytes. The slice is owned by the Digest and must
// not be modified.
func (d Digest) Bytes() []byte { return d.b }

func (d Digest) Equal(o Digest) bool {
	return d.alg == o.alg && bytes.Equal(d.b, o.b)
}

// IsZero reports whether d is the zero Digest (not the Empty sentinel, which
// carries an algorithm).
func (d Digest) IsZero() bool { return d.alg == AlgInvalid && d.b == nil }

func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.alg, hex.EncodeToString(d.b))
}
