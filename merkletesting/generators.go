// Package merkletesting provides the value types and generators shared by
// the package tests in this module. Production code must not import it.
package merkletesting

import (
	"fmt"

	"github.com/google/uuid"
)

// Blob is a plain byte string leaf value.
type Blob []byte

func (b Blob) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), b...), nil
}

func DecodeBlob(b []byte) (Blob, error) {
	return Blob(append([]byte(nil), b...)), nil
}

// Word is a comparable string usable as both a map key and a leaf value.
type Word string

func (w Word) MarshalBinary() ([]byte, error) {
	return []byte(w), nil
}

func DecodeWord(b []byte) (Word, error) {
	return Word(b), nil
}

// Words returns n deterministic distinct values, "w000" onward. Use these
// wherever a test asserts on specific content or ordering.
func Words(n int) []Word {
	out := make([]Word, n)
	for i := range out {
		out[i] = Word(fmt.Sprintf("w%03d", i))
	}
	return out
}

// Blobs returns n deterministic distinct leaf values.
func Blobs(n int) []Blob {
	out := make([]Blob, n)
	for i := range out {
		out[i] = Blob(fmt.Sprintf("leaf-%03d", i))
	}
	return out
}

// UniqueBlob returns a universally unique leaf value, for bulk tests where
// only distinctness matters.
func UniqueBlob(prefix string) Blob {
	return Blob(prefix + uuid.NewString())
}
