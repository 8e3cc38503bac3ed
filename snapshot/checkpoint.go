package snapshot

import (
	"bytes"
	"crypto/rand"
	"encoding"
	"fmt"
	"time"

	"github.com/veraison/go-cose"

	"github.com/servercurio/fabric-sub001/digest"
	"github.com/servercurio/fabric-sub001/merkle"
)

// headerLabelIssuer is the protected header label carrying the checkpoint
// issuer identity.
const headerLabelIssuer = "issuer"

// TreeState is the payload a checkpoint signature commits to: the aggregate
// state of a tree at a moment in time.
type TreeState struct {
	LeafCount uint32 `cbor:"1,keyasint"`
	Algorithm uint32 `cbor:"2,keyasint"`
	Root      []byte `cbor:"3,keyasint"`
	// Timestamp is the unix time (milliseconds) read at the time the state
	// was signed. Including it allows the same root to be re-signed.
	Timestamp int64 `cbor:"4,keyasint"`
}

// CheckpointSigner produces COSE Sign1 commitments to tree states. A
// checkpoint should only be published after the caller has satisfied itself
// of the state's consistency; the signer attests, it does not audit.
type CheckpointSigner struct {
	issuer string
	codec  Codec
}

func NewCheckpointSigner(issuer string, codec Codec) CheckpointSigner {
	return CheckpointSigner{issuer: issuer, codec: codec}
}

// Sign1 signs the given state, returning the encoded COSE Sign1 message.
func (s CheckpointSigner) Sign1(coseSigner cose.Signer, state TreeState, external []byte) ([]byte, error) {
	payload, err := s.codec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: coseSigner.Algorithm(),
				headerLabelIssuer:         s.issuer,
			},
		},
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, coseSigner); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}

// SignTree reads the live state of t, stamps it and signs it with s.
func SignTree[V encoding.BinaryMarshaler](s CheckpointSigner, coseSigner cose.Signer, t *merkle.Tree[V]) ([]byte, error) {
	state, err := StateOfTree(t)
	if err != nil {
		return nil, err
	}
	return s.Sign1(coseSigner, state, nil)
}

// StateOfTree captures a tree's current aggregate state with the current
// wall clock.
func StateOfTree[V encoding.BinaryMarshaler](t *merkle.Tree[V]) (TreeState, error) {
	root, err := t.Hash()
	if err != nil {
		return TreeState{}, err
	}
	state := TreeState{
		LeafCount: t.LeafCount(),
		Algorithm: uint32(t.Algorithm()),
		Timestamp: time.Now().UnixMilli(),
	}
	if root != nil {
		state.Root = root.Bytes()
	}
	return state, nil
}

// VerifyCheckpoint checks the signature over an encoded checkpoint and
// returns the signed state. Signature failure surfaces as
// ErrCheckpointVerify; the caller decides what the state must match.
func VerifyCheckpoint(codec Codec, verifier cose.Verifier, data, external []byte) (TreeState, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(data); err != nil {
		return TreeState{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := msg.Verify(external, verifier); err != nil {
		return TreeState{}, fmt.Errorf("%w: %v", ErrCheckpointVerify, err)
	}
	var state TreeState
	if err := codec.UnmarshalCBOR(msg.Payload, &state); err != nil {
		return TreeState{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return state, nil
}

// VerifyCheckpointForTree verifies the signature and additionally requires
// the signed root to equal the live tree's current root digest.
func VerifyCheckpointForTree[V encoding.BinaryMarshaler](
	codec Codec,
	verifier cose.Verifier,
	data []byte,
	t *merkle.Tree[V],
) (TreeState, error) {
	state, err := VerifyCheckpoint(codec, verifier, data, nil)
	if err != nil {
		return TreeState{}, err
	}
	root, err := t.Hash()
	if err != nil {
		return TreeState{}, err
	}
	var rootBytes []byte
	if root != nil {
		rootBytes = root.Bytes()
	}
	if digest.Algorithm(state.Algorithm) != t.Algorithm() ||
		state.LeafCount != t.LeafCount() ||
		!bytes.Equal(state.Root, rootBytes) {
		return TreeState{}, ErrCheckpointRoot
	}
	return state, nil
}
