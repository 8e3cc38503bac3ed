package snapshot

import (
	"github.com/fxamacker/cbor/v2"
)

// Codec pairs the deterministic CBOR encode mode used for everything this
// package persists with the matching decode mode. Deterministic encoding
// matters here: the checkpoint signature and the persisted digests are over
// the encoded bytes.
type Codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCodec() (Codec, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return Codec{}, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return Codec{}, err
	}
	return Codec{enc: enc, dec: dec}, nil
}

func (c Codec) MarshalCBOR(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c Codec) UnmarshalCBOR(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}
