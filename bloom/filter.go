package bloom

import (
	sha256 "github.com/minio/sha256-simd"
)

const bloomDomainV1 = 0xB1

// InitV1 initializes a zero-filled region with a HeaderV1 sized for
// elemCount elements of elemBytes width.
//
// The caller must allocate region with at least RegionBytesV1(mBits), where:
//
//	mBits = uint32(bitsPerElement * elemCount)
func InitV1(region []byte, elemCount uint64, bitsPerElement uint64, k uint8, elemBytes uint16) error {
	if elemCount == 0 || bitsPerElement == 0 {
		return ErrBadMBits
	}
	if err := CheckBPE(bitsPerElement); err != nil {
		return err
	}
	if elemBytes == 0 || elemBytes > MaxElemBytes {
		return ErrBadElemSize
	}
	mBits := MBitsSafeCast(MBitsV1(elemCount, bitsPerElement))
	if mBits == 0 {
		return ErrMBitsOverflow
	}
	need := RegionBytesV1(mBits)
	if uint64(len(region)) < need {
		return ErrBadRegionSize
	}

	// Ensure clean initialization even if region is reused.
	clear(region[:need])

	return EncodeHeaderV1(region, HeaderV1{
		BitOrder:  BitOrderLSB0,
		K:         k,
		ElemBytes: elemBytes,
		MBits:     mBits,
		NInserted: 0,
	})
}

// InsertV1 inserts elem and increments NInserted in the header.
func InsertV1(region []byte, elem []byte) error {
	h, bitset, err := openV1(region, elem)
	if err != nil {
		return err
	}

	h1, h2 := hashPairV1(elem)
	setBitsLSB0(bitset, uint64(h.MBits), h.K, h1, h2)

	// Update optional counter.
	h.NInserted++
	return EncodeHeaderV1(region, h)
}

// MaybeContainsV1 checks membership for elem.
//
// Returns (false,nil) if the filter says "definitely not present".
// Returns (true,nil) if the filter says "maybe present".
func MaybeContainsV1(region []byte, elem []byte) (bool, error) {
	h, bitset, err := openV1(region, elem)
	if err != nil {
		return false, err
	}

	h1, h2 := hashPairV1(elem)
	return testBitsLSB0(bitset, uint64(h.MBits), h.K, h1, h2), nil
}

func openV1(region []byte, elem []byte) (HeaderV1, []byte, error) {
	h, ok, err := DecodeHeaderV1(region)
	if err != nil {
		return HeaderV1{}, nil, err
	}
	if !ok {
		return HeaderV1{}, nil, ErrNotInitialized
	}
	if len(elem) != int(h.ElemBytes) {
		return HeaderV1{}, nil, ErrBadElemSize
	}

	bitsetBytes := BitsetBytesV1(h.MBits)
	end := uint64(HeaderBytesV1) + uint64(bitsetBytes)
	if uint64(len(region)) < end {
		return HeaderV1{}, nil, ErrBadRegionSize
	}
	return h, region[HeaderBytesV1:end], nil
}

func hashPairV1(elem []byte) (h1 uint64, h2 uint64) {
	// SHA-256( 0xB1 || elem )
	hasher := sha256.New()
	hasher.Write([]byte{bloomDomainV1})
	hasher.Write(elem)
	sum := hasher.Sum(nil)
	h1 = readU64BE(sum[0:8])
	h2 = readU64BE(sum[8:16])
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

func setBitsLSB0(bitset []byte, mBits uint64, k uint8, h1, h2 uint64) {
	for i := uint64(0); i < uint64(k); i++ {
		j := (h1 + i*h2) % mBits
		byteIdx := j >> 3
		bit := uint8(j & 7)
		bitset[byteIdx] |= (1 << bit)
	}
}

func testBitsLSB0(bitset []byte, mBits uint64, k uint8, h1, h2 uint64) bool {
	for i := uint64(0); i < uint64(k); i++ {
		j := (h1 + i*h2) % mBits
		byteIdx := j >> 3
		bit := uint8(j & 7)
		if (bitset[byteIdx] & (1 << bit)) == 0 {
			return false
		}
	}
	return true
}
