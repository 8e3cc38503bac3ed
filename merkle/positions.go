package merkle

import "math/bits"

// The functions in this file treat the tree as if it were stored as a dense
// 1-indexed array: the root is position 1 and the node at position p has its
// children at 2p and 2p+1. Because the tree is kept nearly complete, every
// position has a well defined left/right descent path given by its binary
// representation, and the interesting positions (insertion point, rightmost
// leaf) are pure arithmetic over the node count. No links are followed here;
// see navigator.go for that half.

// Step is one move of a position path.
type Step int

const (
	StepLeft Step = iota
	StepRight
	StepDone
)

// Msb returns the largest power of two less than or equal to x, and 0 for 0.
func Msb(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	return 1 << (bits.Len64(x) - 1)
}

// Path replays the descent from the root to a position, one step per call to
// Next. The top bit of the position identifies the root and is consumed
// implicitly; each remaining bit, high to low, selects a child:
//
//	         1
//	       /   \
//	      10    11
//	     /  \  /  \
//	   100 101 110 111
//
// so position 5 (101) is reached by StepLeft (0), StepRight (1).
type Path struct {
	target uint64
	mask   uint64
}

// PathTo starts a path for the given 1-based position.
func PathTo(position uint64) Path {
	return Path{target: position, mask: Msb(position)}
}

func (p *Path) Target() uint64 { return p.target }

// Next returns the next step of the path, StepDone once the position is
// reached. Positions 0 and 1 complete immediately.
func (p *Path) Next() Step {
	p.mask >>= 1
	if p.mask == 0 {
		return StepDone
	}
	if p.target&p.mask == p.mask {
		return StepRight
	}
	return StepLeft
}

// InsertionPoint returns the position of the node currently occupying the
// slot where the next leaf must be spliced in to keep a tree of treeSize
// nodes nearly complete. For an empty tree this is position 1, the root.
func InsertionPoint(treeSize uint64) uint64 {
	return treeSize/2 + 1
}

// RightmostLeaf computes the position of the rightmost leaf of a tree with
// treeSize nodes, using a parity adjustment on the upper half of the size.
//
// The adjustment is only exact when the leaf level is fully populated; the
// removal path instead resolves the rightmost leaf directly at position
// treeSize, which holds for every nearly complete shape this package builds.
func RightmostLeaf(treeSize uint64) uint64 {
	if treeSize == 0 {
		return 0
	}
	delta := treeSize - treeSize/2
	if delta&1 == 1 {
		delta = 0
	} else {
		delta = 1
	}
	return Msb(treeSize+delta) - 1
}

// AddOrderPosition returns the position occupied by the k-th added leaf
// (1-based) in a tree built by leafCount additions.
//
// The first two additions land at positions 2 and 3 and the m-th addition
// (m >= 3) splices a new internal node at position m-1, placing the new leaf
// at 2(m-1)+1 = 2m-1. A leaf sitting at position p is displaced to 2p
// exactly when addition p+1 splices over it, so the final position is found
// by doubling until no later addition can displace it. The mapping is a
// bijection onto the leaf positions leafCount..2*leafCount-1, which is what
// makes snapshot replay reproduce a tree slot for slot.
func AddOrderPosition(leafCount, k uint64) uint64 {
	var p uint64
	switch {
	case k == 1:
		p = 2
	case k == 2:
		p = 3
	default:
		p = 2*k - 1
	}
	for p < leafCount {
		p <<= 1
	}
	return p
}
