package merkle

import "errors"

var (
	ErrNilEngine      = errors.New("merkle: a digest engine must be provided")
	ErrBadAlgorithm   = errors.New("merkle: a valid digest algorithm must be provided")
	ErrRemoveNotReady = errors.New("merkle: remove is valid exactly once after each successful next")
	ErrStaleIterator  = errors.New("merkle: tree structurally modified during iteration")
)
