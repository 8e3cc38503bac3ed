package snapshot

import "errors"

var (
	// ErrDigestMismatch is the fatal integrity fault: the digest recomputed
	// from restored content disagrees with the persisted one. It indicates
	// corruption or tampering and is never recovered silently.
	ErrDigestMismatch = errors.New("snapshot: restored digest does not match the persisted digest")

	// ErrUnknownKind and ErrUnknownVersion mean the data cannot be
	// understood at all, which callers must be able to distinguish from
	// data that was understood and found corrupt.
	ErrUnknownKind    = errors.New("snapshot: unknown snapshot kind")
	ErrUnknownVersion = errors.New("snapshot: unsupported snapshot version")

	// ErrMalformed covers structural defects short of a digest mismatch,
	// such as a leaf list shorter than the recorded count.
	ErrMalformed = errors.New("snapshot: malformed snapshot body")

	ErrObjectNotFound = errors.New("snapshot: object not found")

	ErrCheckpointVerify = errors.New("snapshot: checkpoint signature verification failed")
	ErrCheckpointRoot   = errors.New("snapshot: checkpoint root does not match the tree")

	ErrNilStore  = errors.New("snapshot: an object store must be provided")
	ErrNilEngine = errors.New("snapshot: a digest engine must be provided")
)
