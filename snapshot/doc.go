package snapshot

/*

# Snapshot persistence for merkle trees and maps

This package persists and restores the structures in the merkle package
through a deterministic CBOR envelope, and verifies integrity on the way
back in: a restored tree or map must reproduce the persisted root digest or
the restore fails with ErrDigestMismatch.

The persisted leaf order is the replay order exposed by merkle.Tree.Leaves:
re-adding the leaves in that order reproduces the tree slot for slot, which
is what makes digest verification of a rebuilt tree meaningful.

Map snapshots additionally carry a bloom filter sidecar over the key
digests (see the bloom package), so ProbablyContains can answer negative
membership queries against raw snapshot bytes without a restore.

Checkpoints are COSE Sign1 signatures over a tree's aggregate state
(checkpoint.go), suitable for publishing alongside snapshots.

Storage is abstracted behind ObjectStore with filesystem and Azure Blob
implementations and an LRU read-through cache decorator. The stores log
through zap; everything else in the package is quiet.

*/
