package bloom

/*

# Bloom sidecar primitives (in-place, fixed layout)

This package provides the primitive building blocks for the probabilistic
key filter that map snapshots carry alongside their authenticated payload.
The filter indexes key digests, so a reader holding only the snapshot bytes
can answer "is this key definitely absent?" without rebuilding the map.

It follows the same primitives style as the merkle package's position
arithmetic:

- small, composable functions
- explicit byte layouts
- a burden of knowledge on the caller for hot paths

## What Bloom filters are (and are not)

- If the filter says "definitely not present", the element is not present.
- If the filter says "maybe present", it may or may not be (false positives
  are possible).

The filter is NOT a cryptographic commitment and provides no proof of
exclusion; only the snapshot's root digest authenticates the contents. The
filter is purely an I/O optimization.

## Layout

	+----------------------+  32B header (magic, version, params)
	| HeaderV1             |
	+----------------------+  ceil(mBits/8) bytes
	| bitset               |
	+----------------------+

Elements are fixed width per filter (the digest width of the snapshot's
algorithm, recorded in the header). Indexing uses deterministic double
hashing over a domain separated SHA-256 of the element, with LSB0 bit
numbering.

## API versioning: why the `V1` suffix exists

Functions are suffixed with the serialized format version they implement.
Incompatible changes (a new header layout, different hashing, a different
bit order) are introduced as `V2` side by side, without silently breaking
previously persisted regions.

*/
