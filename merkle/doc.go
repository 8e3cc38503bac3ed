package merkle

/*

# Incrementally hashed binary trees and maps

This package maintains a nearly complete binary tree of values in which every
subtree carries a lazily computed, cached cryptographic digest, and an
associative map built on top of such a tree. It gives O(log n) insertion and
removal while keeping the shape invariant that makes implicit array style
addressing valid, so nodes can be located by pure bit arithmetic on the node
count rather than by searching links.

The package splits into two deliberately separate halves:

- positions.go is pure arithmetic: it answers "where" questions (the descent
  path to a position, the insertion point, the rightmost leaf) from the node
  count alone, assuming the tree were stored as a dense 1-indexed array.
- navigator.go replays those answers over the real linked nodes.

Keeping the arithmetic link free means it is trivially unit testable and the
link walking half stays a few lines long.

## Shape maintenance

Insertion splices a new internal node over the slot identified by the
insertion point, pushing the occupant down one level; removal detaches the
rightmost leaf, collapses its vacated parent and reuses the detached leaf in
the removed slot. This is the same discipline a binary heap uses to stay
complete under arbitrary deletion, carrying digests instead of priorities.

## Digest maintenance

Digests are never recomputed on mutation. Each node caches its digest until
a mutation on it or any descendant clears the caches along the affected
ancestry, and the next Hash read recomputes exactly the invalidated spine.
Many mutations between reads therefore cost one invalidation walk each and
one recomputation in total.

## Concurrency

None. The structures assume exclusive access by one caller at a time.
Iterators are fail fast, not fail safe: a structural mutation through
another handle is detected on the iterator's next operation via a
modification counter and surfaces as ErrStaleIterator, distinct from
exhaustion.

*/
