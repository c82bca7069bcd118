// Package container implements the small generic containers the
// pipeline stages are built from: the Unique-Ordered Buffer, the Chunker,
// and the Item-Belt, plus the Ring that backs the Session Store.
package container

// UniqueOrderedBuffer is an insertion-ordered container enforcing
// uniqueness by a caller-supplied key function. For every pair i<j,
// identifier(items[i]) != identifier(items[j]).
type UniqueOrderedBuffer[T any, K comparable] struct {
	identifier func(T) K
	items      []T
	seen       map[K]struct{}
}

// NewUniqueOrderedBuffer constructs a buffer keyed by identifier. A nil
// identifier is not accepted; callers that want identity semantics should
// pass a function returning the value itself.
func NewUniqueOrderedBuffer[T any, K comparable](identifier func(T) K) *UniqueOrderedBuffer[T, K] {
	return &UniqueOrderedBuffer[T, K]{
		identifier: identifier,
		seen:       make(map[K]struct{}),
	}
}

// Push appends each x whose key is not already present; duplicates are
// silently skipped. Returns the number actually appended.
func (b *UniqueOrderedBuffer[T, K]) Push(xs ...T) int {
	added := 0
	for _, x := range xs {
		k := b.identifier(x)
		if _, ok := b.seen[k]; ok {
			continue
		}
		b.seen[k] = struct{}{}
		b.items = append(b.items, x)
		added++
	}
	return added
}

// Has reports whether an item with the given key has already been pushed.
func (b *UniqueOrderedBuffer[T, K]) Has(k K) bool {
	_, ok := b.seen[k]
	return ok
}

// Len returns the number of items currently held.
func (b *UniqueOrderedBuffer[T, K]) Len() int {
	return len(b.items)
}

// Items returns the insertion-ordered backing slice. Callers must not
// mutate it; take a copy if independent storage is required.
func (b *UniqueOrderedBuffer[T, K]) Items() []T {
	return b.items
}

// Snapshot returns an independent copy of the current items, suitable for
// handing off to a downstream stage that may run concurrently with further
// pushes.
func (b *UniqueOrderedBuffer[T, K]) Snapshot() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}
