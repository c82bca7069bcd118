package container

// Chunker is a bounded batch accumulator that reports when it has reached
// its size threshold.
type Chunker[T any] struct {
	chunkSize int
	batch     []T
}

// NewChunker creates a Chunker that flushes every chunkSize items. A
// chunkSize <= 0 means "never flush on size" (only explicit Consume calls
// return items), matching a chunkInterval-only flush policy upstream.
func NewChunker[T any](chunkSize int) *Chunker[T] {
	return &Chunker[T]{chunkSize: chunkSize}
}

// Put appends item to the current batch. It returns true iff the internal
// count just reached chunkSize, signalling the caller should Consume.
func (c *Chunker[T]) Put(item T) bool {
	c.batch = append(c.batch, item)
	return c.chunkSize > 0 && len(c.batch) >= c.chunkSize
}

// Consume returns the current batch and resets the accumulator. Returns
// nil if the batch is empty.
func (c *Chunker[T]) Consume() []T {
	if len(c.batch) == 0 {
		return nil
	}
	out := c.batch
	c.batch = nil
	return out
}

// Count exposes the current (unflushed) batch size.
func (c *Chunker[T]) Count() int {
	return len(c.batch)
}
