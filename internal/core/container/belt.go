package container

// Belt wraps a non-empty ordered slice of strategies with a current
// index and cyclic-cursor semantics: set clamps values >= count to
// count-1, the sentinel "$" means count-1, and negative values snap
// to 0.
type Belt[T any] struct {
	strategies []T
	index      int
}

// NewBelt constructs a Belt over strategies, starting at index 0. It
// panics if strategies is empty: every stage that owns a Belt requires at
// least one strategy.
func NewBelt[T any](strategies []T) *Belt[T] {
	if len(strategies) == 0 {
		panic("container: Belt requires at least one strategy")
	}
	return &Belt[T]{strategies: strategies}
}

// Last is the sentinel index meaning "the last strategy", spelled "$" in
// the event vocabulary.
const Last = -1

// Set clamps index into [0, count-1]. Passing container.Last selects the
// last strategy.
func (b *Belt[T]) Set(index int) {
	if index == Last {
		b.index = len(b.strategies) - 1
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(b.strategies) {
		index = len(b.strategies) - 1
	}
	b.index = index
}

// Move shifts the index by amount, relative to the current position, with
// optional wrap-around cycling.
func (b *Belt[T]) Move(amount int, cycle bool) {
	n := len(b.strategies)
	next := b.index + amount
	if cycle {
		next = ((next % n) + n) % n
	} else if next < 0 {
		next = 0
	}
	b.Set(next)
}

// Index returns the current index.
func (b *Belt[T]) Index() int {
	return b.index
}

// Current returns the strategy at the current index.
func (b *Belt[T]) Current() T {
	return b.strategies[b.index]
}

// Len returns the number of strategies on the belt.
func (b *Belt[T]) Len() int {
	return len(b.strategies)
}

// Strategies returns the backing slice; callers must not mutate it.
func (b *Belt[T]) Strategies() []T {
	return b.strategies
}
