package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vim-fall/fall.vim/internal/core/cancel"
	"github.com/vim-fall/fall.vim/internal/core/container"
	"github.com/vim-fall/fall.vim/internal/core/event"
	"github.com/vim-fall/fall.vim/internal/core/item"
)

// SortProcessor applies the current Sorter to matched items. If no
// sorter is configured, items pass through unchanged.
type SortProcessor struct {
	belt   *container.Belt[Sorter] // nil means "no sorter configured"
	queue  *event.Queue
	logger *slog.Logger

	res reservation[[]item.Item]

	mu       sync.Mutex
	sorted   []item.Item
	disposed bool
}

// NewSortProcessor constructs a SortProcessor. An empty sorters list is
// valid: the processor then always passes items through unchanged.
func NewSortProcessor(sorters []Sorter, initialIndex int, q *event.Queue, logger *slog.Logger) *SortProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &SortProcessor{queue: q, logger: logger}
	if len(sorters) > 0 {
		p.belt = container.NewBelt(sorters)
		p.belt.Set(initialIndex)
	}
	return p
}

// Belt exposes the sorter belt, or nil if no sorter is configured.
func (p *SortProcessor) Belt() *container.Belt[Sorter] { return p.belt }

// Sorted returns a snapshot of the currently published sorted list.
func (p *SortProcessor) Sorted() []item.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]item.Item, len(p.sorted))
	copy(out, p.sorted)
	return out
}

func (p *SortProcessor) Dispose() {
	p.mu.Lock()
	p.disposed = true
	p.mu.Unlock()
}

// Start sorts (a shallow copy of) items using the current Sorter.
// Reservation semantics match Match, but there is no query-equality
// short circuit.
func (p *SortProcessor) Start(ctx context.Context, items []item.Item) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return ErrDisposed
	}
	p.mu.Unlock()

	runCtx, done, ok := p.res.begin(ctx, items, false, func(r []item.Item) {
		p.executeLatest(ctx, r)
	})
	if !ok {
		return nil
	}
	go func() {
		defer done()
		p.doSort(runCtx, items)
	}()
	return nil
}

func (p *SortProcessor) executeLatest(parent context.Context, items []item.Item) {
	runCtx, done, ok := p.res.begin(parent, items, false, func(r []item.Item) {
		p.executeLatest(parent, r)
	})
	if !ok {
		return
	}
	defer done()
	p.doSort(runCtx, items)
}

func (p *SortProcessor) doSort(ctx context.Context, items []item.Item) {
	cp := make([]item.Item, len(items))
	copy(cp, items)

	if p.belt != nil {
		if err := p.belt.Current().Sort(ctx, cp); err != nil {
			if cancel.Is(err) {
				return
			}
			// Stage-internal failure: render proceeds over the unsorted
			// matched list.
			p.logger.Warn("sort processor failed", "error", err)
			p.mu.Lock()
			p.sorted = items
			p.mu.Unlock()
			p.queue.Dispatch(event.Event{Kind: event.KindSortFailed, Payload: err})
			return
		}
	}

	p.mu.Lock()
	p.sorted = cp
	snapshot := append([]item.Item(nil), cp...)
	p.mu.Unlock()

	p.queue.Dispatch(event.Event{Kind: event.KindSortSucceeded, Payload: snapshot})
}
