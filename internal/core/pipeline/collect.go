package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vim-fall/fall.vim/internal/core/cancel"
	"github.com/vim-fall/fall.vim/internal/core/container"
	"github.com/vim-fall/fall.vim/internal/core/event"
	"github.com/vim-fall/fall.vim/internal/core/item"
)

// CollectOptions configures a CollectProcessor.
type CollectOptions struct {
	Threshold     int
	ChunkSize     int
	ChunkInterval time.Duration
	InitialItems  []item.Item
}

// DefaultCollectOptions returns the documented defaults.
func DefaultCollectOptions() CollectOptions {
	return CollectOptions{
		Threshold:     100_000,
		ChunkSize:     1_000,
		ChunkInterval: 100 * time.Millisecond,
	}
}

// ErrDisposed is returned by any processor call made after Dispose.
var ErrDisposed = errors.New("pipeline: processor disposed")

// CollectProcessor pulls from a Source, dedupes by value, chunks, caps at
// a threshold, and dispatches progress events.
type CollectProcessor struct {
	opts   CollectOptions
	queue  *event.Queue
	logger *slog.Logger

	mu       sync.Mutex
	buf      *container.UniqueOrderedBuffer[item.Item, string]
	cancel   context.CancelFunc
	gate     chan struct{}
	disposed bool
}

// NewCollectProcessor constructs a CollectProcessor dispatching onto q. A
// nil logger falls back to slog.Default(); a non-positive Threshold uses
// the default threshold.
func NewCollectProcessor(opts CollectOptions, q *event.Queue, logger *slog.Logger) *CollectProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultCollectOptions().Threshold
	}
	gate := make(chan struct{})
	close(gate) // not paused
	buf := container.NewUniqueOrderedBuffer(func(it item.Item) string { return it.Value })
	for _, it := range opts.InitialItems {
		buf.Push(it)
	}
	return &CollectProcessor{
		opts:   opts,
		queue:  q,
		logger: logger,
		buf:    buf,
		gate:   gate,
	}
}

// Items returns a snapshot of all items accepted so far.
func (p *CollectProcessor) Items() []item.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Snapshot()
}

// Start begins iterating source. Any previously running collection on
// this processor is cancelled first (Collect is never re-invoked within a
// session per the orchestrator, but Start stays safe to call again).
func (p *CollectProcessor) Start(ctx context.Context, source Source, params CollectParams) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return ErrDisposed
	}
	if p.cancel != nil {
		p.cancel()
	}
	runCtx, cancelFn := context.WithCancel(ctx)
	p.cancel = cancelFn
	p.mu.Unlock()

	go p.run(runCtx, source, params)
	return nil
}

// Pause blocks the consumer loop between items until Resume is called or
// the processor is disposed.
func (p *CollectProcessor) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate = make(chan struct{})
}

// Resume unblocks a paused consumer loop.
func (p *CollectProcessor) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.gate:
		// already open
	default:
		close(p.gate)
	}
}

// Dispose cancels any in-flight iteration and marks the processor unusable.
func (p *CollectProcessor) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disposed = true
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *CollectProcessor) gateChan() chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate
}

func (p *CollectProcessor) dispatch(kind event.Kind, payload any) {
	p.queue.Dispatch(event.Event{Kind: kind, Payload: payload})
}

func (p *CollectProcessor) flush(chunker *container.Chunker[item.Item]) {
	batch := chunker.Consume()
	if len(batch) == 0 {
		return
	}
	p.dispatch(event.KindCollectUpdated, p.Items())
}

func (p *CollectProcessor) run(ctx context.Context, source Source, params CollectParams) {
	stream := source.Collect(ctx, params)
	chunker := container.NewChunker[item.Item](p.opts.ChunkSize)

	var ticker *time.Ticker
	var tickC <-chan time.Time
	if p.opts.ChunkInterval > 0 {
		ticker = time.NewTicker(p.opts.ChunkInterval)
		tickC = ticker.C
		defer ticker.Stop()
	}

	for {
		// Pause barrier: block here until resumed or aborted.
		select {
		case <-p.gateChan():
		case <-ctx.Done():
			return
		}

		select {
		case <-ctx.Done():
			return

		case res, ok := <-stream:
			if !ok {
				p.flush(chunker)
				p.dispatch(event.KindCollectSucceeded, nil)
				return
			}
			if res.Err != nil {
				if cancel.Is(res.Err) {
					return
				}
				p.logger.Warn("collect processor failed", "error", res.Err)
				p.dispatch(event.KindCollectFailed, res.Err)
				return
			}

			it := res.Value
			p.mu.Lock()
			if p.buf.Has(it.Value) {
				p.mu.Unlock()
				continue
			}
			it.ID = p.buf.Len()
			p.buf.Push(it)
			total := p.buf.Len()
			p.mu.Unlock()

			flushNow := chunker.Put(it)
			if flushNow {
				p.flush(chunker)
			}
			if total >= p.opts.Threshold {
				p.flush(chunker)
				p.dispatch(event.KindCollectSucceeded, nil)
				return
			}

		case <-tickC:
			p.flush(chunker)
		}
	}
}
