package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vim-fall/fall.vim/internal/core/cancel"
	"github.com/vim-fall/fall.vim/internal/core/container"
	"github.com/vim-fall/fall.vim/internal/core/event"
	"github.com/vim-fall/fall.vim/internal/core/item"
)

// MatchOptions configures a MatchProcessor.
type MatchOptions struct {
	InitialQuery string
	InitialIndex int
	Interval     time.Duration
	Threshold    int
	ChunkSize    int
}

// DefaultMatchOptions returns sensible defaults, mirroring Collect's
// cadence.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Interval:  5 * time.Millisecond,
		Threshold: 100_000,
		ChunkSize: 1_000,
	}
}

type matchRequest struct {
	items []item.Item
	query string
}

// MatchProcessor filters collected items by the current query using the
// current Matcher.
type MatchProcessor struct {
	opts   MatchOptions
	belt   *container.Belt[Matcher]
	queue  *event.Queue
	logger *slog.Logger

	res reservation[matchRequest]

	mu        sync.Mutex
	lastQuery string
	haveQuery bool
	matched   []item.Item
	disposed  bool
}

// NewMatchProcessor constructs a MatchProcessor cycling over matchers via
// a Belt, starting at opts.InitialIndex. A non-positive Threshold uses the
// default threshold.
func NewMatchProcessor(matchers []Matcher, opts MatchOptions, q *event.Queue, logger *slog.Logger) *MatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultMatchOptions().Threshold
	}
	belt := container.NewBelt(matchers)
	belt.Set(opts.InitialIndex)
	return &MatchProcessor{
		opts:      opts,
		belt:      belt,
		queue:     q,
		logger:    logger,
		lastQuery: opts.InitialQuery,
	}
}

// Belt exposes the matcher belt so the orchestrator can switch strategies.
func (p *MatchProcessor) Belt() *container.Belt[Matcher] { return p.belt }

// Matched returns a snapshot of the currently published matched list.
func (p *MatchProcessor) Matched() []item.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]item.Item, len(p.matched))
	copy(out, p.matched)
	return out
}

// Dispose marks the processor unusable; in-flight work is left to observe
// ctx cancellation from its caller, matching the other processors.
func (p *MatchProcessor) Dispose() {
	p.mu.Lock()
	p.disposed = true
	p.mu.Unlock()
}

// Start begins (or reserves) a match run for items/query. restart cancels
// any in-flight run so the new request can begin immediately; otherwise
// the new request is reserved to run after the current one finishes.
//
// A same-query Start when idle is a no-op beyond re-dispatching
// match-processor-succeeded: it does not force a downstream re-run
// beyond that single event.
func (p *MatchProcessor) Start(ctx context.Context, items []item.Item, query string, restart bool) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return ErrDisposed
	}
	idle := !p.res.isRunning()
	sameQuery := p.haveQuery && query == p.lastQuery
	p.mu.Unlock()

	if idle && sameQuery {
		p.queue.Dispatch(event.Event{Kind: event.KindMatchSucceeded, Payload: p.Matched()})
		return nil
	}

	req := matchRequest{items: items, query: query}
	runCtx, done, ok := p.res.begin(ctx, req, restart, func(r matchRequest) {
		p.execute(ctx, r)
	})
	if !ok {
		return nil
	}
	go func() {
		defer done()
		p.doMatch(runCtx, req)
	}()
	return nil
}

// execute is the entry point used when a reserved request is promoted
// after the current run finishes; it re-enters the same reservation
// bookkeeping as a fresh Start so further reservations still compose.
func (p *MatchProcessor) execute(parent context.Context, req matchRequest) {
	runCtx, done, ok := p.res.begin(parent, req, false, func(r matchRequest) {
		p.execute(parent, r)
	})
	if !ok {
		return
	}
	defer done()
	p.doMatch(runCtx, req)
}

func (p *MatchProcessor) doMatch(ctx context.Context, req matchRequest) {
	matcher := p.belt.Current()
	stream := matcher.Match(ctx, MatchParams{Items: req.items, Query: req.query})

	var collected []item.Item
	chunker := container.NewChunker[item.Item](p.opts.ChunkSize)
	incremental := matcher.Incremental()

	publish := func(final bool) {
		p.mu.Lock()
		p.matched = append([]item.Item(nil), collected...)
		p.lastQuery = req.query
		p.haveQuery = true
		snapshot := append([]item.Item(nil), p.matched...)
		p.mu.Unlock()

		if final {
			p.queue.Dispatch(event.Event{Kind: event.KindMatchSucceeded, Payload: snapshot})
		} else if incremental {
			p.queue.Dispatch(event.Event{Kind: event.KindMatchUpdated, Payload: snapshot})
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-stream:
			if !ok {
				publish(true)
				return
			}
			if res.Err != nil {
				if cancel.Is(res.Err) {
					return
				}
				p.logger.Warn("match processor failed", "error", res.Err)
				p.queue.Dispatch(event.Event{Kind: event.KindMatchFailed, Payload: res.Err})
				return
			}

			collected = append(collected, res.Value)
			flushNow := chunker.Put(res.Value)

			if len(collected) >= p.opts.Threshold {
				publish(true)
				return
			}
			if flushNow {
				chunker.Consume()
				publish(false)
				if !sleep(ctx, p.opts.Interval) {
					return
				}
			}
		}
	}
}

// sleep cooperatively yields for d, returning false if ctx is cancelled
// first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
