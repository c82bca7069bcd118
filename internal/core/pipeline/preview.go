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

type previewRequest struct {
	item    *item.Item
	hasItem bool
}

// PreviewProcessor generates preview content for the item under the
// cursor via the current Previewer. Debouncing is applied by the caller
// (the orchestrator), not by this processor itself.
type PreviewProcessor struct {
	belt   *container.Belt[Previewer] // nil means "no previewer configured"
	queue  *event.Queue
	logger *slog.Logger

	res reservation[previewRequest]

	mu       sync.Mutex
	payload  *PreviewPayload
	disposed bool
}

// NewPreviewProcessor constructs a PreviewProcessor. An empty previewers
// list is valid: Start then always publishes an undefined payload.
func NewPreviewProcessor(previewers []Previewer, initialIndex int, q *event.Queue, logger *slog.Logger) *PreviewProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &PreviewProcessor{queue: q, logger: logger}
	if len(previewers) > 0 {
		p.belt = container.NewBelt(previewers)
		p.belt.Set(initialIndex)
	}
	return p
}

// Belt exposes the previewer belt, or nil if none is configured.
func (p *PreviewProcessor) Belt() *container.Belt[Previewer] { return p.belt }

// Payload returns the last published preview payload, or nil.
func (p *PreviewProcessor) Payload() *PreviewPayload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payload
}

func (p *PreviewProcessor) Dispose() {
	p.mu.Lock()
	p.disposed = true
	p.mu.Unlock()
}

// Start generates a preview for it (nil meaning "no item under cursor").
func (p *PreviewProcessor) Start(ctx context.Context, it *item.Item) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return ErrDisposed
	}
	p.mu.Unlock()

	req := previewRequest{item: it, hasItem: it != nil}

	if req.hasItem && p.belt == nil {
		p.mu.Lock()
		p.payload = nil
		p.mu.Unlock()
		p.queue.Dispatch(event.Event{Kind: event.KindPreviewSucceeded, Payload: (*PreviewPayload)(nil)})
		return nil
	}

	runCtx, done, ok := p.res.begin(ctx, req, true, func(r previewRequest) {
		p.executeLatest(ctx, r)
	})
	if !ok {
		return nil
	}
	go func() {
		defer done()
		p.doPreview(runCtx, req)
	}()
	return nil
}

func (p *PreviewProcessor) executeLatest(parent context.Context, req previewRequest) {
	runCtx, done, ok := p.res.begin(parent, req, true, func(r previewRequest) {
		p.executeLatest(parent, r)
	})
	if !ok {
		return
	}
	defer done()
	p.doPreview(runCtx, req)
}

func (p *PreviewProcessor) doPreview(ctx context.Context, req previewRequest) {
	if !req.hasItem {
		p.mu.Lock()
		p.payload = nil
		p.mu.Unlock()
		p.queue.Dispatch(event.Event{Kind: event.KindPreviewSucceeded, Payload: (*PreviewPayload)(nil)})
		return
	}

	payload, err := p.belt.Current().Preview(ctx, *req.item)
	if err != nil {
		if cancel.Is(err) {
			return
		}
		p.logger.Warn("preview processor failed", "error", err)
		p.queue.Dispatch(event.Event{Kind: event.KindPreviewFailed, Payload: err})
		return
	}

	p.mu.Lock()
	p.payload = payload
	p.mu.Unlock()
	p.queue.Dispatch(event.Event{Kind: event.KindPreviewSucceeded, Payload: payload})
}
