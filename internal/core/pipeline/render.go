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

// Last is the "$" sentinel accepted by cursor and belt setters throughout
// the core.
const Last = container.Last

// RenderProcessor maintains the cursor/offset and produces the visible
// window via the current Renderer.
type RenderProcessor struct {
	belt   *container.Belt[Renderer]
	queue  *event.Queue
	logger *slog.Logger

	mu           sync.Mutex
	cursor       int
	offset       int
	height       int
	scrollOffset int
	itemCount    int
	window       []item.Item
	disposed     bool

	res reservation[[]item.Item]
}

// RenderOptions seeds the initial height and scrollOffset; InitialIndex
// selects the initial renderer on the belt. Cursor and offset start at 0.
type RenderOptions struct {
	Height       int
	ScrollOffset int
	InitialIndex int
}

// NewRenderProcessor constructs a RenderProcessor cycling over renderers.
func NewRenderProcessor(renderers []Renderer, opts RenderOptions, q *event.Queue, logger *slog.Logger) *RenderProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	belt := container.NewBelt(renderers)
	belt.Set(opts.InitialIndex)
	return &RenderProcessor{
		belt:         belt,
		queue:        q,
		logger:       logger,
		height:       opts.Height,
		scrollOffset: opts.ScrollOffset,
	}
}

// Belt exposes the renderer belt so the orchestrator can switch strategies.
func (p *RenderProcessor) Belt() *container.Belt[Renderer] { return p.belt }

func (p *RenderProcessor) Dispose() {
	p.mu.Lock()
	p.disposed = true
	p.mu.Unlock()
}

// Cursor returns the current cursor position.
func (p *RenderProcessor) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Offset returns the current scroll offset.
func (p *RenderProcessor) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

// Line returns cursor-offset+1, the 1-based screen line the UI should
// place its own cursor on.
func (p *RenderProcessor) Line() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor - p.offset + 1
}

// Window returns the last published visible window.
func (p *RenderProcessor) Window() []item.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]item.Item, len(p.window))
	copy(out, p.window)
	return out
}

// SetCursor moves the cursor to an absolute position; Last ("$") means
// itemCount-1. Callers are expected to re-Start to reclamp/republish.
func (p *RenderProcessor) SetCursor(at int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = p.clampCursorLocked(at)
	p.reclampOffsetLocked()
}

// MoveCursor shifts the cursor by amount, clamped into [0, itemCount).
// Scroll scaling (e.g. Page Up/Down) is applied by the caller.
func (p *RenderProcessor) MoveCursor(amount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.cursor + amount
	if next < 0 {
		next = 0
	}
	p.cursor = p.clampCursorLocked(next)
	p.reclampOffsetLocked()
}

// SetHeight updates the visible window height and reclamps the offset.
func (p *RenderProcessor) SetHeight(height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.height = height
	p.reclampOffsetLocked()
}

func (p *RenderProcessor) clampCursorLocked(at int) int {
	max := p.itemCount - 1
	if max < 0 {
		max = 0
	}
	if at == Last {
		return max
	}
	if at < 0 {
		return 0
	}
	if at > max {
		return max
	}
	return at
}

// reclampOffsetLocked adjusts offset so the cursor stays within
// [offset+scrollOffset, offset+height-scrollOffset) when possible.
func (p *RenderProcessor) reclampOffsetLocked() {
	if p.height <= 0 {
		p.offset = 0
		return
	}
	so := p.scrollOffset
	if 2*so >= p.height {
		so = 0
	}

	lower := p.offset + so
	upper := p.offset + p.height - so

	if p.cursor < lower {
		p.offset = p.cursor - so
	} else if p.cursor >= upper {
		p.offset = p.cursor - p.height + so + 1
	}

	if p.offset < 0 {
		p.offset = 0
	}
	maxOffset := p.itemCount - p.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if p.offset > maxOffset {
		p.offset = maxOffset
	}
}

// Start recomputes the visible window for items and hands it to the
// current Renderer.
func (p *RenderProcessor) Start(ctx context.Context, items []item.Item) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return ErrDisposed
	}
	p.itemCount = len(items)
	p.cursor = p.clampCursorLocked(p.cursor)
	p.reclampOffsetLocked()
	p.mu.Unlock()

	runCtx, done, ok := p.res.begin(ctx, items, true, func(r []item.Item) {
		p.executeLatest(ctx, r)
	})
	if !ok {
		return nil
	}
	go func() {
		defer done()
		p.doRender(runCtx, items)
	}()
	return nil
}

func (p *RenderProcessor) executeLatest(parent context.Context, items []item.Item) {
	p.mu.Lock()
	p.itemCount = len(items)
	p.cursor = p.clampCursorLocked(p.cursor)
	p.reclampOffsetLocked()
	p.mu.Unlock()

	runCtx, done, ok := p.res.begin(parent, items, true, func(r []item.Item) {
		p.executeLatest(parent, r)
	})
	if !ok {
		return
	}
	defer done()
	p.doRender(runCtx, items)
}

func (p *RenderProcessor) doRender(ctx context.Context, items []item.Item) {
	p.mu.Lock()
	offset, height := p.offset, p.height
	p.mu.Unlock()

	end := offset + height
	if end > len(items) {
		end = len(items)
	}
	if offset > end {
		offset = end
	}

	window := make([]item.Item, end-offset)
	for i, it := range items[offset:end] {
		window[i] = it.WithDefaults()
	}

	renderer := p.belt.Current()
	if err := renderer.Render(ctx, window); err != nil {
		if cancel.Is(err) {
			return
		}
		p.logger.Warn("render processor failed", "error", err)
		p.queue.Dispatch(event.Event{Kind: event.KindRenderFailed, Payload: err})
		return
	}

	p.mu.Lock()
	p.window = window
	p.mu.Unlock()

	p.queue.Dispatch(event.Event{Kind: event.KindRenderSucceeded, Payload: window})
}
