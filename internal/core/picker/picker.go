// Package picker implements the Picker Orchestrator: it wires the five
// pipeline processors, owns cursor/selection state, translates queued
// events into processor commands, drives the render loop off the
// scheduler, and manages the action-selection sub-flow.
package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vim-fall/fall.vim/internal/core/action"
	"github.com/vim-fall/fall.vim/internal/core/event"
	"github.com/vim-fall/fall.vim/internal/core/host"
	"github.com/vim-fall/fall.vim/internal/core/item"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
	"github.com/vim-fall/fall.vim/internal/core/scheduler"
	"github.com/vim-fall/fall.vim/internal/core/session"
)

// SelectMethod names how a selection event mutates the selection set.
type SelectMethod int

const (
	SelectToggle SelectMethod = iota
	SelectOn
	SelectOff
)

// MoveCursorPayload is the payload of a KindMoveCursor event.
type MoveCursorPayload struct {
	Amount int
	Scroll bool
}

// SwitchPayload is the payload of a relative switch-{stage} event.
type SwitchPayload struct {
	Amount int
	Cycle  bool
}

// SwitchAtPayload is the payload of an absolute switch-{stage}-at event.
// Index accepts container.Last ("$").
type SwitchAtPayload struct {
	Index int
}

// SelectItemPayload is the payload of a select-item event. Cursor
// defaults to the current cursor position when nil.
type SelectItemPayload struct {
	Cursor *int
	Method SelectMethod
}

// SelectAllPayload is the payload of a select-all-items event.
type SelectAllPayload struct {
	Method SelectMethod
}

// ListScroll is the amount-multiplier applied to move-cursor events
// that request scroll (e.g. Page Up/Down).
const ListScroll = 10

// Params configures a new Picker.
type Params struct {
	Name   string
	Args   []string
	Source pipeline.Source

	Matchers   []pipeline.Matcher
	Sorters    []pipeline.Sorter
	Renderers  []pipeline.Renderer
	Previewers []pipeline.Previewer
	Actions    action.Map

	CollectOptions  pipeline.CollectOptions
	MatchOptions    pipeline.MatchOptions
	RenderOptions   pipeline.RenderOptions
	PreviewIndex    int
	SchedulerDelay  int // milliseconds; 0 uses scheduler.DefaultInterval
	PreviewDebounce int // milliseconds; 0 uses scheduler.DefaultPreviewDebounce
	Host            host.Host
	Sessions        *session.Store
	Logger          *slog.Logger
	InitialContext  *item.Context
}

// Result is what Run returns: either a chosen action name with the
// context it was invoked against, or a cancelled run.
type Result struct {
	Cancelled  bool
	ActionName string
	Context    item.Context
}

// Picker is the orchestrator instance for a single picker session.
type Picker struct {
	params   Params
	pickerID string
	logger   *slog.Logger

	queue      *event.Queue
	collect    *pipeline.CollectProcessor
	match      *pipeline.MatchProcessor
	sort       *pipeline.SortProcessor
	render     *pipeline.RenderProcessor
	preview    *pipeline.PreviewProcessor
	dispatcher *action.Dispatcher
	scheduler  *scheduler.Scheduler
	debouncer  *scheduler.Debouncer

	guard         *host.Guard
	listWindow    host.WindowHandle
	previewWindow host.WindowHandle
	hasPreviewWin bool

	mu         sync.Mutex
	query      string
	cmdpos     int
	collecting bool
	selection  item.Selection
	helpOpen   bool
	helpPage   int
	failures   map[event.Kind]error

	acceptOnce sync.Once
	done       chan struct{}
	result     Result
}

// New constructs a Picker from params. The picker is not yet open; call
// Open then Run.
func New(params Params) *Picker {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pickerID := uuid.NewString()
	logger = logger.With("picker_id", pickerID)

	q := event.New(logger)
	tickInterval := scheduler.DefaultInterval
	if params.SchedulerDelay > 0 {
		tickInterval = msToDuration(params.SchedulerDelay)
	}
	previewDebounce := scheduler.DefaultPreviewDebounce
	if params.PreviewDebounce > 0 {
		previewDebounce = msToDuration(params.PreviewDebounce)
	}

	selection := item.NewSelection()
	query := ""
	if params.InitialContext != nil {
		selection = params.InitialContext.Selection.Clone()
		query = params.InitialContext.Query
	}

	p := &Picker{
		params:     params,
		pickerID:   pickerID,
		logger:     logger,
		queue:      q,
		collect:    pipeline.NewCollectProcessor(params.CollectOptions, q, logger),
		match:      pipeline.NewMatchProcessor(params.Matchers, withQuery(params.MatchOptions, query), q, logger),
		sort:       pipeline.NewSortProcessor(params.Sorters, 0, q, logger),
		render:     pipeline.NewRenderProcessor(params.Renderers, params.RenderOptions, q, logger),
		preview:    pipeline.NewPreviewProcessor(params.Previewers, params.PreviewIndex, q, logger),
		dispatcher: action.New(params.Actions),
		scheduler:  scheduler.New(tickInterval, logger),
		debouncer:  scheduler.NewDebouncer(previewDebounce),
		guard:      host.NewGuard(),
		query:      query,
		selection:  selection,
		failures:   make(map[event.Kind]error),
		done:       make(chan struct{}),
	}
	if params.InitialContext != nil {
		p.render.SetCursor(params.InitialContext.Cursor)
	}
	return p
}

func withQuery(opts pipeline.MatchOptions, query string) pipeline.MatchOptions {
	opts.InitialQuery = query
	return opts
}

func msToDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// Open acquires the host window(s) — the list window always, a second
// preview window only when previewers are configured — and emits
// PickerEnter. The returned Guard must be Closed (Run does this) to
// guarantee every opened window is released and PickerLeave is emitted
// on every exit path.
func (p *Picker) Open(ctx context.Context, listBounds, previewBounds host.Bounds) (*host.Guard, error) {
	h := p.params.Host
	if h == nil {
		return p.guard, nil
	}

	listHandle, _, err := h.OpenWindow(ctx, listBounds)
	if err != nil {
		return nil, fmt.Errorf("picker: open list window: %w", err)
	}
	p.listWindow = listHandle
	p.guard.Defer(func() { _ = h.CloseWindow(context.Background(), listHandle) })

	if len(p.params.Previewers) > 0 {
		previewHandle, _, err := h.OpenWindow(ctx, previewBounds)
		if err != nil {
			return nil, fmt.Errorf("picker: open preview window: %w", err)
		}
		p.previewWindow = previewHandle
		p.hasPreviewWin = true
		p.guard.Defer(func() { _ = h.CloseWindow(context.Background(), previewHandle) })
	}

	p.guard.Defer(func() { _ = h.Notify(context.Background(), host.EventPickerLeave) })
	if err := h.Notify(ctx, host.EventPickerEnter); err != nil {
		p.logger.Warn("picker enter notify failed", "error", err)
	}
	return p.guard, nil
}

// Cancel aborts the picker as a cancelled result without invoking any
// action, e.g. on Escape.
func (p *Picker) Cancel() {
	p.accept("", true)
}

// Run starts collection and drives the scheduler until an action is
// accepted or ctx is cancelled, then returns the Result.
func (p *Picker) Run(ctx context.Context) (Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := p.collect.Start(runCtx, p.params.Source, pipeline.CollectParams{Args: p.params.Args}); err != nil {
		return Result{}, err
	}
	p.mu.Lock()
	p.collecting = true
	p.mu.Unlock()

	go p.scheduler.Start(runCtx, p.tick)

	select {
	case <-p.done:
	case <-runCtx.Done():
		p.dispose()
		return Result{Cancelled: true}, runCtx.Err()
	}

	p.dispose()
	p.mu.Lock()
	res := p.result
	p.mu.Unlock()
	return res, nil
}

func (p *Picker) dispose() {
	p.collect.Dispose()
	p.match.Dispose()
	p.sort.Dispose()
	p.render.Dispose()
	p.preview.Dispose()
	p.guard.Close()
}

// accept records the terminal transition and unblocks Run. Only the
// first call takes effect.
func (p *Picker) accept(name string, cancelled bool) {
	p.acceptOnce.Do(func() {
		p.mu.Lock()
		p.result = Result{
			ActionName: name,
			Context:    p.snapshotLocked(),
			Cancelled:  cancelled,
		}
		p.mu.Unlock()
		close(p.done)
	})
}

func (p *Picker) snapshotLocked() item.Context {
	return item.Context{
		Query:          p.query,
		Selection:      p.selection.Clone(),
		CollectedItems: p.collect.Items(),
		FilteredItems:  p.sort.Sorted(),
		Cursor:         p.render.Cursor(),
		Offset:         p.render.Offset(),
		MatcherIndex:   p.match.Belt().Index(),
		SorterIndex:    sorterIndex(p.sort),
		RendererIndex:  p.render.Belt().Index(),
		PreviewerIndex: previewerIndex(p.preview),
	}
}

func sorterIndex(s *pipeline.SortProcessor) int {
	if s.Belt() == nil {
		return -1
	}
	return s.Belt().Index()
}

func previewerIndex(p *pipeline.PreviewProcessor) int {
	if p.Belt() == nil {
		return -1
	}
	return p.Belt().Index()
}

// Dispatch enqueues an event for the next scheduler tick to handle.
// The host/input-driver layer calls this to feed user actions into the
// orchestrator.
func (p *Picker) Dispatch(kind event.Kind, payload any) {
	p.queue.Dispatch(event.Event{Kind: kind, Payload: payload})
}

// Snapshot returns a PickerContext snapshot suitable for the Session
// Store, safe to call at any point during Run.
func (p *Picker) Snapshot() item.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// SaveSession persists the current context under p.params.Name to the
// configured Session Store, if any. Reserved names are rejected by the
// store's own save-boundary check, and that error is returned to the
// caller.
func (p *Picker) SaveSession() error {
	if p.params.Sessions == nil {
		return nil
	}
	return p.params.Sessions.Save(session.Session{
		Name:    p.params.Name,
		Args:    p.params.Args,
		Context: p.Snapshot(),
	})
}

var errFatalEvent = errors.New("picker: unrecognized event kind reached the orchestrator")
