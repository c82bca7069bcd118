package picker

import (
	"context"

	"github.com/vim-fall/fall.vim/internal/core/action"
	"github.com/vim-fall/fall.vim/internal/core/event"
	"github.com/vim-fall/fall.vim/internal/core/item"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
)

// tick is the scheduler's per-interval callback: refresh the input
// driver, then drain and handle events (the handlers write published
// state to the host).
func (p *Picker) tick(ctx context.Context) {
	p.refreshInputDriver(ctx)
	p.queue.Drain(func(ev event.Event) {
		p.handleEvent(ctx, ev)
	})
}

// refreshInputDriver observes the host's cmdline/cmdpos and dispatches
// change events when they differ from the last observed values.
func (p *Picker) refreshInputDriver(ctx context.Context) {
	h := p.params.Host
	if h == nil {
		return
	}
	text, pos, err := h.Cmdline(ctx)
	if err != nil {
		return
	}

	p.mu.Lock()
	changed := text != p.query
	posChanged := pos != p.cmdpos
	p.mu.Unlock()

	if changed {
		p.queue.Dispatch(event.Event{Kind: event.KindCmdlineChanged, Payload: text})
	}
	if posChanged {
		p.queue.Dispatch(event.Event{Kind: event.KindCmdposChanged, Payload: pos})
	}
}

func (p *Picker) handleEvent(ctx context.Context, ev event.Event) {
	switch ev.Kind {
	case event.KindCmdlineChanged:
		query := ev.Payload.(string)
		p.mu.Lock()
		p.query = query
		p.mu.Unlock()
		_ = p.match.Start(ctx, p.collect.Items(), query, true)

	case event.KindCmdposChanged:
		p.mu.Lock()
		p.cmdpos = ev.Payload.(int)
		p.mu.Unlock()

	case event.KindMoveCursor:
		mv := ev.Payload.(MoveCursorPayload)
		amount := mv.Amount
		if mv.Scroll {
			amount *= ListScroll
		}
		p.render.MoveCursor(amount)
		_ = p.render.Start(ctx, p.sort.Sorted())

	case event.KindMoveCursorAt:
		p.render.SetCursor(ev.Payload.(int))
		_ = p.render.Start(ctx, p.sort.Sorted())

	case event.KindSelectItem:
		p.handleSelectItem(ev.Payload.(SelectItemPayload))

	case event.KindSelectAllItems:
		p.handleSelectAll(ev.Payload.(SelectAllPayload))

	case event.KindSwitchMatcher:
		sw := ev.Payload.(SwitchPayload)
		p.match.Belt().Move(sw.Amount, sw.Cycle)
		_ = p.match.Start(ctx, p.collect.Items(), p.currentQuery(), true)
	case event.KindSwitchMatcherAt:
		p.match.Belt().Set(ev.Payload.(SwitchAtPayload).Index)
		_ = p.match.Start(ctx, p.collect.Items(), p.currentQuery(), true)

	case event.KindSwitchSorter:
		if b := p.sort.Belt(); b != nil {
			sw := ev.Payload.(SwitchPayload)
			b.Move(sw.Amount, sw.Cycle)
		}
		_ = p.sort.Start(ctx, p.match.Matched())
	case event.KindSwitchSorterAt:
		if b := p.sort.Belt(); b != nil {
			b.Set(ev.Payload.(SwitchAtPayload).Index)
		}
		_ = p.sort.Start(ctx, p.match.Matched())

	case event.KindSwitchRenderer:
		sw := ev.Payload.(SwitchPayload)
		p.render.Belt().Move(sw.Amount, sw.Cycle)
		_ = p.render.Start(ctx, p.sort.Sorted())
	case event.KindSwitchRendererAt:
		p.render.Belt().Set(ev.Payload.(SwitchAtPayload).Index)
		_ = p.render.Start(ctx, p.sort.Sorted())

	case event.KindSwitchPreviewer:
		if b := p.preview.Belt(); b != nil {
			sw := ev.Payload.(SwitchPayload)
			b.Move(sw.Amount, sw.Cycle)
		}
		p.triggerPreview(ctx)
	case event.KindSwitchPreviewAt:
		if b := p.preview.Belt(); b != nil {
			b.Set(ev.Payload.(SwitchAtPayload).Index)
		}
		p.triggerPreview(ctx)

	case event.KindActionInvoke:
		p.handleActionInvoke(ctx, ev.Payload.(string))

	case event.KindListExecute, event.KindPreviewExecute:
		// Raw editor command pass-through; the core has no behavior of its
		// own here beyond forwarding, which is the host's responsibility.

	case event.KindHelpToggle:
		p.mu.Lock()
		p.helpOpen = !p.helpOpen
		p.helpPage = 0
		open := p.helpOpen
		p.mu.Unlock()
		// Collection keeps running underneath a closed overlay, but while
		// the help page covers the list there's no point burning CPU
		// appending items the user can't see yet; pause and pick back up
		// on close.
		if open {
			p.collect.Pause()
		} else {
			p.collect.Resume()
		}
		p.requestRedraw(ctx)

	case event.KindHelpPage:
		delta := ev.Payload.(int)
		p.mu.Lock()
		if p.helpOpen {
			p.helpPage += delta
			if p.helpPage < 0 {
				p.helpPage = 0
			}
		}
		p.mu.Unlock()
		p.requestRedraw(ctx)

	case event.KindCollectUpdated:
		_ = p.match.Start(ctx, p.collect.Items(), p.currentQuery(), false)

	case event.KindCollectSucceeded:
		p.mu.Lock()
		p.collecting = false
		p.mu.Unlock()
		_ = p.match.Start(ctx, p.collect.Items(), p.currentQuery(), false)

	case event.KindMatchUpdated, event.KindMatchSucceeded:
		matched := ev.Payload.([]item.Item)
		_ = p.sort.Start(ctx, matched)

	case event.KindSortSucceeded:
		sorted := ev.Payload.([]item.Item)
		_ = p.render.Start(ctx, sorted)

	case event.KindRenderSucceeded:
		window := ev.Payload.([]item.Item)
		p.writeWindow(ctx, window)
		p.triggerPreview(ctx)

	case event.KindPreviewSucceeded:
		payload, _ := ev.Payload.(*pipeline.PreviewPayload)
		p.writePreview(ctx, payload)

	case event.KindSortFailed:
		p.handleFailure(ev)
		// The sorter itself failed, but doSort already fell back to the
		// unsorted matched list and published it as p.sort.Sorted();
		// render still needs to be driven over that fallback so the
		// window doesn't stay stale.
		_ = p.render.Start(ctx, p.sort.Sorted())

	case event.KindCollectFailed, event.KindMatchFailed,
		event.KindRenderFailed, event.KindPreviewFailed:
		p.handleFailure(ev)

	default:
		// Fatal: an exhaustive switch reached a tag it does not know,
		// meaning a programming invariant broke.
		p.logger.Error("unrecognized event kind", "kind", ev.Kind)
		panic(errFatalEvent)
	}
}

func (p *Picker) currentQuery() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

func (p *Picker) handleSelectItem(payload SelectItemPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cursor := p.render.Cursor()
	if payload.Cursor != nil {
		cursor = *payload.Cursor
	}
	window := p.sort.Sorted()
	if cursor < 0 || cursor >= len(window) {
		return
	}
	id := window[cursor].ID
	applySelectMethod(p.selection, id, payload.Method)
}

func (p *Picker) handleSelectAll(payload SelectAllPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, it := range p.sort.Sorted() {
		applySelectMethod(p.selection, it.ID, payload.Method)
	}
}

func applySelectMethod(sel item.Selection, id int, method SelectMethod) {
	switch method {
	case SelectOn:
		sel.Set(id)
	case SelectOff:
		sel.Clear(id)
	default:
		sel.Toggle(id)
	}
}

func (p *Picker) triggerPreview(ctx context.Context) {
	p.debouncer.Trigger(func() {
		cursor := p.render.Cursor()
		window := p.sort.Sorted()
		var it *item.Item
		if cursor >= 0 && cursor < len(window) {
			cp := window[cursor]
			it = &cp
		}
		_ = p.preview.Start(ctx, it)
	})
}

func (p *Picker) writeWindow(ctx context.Context, window []item.Item) {
	h := p.params.Host
	if h == nil {
		return
	}
	lines := make([]string, len(window))
	for i, it := range window {
		lines[i] = it.Label
	}
	if err := h.WriteBuffer(ctx, p.listWindow, lines, window); err != nil {
		p.logger.Warn("write list buffer failed", "error", err)
		return
	}
	p.requestRedraw(ctx)
}

func (p *Picker) writePreview(ctx context.Context, payload *pipeline.PreviewPayload) {
	h := p.params.Host
	if h == nil || payload == nil || !p.hasPreviewWin {
		return
	}
	if err := h.WriteBuffer(ctx, p.previewWindow, payload.Lines, nil); err != nil {
		p.logger.Warn("write preview buffer failed", "error", err)
		return
	}
	p.requestRedraw(ctx)
}

func (p *Picker) requestRedraw(ctx context.Context) {
	h := p.params.Host
	if h == nil {
		return
	}
	if err := h.RequestRedraw(ctx); err != nil {
		p.logger.Warn("redraw request failed", "error", err)
	}
}

// handleFailure records a stage's failure indicator: a non-nil error
// payload is a real stage failure, logged and tracked; a nil payload
// means cancellation and is silently ignored.
func (p *Picker) handleFailure(ev event.Event) {
	err, _ := ev.Payload.(error)
	if err == nil {
		return
	}
	p.mu.Lock()
	p.failures[ev.Kind] = err
	p.mu.Unlock()
	p.logger.Warn("stage failed", "kind", ev.Kind, "error", err)
}

// Failures returns the set of stages currently carrying a failure
// indicator, for the host to render (e.g. a status line marker).
func (p *Picker) Failures() map[event.Kind]error {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[event.Kind]error, len(p.failures))
	for k, v := range p.failures {
		out[k] = v
	}
	return out
}

// HelpState reports whether the help overlay is open and its current
// page.
func (p *Picker) HelpState() (open bool, page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.helpOpen, p.helpPage
}

// handleActionInvoke resolves name (or, for the "@select" sentinel,
// runs the nested action-selection picker via runActionSelection) and
// invokes it, looping the picker on a truthy result.
func (p *Picker) handleActionInvoke(ctx context.Context, name string) {
	if isSelectSentinel(name) {
		p.runActionSelection(ctx)
		return
	}
	p.invokeAction(ctx, name)
}

// invokeAction resolves name and calls it, looping the outer picker
// (staying open for another selection round) when Invoke returns true,
// and otherwise accepting name as the terminal result. An error that
// implements action.UserFacingError is also echoed to the host, on top
// of the developer log entry every invoke error gets.
func (p *Picker) invokeAction(ctx context.Context, name string) {
	actx := p.buildActionContext()
	loop, err := p.dispatcher.Invoke(ctx, name, actx)
	if err != nil {
		p.logger.Warn("action invoke failed", "action", name, "error", err)
		if uerr, ok := err.(action.UserFacingError); ok {
			p.echo(ctx, uerr.UserMessage())
		}
		return
	}
	if !loop {
		p.accept(name, false)
	}
}

// echo surfaces a single-line message to the host's user-visible
// channel, if a Host is attached.
func (p *Picker) echo(ctx context.Context, message string) {
	h := p.params.Host
	if h == nil {
		return
	}
	if err := h.Echo(ctx, message); err != nil {
		p.logger.Warn("echo failed", "error", err)
	}
}

func (p *Picker) buildActionContext() pipeline.ActionContext {
	window := p.sort.Sorted()
	cursor := p.render.Cursor()

	var current *item.Item
	if cursor >= 0 && cursor < len(window) {
		cp := window[cursor]
		current = &cp
	}

	p.mu.Lock()
	sel := p.selection.Clone()
	p.mu.Unlock()

	var selected []item.Item
	for _, it := range p.collect.Items() {
		if sel.Has(it.ID) {
			selected = append(selected, it)
		}
	}

	return pipeline.ActionContext{
		Item:          current,
		SelectedItems: selected,
		FilteredItems: window,
		Query:         p.currentQuery(),
		Submatch:      p.params,
	}
}
