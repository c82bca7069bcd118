// Package tui implements the default Host (core/host.Host) using
// charmbracelet/bubbletea: a single terminal program hosting the
// picker's list and preview panes as logical "floating windows" over
// one screen.
package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	corehost "github.com/vim-fall/fall.vim/internal/core/host"
	"github.com/vim-fall/fall.vim/internal/core/item"
)

type windowState struct {
	bounds corehost.Bounds
	lines  []string
	items  []item.Item
}

// Host is the bubbletea-backed implementation of core/host.Host. A
// single Host instance backs one tea.Program; the Picker orchestrator
// treats each OpenWindow call as acquiring one logical pane within
// that program's single screen.
type Host struct {
	mu sync.Mutex

	program *tea.Program
	next    corehost.WindowHandle
	windows map[corehost.WindowHandle]*windowState
	order   []corehost.WindowHandle

	cmdline string
	cmdpos  int
	size    corehost.ScreenSize

	events  []corehost.NotifyEvent
	message string
}

// New constructs a Host reporting size as its screen dimensions. Attach
// must be called once the tea.Program exists (the program and the Host
// are constructed together since the bubbletea Model holds a *Host).
func New(size corehost.ScreenSize) *Host {
	return &Host{
		windows: make(map[corehost.WindowHandle]*windowState),
		size:    size,
	}
}

// Attach wires the running tea.Program so RequestRedraw/Notify can push
// messages into it.
func (h *Host) Attach(p *tea.Program) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.program = p
}

func (h *Host) OpenWindow(_ context.Context, bounds corehost.Bounds) (corehost.WindowHandle, corehost.ScreenSize, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	handle := h.next
	h.windows[handle] = &windowState{bounds: bounds}
	h.order = append(h.order, handle)
	return handle, h.size, nil
}

func (h *Host) MoveWindow(_ context.Context, handle corehost.WindowHandle, bounds corehost.Bounds) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w, ok := h.windows[handle]; ok {
		w.bounds = bounds
	}
	return nil
}

func (h *Host) CloseWindow(_ context.Context, handle corehost.WindowHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.windows, handle)
	for i, w := range h.order {
		if w == handle {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return nil
}

// OpenOrder returns window handles in the order OpenWindow acquired
// them, still-open ones only. The Picker orchestrator always opens the
// list window first and, only when previewers are configured, a second
// preview window, so index 0 is the list pane and index 1 (if present)
// is the preview pane.
func (h *Host) OpenOrder() []corehost.WindowHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]corehost.WindowHandle(nil), h.order...)
}

func (h *Host) Cmdline(_ context.Context) (string, int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cmdline, h.cmdpos, nil
}

// SetCmdline is called by the Model on every keystroke that changes the
// textinput value/cursor, the push side of the otherwise poll-based
// input driver contract.
func (h *Host) SetCmdline(text string, pos int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmdline, h.cmdpos = text, pos
}

func (h *Host) WriteBuffer(_ context.Context, handle corehost.WindowHandle, lines []string, items []item.Item) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.windows[handle]
	if !ok {
		w = &windowState{}
		h.windows[handle] = w
	}
	w.lines = lines
	w.items = items
	return nil
}

// Lines returns the last buffer content written to handle, for the
// Model's View to render.
func (h *Host) Lines(handle corehost.WindowHandle) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w, ok := h.windows[handle]; ok {
		return w.lines
	}
	return nil
}

type redrawMsg struct{}

func (h *Host) RequestRedraw(_ context.Context) error {
	h.mu.Lock()
	p := h.program
	h.mu.Unlock()
	if p != nil {
		p.Send(redrawMsg{})
	}
	return nil
}

func (h *Host) Notify(_ context.Context, ev corehost.NotifyEvent) error {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
	return nil
}

// Events returns every notice emitted so far, for tests.
func (h *Host) Events() []corehost.NotifyEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]corehost.NotifyEvent(nil), h.events...)
}

func (h *Host) Echo(_ context.Context, message string) error {
	h.mu.Lock()
	h.message = message
	h.mu.Unlock()
	return nil
}

// Message returns the last echoed user-facing message, for the Model's
// status line and for tests. Empty once nothing has been echoed yet.
func (h *Host) Message() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.message
}

var _ corehost.Host = (*Host)(nil)
