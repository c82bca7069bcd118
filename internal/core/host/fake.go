package host

import (
	"context"
	"sync"

	"github.com/vim-fall/fall.vim/internal/core/item"
)

// Fake is an in-memory Host used by core tests and examples; it is not
// wired into the default TUI host.
type Fake struct {
	mu sync.Mutex

	nextHandle WindowHandle
	open       map[WindowHandle]Bounds
	lines      map[WindowHandle][]string
	cmdline    string
	cmdpos     int
	size       ScreenSize
	events     []NotifyEvent
	redraws    int
	message    string
}

// NewFake constructs a Fake host reporting the given screen size.
func NewFake(size ScreenSize) *Fake {
	return &Fake{
		open:  make(map[WindowHandle]Bounds),
		lines: make(map[WindowHandle][]string),
		size:  size,
	}
}

func (f *Fake) OpenWindow(_ context.Context, bounds Bounds) (WindowHandle, ScreenSize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHandle++
	h := f.nextHandle
	f.open[h] = bounds
	return h, f.size, nil
}

func (f *Fake) MoveWindow(_ context.Context, h WindowHandle, bounds Bounds) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open[h] = bounds
	return nil
}

func (f *Fake) CloseWindow(_ context.Context, h WindowHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.open, h)
	delete(f.lines, h)
	return nil
}

func (f *Fake) Cmdline(_ context.Context) (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cmdline, f.cmdpos, nil
}

// SetCmdline lets tests drive the observed command-line state.
func (f *Fake) SetCmdline(text string, pos int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmdline, f.cmdpos = text, pos
}

func (f *Fake) WriteBuffer(_ context.Context, h WindowHandle, lines []string, _ []item.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines[h] = lines
	return nil
}

func (f *Fake) RequestRedraw(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redraws++
	return nil
}

func (f *Fake) Notify(_ context.Context, ev NotifyEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *Fake) Echo(_ context.Context, message string) error {
	f.mu.Lock()
	f.message = message
	f.mu.Unlock()
	return nil
}

// Message returns the last echoed user-facing message, for tests. Empty
// once nothing has been echoed yet.
func (f *Fake) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// OpenWindows returns the number of currently open windows.
func (f *Fake) OpenWindows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.open)
}

// Lines returns the last buffer content written to h.
func (f *Fake) Lines(h WindowHandle) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lines[h]
}

// Events returns every notice emitted so far, in order.
func (f *Fake) Events() []NotifyEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]NotifyEvent(nil), f.events...)
}

// Redraws returns the number of RequestRedraw calls observed.
func (f *Fake) Redraws() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redraws
}

var _ Host = (*Fake)(nil)
