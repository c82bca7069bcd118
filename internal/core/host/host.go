// Package host declares the contract the core demands from the editor
// host: window acquisition, command-line observation, buffer writes,
// and redraw/event emission. The default implementation lives in
// internal/host/tui.
package host

import (
	"context"

	"github.com/vim-fall/fall.vim/internal/core/item"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
)

// ScreenSize is a window or host surface's realized dimensions.
type ScreenSize = pipeline.ScreenSize

// WindowHandle identifies a floating window the Host opened.
type WindowHandle int

// Bounds is a window's on-screen placement.
type Bounds struct {
	X, Y, Width, Height int
}

// NotifyEvent names one of the host's user-event-like notices the core
// emits around the picker lifecycle.
type NotifyEvent string

const (
	EventPickerEnter    NotifyEvent = "PickerEnter"
	EventPickerLeave    NotifyEvent = "PickerLeave"
	EventCustomLoaded   NotifyEvent = "CustomLoaded"
	EventCustomRecached NotifyEvent = "CustomRecached"
)

// Host is the editor-facing surface the Picker Orchestrator drives. All
// methods must be safe to call from the orchestrator's single scheduler
// goroutine; implementations that talk to an external UI toolkit handle
// their own internal concurrency.
type Host interface {
	// OpenWindow acquires a floating window sized/placed by bounds and
	// returns a handle plus its realized size.
	OpenWindow(ctx context.Context, bounds Bounds) (WindowHandle, ScreenSize, error)
	// MoveWindow repositions/resizes an open window.
	MoveWindow(ctx context.Context, h WindowHandle, bounds Bounds) error
	// CloseWindow releases a window opened by OpenWindow.
	CloseWindow(ctx context.Context, h WindowHandle) error

	// Cmdline returns the current command-line string and cursor
	// position (byte offset).
	Cmdline(ctx context.Context) (text string, pos int, err error)

	// WriteBuffer replaces a window's buffer content with lines, and
	// attaches decorations from items that carry them.
	WriteBuffer(ctx context.Context, h WindowHandle, lines []string, items []item.Item) error

	// RequestRedraw asks the host to repaint the screen.
	RequestRedraw(ctx context.Context) error

	// Notify emits a named host-level event.
	Notify(ctx context.Context, ev NotifyEvent) error

	// Echo surfaces a single-line, user-facing message (e.g. "unknown
	// action"), distinct from the orchestrator's developer-facing log
	// output. The host decides how to display it (a status line, a
	// transient notification, ...); it is never fatal to the picker.
	Echo(ctx context.Context, message string) error
}
