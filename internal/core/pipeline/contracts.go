// Package pipeline implements the five staged processors and declares
// the extension contracts each stage is polymorphic over.
package pipeline

import (
	"context"

	"github.com/vim-fall/fall.vim/internal/core/item"
)

// Result carries one produced value or a terminal error down a Stream.
type Result[T any] struct {
	Value T
	Err   error
}

// Stream is the core's cancellable lazy sequence abstraction: pull-based
// from the consumer's point of view (range over the channel),
// cooperatively cancellable via the ctx passed to the producing call,
// and may be infinite. A producer sends a final Result with Err set
// (cancel.Sentinel or a real error) before closing, or simply closes
// the channel on a clean, errorless end.
type Stream[T any] <-chan Result[T]

// Source is a cancellable async producer of items.
type Source interface {
	Collect(ctx context.Context, params CollectParams) Stream[item.Item]
}

// CollectParams carries the arguments a Source.Collect call receives:
// the free-form argument vector parsed from the picker's open/resume
// command.
type CollectParams struct {
	Args []string
}

// Matcher filters (and may reorder/score) items by query. Incremental
// reports whether intermediate chunks should be published as they
// arrive.
type Matcher interface {
	Match(ctx context.Context, params MatchParams) Stream[item.Item]
	Incremental() bool
}

// MatchParams is the input to a single Matcher.Match call.
type MatchParams struct {
	Items []item.Item
	Query string
}

// Sorter mutates the provided slice in place.
type Sorter interface {
	Sort(ctx context.Context, items []item.Item) error
}

// Renderer sets Label/Decorations on each item in the visible window.
type Renderer interface {
	Render(ctx context.Context, items []item.Item) error
}

// PreviewPayload is the content a Previewer produces for the item under
// the cursor.
type PreviewPayload struct {
	Lines    []string
	Filetype string
}

// Previewer generates preview content for a single item.
type Previewer interface {
	Preview(ctx context.Context, it item.Item) (*PreviewPayload, error)
}

// ActionContext is handed to an Action's Invoke call.
type ActionContext struct {
	Item          *item.Item
	SelectedItems []item.Item
	FilteredItems []item.Item
	Query         string
	// Submatch carries the picker params of the invoking picker, letting a
	// nested submatch action re-derive its source scope.
	Submatch any
}

// Action is a named, invokable terminal step. Invoke returning true
// means "loop" (the picker stays open for another selection round);
// false means "exit".
type Action interface {
	Invoke(ctx context.Context, actx ActionContext) (bool, error)
}

// Style and Layout are opaque outputs of a Coordinator; the core only ever
// passes them through to the Host.
type Style struct {
	Border   string
	Divider  string
	Spinner  string
	Symbols  map[string]string
}

type Layout struct {
	X, Y, Width, Height int
}

// Theme is an opaque style input; the core only reads its named fields.
type Theme struct {
	Border  string
	Divider string
	Spinner string
}

// ScreenSize is the host's reported terminal/window dimensions.
type ScreenSize struct {
	Width, Height int
}

// Coordinator produces component placement.
type Coordinator interface {
	Style(theme Theme) Style
	Layout(screen ScreenSize) Layout
}
