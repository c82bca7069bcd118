// Package event implements the picker's single-owner event FIFO.
//
// The queue is deliberately unbounded and never drops: every dispatched
// event is drained exactly once, in enqueue order, by the scheduler tick
// that owns it. Events dispatched while a drain is in progress are
// deferred to the next drain, which is why Drain atomically swaps the
// backing slice out before iterating it.
package event

import (
	"log/slog"
	"sync"
)

// Kind tags an Event's variant. The picker orchestrator switches on Kind;
// an unrecognised Kind reaching the orchestrator is a fatal programming
// error.
type Kind string

const (
	KindCmdlineChanged   Kind = "vim-cmdline-changed"
	KindCmdposChanged    Kind = "vim-cmdpos-changed"
	KindMoveCursor       Kind = "move-cursor"
	KindMoveCursorAt     Kind = "move-cursor-at"
	KindSelectItem       Kind = "select-item"
	KindSelectAllItems   Kind = "select-all-items"
	KindSwitchMatcher    Kind = "switch-matcher"
	KindSwitchMatcherAt  Kind = "switch-matcher-at"
	KindSwitchSorter     Kind = "switch-sorter"
	KindSwitchSorterAt   Kind = "switch-sorter-at"
	KindSwitchRenderer   Kind = "switch-renderer"
	KindSwitchRendererAt Kind = "switch-renderer-at"
	KindSwitchPreviewer  Kind = "switch-previewer"
	KindSwitchPreviewAt  Kind = "switch-previewer-at"
	KindActionInvoke     Kind = "action-invoke"
	KindListExecute      Kind = "list-component-execute"
	KindPreviewExecute   Kind = "preview-component-execute"
	KindHelpToggle       Kind = "help-component-toggle"
	KindHelpPage         Kind = "help-component-page"

	KindCollectUpdated   Kind = "collect-processor-updated"
	KindCollectSucceeded Kind = "collect-processor-succeeded"
	KindCollectFailed    Kind = "collect-processor-failed"
	KindMatchUpdated     Kind = "match-processor-updated"
	KindMatchSucceeded   Kind = "match-processor-succeeded"
	KindMatchFailed      Kind = "match-processor-failed"
	KindSortSucceeded    Kind = "sort-processor-succeeded"
	KindSortFailed       Kind = "sort-processor-failed"
	KindRenderSucceeded  Kind = "render-processor-succeeded"
	KindRenderFailed     Kind = "render-processor-failed"
	KindPreviewSucceeded Kind = "preview-processor-succeeded"
	KindPreviewFailed    Kind = "preview-processor-failed"
)

// Event is a single tagged item dispatched onto the queue. Payload carries
// the kind-specific data (a picker.MoveCursorPayload for MoveCursor, a string for
// ActionInvoke's name, an error for a *-failed variant, and so on); callers
// agree on the concrete type per Kind.
type Event struct {
	Kind    Kind
	Payload any
}

// Queue is a single-owner FIFO of Events. The zero value is ready to use.
type Queue struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger
}

// New creates a Queue. A nil logger falls back to slog.Default(), matching
// the rest of the core's logging convention.
func New(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{logger: logger}
}

// Dispatch appends event to the queue. O(1) amortised.
func (q *Queue) Dispatch(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
	if q.logger != nil {
		q.logger.Debug("event dispatched", "kind", ev.Kind)
	}
}

// Drain atomically swaps the backing slice out and invokes consumer for
// each event in enqueue order. Events dispatched by consumer itself land
// in the new (swapped-in) slice and are picked up by the next Drain, never
// the current one.
func (q *Queue) Drain(consumer func(Event)) {
	q.mu.Lock()
	pending := q.events
	q.events = nil
	q.mu.Unlock()

	for _, ev := range pending {
		consumer(ev)
	}
}

// Len reports the number of events currently queued, for tests and
// diagnostics only; it is not part of the drain contract.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
