package picker

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vim-fall/fall.vim/internal/core/action"
	"github.com/vim-fall/fall.vim/internal/core/event"
	"github.com/vim-fall/fall.vim/internal/core/host"
	"github.com/vim-fall/fall.vim/internal/core/item"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
)

type staticSource struct{ values []string }

func (s staticSource) Collect(_ context.Context, _ pipeline.CollectParams) pipeline.Stream[item.Item] {
	ch := make(chan pipeline.Result[item.Item], len(s.values))
	for _, v := range s.values {
		ch <- pipeline.Result[item.Item]{Value: item.Item{Value: v}}
	}
	close(ch)
	return ch
}

// slowSource paces its items out with delay between each, so a test can
// observe a pause taking effect mid-collection.
type slowSource struct {
	values []string
	delay  time.Duration
}

func (s slowSource) Collect(ctx context.Context, _ pipeline.CollectParams) pipeline.Stream[item.Item] {
	ch := make(chan pipeline.Result[item.Item])
	go func() {
		defer close(ch)
		for _, v := range s.values {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return
			}
			select {
			case ch <- pipeline.Result[item.Item]{Value: item.Item{Value: v}}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

type testSubstringMatcher struct{ id string }

func (testSubstringMatcher) Incremental() bool { return false }

func (m testSubstringMatcher) Match(ctx context.Context, params pipeline.MatchParams) pipeline.Stream[item.Item] {
	ch := make(chan pipeline.Result[item.Item])
	go func() {
		defer close(ch)
		for _, it := range params.Items {
			if strings.Contains(it.Value, params.Query) {
				select {
				case ch <- pipeline.Result[item.Item]{Value: it}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}

type lexicalSorter struct{}

func (lexicalSorter) Sort(_ context.Context, items []item.Item) error {
	sort.Slice(items, func(i, j int) bool { return items[i].Value < items[j].Value })
	return nil
}

type noopRenderer struct{}

func (noopRenderer) Render(context.Context, []item.Item) error { return nil }

// failingSorter always fails, exercising the stage-internal fallback that
// lets render proceed over the unsorted matched list.
type failingSorter struct{}

func (failingSorter) Sort(context.Context, []item.Item) error {
	return errors.New("sort processor exploded")
}

// fakeHost is a minimal host.Host implementation for tests that need to
// observe echoed messages or written buffers rather than a nil Host.
type fakeHost struct {
	mu      sync.Mutex
	message string
}

func (h *fakeHost) OpenWindow(context.Context, host.Bounds) (host.WindowHandle, host.ScreenSize, error) {
	return 0, host.ScreenSize{}, nil
}

func (h *fakeHost) MoveWindow(context.Context, host.WindowHandle, host.Bounds) error { return nil }

func (h *fakeHost) CloseWindow(context.Context, host.WindowHandle) error { return nil }

func (h *fakeHost) Cmdline(context.Context) (string, int, error) { return "", 0, nil }

func (h *fakeHost) WriteBuffer(context.Context, host.WindowHandle, []string, []item.Item) error {
	return nil
}

func (h *fakeHost) RequestRedraw(context.Context) error { return nil }

func (h *fakeHost) Notify(context.Context, host.NotifyEvent) error { return nil }

func (h *fakeHost) Echo(_ context.Context, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.message = message
	return nil
}

func (h *fakeHost) Message() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.message
}

var _ host.Host = (*fakeHost)(nil)

type exitAction struct{ invoked *bool }

func (a exitAction) Invoke(context.Context, pipeline.ActionContext) (bool, error) {
	if a.invoked != nil {
		*a.invoked = true
	}
	return false, nil
}

type loopOnceAction struct{ calls *int }

func (a loopOnceAction) Invoke(context.Context, pipeline.ActionContext) (bool, error) {
	*a.calls++
	return *a.calls < 2, nil
}

func baseParams() Params {
	return Params{
		Name:           "test",
		Source:         staticSource{values: []string{"apple", "apricot", "banana"}},
		Matchers:       []pipeline.Matcher{testSubstringMatcher{}},
		Sorters:        []pipeline.Sorter{lexicalSorter{}},
		Renderers:      []pipeline.Renderer{noopRenderer{}},
		RenderOptions:  pipeline.RenderOptions{Height: 10},
		SchedulerDelay: 2,
	}
}

func TestPicker_AcceptExitsRun(t *testing.T) {
	invoked := false
	params := baseParams()
	params.Actions = action.Map{"accept": exitAction{invoked: &invoked}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(30 * time.Millisecond)
		p.Dispatch(event.KindActionInvoke, "accept")
	}()

	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, invoked)
	assert.Equal(t, "accept", res.ActionName)
	assert.False(t, res.Cancelled)
}

func TestPicker_ActionLoopsThenExits(t *testing.T) {
	calls := 0
	params := baseParams()
	params.Actions = action.Map{"loop": loopOnceAction{calls: &calls}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Dispatch(event.KindActionInvoke, "loop")
		time.Sleep(20 * time.Millisecond)
		p.Dispatch(event.KindActionInvoke, "loop")
	}()

	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "loop", res.ActionName)
}

func TestPicker_CmdlineChangeFiltersItems(t *testing.T) {
	params := baseParams()
	params.Actions = action.Map{"accept": exitAction{}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Dispatch(event.KindCmdlineChanged, "ap")
		time.Sleep(60 * time.Millisecond)
		snap := p.Snapshot()
		assert.Len(t, snap.FilteredItems, 2)
		p.Dispatch(event.KindActionInvoke, "accept")
	}()

	_, err := p.Run(ctx)
	require.NoError(t, err)
}

func TestPicker_SelectItemSetsSelection(t *testing.T) {
	params := baseParams()
	params.Actions = action.Map{"accept": exitAction{}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(30 * time.Millisecond)
		cursor := 0
		p.Dispatch(event.KindSelectItem, SelectItemPayload{Cursor: &cursor, Method: SelectOn})
		time.Sleep(10 * time.Millisecond)
		p.Dispatch(event.KindActionInvoke, "accept")
	}()

	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, len(res.Context.Selection))
}

func TestPicker_ContextCancellationStopsRun(t *testing.T) {
	params := baseParams()
	params.Actions = action.Map{"accept": exitAction{}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	res, err := p.Run(ctx)
	require.Error(t, err)
	assert.True(t, res.Cancelled)
}

func TestPicker_SelectActionSentinelRoutesToNestedPicker(t *testing.T) {
	exited := false
	params := baseParams()
	params.Actions = action.Map{"open": exitAction{invoked: &exited}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	go func() {
		time.Sleep(30 * time.Millisecond)
		p.Dispatch(event.KindActionInvoke, "@select")
	}()

	// The nested action picker never receives a selection in this test
	// (nothing dispatches to it), so it only proves routing doesn't
	// panic or deadlock; assert the outer picker is still running by
	// cancelling via context timeout.
	res, err := p.Run(ctx)
	require.Error(t, err)
	assert.True(t, res.Cancelled)
	assert.False(t, exited)
}

func TestPicker_SortFailureRendersUnsortedFallback(t *testing.T) {
	params := baseParams()
	params.Sorters = []pipeline.Sorter{failingSorter{}}
	params.Actions = action.Map{"accept": exitAction{}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(60 * time.Millisecond)
		failures := p.Failures()
		assert.Contains(t, failures, event.KindSortFailed)
		// Render must have run over the fallback (all three items, unsorted)
		// rather than staying stale because the sorter itself errored.
		assert.Len(t, p.render.Window(), 3)
		p.Dispatch(event.KindActionInvoke, "accept")
	}()

	_, err := p.Run(ctx)
	require.NoError(t, err)
}

func TestPicker_HelpTogglePausesAndResumesCollection(t *testing.T) {
	params := baseParams()
	params.Source = slowSource{values: []string{"a", "b", "c", "d", "e"}, delay: 20 * time.Millisecond}
	params.Actions = action.Map{"accept": exitAction{}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(30 * time.Millisecond)
		p.Dispatch(event.KindHelpToggle, nil)
		time.Sleep(10 * time.Millisecond)
		countAtPause := len(p.collect.Items())

		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, countAtPause, len(p.collect.Items()), "collection kept running while the help overlay was open")

		p.Dispatch(event.KindHelpToggle, nil)
		time.Sleep(150 * time.Millisecond)
		assert.Greater(t, len(p.collect.Items()), countAtPause, "collection never resumed after the help overlay closed")

		p.Dispatch(event.KindActionInvoke, "accept")
	}()

	_, err := p.Run(ctx)
	require.NoError(t, err)
}

func TestPicker_UnknownActionEchoesToHost(t *testing.T) {
	fh := &fakeHost{}
	params := baseParams()
	params.Host = fh
	params.Actions = action.Map{"accept": exitAction{}}
	p := New(params)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(30 * time.Millisecond)
		p.Dispatch(event.KindActionInvoke, "missing")
		time.Sleep(30 * time.Millisecond)
		assert.Contains(t, fh.Message(), "missing")
		p.Dispatch(event.KindActionInvoke, "accept")
	}()

	_, err := p.Run(ctx)
	require.NoError(t, err)
}
