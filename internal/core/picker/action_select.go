package picker

import (
	"context"
	"strings"

	"github.com/vim-fall/fall.vim/internal/core/action"
	"github.com/vim-fall/fall.vim/internal/core/item"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
)

// isSelectSentinel reports whether name is the "@select" action name
// that opens the nested action-selection picker rather than naming a
// real action.
func isSelectSentinel(name string) bool {
	return action.IsSelectSentinel(name)
}

// actionNameSource is the action-selection picker's Source: the outer
// picker's action map keys.
type actionNameSource struct{ names []string }

func (s actionNameSource) Collect(_ context.Context, _ pipeline.CollectParams) pipeline.Stream[item.Item] {
	ch := make(chan pipeline.Result[item.Item], len(s.names))
	for _, n := range s.names {
		ch <- pipeline.Result[item.Item]{Value: item.Item{Value: n}}
	}
	close(ch)
	return ch
}

// substringNameMatcher is the action-selection picker's built-in
// matcher. It is infrastructure for this one nested flow, not a
// user-swappable stage strategy, so it lives here rather than under
// examples/.
type substringNameMatcher struct{}

func (substringNameMatcher) Incremental() bool { return false }

func (substringNameMatcher) Match(ctx context.Context, params pipeline.MatchParams) pipeline.Stream[item.Item] {
	ch := make(chan pipeline.Result[item.Item])
	go func() {
		defer close(ch)
		for _, it := range params.Items {
			if !strings.Contains(it.Value, params.Query) {
				continue
			}
			select {
			case ch <- pipeline.Result[item.Item]{Value: it}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// identityRenderer passes action names through unchanged; Item.Label
// already defaults to Value via WithDefaults.
type identityRenderer struct{}

func (identityRenderer) Render(context.Context, []item.Item) error { return nil }

// noopAction lets the action-selection picker's own accept() resolve
// through the normal action-invoke event path: selecting a name
// resolves it (it exists in this map), Invoke returns false, and the
// picker closes carrying that name as its Result.
type noopAction struct{}

func (noopAction) Invoke(context.Context, pipeline.ActionContext) (bool, error) { return false, nil }

// runActionSelection opens a nested Picker whose source is the action
// map's keys. A chosen name is routed back into the outer picker's
// invokeAction; a cancelled sub-result returns control to the outer
// picker without closing it.
func (p *Picker) runActionSelection(ctx context.Context) {
	names := p.params.Actions.Names()
	actions := make(action.Map, len(names))
	for _, n := range names {
		actions[n] = noopAction{}
	}

	// The sub-picker runs headless: it is given no Host, so it opens no
	// window, reads no cmdline and emits no PickerEnter/PickerLeave
	// notices. It returns when an action is accepted through its own
	// Dispatch/Cancel or when ctx is cancelled.
	sub := New(Params{
		Name:          "@action",
		Source:        actionNameSource{names: names},
		Matchers:      []pipeline.Matcher{substringNameMatcher{}},
		Renderers:     []pipeline.Renderer{identityRenderer{}},
		Actions:       actions,
		RenderOptions: p.params.RenderOptions,
		Logger:        p.logger,
	})

	res, err := sub.Run(ctx)
	if err != nil || res.Cancelled || res.ActionName == "" {
		return
	}
	p.invokeAction(ctx, res.ActionName)
}
