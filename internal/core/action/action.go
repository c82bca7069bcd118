// Package action implements the Action Dispatcher: resolving a chosen
// action name against the picker's action map, with the "@select"
// sentinel that opens a nested action-selection picker.
package action

import (
	"context"
	"fmt"

	"github.com/vim-fall/fall.vim/internal/core/pipeline"
)

// SelectSentinel is the reserved action name that, instead of invoking
// an action directly, opens a nested action-selection picker over the
// action map's keys.
const SelectSentinel = "@select"

// UserFacingError is implemented by errors whose message is meant for
// the person driving the picker, not just the developer log — the
// Picker Orchestrator echoes it through the Host instead of (or beside)
// logging it.
type UserFacingError interface {
	error
	UserMessage() string
}

// ErrUnknownAction is returned when a resolved name has no entry in the
// dispatcher's action map.
type ErrUnknownAction struct{ Name string }

func (e ErrUnknownAction) Error() string {
	return fmt.Sprintf("action: unknown action %q", e.Name)
}

// UserMessage reports the same text as Error: an unknown action name is
// something the user can act on (pick a different one), not a bug.
func (e ErrUnknownAction) UserMessage() string {
	return e.Error()
}

var _ UserFacingError = ErrUnknownAction{}

// Map is the picker's named action table.
type Map map[string]pipeline.Action

// Names returns the map's keys, the source collected by the nested
// action-selection picker.
func (m Map) Names() []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	return out
}

// Dispatcher resolves an action name against a Map and invokes it.
type Dispatcher struct {
	actions Map
}

// New constructs a Dispatcher over actions.
func New(actions Map) *Dispatcher {
	return &Dispatcher{actions: actions}
}

// IsSelectSentinel reports whether name is the "open the nested
// action-selection picker" sentinel rather than a concrete action name.
func IsSelectSentinel(name string) bool {
	return name == SelectSentinel
}

// Resolve looks up name in the action map. It never resolves
// SelectSentinel: callers must check IsSelectSentinel first and route
// to the nested picker instead of calling Resolve.
func (d *Dispatcher) Resolve(name string) (pipeline.Action, error) {
	act, ok := d.actions[name]
	if !ok {
		return nil, ErrUnknownAction{Name: name}
	}
	return act, nil
}

// Invoke resolves name and invokes it with actx, returning whether the
// picker should loop for another selection round: if invoke returns
// true, the picker loops; otherwise the picker exits.
func (d *Dispatcher) Invoke(ctx context.Context, name string, actx pipeline.ActionContext) (bool, error) {
	act, err := d.Resolve(name)
	if err != nil {
		return false, err
	}
	return act.Invoke(ctx, actx)
}
