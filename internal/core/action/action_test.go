package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vim-fall/fall.vim/internal/core/pipeline"
)

type fakeAction struct {
	loop bool
	err  error
	got  pipeline.ActionContext
}

func (f *fakeAction) Invoke(_ context.Context, actx pipeline.ActionContext) (bool, error) {
	f.got = actx
	return f.loop, f.err
}

func TestDispatcher_InvokeResolvesAndCalls(t *testing.T) {
	act := &fakeAction{loop: true}
	d := New(Map{"open": act})

	loop, err := d.Invoke(context.Background(), "open", pipeline.ActionContext{Query: "q"})
	require.NoError(t, err)
	assert.True(t, loop)
	assert.Equal(t, "q", act.got.Query)
}

func TestDispatcher_UnknownActionErrors(t *testing.T) {
	d := New(Map{})
	_, err := d.Invoke(context.Background(), "nope", pipeline.ActionContext{})
	require.Error(t, err)
	var unknown ErrUnknownAction
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
}

func TestIsSelectSentinel(t *testing.T) {
	assert.True(t, IsSelectSentinel("@select"))
	assert.False(t, IsSelectSentinel("open"))
}

func TestMap_Names(t *testing.T) {
	m := Map{"open": nil, "close": nil}
	names := m.Names()
	assert.ElementsMatch(t, []string{"open", "close"}, names)
}
