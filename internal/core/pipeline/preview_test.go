package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vim-fall/fall.vim/internal/core/event"
	"github.com/vim-fall/fall.vim/internal/core/item"
)

type echoPreviewer struct{}

func (echoPreviewer) Preview(_ context.Context, it item.Item) (*PreviewPayload, error) {
	return &PreviewPayload{Lines: []string{it.Value}}, nil
}

func TestPreviewProcessor_PreviewsItem(t *testing.T) {
	q := event.New(nil)
	p := NewPreviewProcessor([]Previewer{echoPreviewer{}}, 0, q, nil)

	it := item.Item{Value: "hello"}
	require.NoError(t, p.Start(context.Background(), &it))

	ev := waitForEvent(t, q, event.KindPreviewSucceeded, time.Second)
	payload := ev.Payload.(*PreviewPayload)
	require.NotNil(t, payload)
	assert.Equal(t, []string{"hello"}, payload.Lines)
}

func TestPreviewProcessor_NoItemPublishesUndefined(t *testing.T) {
	q := event.New(nil)
	p := NewPreviewProcessor([]Previewer{echoPreviewer{}}, 0, q, nil)

	require.NoError(t, p.Start(context.Background(), nil))
	ev := waitForEvent(t, q, event.KindPreviewSucceeded, time.Second)
	assert.Nil(t, ev.Payload.(*PreviewPayload))
}
