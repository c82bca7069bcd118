package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corehost "github.com/vim-fall/fall.vim/internal/core/host"
)

func TestHost_OpenOrderTracksAcquisitionThenRelease(t *testing.T) {
	h := New(corehost.ScreenSize{Width: 120, Height: 40})
	ctx := context.Background()

	list, _, err := h.OpenWindow(ctx, corehost.Bounds{Width: 60, Height: 40})
	require.NoError(t, err)
	preview, _, err := h.OpenWindow(ctx, corehost.Bounds{Width: 60, Height: 40})
	require.NoError(t, err)

	assert.Equal(t, []corehost.WindowHandle{list, preview}, h.OpenOrder())

	require.NoError(t, h.CloseWindow(ctx, list))
	assert.Equal(t, []corehost.WindowHandle{preview}, h.OpenOrder())
}

func TestHost_WriteBufferAndLines(t *testing.T) {
	h := New(corehost.ScreenSize{Width: 120, Height: 40})
	ctx := context.Background()

	handle, _, err := h.OpenWindow(ctx, corehost.Bounds{Width: 60, Height: 40})
	require.NoError(t, err)

	require.NoError(t, h.WriteBuffer(ctx, handle, []string{"a", "b"}, nil))
	assert.Equal(t, []string{"a", "b"}, h.Lines(handle))
}

func TestHost_CmdlineRoundTrip(t *testing.T) {
	h := New(corehost.ScreenSize{Width: 120, Height: 40})
	h.SetCmdline("hello", 3)

	text, pos, err := h.Cmdline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 3, pos)
}

func TestHost_NotifyRecordsEvents(t *testing.T) {
	h := New(corehost.ScreenSize{Width: 120, Height: 40})
	ctx := context.Background()

	require.NoError(t, h.Notify(ctx, corehost.EventPickerEnter))
	require.NoError(t, h.Notify(ctx, corehost.EventPickerLeave))

	assert.Equal(t, []corehost.NotifyEvent{corehost.EventPickerEnter, corehost.EventPickerLeave}, h.Events())
}

func TestHost_EchoRecordsLastMessage(t *testing.T) {
	h := New(corehost.ScreenSize{Width: 120, Height: 40})
	ctx := context.Background()

	assert.Equal(t, "", h.Message())

	require.NoError(t, h.Echo(ctx, "unknown action \"frobnicate\""))
	assert.Equal(t, "unknown action \"frobnicate\"", h.Message())

	require.NoError(t, h.Echo(ctx, "second message"))
	assert.Equal(t, "second message", h.Message())
}

var _ corehost.Host = (*Host)(nil)
