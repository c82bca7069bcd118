package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	corehost "github.com/vim-fall/fall.vim/internal/core/host"
	"github.com/vim-fall/fall.vim/internal/core/picker"
)

// OpenAndRun opens pk (constructed with h as its picker.Params.Host)
// and drives the bubbletea program until the user accepts or cancels,
// returning the Picker's Result. listBounds/previewBounds are relative
// to h's screen size; CloseWindow/PickerLeave are guaranteed by pk's
// own dispose path on every exit. Extra opts are passed through to
// tea.NewProgram, e.g. tea.WithAltScreen or tea.WithInput/WithOutput
// when driving the program over something other than the real
// controlling terminal.
func OpenAndRun(ctx context.Context, pk *picker.Picker, h *Host, listBounds, previewBounds corehost.Bounds, opts ...tea.ProgramOption) (picker.Result, error) {
	if _, err := pk.Open(ctx, listBounds, previewBounds); err != nil {
		return picker.Result{}, err
	}

	model := NewModel(pk, h)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	h.Attach(program)

	Run(program, pk, func() (picker.Result, error) { return pk.Run(ctx) })

	finalModel, err := program.Run()
	if err != nil {
		return picker.Result{}, err
	}
	fm := finalModel.(Model)
	return fm.result, nil
}
