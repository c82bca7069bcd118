package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vim-fall/fall.vim/internal/core/event"
	"github.com/vim-fall/fall.vim/internal/core/host"
	"github.com/vim-fall/fall.vim/internal/core/picker"
)

// runState mirrors the picker's own high-level lifecycle for the
// purpose of rendering a status line; the Picker itself is the source
// of truth for everything else.
type runState int

const (
	stateRunning runState = iota
	stateDone
)

// doneMsg is sent once Picker.Run returns, carrying its Result so the
// program can quit.
type doneMsg struct {
	result picker.Result
	err    error
}

// Model is the bubbletea program driving a Picker. Every key press
// translates into a picker.Dispatch call or a terminal Cancel/accept;
// the program never mutates picker state directly, only observes it
// through the shared Host buffers on each redraw.
type Model struct {
	pk   *picker.Picker
	host *Host

	state  runState
	result picker.Result

	input textinput.Model

	width  int
	height int

	helpWidth int
}

// NewModel constructs the Model. pk must already be open (picker.Open
// called) against host; the caller is expected to run pk.Run in a
// goroutine and forward its result via a doneMsg (see Run).
func NewModel(pk *picker.Picker, h *Host) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()

	return Model{
		pk:    pk,
		host:  h,
		input: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case redrawMsg:
		return m, nil

	case doneMsg:
		m.state = stateDone
		m.result = msg.result
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.host.SetCmdline(m.input.Value(), m.input.Position())
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.pk.Cancel()
		return m, nil

	case tea.KeyEnter:
		m.pk.Dispatch(event.KindActionInvoke, "default")
		return m, nil

	case tea.KeyUp, tea.KeyCtrlP:
		m.pk.Dispatch(event.KindMoveCursor, picker.MoveCursorPayload{Amount: -1})
		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		m.pk.Dispatch(event.KindMoveCursor, picker.MoveCursorPayload{Amount: 1})
		return m, nil

	case tea.KeyPgUp:
		m.pk.Dispatch(event.KindMoveCursor, picker.MoveCursorPayload{Amount: -1, Scroll: true})
		return m, nil

	case tea.KeyPgDown:
		m.pk.Dispatch(event.KindMoveCursor, picker.MoveCursorPayload{Amount: 1, Scroll: true})
		return m, nil

	case tea.KeyTab:
		m.pk.Dispatch(event.KindSelectItem, picker.SelectItemPayload{Method: picker.SelectToggle})
		m.pk.Dispatch(event.KindMoveCursor, picker.MoveCursorPayload{Amount: 1})
		return m, nil

	case tea.KeyCtrlA:
		m.pk.Dispatch(event.KindSelectAllItems, picker.SelectAllPayload{Method: picker.SelectOn})
		return m, nil

	case tea.KeyCtrlR:
		m.pk.Dispatch(event.KindActionInvoke, "@select")
		return m, nil

	case tea.KeyF1:
		m.pk.Dispatch(event.KindHelpToggle, nil)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.host.SetCmdline(m.input.Value(), m.input.Position())
	return m, cmd
}

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	queryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	echoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m Model) View() string {
	if m.state == stateDone {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.viewPanes())
	b.WriteRune('\n')
	b.WriteString(m.viewStatus())
	b.WriteRune('\n')
	b.WriteString(queryStyle.Render(m.input.View()))
	return b.String()
}

// viewPanes renders the list pane and, when a second window was
// opened, the preview pane beside it.
func (m Model) viewPanes() string {
	order := m.host.OpenOrder()
	if len(order) == 0 {
		return dimStyle.Render("(no window)")
	}

	listLines := m.host.Lines(order[0])
	listView := m.viewList(listLines)
	if len(order) < 2 {
		return listView
	}

	previewLines := m.host.Lines(order[1])
	previewView := borderStyle.Render(strings.Join(previewLines, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, listView, "  ", previewView)
}

func (m Model) viewList(lines []string) string {
	if len(lines) == 0 {
		return dimStyle.Render("No matches")
	}

	width := m.width
	if width <= 4 {
		width = 80
	}

	var b strings.Builder
	cursor := m.pk.Snapshot().Cursor
	for i, line := range lines {
		display := MiddleTruncate(StripANSI(line), width-4)
		prefix := "  "
		style := normalStyle
		if i == cursor {
			prefix = "> "
			style = selectedStyle
		}
		b.WriteString(style.Render(prefix + display))
		if i < len(lines)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m Model) viewStatus() string {
	snap := m.pk.Snapshot()
	failures := m.pk.Failures()
	status := fmt.Sprintf("%d/%d", len(snap.FilteredItems), len(snap.CollectedItems))
	if len(snap.Selection) > 0 {
		status += fmt.Sprintf(" (%d selected)", len(snap.Selection))
	}
	if len(failures) > 0 {
		status += dimStyle.Render(" [stage error]")
	}
	line := dimStyle.Render(status)
	if msg := m.host.Message(); msg != "" {
		line += "  " + echoStyle.Render(msg)
	}
	return line
}

// Run drives pk.Run in the background and pumps the final Result into
// the bubbletea program as a doneMsg so the program can quit on its
// own event loop rather than via an external os.Exit.
func Run(p *tea.Program, pk *picker.Picker, runFn func() (picker.Result, error)) {
	go func() {
		res, err := runFn()
		p.Send(doneMsg{result: res, err: err})
	}()
}

var _ tea.Model = Model{}

// WindowHandleOf exposes the order-derived handle classification for
// callers that need to address the list/preview windows directly
// (e.g. resizing on a WindowSizeMsg).
func WindowHandleOf(h *Host, index int) (host.WindowHandle, bool) {
	order := h.OpenOrder()
	if index < 0 || index >= len(order) {
		return 0, false
	}
	return order[index], true
}
