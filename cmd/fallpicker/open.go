package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/vim-fall/fall.vim/examples/lexicalsorter"
	"github.com/vim-fall/fall.vim/examples/linesource"
	"github.com/vim-fall/fall.vim/examples/plainrenderer"
	"github.com/vim-fall/fall.vim/examples/substringmatcher"
	"github.com/vim-fall/fall.vim/examples/textpreviewer"
	"github.com/vim-fall/fall.vim/internal/core/action"
	corehost "github.com/vim-fall/fall.vim/internal/core/host"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
	"github.com/vim-fall/fall.vim/internal/host/tui"

	"github.com/vim-fall/fall.vim/internal/core/picker"
)

// printAction is the "default" action for the standalone open command:
// it accepts the current selection and lets runOpen print the result
// context, rather than acting on it itself.
type printAction struct{}

func (printAction) Invoke(context.Context, pipeline.ActionContext) (bool, error) {
	return false, nil
}

var (
	openName    string
	openPreview bool
	openQuery   string
	openArgs    string
)

var openCmd = &cobra.Command{
	Use:     "open [file]",
	Short:   "Open a picker over a file's lines, or stdin when no file is given",
	GroupID: groupCore,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runOpen,
}

func init() {
	openCmd.Flags().StringVar(&openName, "name", "lines", "session name to save this run under")
	openCmd.Flags().BoolVar(&openPreview, "preview", true, "enable the text previewer pane")
	openCmd.Flags().StringVar(&openQuery, "query", "", "initial query")
	openCmd.Flags().StringVar(&openArgs, "args", "", "extra arguments passed to the Source, shell-quoted (e.g. --args '--foo \"bar baz\"')")
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLogger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger()

	var src pipeline.Source
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		src = linesource.Reader{R: bufio.NewReader(f)}
	} else {
		src = linesource.Reader{R: bufio.NewReader(os.Stdin)}
	}

	previewers := []pipeline.Previewer(nil)
	if openPreview {
		previewers = []pipeline.Previewer{textpreviewer.Previewer{}}
	}

	extraArgs, err := shlex.Split(openArgs)
	if err != nil {
		return fmt.Errorf("parse --args: %w", err)
	}

	sessions, err := loadSessionStore(cfg)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	size := corehost.ScreenSize{Width: 120, Height: 40}
	h := tui.New(size)

	pk := picker.New(picker.Params{
		Name:       openName,
		Args:       extraArgs,
		Source:     src,
		Matchers:   []pipeline.Matcher{substringmatcher.Matcher{}},
		Sorters:    []pipeline.Sorter{lexicalsorter.Sorter{}},
		Renderers:  []pipeline.Renderer{plainrenderer.Renderer{}},
		Previewers: previewers,
		Actions:    action.Map{"default": printAction{}},

		CollectOptions: pipeline.CollectOptions{
			Threshold:     cfg.Collect.Threshold,
			ChunkSize:     cfg.Collect.ChunkSize,
			ChunkInterval: cfg.Collect.ChunkInterval(),
		},
		MatchOptions: pipeline.MatchOptions{
			InitialQuery: openQuery,
			Interval:     cfg.Match.Interval(),
			Threshold:    cfg.Match.Threshold,
			ChunkSize:    cfg.Match.ChunkSize,
		},
		RenderOptions: pipeline.RenderOptions{
			Height:       cfg.Render.Height,
			ScrollOffset: cfg.Render.ScrollOffset,
		},
		SchedulerDelay:  int(cfg.Scheduler.TickInterval() / time.Millisecond),
		PreviewDebounce: cfg.Preview.DebounceMs,
		Host:            h,
		Sessions:        sessions,
		Logger:          logger,
	})

	listBounds := corehost.Bounds{X: 0, Y: 0, Width: size.Width, Height: size.Height}
	previewBounds := corehost.Bounds{X: size.Width / 2, Y: 0, Width: size.Width / 2, Height: size.Height}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	result, err := tui.OpenAndRun(ctx, pk, h, listBounds, previewBounds, tea.WithAltScreen())
	if err != nil {
		return err
	}

	if result.Cancelled {
		return nil
	}

	if err := pk.SaveSession(); err != nil {
		logger.Warn("save session failed", "error", err)
	}
	if err := saveSessionStore(sessions); err != nil {
		logger.Warn("persist sessions failed", "error", err)
	}

	printResult(cmd, result)
	return nil
}

// printResult writes the chosen item(s) to stdout: every selected item
// if any were toggled on, otherwise the item under the cursor.
func printResult(cmd *cobra.Command, result picker.Result) {
	items := result.Context.FilteredItems
	if len(result.Context.Selection) > 0 {
		for _, it := range items {
			if result.Context.Selection.Has(it.ID) {
				fmt.Fprintln(cmd.OutOrStdout(), it.Value)
			}
		}
		return
	}
	if c := result.Context.Cursor; c >= 0 && c < len(items) {
		fmt.Fprintln(cmd.OutOrStdout(), items[c].Value)
	}
}
