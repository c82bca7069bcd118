package main

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vim-fall/fall.vim/examples/lexicalsorter"
	"github.com/vim-fall/fall.vim/examples/plainrenderer"
	"github.com/vim-fall/fall.vim/examples/sessionsource"
	"github.com/vim-fall/fall.vim/examples/substringmatcher"
	"github.com/vim-fall/fall.vim/internal/core/action"
	corehost "github.com/vim-fall/fall.vim/internal/core/host"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
	"github.com/vim-fall/fall.vim/internal/core/session"
	"github.com/vim-fall/fall.vim/internal/host/tui"

	"github.com/vim-fall/fall.vim/internal/core/picker"
)

var sessionPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Open an interactive picker over saved sessions and resume the chosen one",
	RunE:  runSessionPick,
}

func init() {
	sessionCmd.AddCommand(sessionPickCmd)
}

// resumeOnAccept resolves the accepted item back to its session.Session
// and stashes it for the caller, rather than resuming from inside
// Invoke: the picker driving this action is still mid-run, and the
// picker it resumes into needs its own fresh Host/tea.Program.
type resumeOnAccept struct {
	chosen *session.Session
}

func (r resumeOnAccept) Invoke(_ context.Context, actx pipeline.ActionContext) (bool, error) {
	if actx.Item == nil {
		return false, errors.New("session pick: no item under cursor")
	}
	sess, ok := sessionsource.Resolve(*actx.Item)
	if !ok {
		return false, errors.New("session pick: item does not carry a session")
	}
	*r.chosen = sess
	return false, nil
}

func runSessionPick(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLogger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger()

	sessions, err := loadSessionStore(cfg)
	if err != nil {
		return err
	}
	if len(sessions.List()) == 0 {
		cmd.Println("no saved sessions")
		return nil
	}

	size := corehost.ScreenSize{Width: 120, Height: 40}
	h := tui.New(size)

	var chosen session.Session
	pk := picker.New(picker.Params{
		Name:      "@session",
		Source:    sessionsource.Source{Store: sessions},
		Matchers:  []pipeline.Matcher{substringmatcher.Matcher{}},
		Sorters:   []pipeline.Sorter{lexicalsorter.Sorter{}},
		Renderers: []pipeline.Renderer{plainrenderer.Renderer{}},
		Actions:   action.Map{"default": resumeOnAccept{chosen: &chosen}},

		CollectOptions: pipeline.CollectOptions{
			Threshold:     cfg.Collect.Threshold,
			ChunkSize:     cfg.Collect.ChunkSize,
			ChunkInterval: cfg.Collect.ChunkInterval(),
		},
		MatchOptions: pipeline.MatchOptions{
			Interval:  cfg.Match.Interval(),
			Threshold: cfg.Match.Threshold,
			ChunkSize: cfg.Match.ChunkSize,
		},
		RenderOptions: pipeline.RenderOptions{
			Height:       cfg.Render.Height,
			ScrollOffset: cfg.Render.ScrollOffset,
		},
		SchedulerDelay: int(cfg.Scheduler.TickInterval() / time.Millisecond),
		Host:           h,
		Logger:         logger,
	})

	listBounds := corehost.Bounds{X: 0, Y: 0, Width: size.Width, Height: size.Height}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	result, err := tui.OpenAndRun(ctx, pk, h, listBounds, corehost.Bounds{}, tea.WithAltScreen())
	if err != nil {
		return err
	}
	if result.Cancelled || result.ActionName == "" {
		return nil
	}

	return resumeSession(cmd, cfg, logger, sessions, chosen)
}
