package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vim-fall/fall.vim/examples/lexicalsorter"
	"github.com/vim-fall/fall.vim/examples/plainrenderer"
	"github.com/vim-fall/fall.vim/examples/substringmatcher"
	"github.com/vim-fall/fall.vim/examples/textpreviewer"
	"github.com/vim-fall/fall.vim/internal/config"
	"github.com/vim-fall/fall.vim/internal/core/action"
	corehost "github.com/vim-fall/fall.vim/internal/core/host"
	"github.com/vim-fall/fall.vim/internal/core/item"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
	"github.com/vim-fall/fall.vim/internal/core/session"
	"github.com/vim-fall/fall.vim/internal/host/tui"

	"github.com/vim-fall/fall.vim/internal/core/picker"
)

var (
	resumeName   string
	resumeNumber int
)

var resumeCmd = &cobra.Command{
	Use:     "resume",
	Short:   "Reopen a saved session with its query, cursor and selection restored",
	GroupID: groupCore,
	RunE:    runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeName, "name", "", "restrict to sessions saved under this name")
	resumeCmd.Flags().IntVar(&resumeNumber, "number", 1, "1-based recency index among matching sessions (1 = most recent)")
}

// staticItemSource replays a session's previously collected items
// rather than re-running the original Source, so a resumed picker
// re-enters with the same context it saved.
type staticItemSource struct{ items []item.Item }

func (s staticItemSource) Collect(ctx context.Context, _ pipeline.CollectParams) pipeline.Stream[item.Item] {
	ch := make(chan pipeline.Result[item.Item], len(s.items))
	for _, it := range s.items {
		ch <- pipeline.Result[item.Item]{Value: it}
	}
	close(ch)
	return ch
}

func runResume(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("load sessions: %w", err)
	}

	sess, ok := sessions.Load(session.LoadQuery{Name: resumeName, Number: resumeNumber})
	if !ok {
		return fmt.Errorf("no matching session (name=%q number=%d)", resumeName, resumeNumber)
	}

	return resumeSession(cmd, cfg, logger, sessions, sess)
}

// resumeSession reopens sess's picker with its saved context restored,
// shared by "resume" (looked up by name/number) and "session pick"
// (looked up interactively, whose default action issues a resume).
func resumeSession(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, sessions *session.Store, sess session.Session) error {
	size := corehost.ScreenSize{Width: 120, Height: 40}
	h := tui.New(size)
	ictx := sess.Context

	pk := picker.New(picker.Params{
		Name:           sess.Name,
		Args:           sess.Args,
		Source:         staticItemSource{items: ictx.CollectedItems},
		Matchers:       []pipeline.Matcher{substringmatcher.Matcher{}},
		Sorters:        []pipeline.Sorter{lexicalsorter.Sorter{}},
		Renderers:      []pipeline.Renderer{plainrenderer.Renderer{}},
		Previewers:     []pipeline.Previewer{textpreviewer.Previewer{}},
		Actions:        action.Map{"default": printAction{}},
		InitialContext: &ictx,

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
			InitialIndex: ictx.RendererIndex,
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
