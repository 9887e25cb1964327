package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/tref/internal/tooling/build"
	"github.com/conduit-lang/tref/internal/utils"
	"github.com/conduit-lang/tref/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [packages]",
		Short: "Regenerate packages whenever their sources change",
		Long: `Generate the given packages once, then watch their directories and
regenerate a package shortly after any of its Go files is written,
created, renamed or removed. Changes are batched for watch.debounce
(tref.yaml) before generation starts.

Examples:
  tref watch
  tref watch ./...`,
		ValidArgsFunction: packageDirCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, s, args)
		},
	}
	return cmd
}

func runWatch(ctx context.Context, s *session, args []string) error {
	dirs, err := utils.ExpandPatterns(args)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no Go packages matched %v", args)
	}

	sys := build.NewSystem(s.buildOptions(), s.logger)
	res, err := sys.Build(ctx, dirs)
	if err != nil {
		return err
	}
	s.report(res)

	ignored := append([]string{s.cfg.Generate.Output}, s.cfg.Watch.Ignore...)
	if !s.cfg.Generate.IncludeTests {
		ignored = append(ignored, "*_test.go")
	}

	watcher, err := watch.NewFileWatcher(watch.Options{
		Dirs:     dirs,
		Patterns: []string{"*.go"},
		Ignored:  ignored,
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.logger,
	}, func(files []string) error {
		changed := watch.ChangedDirs(files)
		s.logger.Debug("regenerating", zap.Strings("dirs", changed))
		res, err := sys.Build(ctx, changed)
		if err != nil {
			return err
		}
		s.report(res)
		return nil
	})
	if err != nil {
		return err
	}

	banner := color.New(color.FgCyan, color.Bold)
	hint := color.New(color.FgYellow)
	if s.noColor {
		banner.DisableColor()
		hint.DisableColor()
	}
	banner.Fprintf(s.out, "\nWatching %d package(s): %s\n", len(dirs), strings.Join(dirs, " "))
	hint.Fprintln(s.out, "Press Ctrl+C to stop")

	if err := watcher.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Stopped.")
	return nil
}
