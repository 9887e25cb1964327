package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/tref/internal/cli/config"
	"github.com/conduit-lang/tref/internal/cli/logging"
	"github.com/conduit-lang/tref/internal/cli/ui"
	"github.com/conduit-lang/tref/internal/tooling/build"
)

// session is the per-invocation state of a command: the loaded
// configuration, a logger and the command's output streams.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
	errOut  io.Writer
	verbose bool
	noColor bool
}

func (g *Globals) open(cmd *cobra.Command) (*session, error) {
	s := &session{
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		verbose: g.Verbose,
		noColor: g.NoColor,
	}

	root, err := config.GetProjectRoot()
	if err != nil {
		root = "."
	}
	s.cfg, err = config.LoadFrom(root)
	if err != nil {
		fmt.Fprint(s.errOut, ui.ConfigError(err.Error(), s.noColor))
		return nil, errReported
	}

	s.logger, err = logging.New(s.cfg.Log, g.Verbose, s.errOut)
	if err != nil {
		fmt.Fprint(s.errOut, ui.ConfigError(err.Error(), s.noColor))
		return nil, errReported
	}
	return s, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// buildOptions derives build options from the configuration.
func (s *session) buildOptions() *build.Options {
	opts := build.DefaultOptions()
	opts.Output = s.cfg.Generate.Output
	opts.IncludeTests = s.cfg.Generate.IncludeTests
	opts.MaxJobs = s.cfg.Generate.Jobs
	return opts
}

// report prints one line per package that changed or failed, then the
// diagnostics of failed packages.
func (s *session) report(res *build.Result) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed, color.Bold)
	gray := color.New(color.FgHiBlack)
	if s.noColor {
		for _, c := range []*color.Color{green, yellow, red, gray} {
			c.DisableColor()
		}
	}

	for _, p := range res.Packages {
		switch p.Status {
		case build.StatusWritten:
			green.Fprintf(s.out, "✓ %s\n", p.Output)
		case build.StatusRemoved:
			yellow.Fprintf(s.out, "- %s (no directives left)\n", p.Output)
		case build.StatusUnchanged:
			if s.verbose {
				gray.Fprintf(s.out, "· %s (unchanged)\n", p.Output)
			}
		case build.StatusFailed:
			red.Fprintf(s.errOut, "✗ %s\n", p.Dir)
			if p.Err != nil && len(p.Diagnostics) == 0 {
				fmt.Fprintf(s.errOut, "  %v\n", p.Err)
			}
		}
	}

	if diags := res.Diagnostics(); len(diags) > 0 {
		fmt.Fprintln(s.errOut)
		ui.WriteDiagnostics(s.errOut, diags, s.noColor)
	}
}
