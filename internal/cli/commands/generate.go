package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/tref/internal/cli/ui"
	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
	"github.com/conduit-lang/tref/internal/tooling/build"
	"github.com/conduit-lang/tref/internal/utils"
)

type generateFlags struct {
	output  string
	tests   bool
	dryRun  bool
	jsonOut bool
	jobs    int
	noCache bool
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand(g *Globals) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:     "generate [packages]",
		Aliases: []string{"gen"},
		Short:   "Generate reflection registrations for annotated packages",
		Long: `Scan each package for //tref: directives and write the registration
file (tref_gen.go by default) next to the sources. The file is only
rewritten when its content changes, and removed when a package no
longer has directives.

Packages are directories; a trailing /... includes subdirectories.

Examples:
  tref generate
  tref generate ./...
  tref generate ./shapes --dry-run
  tref generate ./... --json`,
		ValidArgsFunction: packageDirCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			return runGenerate(cmd, s, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Generated file name (default from tref.yaml)")
	cmd.Flags().BoolVar(&f.tests, "tests", false, "Also scan _test.go files")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print the generated code instead of writing it")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print a JSON report including diagnostics")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Packages generated in parallel (default from tref.yaml)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Always regenerate")

	return cmd
}

func runGenerate(cmd *cobra.Command, s *session, f *generateFlags, args []string) error {
	opts := s.buildOptions()
	if cmd.Flags().Changed("output") {
		opts.Output = f.output
	}
	if cmd.Flags().Changed("tests") {
		opts.IncludeTests = f.tests
	}
	if cmd.Flags().Changed("jobs") {
		if f.jobs < 1 {
			return fmt.Errorf("--jobs must be at least 1")
		}
		opts.MaxJobs = f.jobs
	}
	opts.DryRun = f.dryRun
	opts.UseCache = !f.noCache

	dirs, err := utils.ExpandPatterns(args)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no Go packages matched %v", args)
	}

	var bar *ui.ProgressBar
	if !f.jsonOut && !f.dryRun && len(dirs) > 1 {
		bar = ui.NewProgressBar(s.errOut, ui.ProgressBarOptions{Total: len(dirs), NoColor: s.noColor})
		opts.ProgressFunc = func(current, total int, message string) {
			bar.Update(current, message)
		}
	}

	res, err := build.NewSystem(opts, s.logger).Build(cmd.Context(), dirs)
	if bar != nil {
		bar.Finish("")
	}
	if err != nil {
		return err
	}

	switch {
	case f.jsonOut:
		if err := writeReport(s, res); err != nil {
			return err
		}
		if res.Failed() {
			return errReported
		}
		return nil
	case f.dryRun:
		printGenerated(s, res)
	default:
		s.report(res)
	}

	if res.Failed() {
		fmt.Fprint(s.errOut, "\n"+ui.GenerateError(res.Count(build.StatusFailed), len(res.Packages), s.noColor))
		return errReported
	}
	if !f.dryRun {
		ui.WriteSuccess(s.out, summary(res), s.noColor)
	}
	return nil
}

func summary(res *build.Result) string {
	return fmt.Sprintf("%d package(s): %d written, %d unchanged, %d removed in %s",
		len(res.Packages),
		res.Count(build.StatusWritten),
		res.Count(build.StatusUnchanged),
		res.Count(build.StatusRemoved),
		res.Duration.Round(time.Millisecond))
}

func printGenerated(s *session, res *build.Result) {
	header := color.New(color.FgCyan, color.Bold)
	if s.noColor {
		header.DisableColor()
	}
	for _, p := range res.Packages {
		if len(p.Generated) == 0 {
			continue
		}
		header.Fprintf(s.out, "// ==> %s\n", p.Output)
		s.out.Write(p.Generated)
	}
	if res.Failed() {
		s.report(res)
	}
}

type packageReport struct {
	Dir         string            `json:"dir"`
	Output      string            `json:"output"`
	Status      string            `json:"status"`
	CacheHit    bool              `json:"cache_hit,omitempty"`
	Types       int               `json:"types"`
	Enums       int               `json:"enums"`
	Diagnostics cerrors.ErrorList `json:"diagnostics,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type generateReport struct {
	Packages   []packageReport `json:"packages"`
	CacheHits  int             `json:"cache_hits"`
	DurationMS int64           `json:"duration_ms"`
	Failed     bool            `json:"failed"`
}

func writeReport(s *session, res *build.Result) error {
	report := generateReport{
		Packages:   make([]packageReport, 0, len(res.Packages)),
		CacheHits:  res.CacheHits,
		DurationMS: res.Duration.Milliseconds(),
		Failed:     res.Failed(),
	}
	for _, p := range res.Packages {
		pr := packageReport{
			Dir:         p.Dir,
			Output:      p.Output,
			Status:      p.Status.String(),
			CacheHit:    p.CacheHit,
			Diagnostics: p.Diagnostics,
		}
		if p.Package != nil {
			pr.Types = len(p.Package.Types)
			pr.Enums = len(p.Package.Enums)
		}
		if p.Err != nil && len(p.Diagnostics) == 0 {
			pr.Error = p.Err.Error()
		}
		report.Packages = append(report.Packages, pr)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprintln(s.out, string(data))
	return nil
}
