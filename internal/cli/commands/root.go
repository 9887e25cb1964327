// Package commands implements the tref command line.
package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("failed")

// Globals holds the persistent flags shared by every command.
type Globals struct {
	Verbose bool
	NoColor bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	g := &Globals{}

	rootCmd := &cobra.Command{
		Use:   "tref",
		Short: "Reflection metadata generator for Go packages",
		Long: color.CyanString(`tref - static reflection for Go

tref scans packages for //tref: directives and generates an init()
that registers the annotated types, fields, methods and enums with
the tref runtime. Programs then walk class hierarchies, enumerate
facts and convert enums to and from names without reflection tags.`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.NoColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&g.NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewGenerateCommand(g))
	rootCmd.AddCommand(NewInspectCommand(g))
	rootCmd.AddCommand(NewWatchCommand(g))
	rootCmd.AddCommand(NewInitCommand(g))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			w := cmd.OutOrStdout()
			title := color.New(color.FgCyan, color.Bold)
			for _, row := range [][2]string{
				{"tref version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				title.Fprint(w, row[0])
				fmt.Fprintln(w, row[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			color.New(color.FgRed, color.Bold).Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
