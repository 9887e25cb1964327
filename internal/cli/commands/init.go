package commands

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/tref/internal/cli/config"
	"github.com/conduit-lang/tref/internal/cli/ui"
)

// NewInitCommand creates the init command
func NewInitCommand(g *Globals) *cobra.Command {
	var (
		force       bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a tref.yaml with the default settings",
		Long: `Create tref.yaml in the given directory (default: current directory).

Examples:
  tref init
  tref init --interactive
  tref init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			cfg := config.Default()
			if interactive {
				if err := askConfig(cfg); err != nil {
					return err
				}
			}

			if existing := config.Find(dir); existing != "" && force {
				fmt.Fprint(cmd.ErrOrStderr(), ui.Warning("overwriting "+existing, g.NoColor))
			}
			path, err := config.Write(dir, cfg, force)
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), g.NoColor))
				return errReported
			}
			ui.WriteSuccess(cmd.OutOrStdout(), "Created "+path, g.NoColor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing tref.yaml")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for each setting")

	return cmd
}

type initAnswers struct {
	Output       string
	Jobs         string
	IncludeTests bool `survey:"include_tests"`
	Level        string
	Format       string
}

func askConfig(cfg *config.Config) error {
	questions := []*survey.Question{
		{
			Name:     "output",
			Prompt:   &survey.Input{Message: "Generated file name:", Default: cfg.Generate.Output},
			Validate: survey.Required,
		},
		{
			Name:   "jobs",
			Prompt: &survey.Input{Message: "Packages generated in parallel:", Default: strconv.Itoa(cfg.Generate.Jobs)},
			Validate: func(ans any) error {
				if n, err := strconv.Atoi(fmt.Sprint(ans)); err != nil || n < 1 {
					return fmt.Errorf("enter a positive number")
				}
				return nil
			},
		},
		{
			Name:   "include_tests",
			Prompt: &survey.Confirm{Message: "Scan _test.go files?", Default: cfg.Generate.IncludeTests},
		},
		{
			Name: "level",
			Prompt: &survey.Select{
				Message: "Log level:",
				Options: []string{"debug", "info", "warn", "error"},
				Default: cfg.Log.Level,
			},
		},
		{
			Name: "format",
			Prompt: &survey.Select{
				Message: "Log format:",
				Options: []string{"console", "json"},
				Default: cfg.Log.Format,
			},
		},
	}

	var answers initAnswers
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	jobs, _ := strconv.Atoi(answers.Jobs)
	cfg.Generate.Output = answers.Output
	cfg.Generate.Jobs = jobs
	cfg.Generate.IncludeTests = answers.IncludeTests
	cfg.Log.Level = answers.Level
	cfg.Log.Format = answers.Format
	return nil
}
