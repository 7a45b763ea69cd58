// cmd/agentd/fillback.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chrischeng-c4/agentd-sub001/internal/config"
	"github.com/chrischeng-c4/agentd-sub001/internal/fillback"
	"github.com/chrischeng-c4/agentd-sub001/internal/output"
	"github.com/chrischeng-c4/agentd-sub001/internal/runner"
	"github.com/chrischeng-c4/agentd-sub001/internal/specgen"
	"github.com/chrischeng-c4/agentd-sub001/internal/store"
	"github.com/chrischeng-c4/agentd-sub001/internal/tui"
)

// fillbackFlags holds the command-line options of "agentd fillback".
type fillbackFlags struct {
	strategy       string
	module         string
	force          bool
	outputDir      string
	changeID       string
	clarifications string
	concurrency    int
	format         string
	strict         bool
	noHistory      bool
}

func fillbackCmd() *cobra.Command {
	var flags fillbackFlags

	cmd := &cobra.Command{
		Use:   "fillback [path]",
		Short: "Reverse-engineer specs from existing code or spec documents",
		Long: `Analyze an existing source and write specification documents for it.

Sources are handled by strategies, tried in this order with --strategy auto:
  openspec  YAML/JSON spec files, or a directory with openspec/
  speckit   a directory with .specify/ or specs/<feature>/spec.md
  code      a source tree in Rust, Python, Go, JavaScript or TypeScript`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFillback(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.strategy, "strategy", fillback.Auto, "strategy: auto, code, openspec, speckit")
	cmd.Flags().StringVar(&flags.module, "module", "", "only document the module with exactly this name")
	cmd.Flags().BoolVar(&flags.force, "force", false, "overwrite existing specs without asking")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "output directory (default <project>/specs)")
	cmd.Flags().StringVar(&flags.changeID, "change-id", "", "change the run belongs to")
	cmd.Flags().StringVar(&flags.clarifications, "clarifications", "", "YAML or JSON file of clarification hints")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "max parallel file parses (0 = number of CPUs)")
	cmd.Flags().StringVar(&flags.format, "format", "markdown", "report format: markdown, json")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit non-zero when any file failed to parse")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "do not record this run in the history")

	cmd.AddCommand(historyCmd())
	return cmd
}

func runFillback(cmd *cobra.Command, args []string, flags fillbackFlags) error {
	source, err := runner.ResolveSource(args)
	if err != nil {
		return err
	}
	root, err := config.FindProjectRoot(source)
	if err != nil {
		return fmt.Errorf("finding project root: %w", err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}

	clarPath, err := runner.ResolveClarifications(flags.clarifications, filepath.Join(root, config.Dir))
	if err != nil {
		return err
	}
	clar, err := specgen.LoadClarifications(clarPath)
	if err != nil {
		return err
	}

	strategy := cfg.Fillback.Strategy
	if cmd.Flags().Changed("strategy") {
		strategy = flags.strategy
	}

	opts := fillback.Options{
		ModuleFilter:     flags.module,
		Force:            flags.force,
		OutputDir:        resolveOutputDir(root, cfg.Fillback.OutputDir, flags.outputDir),
		Concurrency:      cfg.Fillback.Concurrency,
		Exclude:          cfg.Fillback.Exclude,
		RespectGitignore: cfg.Fillback.RespectGitignore,
		Clarifications:   clar,
		Logger:           log,
	}
	if flags.concurrency > 0 {
		opts.Concurrency = flags.concurrency
	}
	if !flags.force && isTerminal(os.Stdin) && isTerminal(os.Stderr) {
		opts.Confirm = tui.OverwritePrompt(tui.PromptConfig{
			Output: os.Stderr,
			Width:  terminalWidth(os.Stderr, 80),
		})
	}

	if cfg.Fillback.History && !flags.noHistory {
		st, err := store.NewStore(config.HistoryPath(root))
		if err != nil {
			log.WithError(err).Warn("run history unavailable")
		} else {
			defer st.Close()
			opts.History = st
		}
	}

	log.WithFields(logrus.Fields{"path": source, "strategy": strategy}).Debug("starting fillback")
	exec := func(ctx context.Context) (*output.Report, error) {
		s, err := fillback.Resolve(strategy, source, opts)
		if err != nil {
			return nil, err
		}
		runErr := s.Execute(ctx, source, flags.changeID)
		var report *output.Report
		if r, ok := s.(fillback.Reporter); ok {
			report = r.Report()
		}
		return report, runErr
	}
	report := runner.NewHeadlessRunner(exec).Run(cmd.Context(), strategy, source)

	if err := writeReport(cmd, formatter, report); err != nil {
		return err
	}
	if code := runner.ExitCodeFromReport(report, flags.strict); code != 0 {
		return &runner.ExitError{Code: code}
	}
	return nil
}

// resolveOutputDir picks the flag over the config value and anchors a
// relative result at the project root.
func resolveOutputDir(root, configured, flag string) string {
	dir := configured
	if flag != "" {
		dir = flag
	}
	if dir == "" {
		dir = fillback.DefaultOutputDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// writeReport prints the report to stdout, styled when stdout is a
// terminal and the format is markdown.
func writeReport(cmd *cobra.Command, formatter output.Formatter, report *output.Report) error {
	out, err := formatter.Format(report)
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	text := string(out)
	if _, ok := formatter.(*output.MarkdownFormatter); ok && cmd.OutOrStdout() == os.Stdout && isTerminal(os.Stdout) {
		if r, err := tui.NewMarkdownRenderer("dark", terminalWidth(os.Stdout, 80)); err == nil {
			if styled, err := r.Render(text); err == nil {
				text = styled
			}
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
