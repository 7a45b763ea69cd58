package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/chrischeng-c4/agentd-sub001/internal/config"
)

// InitForm is a setup wizard that writes the project config file.
type InitForm struct {
	form     *huh.Form
	cfg      *config.Config
	savePath string
}

// NewInitForm creates the wizard, seeded with the defaults.
func NewInitForm(savePath string) *InitForm {
	cfg := config.DefaultConfig()
	f := &InitForm{cfg: cfg, savePath: savePath}

	fillbackGroup := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Default fillback strategy").
			Options(
				huh.NewOption("Auto-detect", "auto"),
				huh.NewOption("Source code", "code"),
				huh.NewOption("OpenSpec (YAML/JSON)", "openspec"),
				huh.NewOption("Spec Kit", "speckit"),
			).
			Value(&cfg.Fillback.Strategy),
		huh.NewInput().
			Title("Output directory").
			Placeholder("specs").
			Value(&cfg.Fillback.OutputDir),
		huh.NewConfirm().
			Title("Respect .gitignore?").
			Value(&cfg.Fillback.RespectGitignore),
		huh.NewConfirm().
			Title("Record run history?").
			Value(&cfg.Fillback.History),
	).Title("Welcome to agentd")

	logGroup := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Log level").
			Options(
				huh.NewOption("Debug", "debug"),
				huh.NewOption("Info", "info"),
				huh.NewOption("Warn", "warn"),
				huh.NewOption("Error", "error"),
			).
			Value(&cfg.Log.Level),
	).Title("Logging")

	f.form = huh.NewForm(fillbackGroup, logGroup)
	return f
}

// Form returns the underlying huh.Form.
func (f *InitForm) Form() *huh.Form { return f.form }

// Run shows the wizard and blocks until it is submitted or aborted.
func (f *InitForm) Run() error { return f.form.Run() }

// Config returns the config populated by the wizard.
func (f *InitForm) Config() *config.Config { return f.cfg }

// Save persists the config, falling back to the default output
// directory when it was cleared.
func (f *InitForm) Save() error {
	if f.cfg.Fillback.OutputDir == "" {
		f.cfg.Fillback.OutputDir = config.DefaultConfig().Fillback.OutputDir
	}
	return config.Save(f.savePath, f.cfg)
}
