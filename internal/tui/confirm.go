package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/chrischeng-c4/agentd-sub001/internal/specgen"
)

// PromptConfig controls where the overwrite prompt reads and writes.
type PromptConfig struct {
	Input  io.Reader
	Output io.Writer
	Width  int
	// Accessible renders a plain line-based prompt instead of the
	// interactive widget.
	Accessible bool
}

// OverwritePrompt returns a confirmation that lists the existing files
// and asks whether to overwrite them. Aborting the prompt declines.
func OverwritePrompt(cfg PromptConfig) specgen.ConfirmFunc {
	return func(existing []string) (bool, error) {
		form, ok := newOverwriteForm(existing, cfg)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return false, nil
			}
			return false, fmt.Errorf("overwrite prompt: %w", err)
		}
		return *ok, nil
	}
}

func newOverwriteForm(existing []string, cfg PromptConfig) (*huh.Form, *bool) {
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	answer := new(bool)

	group := huh.NewGroup(
		huh.NewNote().
			Title("Existing specs").
			Description(FileList(existing, width)),
		huh.NewConfirm().
			Title("Overwrite existing specs?").
			Affirmative("Overwrite").
			Negative("Cancel").
			Value(answer),
	)

	form := huh.NewForm(group).
		WithWidth(width).
		WithAccessible(cfg.Accessible)
	if cfg.Input != nil {
		form = form.WithInput(cfg.Input)
	}
	if cfg.Output != nil {
		form = form.WithOutput(cfg.Output)
	}
	return form, answer
}
