package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOverwriteFormDefaultsToDecline(t *testing.T) {
	form, answer := newOverwriteForm([]string{"main.md"}, PromptConfig{Accessible: true})
	assert.NotNil(t, form)
	assert.False(t, *answer)
}

func TestOverwritePromptIsConfirmFunc(t *testing.T) {
	confirm := OverwritePrompt(PromptConfig{})
	assert.NotNil(t, confirm)
}
