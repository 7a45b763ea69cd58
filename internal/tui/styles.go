package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"}).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#777777"}).
			Italic(true)
)

// maxListedFiles bounds how many file names FileList shows.
const maxListedFiles = 15

// Header renders a bold one-line title.
func Header(title string) string {
	return headerStyle.Render(title)
}

// FileList renders the existing spec files inside a bordered box sized to
// width, truncating long lists.
func FileList(files []string, width int) string {
	boxWidth := width - 4
	if boxWidth < 20 {
		boxWidth = 20
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
		Width(boxWidth).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(warnStyle.Render(fmt.Sprintf("%d existing spec file(s) will be overwritten", len(files))))
	b.WriteString("\n")
	for i, f := range files {
		if i == maxListedFiles {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("... and %d more", len(files)-maxListedFiles)))
			b.WriteString("\n")
			break
		}
		b.WriteString(fileStyle.Render("• " + f))
		b.WriteString("\n")
	}
	return box.Render(strings.TrimRight(b.String(), "\n"))
}
