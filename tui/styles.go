package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/chupakbra/userboard/internal/theme"
)

// Styles follow the active theme; usePalette swaps them.
var (
	StyleTitle    lipgloss.Style
	StyleSubtitle lipgloss.Style
	StyleHelp     lipgloss.Style
	StyleError    lipgloss.Style
	StyleSuccess  lipgloss.Style
	StyleWarning  lipgloss.Style
	StyleDim      lipgloss.Style
	StyleAccent   lipgloss.Style
	StyleSpinner  lipgloss.Style
	StyleModal    lipgloss.Style

	palette theme.Palette
)

func init() {
	usePalette(theme.PaletteFor(theme.Dark))
}

func usePalette(p theme.Palette) {
	palette = p
	StyleTitle = p.Title
	StyleSubtitle = p.Subtitle
	StyleHelp = p.Help
	StyleError = p.Error
	StyleSuccess = p.Success
	StyleWarning = p.Warning
	StyleDim = p.Dim
	StyleAccent = p.Accent
	StyleSpinner = p.Spinner
	StyleModal = p.Modal
}

func renderHelp(s string) string {
	return StyleHelp.Render(s)
}

// tableStyles returns bubbles table styles for the active palette.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.Border).
		BorderBottom(true).
		Foreground(palette.Header).
		Bold(true)
	s.Selected = s.Selected.
		Background(palette.Selected).
		Bold(false)
	return s
}

// headerLine places left-aligned text and a right-aligned refreshed timestamp on the same line.
// width is the full terminal width; padding (4) is subtracted for the content area.
func headerLine(left string, width int, t time.Time) string {
	right := "Refreshed: " + formatRefreshTime(t)
	contentWidth := width - 4 // account for outer Padding(1,2)
	leftLen := lipgloss.Width(left)
	rightLen := len(right)
	gap := contentWidth - leftLen - rightLen
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + StyleDim.Render(right)
}

func formatRefreshTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}

// CLISpinner matches the braille spinner used in the CLI output.
var CLISpinner = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    time.Second / 10,
}
