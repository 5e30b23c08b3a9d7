package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chupakbra/userboard/internal/user"
)

// tableFilter is a value type that provides live filtering for table rows.
// Press "/" to activate, type to filter,
// Esc/Enter to deactivate (keeping the filter text applied), Ctrl+U to clear.
type tableFilter struct {
	active bool   // true when the filter input is focused
	text   string // current filter text (persists after deactivation)
}

// handleKey processes key events when the filter is active. Returns the updated
// filter and a rebuild flag indicating whether the table rows need to be rebuilt.
func (f tableFilter) handleKey(msg tea.KeyMsg) (tableFilter, bool) {
	switch msg.String() {
	case "esc", "enter":
		f.active = false
		return f, false
	case "backspace":
		if len(f.text) > 0 {
			f.text = f.text[:len(f.text)-1]
			return f, true
		}
		return f, false
	case "ctrl+u":
		if f.text != "" {
			f.text = ""
			return f, true
		}
		return f, false
	default:
		// Only accept printable runes.
		runes := msg.Runes
		if len(runes) > 0 {
			f.text += string(runes)
			return f, true
		}
		return f, false
	}
}

// apply returns the users matching the filter text. The whole list is
// searched, not only the current page.
func (f tableFilter) apply(users []user.User) []user.User {
	return user.Filter(users, strings.TrimSpace(f.text))
}

// hasActiveFilter returns true when filter text is non-empty (filter is applied).
func (f tableFilter) hasActiveFilter() bool {
	return f.text != ""
}

// clear resets the filter to its zero state.
func (f *tableFilter) clear() {
	f.active = false
	f.text = ""
}

// renderLine returns a styled status line for the filter. Returns empty string
// when no filter is set and not active.
func (f tableFilter) renderLine() string {
	if f.active {
		return renderHelp("[/] Filter: ") + StyleWarning.Render(f.text+"_") + renderHelp("  [Ctrl+U] clear  [Esc] close")
	}
	if f.text != "" {
		return renderHelp("[/] Filter: ") + StyleWarning.Render(f.text) + renderHelp("  [Ctrl+U] clear")
	}
	return ""
}
