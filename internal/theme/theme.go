// Package theme resolves and persists the light/dark preference and maps it
// to terminal styles.
package theme

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Key is the storage key holding the preference.
const Key = "theme"

// Mode is a color scheme.
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

// Parse accepts "dark" or "light" in any case.
func Parse(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	}
	return "", fmt.Errorf("unknown theme %q (use dark or light)", s)
}

// Flip returns the other mode.
func (m Mode) Flip() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Store is the subset of the state backend the preference lives in.
type Store interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, data []byte) error
}

// DetectTerminal reports whether the terminal has a dark background. It
// stands in for the desktop's prefers-color-scheme query.
func DetectTerminal() bool {
	return lipgloss.HasDarkBackground()
}

// Stored returns the persisted preference, if any.
func Stored(s Store) (Mode, bool, error) {
	data, ok, err := s.Load(Key)
	if err != nil {
		return "", false, fmt.Errorf("loading theme: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", false, fmt.Errorf("decoding theme: %w", err)
	}
	m, err := Parse(raw)
	if err != nil {
		return "", false, err
	}
	return m, true, nil
}

// Resolve returns the stored preference, or the detected one when nothing
// valid is stored. A nil detect means light.
func Resolve(s Store, detect func() bool) Mode {
	if m, ok, err := Stored(s); err == nil && ok {
		return m
	}
	if detect != nil && detect() {
		return Dark
	}
	return Light
}

// Set persists m.
func Set(s Store, m Mode) error {
	data, err := json.Marshal(string(m))
	if err != nil {
		return err
	}
	if err := s.Save(Key, data); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// Toggle flips current, persists it and returns the new mode.
func Toggle(s Store, current Mode) (Mode, error) {
	next := current.Flip()
	if err := Set(s, next); err != nil {
		return current, err
	}
	return next, nil
}

// Palette is the set of styles the TUI draws with.
type Palette struct {
	Mode     Mode
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Dim      lipgloss.Style
	Accent   lipgloss.Style
	Spinner  lipgloss.Style
	Modal    lipgloss.Style
	Header   lipgloss.Color
	Selected lipgloss.Color
	Border   lipgloss.Color
}

// PaletteFor returns the styles for m.
func PaletteFor(m Mode) Palette {
	if m == Light {
		return Palette{
			Mode:     Light,
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
			Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
			Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("31")).Bold(true),
			Spinner:  lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
			Modal:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("25")).Padding(1, 2),
			Header:   lipgloss.Color("25"),
			Selected: lipgloss.Color("254"),
			Border:   lipgloss.Color("250"),
		}
	}
	return Palette{
		Mode:     Dark,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		Spinner:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Modal:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(1, 2),
		Header:   lipgloss.Color("62"),
		Selected: lipgloss.Color("236"),
		Border:   lipgloss.Color("240"),
	}
}
