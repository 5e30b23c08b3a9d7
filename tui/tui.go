// Package tui implements the interactive terminal user interface for userboard.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chupakbra/userboard/internal/board"
)

// appModel is the top-level Bubble Tea model. It owns window sizing and
// quitting and delegates everything else to the board screen.
type appModel struct {
	board  boardModel
	width  int
	height int
}

func newAppModel(b *board.Board) appModel {
	return appModel{board: newBoardModel(b, 0, 0)}
}

func (a appModel) Init() tea.Cmd {
	return a.board.init()
}

func (a appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.board.width = msg.Width
		a.board.height = msg.Height
		a.board = a.board.withRebuiltTable()
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "Q":
			// Let 'Q' pass through when a form or the filter has the keyboard.
			if a.board.isNormalMode() {
				return a, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	a.board, cmd = a.board.update(msg)
	return a, cmd
}

func (a appModel) View() string {
	return a.board.view()
}

// LaunchTUI starts the Bubble Tea program and blocks until the user quits.
func LaunchTUI(b *board.Board) error {
	m := newAppModel(b)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
