package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chupakbra/userboard/internal/actions"
	"github.com/chupakbra/userboard/internal/board"
	"github.com/chupakbra/userboard/internal/notify"
	"github.com/chupakbra/userboard/internal/store"
	"github.com/chupakbra/userboard/internal/theme"
	"github.com/chupakbra/userboard/internal/user"
)

const (
	toastTTL  = 4 * time.Second
	maxToasts = 3
)

// Form fields in focus order.
var formFields = [3]user.Field{user.FieldFirstName, user.FieldLastName, user.FieldEmail}

// opDoneMsg is sent when a fetch/create/delete operation returns. The
// operation has already written its results into the board's containers.
type opDoneMsg struct {
	op  string // loading key of the operation
	err error
}

// toastExpiredMsg removes the toast with id.
type toastExpiredMsg struct {
	id int
}

type toast struct {
	id int
	n  notify.Notification
}

type boardModel struct {
	b     *board.Board
	deps  actions.Deps
	inbox *notify.Recorder

	users     []user.User // full list
	visible   []user.User // rows currently in the table
	table     table.Model
	spinner   spinner.Model
	spinning  bool
	pending   int
	filter    tableFilter
	themeMode theme.Mode

	addInputs [3]textinput.Model
	addFocus  int
	fieldErrs user.FieldErrors

	toasts        []toast
	nextToast     int
	lastRefreshed time.Time

	width  int
	height int
}

func newBoardModel(b *board.Board, w, h int) boardModel {
	inbox := &notify.Recorder{}
	t := b.Messages

	s := spinner.New()
	s.Spinner = CLISpinner

	mode := b.Theme()
	usePalette(theme.PaletteFor(mode))
	s.Style = StyleSpinner

	placeholders := [3]string{
		t.T("form.first.placeholder"),
		t.T("form.last.placeholder"),
		t.T("form.email.placeholder"),
	}
	var inputs [3]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 100
		inputs[i] = ti
	}

	m := boardModel{
		b:         b,
		deps:      b.Deps(inbox),
		inbox:     inbox,
		spinner:   s,
		themeMode: mode,
		addInputs: inputs,
		pending:   1,
		spinning:  true,
		width:     w,
		height:    h,
	}
	if b.Toggle.Mode() == store.ModeCreate {
		m.addInputs[0].Focus()
	}
	return m.withRebuiltTable()
}

// isNormalMode reports whether no modal or filter input has the keyboard.
func (m boardModel) isNormalMode() bool {
	return m.b.Toggle.Mode() == store.ModeNone && !m.filter.active
}

func (m boardModel) busy() bool {
	return m.pending > 0 || m.b.Loading.Any(store.LoadingUsers, store.LoadingCreateUser, store.LoadingDeleteUser)
}

// init fetches on first run. newBoardModel already counts it as pending.
func (m boardModel) init() tea.Cmd {
	d := m.deps
	return tea.Batch(func() tea.Msg {
		return opDoneMsg{op: store.LoadingUsers, err: actions.Bootstrap(context.Background(), d)}
	}, m.spinner.Tick)
}

// run launches fn as an async operation and keeps the spinner going until
// it reports back.
func (m *boardModel) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	m.pending++
	cmd := func() tea.Msg {
		return opDoneMsg{op: op, err: fn(context.Background())}
	}
	if m.spinning {
		return cmd
	}
	m.spinning = true
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m boardModel) tableWidth() int {
	w := m.width - 4
	if w < 60 {
		w = 60
	}
	return w
}

func (m boardModel) withRebuiltTable() boardModel {
	m.users = m.b.Users.Users()
	if m.filter.hasActiveFilter() {
		m.visible = m.filter.apply(m.users)
	} else {
		m.visible = store.Page(m.users, m.b.Pagination.State())
	}

	t := m.b.Messages
	emailWidth := m.tableWidth() - 15 - 15 - 6
	cols := []table.Column{
		{Title: t.T("column.first"), Width: 15},
		{Title: t.T("column.last"), Width: 15},
		{Title: t.T("column.email"), Width: emailWidth},
	}
	rows := make([]table.Row, len(m.visible))
	for i, u := range m.visible {
		rows[i] = table.Row{u.FirstName, u.LastName, u.Email}
	}

	tableHeight := len(rows) + 1
	if tableHeight < 3 {
		tableHeight = 3
	}
	if maxHeight := m.height - 12; maxHeight >= 3 && tableHeight > maxHeight {
		tableHeight = maxHeight
	}

	cursor := m.table.Cursor()
	tbl := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)
	tbl.SetStyles(tableStyles())
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor > 0 {
		tbl.SetCursor(cursor)
	}
	m.table = tbl
	return m
}

// collectToasts moves pending notifications into the toast stack and
// schedules their expiry.
func (m *boardModel) collectToasts() tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range m.inbox.Drain() {
		m.nextToast++
		id := m.nextToast
		m.toasts = append(m.toasts, toast{id: id, n: n})
		cmds = append(cmds, tea.Tick(toastTTL, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		}))
	}
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return tea.Batch(cmds...)
}

func (m boardModel) update(msg tea.Msg) (boardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		if msg.err == nil {
			switch msg.op {
			case store.LoadingUsers:
				m.lastRefreshed = time.Now()
			case store.LoadingCreateUser:
				m.clearAddForm()
			}
		}
		m = m.withRebuiltTable()
		cmd := m.collectToasts()
		return m, cmd

	case toastExpiredMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filter.active {
			var rebuild bool
			m.filter, rebuild = m.filter.handleKey(msg)
			if rebuild {
				m = m.withRebuiltTable()
			}
			return m, nil
		}
		switch m.b.Toggle.Mode() {
		case store.ModeCreate:
			return m.updateAddForm(msg)
		case store.ModeDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateNormal(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) updateNormal(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	d := m.deps
	switch msg.String() {
	case "/":
		m.filter.active = true
		return m, nil
	case "a":
		if err := actions.OpenCreate(d); err != nil {
			return m, nil
		}
		m.clearAddForm()
		m.addInputs[0].Focus()
		return m, textinput.Blink
	case "d":
		cursor := m.table.Cursor()
		if cursor < 0 || cursor >= len(m.visible) {
			return m, nil
		}
		_ = actions.OpenDelete(d, m.visible[cursor])
		return m, nil
	case "ctrl+r":
		cmd := m.run(store.LoadingUsers, func(ctx context.Context) error {
			return actions.Reload(ctx, d)
		})
		return m, cmd
	case "n", "right", "pgdown":
		m.b.Pagination.NextPage()
		return m.withRebuiltTable(), nil
	case "p", "left", "pgup":
		m.b.Pagination.PrevPage()
		return m.withRebuiltTable(), nil
	case "r":
		_ = m.b.Pagination.SetRowsPerPage(nextPageSize(m.b.Pagination.State().RowsPerPage))
		return m.withRebuiltTable(), nil
	case "t":
		next, err := theme.Toggle(m.b.KV, m.themeMode)
		if err != nil {
			notify.Error(m.inbox, m.b.Messages.T("theme.save.error"), notify.WithDescription(err.Error()))
			cmd := m.collectToasts()
			return m, cmd
		}
		m.themeMode = next
		usePalette(theme.PaletteFor(next))
		m.spinner.Style = StyleSpinner
		return m.withRebuiltTable(), nil
	case "?":
		tip := m.b.Toggle.Snapshot().Tooltip
		m.b.Toggle.SetTooltip(!tip.Visible, "help")
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) updateAddForm(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		actions.CloseModal(m.deps)
		m.clearAddForm()
		return m, nil
	case "tab", "down":
		m.focusField((m.addFocus + 1) % len(m.addInputs))
		return m, textinput.Blink
	case "shift+tab", "up":
		m.focusField((m.addFocus + len(m.addInputs) - 1) % len(m.addInputs))
		return m, textinput.Blink
	case "enter":
		if m.addFocus < len(m.addInputs)-1 {
			m.focusField(m.addFocus + 1)
			return m, textinput.Blink
		}
		draft := m.draft()
		if err := draft.Validate(); err != nil {
			var fe *user.FieldErrors
			if errors.As(err, &fe) {
				m.fieldErrs = *fe
				for i, f := range formFields {
					if fe.Has(f) {
						m.focusField(i)
						break
					}
				}
			}
			return m, nil
		}
		m.fieldErrs = nil
		d := m.deps
		cmd := m.run(store.LoadingCreateUser, func(ctx context.Context) error {
			_, err := actions.CreateUser(ctx, d, draft)
			return err
		})
		return m, cmd
	}

	var cmd tea.Cmd
	m.addInputs[m.addFocus], cmd = m.addInputs[m.addFocus].Update(msg)
	if strings.TrimSpace(m.addInputs[m.addFocus].Value()) != "" {
		delete(m.fieldErrs, formFields[m.addFocus])
	}
	return m, cmd
}

func (m boardModel) updateConfirmDelete(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		d := m.deps
		cmd := m.run(store.LoadingDeleteUser, func(ctx context.Context) error {
			return actions.DeleteSelected(ctx, d)
		})
		return m, cmd
	case "esc":
		actions.CloseModal(m.deps)
		return m, nil
	}
	return m, nil
}

func (m *boardModel) focusField(i int) {
	m.addInputs[m.addFocus].Blur()
	m.addFocus = i
	m.addInputs[m.addFocus].Focus()
}

func (m boardModel) draft() user.Draft {
	return user.Draft{
		FirstName: m.addInputs[0].Value(),
		LastName:  m.addInputs[1].Value(),
		Email:     m.addInputs[2].Value(),
	}
}

func (m *boardModel) clearAddForm() {
	for i := range m.addInputs {
		m.addInputs[i].Reset()
		m.addInputs[i].Blur()
	}
	m.addFocus = 0
	m.fieldErrs = nil
}

// nextPageSize cycles through the allowed page sizes.
func nextPageSize(current int) int {
	for i, n := range store.PageSizes {
		if n == current {
			return store.PageSizes[(i+1)%len(store.PageSizes)]
		}
	}
	return store.DefaultRowsPerPage
}

func (m boardModel) view() string {
	if m.width == 0 {
		return ""
	}
	t := m.b.Messages
	title := StyleTitle.Render(t.T("board.title", len(m.users)))

	if m.busy() && len(m.users) == 0 {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			title + "\n\n" + StyleWarning.Render(m.spinner.View()+" "+t.T("board.loading")),
		)
	}

	switch m.b.Toggle.Mode() {
	case store.ModeCreate:
		return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n\n" + m.addFormView())
	case store.ModeDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n\n" + m.confirmDeleteView())
	}

	var lines []string
	lines = append(lines, headerLine(title, m.width, m.lastRefreshed))
	lines = append(lines, "")
	if len(m.visible) == 0 {
		lines = append(lines, StyleDim.Render(t.T("board.empty")))
	} else {
		lines = append(lines, m.table.View())
	}
	lines = append(lines, m.footerView())
	if fl := m.filter.renderLine(); fl != "" {
		lines = append(lines, fl)
	}

	if m.busy() {
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" "+t.T("board.loading")))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, m.toastLines()...)
	if m.b.Toggle.Snapshot().Tooltip.Visible {
		lines = append(lines, "", m.tooltipView())
	}
	lines = append(lines, "")
	lines = append(lines, renderHelp("[a] add   [d] delete   [ctrl+r] reload  |  [n/p] page   [r] rows   [/] filter"))
	lines = append(lines, renderHelp("[t] theme   [?] help   [Q] quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (m boardModel) footerView() string {
	t := m.b.Messages
	st := m.b.Pagination.State()
	if m.filter.hasActiveFilter() {
		return StyleSubtitle.Render(t.T("board.filter.matches", len(m.visible)))
	}
	sizes := make([]string, len(store.PageSizes))
	for i, n := range store.PageSizes {
		if n == st.RowsPerPage {
			sizes[i] = StyleAccent.Render(fmt.Sprintf("[%d]", n))
		} else {
			sizes[i] = StyleDim.Render(fmt.Sprint(n))
		}
	}
	return StyleSubtitle.Render(t.T("board.page", st.CurrentPage, st.TotalPages)) +
		"    " + StyleSubtitle.Render(t.T("board.rows")) + " " + strings.Join(sizes, " ")
}

func (m boardModel) toastLines() []string {
	lines := make([]string, 0, len(m.toasts))
	for _, ts := range m.toasts {
		text := ts.n.Text
		if ts.n.Description != "" {
			text += ": " + ts.n.Description
		}
		switch ts.n.Kind {
		case notify.KindSuccess:
			lines = append(lines, StyleSuccess.Render("✓ "+text))
		case notify.KindError:
			lines = append(lines, StyleError.Render("✗ "+text))
		case notify.KindWarning:
			lines = append(lines, StyleWarning.Render("! "+text))
		default:
			lines = append(lines, StyleSubtitle.Render(text))
		}
	}
	return lines
}

func (m boardModel) tooltipView() string {
	t := m.b.Messages
	lines := []string{
		StyleAccent.Render("[ctrl+r]") + " " + t.T("tooltip.reload"),
		StyleAccent.Render("[a]") + " " + t.T("tooltip.add"),
		StyleAccent.Render("[t]") + " " + t.T("tooltip.theme."+string(m.themeMode)),
	}
	return StyleModal.Render(strings.Join(lines, "\n"))
}

func (m boardModel) addFormView() string {
	t := m.b.Messages
	labels := [3]string{t.T("form.first"), t.T("form.last"), t.T("form.email")}
	lines := []string{StyleTitle.Render(t.T("modal.create.title")), ""}
	for i, inp := range m.addInputs {
		label := fmt.Sprintf("%-12s", labels[i]+":")
		if i == m.addFocus {
			lines = append(lines, StyleWarning.Render(label)+inp.View())
		} else {
			lines = append(lines, StyleDim.Render(label)+inp.View())
		}
		if m.fieldErrs.Has(formFields[i]) {
			lines = append(lines, StyleError.Render(strings.Repeat(" ", 12)+t.T("form.required")))
		}
	}
	lines = append(lines, "")
	if m.busy() {
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" "+t.T("board.loading")))
	}
	lines = append(lines, renderHelp("[Enter] next / "+t.T("form.submit")+"   [Tab] switch field   [Esc] cancel"))
	return StyleModal.Render(strings.Join(lines, "\n"))
}

func (m boardModel) confirmDeleteView() string {
	t := m.b.Messages
	target, _ := m.b.Toggle.Data()
	lines := []string{
		StyleTitle.Render(t.T("modal.delete.title")),
		"",
		t.T("delete.confirm"),
		"",
		StyleDim.Render(fmt.Sprintf("%-12s", t.T("form.first")+":")) + target.FirstName,
		StyleDim.Render(fmt.Sprintf("%-12s", t.T("form.last")+":")) + target.LastName,
		StyleDim.Render(fmt.Sprintf("%-12s", t.T("form.email")+":")) + target.Email,
		"",
		StyleWarning.Render(t.T("delete.irreversible")),
		"",
	}
	if m.busy() {
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" "+t.T("board.loading")))
	}
	lines = append(lines, renderHelp("[Enter] "+t.T("delete.submit")+"   [Esc] cancel"))
	return StyleModal.Render(strings.Join(lines, "\n"))
}
