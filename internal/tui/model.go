// Package tui renders the task list in the terminal and turns key presses
// into Store operations.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/todomvc/internal/client"
	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/internal/worker"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

type resultMsg worker.Result

type resultsClosedMsg struct{}

// waitForResult blocks on the dispatcher and hands the next result to Update.
func waitForResult(ch <-chan worker.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return resultsClosedMsg{}
		}
		return resultMsg(r)
	}
}

type Model struct {
	store *client.Store
	keys  keyMap
	help  help.Model
	input textinput.Model
	spin  spinner.Model

	mode      mode
	cursor    int
	editIndex int
	lastErr   string
	width     int
}

func New(store *client.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		store: store,
		keys:  newKeyMap(),
		help:  help.New(),
		input: ti,
		spin:  sp,
	}
}

// Run fetches the list and blocks until the user quits.
func Run(store *client.Store) error {
	store.Fetch()
	_, err := tea.NewProgram(New(store), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForResult(m.store.Results()), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case resultMsg:
		if err := m.store.Handle(worker.Result(msg)); err != nil {
			m.lastErr = err.Error()
		}
		m.clampCursor()
		return m, waitForResult(m.store.Results())

	case resultsClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.lastErr = ""
	var err error

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.input.Placeholder = "What needs to be done?"
		m.input.SetValue(m.store.Snapshot().Value)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Edit):
		var e model.Entry
		// A stale editing marker toggles off and the list stays in place.
		if e, err = m.store.ToggleEdit(m.cursor); err == nil && e.Editing {
			m.mode = modeEdit
			m.editIndex = m.cursor
			m.input.Placeholder = ""
			m.input.SetValue(m.store.Snapshot().EditValue)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	case key.Matches(msg, m.keys.Toggle):
		_, err = m.store.Toggle(m.cursor)
	case key.Matches(msg, m.keys.ToggleAll):
		m.store.ToggleAll(!m.store.Snapshot().IsAllCompleted())
	case key.Matches(msg, m.keys.Remove):
		_, err = m.store.Remove(m.cursor)
	case key.Matches(msg, m.keys.Clear):
		m.store.ClearCompleted()
	case key.Matches(msg, m.keys.All):
		m.setFilter(client.FilterAll)
	case key.Matches(msg, m.keys.Active):
		m.setFilter(client.FilterActive)
	case key.Matches(msg, m.keys.Completed):
		m.setFilter(client.FilterCompleted)
	case key.Matches(msg, m.keys.NextFilter):
		next := (m.store.Snapshot().Filter + 1) % client.Filter(len(client.Filters))
		m.setFilter(next)
	case key.Matches(msg, m.keys.Refresh):
		m.store.Fetch()
	case key.Matches(msg, m.keys.ShowAllKeys):
		m.help.ShowAll = !m.help.ShowAll
	}

	if err != nil {
		m.lastErr = err.Error()
	}
	m.clampCursor()
	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.store.SetValue(m.input.Value())
		m.store.Add()
		m.leaveInput()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.store.SetValue("")
		m.leaveInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.store.SetValue(m.input.Value())
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.store.SetEditValue(m.input.Value())
		if _, err := m.store.CompleteEdit(m.editIndex); err != nil {
			m.lastErr = err.Error()
		}
		m.leaveInput()
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		// A second toggle leaves edit mode without touching the content.
		if _, err := m.store.ToggleEdit(m.editIndex); err != nil {
			m.lastErr = err.Error()
		}
		m.store.SetEditValue("")
		m.leaveInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.store.SetEditValue(m.input.Value())
	return m, cmd
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) setFilter(f client.Filter) {
	m.store.SetFilter(f)
	m.cursor = 0
}

func (m *Model) clampCursor() {
	n := len(m.store.Snapshot().Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	st := m.store.Snapshot()
	var b strings.Builder

	b.WriteString(m.header(st))
	b.WriteString("\n\n")

	visible := st.Visible()
	if len(visible) == 0 {
		b.WriteString(mutedStyle.Render("  nothing here"))
		b.WriteString("\n")
	}
	for i, e := range visible {
		b.WriteString(m.row(i, e))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footer(st))

	if m.mode != modeList {
		title := "New task"
		if m.mode == modeEdit {
			title = "Edit task"
		}
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(title + "\n" + m.input.View()))
	}

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✖ " + m.lastErr))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return panelStyle.Render(b.String())
}

func (m Model) header(st client.State) string {
	tabs := make([]string, 0, len(client.Filters))
	for _, f := range client.Filters {
		label := fmt.Sprintf("%s %s", f.Href(), f)
		if f == st.Filter {
			tabs = append(tabs, accentStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+label+" "))
		}
	}

	line := titleStyle.Render("todos") + "   " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.store.Busy() {
		line += " " + m.spin.View()
	}
	return line
}

func (m Model) row(i int, e model.Entry) string {
	box := mutedStyle.Render(boxUnchecked)
	text := e.Content
	switch {
	case e.Editing:
		text = editingStyle.Render(text)
	case e.Completed:
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	prefix := "  "
	if i == m.cursor {
		prefix = selectedStyle.Render(">") + " "
	}
	return prefix + box + " " + text
}

func footer(st client.State) string {
	left := st.TotalActive()
	noun := "items"
	if left == 1 {
		noun = "item"
	}
	out := pendingStyle.Render(fmt.Sprintf("%d %s left", left, noun))
	if done := st.TotalCompleted(); done > 0 {
		out += "  " + successStyle.Render(fmt.Sprintf("%d completed", done))
	}
	return out
}
