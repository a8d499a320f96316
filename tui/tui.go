package tui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todos/app"
	"todos/model"
	"todos/watch"
)

type focusPane int

const (
	focusInput focusPane = iota
	focusList
)

func (f focusPane) String() string {
	if f == focusList {
		return "list"
	}
	return "input"
}

// fileChangedMsg is sent when the entries file was written by someone else.
type fileChangedMsg struct{}

// Options carries the collaborators the view needs besides the dispatcher.
type Options struct {
	// Load re-reads persisted entries for live reload. It must report
	// malformed content as an error rather than an empty list.
	Load func() ([]model.Entry, error)
	// Watcher, when set, triggers live reload.
	Watcher *watch.Watcher
	// ShowHints renders the short key help under the list.
	ShowHints bool
	// Status is shown once at startup.
	Status string
	Logger *slog.Logger
}

// Model is the bubbletea view over the list state. It turns key presses into
// dispatcher messages, always addressing rows by their position in the
// filtered view.
type Model struct {
	d    *app.Dispatcher
	opts Options
	log  *slog.Logger

	keys keyMap
	help help.Model

	input     textinput.Model
	editInput textinput.Model

	focus  focusPane
	cursor int

	// editRow is the visible row whose edit input is open, or -1.
	editRow int
	// external holds entries written by someone else during an edit; they
	// replace the session's entries when the edit is committed.
	external    []model.Entry
	hasExternal bool

	showHelp  bool
	status    string
	statusErr bool

	width  int
	height int

	copyFn func(string) error
}

func NewModel(d *app.Dispatcher, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	in := textinput.New()
	in.Placeholder = "What needs to be done?"
	in.Prompt = "❯ "
	in.SetValue(d.State().Value())
	in.Focus()

	edit := textinput.New()
	edit.Prompt = "✎ "

	status := strings.TrimSpace(opts.Status)
	if status == "" {
		status = "Ready"
	}

	return &Model{
		d:         d,
		opts:      opts,
		log:       logger,
		keys:      defaultKeyMap(),
		help:      help.New(),
		input:     in,
		editInput: edit,
		focus:     focusInput,
		editRow:   -1,
		status:    status,
		copyFn:    clipboard.WriteAll,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.opts.Watcher != nil {
		cmds = append(cmds, waitForChange(m.opts.Watcher))
	}
	return tea.Batch(cmds...)
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.Changed():
			return fileChangedMsg{}
		case <-w.Done():
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case fileChangedMsg:
		m.reload()
		if m.opts.Watcher == nil {
			return m, nil
		}
		return m, waitForChange(m.opts.Watcher)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.editRow >= 0:
			return m, m.updateEditMode(msg)
		case m.focus == focusInput:
			return m, m.updateInputMode(msg)
		default:
			if quit := m.updateListMode(msg); quit {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.editRow >= 0 {
		m.editInput, cmd = m.editInput.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// updateInputMode feeds the new-todo input. Enter adds; any other key updates
// the buffer when the text changed and then dispatches a no-op.
func (m *Model) updateInputMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.dispatch(app.AddMsg{}, "Todo added")
		m.input.SetValue(m.state().Value())
		m.cursor = len(m.state().Visible()) - 1
		m.ensureSelection()
		return nil
	case "tab", "esc", "down":
		m.setFocus(focusList)
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.dispatch(app.UpdateValueMsg{Text: after}, "")
	}
	m.dispatch(app.NoopMsg{}, "")
	return cmd
}

// updateEditMode feeds the edit input of the open row. Enter commits, and so
// does leaving the input (esc, tab), since that is the input losing focus.
func (m *Model) updateEditMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", "tab":
		m.commitEdit()
		return nil
	}

	before := m.editInput.Value()
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	if after := m.editInput.Value(); after != before {
		m.dispatch(app.UpdateEditValueMsg{Text: after}, "")
	}
	m.dispatch(app.NoopMsg{}, "")
	return cmd
}

func (m *Model) updateListMode(msg tea.KeyMsg) bool {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
			m.setStatus("Help hidden", false)
		}
		return false
	}

	visible := len(m.state().Visible())
	switch {
	case key.Matches(msg, m.keys.Quit):
		return true
	case key.Matches(msg, m.keys.Focus):
		m.setFocus(focusInput)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Toggle):
		if visible > 0 {
			m.dispatch(app.ToggleMsg{Index: m.cursor}, "Toggled")
		}
	case key.Matches(msg, m.keys.Edit):
		if visible > 0 {
			m.beginEdit()
		}
	case key.Matches(msg, m.keys.Remove):
		if visible > 0 {
			m.dispatch(app.RemoveMsg{Index: m.cursor}, "Todo removed")
		}
	case key.Matches(msg, m.keys.ToggleAll):
		m.dispatch(app.ToggleAllMsg{}, "Toggled all visible")
	case key.Matches(msg, m.keys.ClearCompleted):
		n := m.state().TotalCompletedCount()
		m.dispatch(app.ClearCompletedMsg{}, fmt.Sprintf("Cleared %d completed", n))
	case key.Matches(msg, m.keys.CycleFilter):
		m.cycleFilter()
	case key.Matches(msg, m.keys.FilterAll):
		m.setFilter(model.FilterAll)
	case key.Matches(msg, m.keys.FilterActive):
		m.setFilter(model.FilterActive)
	case key.Matches(msg, m.keys.FilterDone):
		m.setFilter(model.FilterCompleted)
	case key.Matches(msg, m.keys.Copy):
		m.copyVisible()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.setStatus("Help open (? or Esc to close)", false)
	}

	m.ensureSelection()
	return false
}

// beginEdit flips the row's edit flag. The edit input opens only when the
// flag ended up on; flipping it off leaves edit mode without committing.
func (m *Model) beginEdit() {
	row := m.cursor
	m.dispatch(app.BeginEditMsg{Index: row}, "")

	visible := m.state().Visible()
	if row < len(visible) && visible[row].Editing {
		m.editRow = row
		m.editInput.SetValue(m.state().EditValue())
		m.editInput.CursorEnd()
		m.editInput.Focus()
		m.input.Blur()
		m.setStatus("Editing (enter saves)", false)
		return
	}
	m.setStatus("Edit cancelled", false)
}

func (m *Model) commitEdit() {
	row := m.editRow
	m.editRow = -1
	m.editInput.Blur()
	if m.hasExternal {
		external := m.external
		m.external, m.hasExternal = nil, false
		m.commitOnto(row, external)
	} else {
		m.dispatch(app.CommitEditMsg{Index: row}, "Todo updated")
	}
	m.ensureSelection()
}

// commitOnto adopts entries written elsewhere during the edit and applies the
// edit to the matching entry there. The list is saved afterwards, so the
// merged result replaces whatever this session wrote while editing.
func (m *Model) commitOnto(row int, external []model.Entry) {
	st := m.state()
	visible := st.Visible()
	if row >= len(visible) {
		st.Reset(external)
		m.dispatch(app.UpdateEditValueMsg{}, "")
		return
	}

	external = slices.Clone(external)
	edited := visible[row]
	text := st.EditValue()
	target := matchEdited(external, edited)
	if target >= 0 {
		external[target].Description = text
		external[target].Editing = false
	}
	st.Reset(external)
	m.log.Info("merged external changes after edit", "entries", len(external), "edit_kept", target >= 0)

	// Saves the merged list and clears the edit buffer.
	if !m.dispatch(app.UpdateEditValueMsg{}, "") {
		return
	}
	if target < 0 {
		m.setStatus("Todo was removed elsewhere; edit dropped", true)
		return
	}
	m.setStatus("Todo updated (merged changes from disk)", false)
}

// matchEdited finds the entry being edited in a list written elsewhere:
// same description, preferring one still flagged as editing.
func matchEdited(entries []model.Entry, edited model.Entry) int {
	found := -1
	for i, e := range entries {
		if e.Description != edited.Description {
			continue
		}
		if e.Editing {
			return i
		}
		if found < 0 {
			found = i
		}
	}
	return found
}

func (m *Model) cycleFilter() {
	filters := model.Filters()
	current := slices.Index(filters, m.state().Filter())
	m.setFilter(filters[(current+1)%len(filters)])
}

func (m *Model) setFilter(f model.Filter) {
	m.dispatch(app.SetFilterMsg{Filter: f}, fmt.Sprintf("Showing %s (%s)", f, f.Route()))
	m.cursor = 0
}

func (m *Model) copyVisible() {
	visible := m.state().Visible()
	if len(visible) == 0 {
		m.setStatus("Nothing to copy", true)
		return
	}
	lines := make([]string, 0, len(visible))
	for _, e := range visible {
		check := "[ ]"
		if e.Completed {
			check = "[x]"
		}
		lines = append(lines, check+" "+e.Description)
	}
	if err := m.copyFn(strings.Join(lines, "\n")); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %d todos", len(visible)), false)
}

// reload pulls entries from storage when another writer changed them.
func (m *Model) reload() {
	if m.opts.Load == nil {
		return
	}
	entries, err := m.opts.Load()
	if err != nil {
		m.log.Warn("reload failed, keeping entries in memory", "error", err)
		m.setStatus("Reload failed, keeping current list: "+err.Error(), true)
		return
	}
	if slices.Equal(entries, m.state().Entries()) {
		return
	}
	if m.editRow >= 0 {
		// Keystrokes in the edit input save over the file, so the external
		// version is kept here until the edit is committed.
		m.external, m.hasExternal = entries, true
		m.setStatus("Changes on disk will be merged when the edit is saved", false)
		return
	}
	m.state().Reset(entries)
	m.log.Info("entries reloaded from disk", "entries", len(entries))
	m.ensureSelection()
	m.setStatus("Reloaded changes from disk", false)
}

// dispatch reports whether the change was also saved.
func (m *Model) dispatch(msg app.Msg, success string) bool {
	if err := m.d.Dispatch(msg); err != nil {
		m.setStatus("Change applied but not saved: "+err.Error(), true)
		return false
	}
	if success != "" {
		m.setStatus(success, false)
	}
	return true
}

func (m *Model) setFocus(f focusPane) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) moveCursor(delta int) {
	n := len(m.state().Visible())
	if n == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, n-1)
}

func (m *Model) ensureSelection() {
	n := len(m.state().Visible())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = clamp(m.cursor, 0, n-1)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) state() *app.State {
	return m.d.State()
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
