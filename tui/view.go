package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"todos/model"
)

var (
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedColor = lipgloss.Color("229")
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	st := m.state()
	title := lipgloss.NewStyle().Bold(true).Render("todos")
	summary := fmt.Sprintf("focus: %s • filter: %s • %d/%d done",
		m.focus, st.Filter(), st.TotalCompletedCount(), st.TotalCount())
	header := lipgloss.JoinHorizontal(lipgloss.Left, title, lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  "+summary))

	viewW := m.viewportWidth()
	innerW := viewW - 2
	if innerW < 20 {
		innerW = viewW
	}
	panelH := m.height - 7
	if panelH < 6 {
		panelH = 6
	}

	frameColor := lipgloss.Color("240")
	if m.focus == focusList || m.editRow >= 0 {
		frameColor = lipgloss.Color("39")
	}

	body := m.renderList(innerW, panelH-2)
	if m.showHelp {
		m.help.ShowAll = true
		body = lipgloss.Place(innerW, panelH-2, lipgloss.Center, lipgloss.Center, m.help.View(m.keys))
	}
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(innerW).
		Height(panelH - 2).
		Render(body)

	statusStyle := okStyle
	if m.statusErr {
		statusStyle = errStyle
	}
	rightHint := "? help"
	if m.showHelp {
		rightHint = "Esc/? close help"
	}

	parts := []string{header, m.input.View(), panel}
	if footer := m.renderListFooter(viewW); footer != "" {
		parts = append(parts, footer)
	}
	parts = append(parts, m.renderFooter(m.status, statusStyle, rightHint))
	if m.opts.ShowHints && !m.showHelp {
		m.help.ShowAll = false
		parts = append(parts, m.help.View(m.keys))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderList(width, height int) string {
	st := m.state()
	visible := st.Visible()

	lines := make([]string, 0, len(visible)+2)
	if st.TotalCount() > 0 {
		mark := "[ ]"
		if st.IsAllCompleted() {
			mark = "[x]"
		}
		lines = append(lines, mutedStyle.Render("  "+mark+" mark all as complete (a)"))
	}

	switch {
	case st.TotalCount() == 0:
		lines = append(lines, mutedStyle.Render("Nothing to do yet. Type a todo above and press Enter."))
	case len(visible) == 0:
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("No %s todos (press f to change filter).", strings.ToLower(st.Filter().String()))))
	}

	// Keep the cursor row on screen when the list is taller than the panel.
	rows := height - len(lines)
	start := 0
	if rows > 0 && m.cursor >= rows {
		start = m.cursor - rows + 1
	}

	for i := start; i < len(visible); i++ {
		lines = append(lines, m.renderEntry(i, visible[i], width))
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderEntry(i int, e model.Entry, width int) string {
	selected := i == m.cursor
	cursor := " "
	if selected {
		cursor = "▸"
	}
	check := "[ ]"
	if e.Completed {
		check = "[x]"
	}

	if i == m.editRow {
		return lipgloss.JoinHorizontal(lipgloss.Left, cursor+" ", check+" ", m.editInput.View())
	}

	text := e.Description
	if e.Editing {
		text = "✎ " + text
	}
	text = runewidth.Truncate(text, width-6, "…")

	cursorStyle := lipgloss.NewStyle()
	textStyle := lipgloss.NewStyle()
	if e.Completed {
		textStyle = textStyle.Faint(true)
	}
	if selected {
		cursorStyle = cursorStyle.Bold(true)
		textStyle = textStyle.Bold(true)
		if m.focus == focusList {
			cursorStyle = cursorStyle.Foreground(selectedColor)
			textStyle = textStyle.Foreground(selectedColor)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Left,
		cursorStyle.Render(cursor+" "),
		textStyle.Render(check+" "+text),
	)
}

// renderListFooter is the counter, filter bar and clear-completed strip. It is
// hidden while the list is empty.
func (m *Model) renderListFooter(width int) string {
	st := m.state()
	if st.TotalCount() == 0 {
		return ""
	}

	left := itemsLeft(st.ActiveCount())

	filters := make([]string, 0, len(model.Filters()))
	for _, f := range model.Filters() {
		label := f.String()
		if f == st.Filter() {
			filters = append(filters, lipgloss.NewStyle().Bold(true).Underline(true).Foreground(selectedColor).Render(label))
			continue
		}
		filters = append(filters, mutedStyle.Render(label))
	}
	bar := strings.Join(filters, "  ") + mutedStyle.Render("  "+st.Filter().Route())

	right := ""
	if n := st.TotalCompletedCount(); n > 0 {
		right = fmt.Sprintf("Clear completed (%d)", n)
	}

	leftW := runewidth.StringWidth(left)
	rightW := runewidth.StringWidth(right)
	barW := lipgloss.Width(bar)
	gap := (width - leftW - barW - rightW) / 2
	if gap < 2 {
		gap = 2
	}
	line := left + strings.Repeat(" ", gap) + bar + strings.Repeat(" ", gap) + mutedStyle.Render(right)
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(line)
}

func itemsLeft(n int) string {
	if n == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", n)
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// Leave the last column free; some terminals wrap on it and the right
	// border disappears.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func (m *Model) renderFooter(statusText string, statusStyle lipgloss.Style, rightHint string) string {
	left := strings.TrimSpace(statusText)
	right := strings.TrimSpace(rightHint)
	if left == "" {
		left = "Ready"
	}

	leftW := runewidth.StringWidth(left)
	rightW := runewidth.StringWidth(right)
	width := m.viewportWidth()
	if width <= 1 {
		width = leftW + rightW + 2
	}

	if leftW+rightW+1 > width {
		maxLeft := width - rightW - 1
		if maxLeft < 8 {
			maxLeft = 8
		}
		left = runewidth.Truncate(left, maxLeft, "…")
		leftW = runewidth.StringWidth(left)
	}

	padding := width - leftW - rightW
	if padding < 1 {
		padding = 1
	}

	rightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	line := statusStyle.Render(left) + strings.Repeat(" ", padding) + rightStyle.Render(right)
	return lipgloss.NewStyle().Width(width).Render(line)
}
