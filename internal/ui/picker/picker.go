// Package picker provides a filterable line picker, the built-in replacement
// for dmenu-style programs.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vannrr/fmark/internal/keys"
)

const defaultRows = 20

var (
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#3C3C3C", Dark: "#C9C9C9"})
	indicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	selectedStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})
)

// Model holds the picker state. It is a complete tea.Model so it can run as
// its own program.
type Model struct {
	prompt   string
	options  []string
	filtered []int // indexes into options matching the query
	selected int   // index into filtered
	offset   int   // first visible row of filtered
	rows     int
	width    int
	input    textinput.Model
	keys     keys.KeyMap
	help     help.Model

	answer    string
	cancelled bool
	done      bool
}

// New creates a picker over options. An empty option list turns the picker
// into a plain text prompt.
func New(prompt string, options []string) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()

	m := Model{
		prompt:  prompt,
		options: options,
		rows:    defaultRows,
		input:   ti,
		keys:    keys.DefaultKeyMap(),
		help:    help.New(),
	}
	m.refilter()
	return m
}

// SetRows sets the number of visible option rows.
func (m Model) SetRows(rows int) Model {
	if rows > 0 {
		m.rows = rows
	}
	m.scroll()
	return m
}

// SetWidth sets the terminal width used for truncating long lines.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// SetSelected moves the cursor to the first option equal to value.
func (m Model) SetSelected(value string) Model {
	for i, idx := range m.filtered {
		if m.options[idx] == value {
			m.selected = i
			m.scroll()
			break
		}
	}
	return m
}

// SetQuery prefills the filter input.
func (m Model) SetQuery(query string) Model {
	m.input.SetValue(query)
	m.input.CursorEnd()
	m.refilter()
	return m
}

// Query returns the text typed so far.
func (m Model) Query() string {
	return m.input.Value()
}

// Selected returns the option under the cursor, if any option matches.
func (m Model) Selected() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.filtered) {
		return "", false
	}
	return m.options[m.filtered[m.selected]], true
}

// Matches returns the options matching the current query in display order.
func (m Model) Matches() []string {
	out := make([]string, len(m.filtered))
	for i, idx := range m.filtered {
		out[i] = m.options[idx]
	}
	return out
}

// Result returns the chosen line. ok is false when the picker was cancelled
// or has not finished.
func (m Model) Result() (answer string, ok bool) {
	if !m.done || m.cancelled {
		return "", false
	}
	return m.answer, true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.ChooseQuery):
			m.answer = m.input.Value()
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Choose):
			// Like dmenu: the highlighted match wins, otherwise the typed text.
			if choice, ok := m.Selected(); ok {
				m.answer = choice
			} else {
				m.answer = m.input.Value()
			}
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Complete):
			if choice, ok := m.Selected(); ok {
				m = m.SetQuery(choice)
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.filtered)-1 {
				m.selected++
				m.scroll()
			}
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
				m.scroll()
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(promptStyle.Render(m.prompt+">") + " " + m.input.View())

	end := min(m.offset+m.rows, len(m.filtered))
	for i := m.offset; i < end; i++ {
		line := m.truncate(m.options[m.filtered[i]])
		b.WriteString("\n")
		if i == m.selected {
			b.WriteString(indicatorStyle.Render(">") + selectedStyle.Render(line))
		} else {
			b.WriteString(" " + line)
		}
	}
	if len(m.options) > 0 {
		b.WriteString("\n" + dimStyle.Render(countLabel(len(m.filtered), len(m.options))))
	}
	b.WriteString("\n" + m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

// refilter recomputes the matches for the current query, case-insensitively.
func (m *Model) refilter() {
	query := strings.ToLower(m.input.Value())
	filtered := make([]int, 0, len(m.options))
	for i, opt := range m.options {
		if query == "" || strings.Contains(strings.ToLower(opt), query) {
			filtered = append(filtered, i)
		}
	}
	m.filtered = filtered
	m.selected = 0
	m.offset = 0
}

// scroll keeps the selected row inside the visible window.
func (m *Model) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.rows {
		m.offset = m.selected - m.rows + 1
	}
}

func (m Model) truncate(line string) string {
	if m.width <= 1 {
		return line
	}
	return runewidth.Truncate(line, m.width-1, "…")
}

func countLabel(matches, total int) string {
	return fmt.Sprintf("  %d/%d", matches, total)
}
