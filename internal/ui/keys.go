package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap defines the keyboard bindings.
type keyMap struct {
	Quit   key.Binding
	Escape key.Binding

	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	Search    key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding

	ToggleBookmark key.Binding
	NextBookmark   key.Binding
	PrevBookmark   key.Binding
	ClearBookmarks key.Binding

	Reload        key.Binding
	ToggleWrap    key.Binding
	ToggleNumbers key.Binding
	ToggleANSI    key.Binding
	ToggleCase    key.Binding
	CycleTheme    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "space"),
			key.WithHelp("pgdn", "page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "half page down"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous match"),
		),

		ToggleBookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "toggle bookmark"),
		),
		NextBookmark: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next bookmark"),
		),
		PrevBookmark: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous bookmark"),
		),
		ClearBookmarks: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "clear bookmarks"),
		),

		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		ToggleWrap: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "wrap"),
		),
		ToggleNumbers: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "line numbers"),
		),
		ToggleANSI: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "ansi colors"),
		),
		ToggleCase: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "case sensitivity"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocused {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.searchIx.Clear()
		m.resolver.SetActiveMatchLine(0)
		m.searchStatus = ""
		m.renderContent()

	case key.Matches(msg, m.keys.Search):
		m.searchFocused = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NextMatch):
		m.nextMatch()

	case key.Matches(msg, m.keys.PrevMatch):
		m.previousMatch()

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Top):
		m.setCursor(1)

	case key.Matches(msg, m.keys.Bottom):
		m.setCursor(m.buf.VisibleLineCount())

	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.viewport.Height)

	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.viewport.Height)

	case key.Matches(msg, m.keys.HalfPageUp):
		m.moveCursor(-m.viewport.Height / 2)

	case key.Matches(msg, m.keys.HalfPageDown):
		m.moveCursor(m.viewport.Height / 2)

	case key.Matches(msg, m.keys.ToggleBookmark):
		m.toggleBookmark()

	case key.Matches(msg, m.keys.NextBookmark):
		if mark, ok := m.marks.NextAfter(m.cursor); ok {
			m.setCursor(mark.Line)
		} else {
			m.status = "no bookmarks"
		}

	case key.Matches(msg, m.keys.PrevBookmark):
		if mark, ok := m.marks.PreviousBefore(m.cursor); ok {
			m.setCursor(mark.Line)
		} else {
			m.status = "no bookmarks"
		}

	case key.Matches(msg, m.keys.ClearBookmarks):
		m.marks.Clear()
		m.status = "bookmarks cleared"
		m.renderContent()

	case key.Matches(msg, m.keys.Reload):
		if m.filePath != "" {
			return m, m.startLoad()
		}

	case key.Matches(msg, m.keys.ToggleWrap):
		m.lineWrap = !m.lineWrap
		m.cfg.LineWrapEnabled = m.lineWrap
		m.renderContent()

	case key.Matches(msg, m.keys.ToggleNumbers):
		m.lineNumbers = !m.lineNumbers
		m.cfg.LineNumbersEnabled = m.lineNumbers
		m.renderContent()

	case key.Matches(msg, m.keys.ToggleANSI):
		// The buffer holds already-decoded runs, so flipping escape
		// processing requires a fresh load.
		m.ansiEnabled = !m.ansiEnabled
		m.cfg.ANSIProcessingEnabled = m.ansiEnabled
		if m.filePath != "" {
			return m, m.startLoad()
		}

	case key.Matches(msg, m.keys.ToggleCase):
		m.caseSensitive = !m.caseSensitive
		m.cfg.CaseSensitiveSearch = m.caseSensitive
		// The flag change invalidates the index.
		m.searchIx.Clear()
		m.resolver.SetActiveMatchLine(0)
		if m.searchInput.Value() != "" {
			m.buildSearch()
		} else {
			m.renderContent()
		}

	case key.Matches(msg, m.keys.CycleTheme):
		if m.theme.Name == "dark" {
			m.theme = lightTheme
		} else {
			m.theme = darkTheme
		}
		m.cfg.Theme = m.theme.Name
		m.styles = m.theme.Styles(m.cfg.BookmarkHighlightColor)
		m.renderContent()
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchFocused = false
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.searchFocused = false
		m.searchInput.Blur()
		if _, ok := m.searchIx.Current(); ok && m.searchIx.Term() == m.searchInput.Value() {
			return m, nil
		}
		m.buildSearch()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	before := m.searchInput.Value()
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != before {
		m.searchSeq++
		return m, tea.Batch(cmd, debounceSearch(m.searchSeq))
	}
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	m.setCursor(m.cursor + delta)
}

func (m *Model) setCursor(line int) {
	total := m.buf.VisibleLineCount()
	if total == 0 {
		m.cursor = 1
		return
	}
	if line < 1 {
		line = 1
	}
	if line > total {
		line = total
	}
	m.cursor = line
	m.ensureCursorVisible()
	m.renderContent()
}

func (m *Model) toggleBookmark() {
	line, ok := m.buf.Line(m.cursor)
	if !ok {
		return
	}
	if m.marks.Toggle(m.cursor, line.Text) {
		m.status = fmt.Sprintf("bookmarked line %d", m.cursor)
	} else {
		m.status = fmt.Sprintf("removed bookmark on line %d", m.cursor)
	}
	m.renderContent()
}
