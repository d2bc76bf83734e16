package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// chromeHeight is the number of rows outside the viewport: the search bar
// and the status line.
const chromeHeight = 2

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting…"
	}
	return m.viewport.View() + "\n" + m.searchBarView() + "\n" + m.statusView()
}

func (m Model) searchBarView() string {
	if m.searchFocused {
		return m.searchInput.View()
	}
	if term := m.searchInput.Value(); term != "" {
		note := "/" + term
		if m.searchStatus != "" {
			note += "  " + m.searchStatus
		}
		return m.styles.Gutter.Render(note)
	}
	return m.styles.Gutter.Render("/ to search · b bookmark · ]/[ jump · q quit")
}

// statusView composes the bottom status line: file and load state on the
// left, position and mode flags on the right.
func (m Model) statusView() string {
	left := m.statusLeft()
	right := m.statusRight()

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return m.styles.Status.Width(m.width).Render(bar)
}

func (m Model) statusLeft() string {
	var parts []string
	if m.filePath != "" {
		parts = append(parts, filepath.Base(m.filePath))
	} else {
		parts = append(parts, "loupe")
	}
	if m.loading {
		parts = append(parts, fmt.Sprintf("loading %d%%", m.progress))
	}
	if m.encodingNote != "" {
		parts = append(parts, m.encodingNote)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return " " + strings.Join(parts, " · ")
}

func (m Model) statusRight() string {
	var parts []string
	if pos, total := m.searchIx.CurrentPosition(); total > 0 {
		parts = append(parts, fmt.Sprintf("match %d/%d", pos, total))
	}
	if n := m.marks.Len(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d bookmarks", n))
	}
	parts = append(parts, fmt.Sprintf("%d/%d", m.cursor, m.buf.VisibleLineCount()))
	parts = append(parts, m.flagSummary())
	return strings.Join(parts, " · ") + " "
}

// flagSummary renders the mode toggles as a compact cluster, uppercase when
// active.
func (m Model) flagSummary() string {
	flag := func(on bool, c byte) byte {
		if on {
			return c - 'a' + 'A'
		}
		return c
	}
	return string([]byte{
		flag(m.ansiEnabled, 'a'),
		flag(m.caseSensitive, 'c'),
		flag(m.lineWrap, 'w'),
		flag(m.lineNumbers, 'l'),
	})
}
