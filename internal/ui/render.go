package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/calder/loupe/internal/buffer"
	"github.com/calder/loupe/internal/highlight"
)

// renderContent rebuilds the viewport content from the buffer and the
// current highlight inputs. It runs whenever any of them changes; per-line
// decisions are recomputed every time, never cached across changes.
func (m *Model) renderContent() {
	if !m.ready {
		return
	}

	total := m.buf.VisibleLineCount()
	if total == 0 {
		m.viewport.SetContent(m.emptyView())
		return
	}

	gutterWidth := len(strconv.Itoa(total))
	var sb strings.Builder
	for n := 1; n <= total; n++ {
		line, _ := m.buf.Line(n)
		sb.WriteString(m.renderLine(n, line, gutterWidth))
		if n < total {
			sb.WriteByte('\n')
		}
	}
	m.viewport.SetContent(sb.String())
}

// renderLine styles one line: cursor marker, optional number gutter, then
// the body styled by the resolved highlight decision.
func (m *Model) renderLine(n int, line buffer.Line, gutterWidth int) string {
	var sb strings.Builder

	if n == m.cursor {
		sb.WriteString(m.styles.Cursor.Render("▌"))
	} else {
		sb.WriteByte(' ')
	}

	if m.lineNumbers {
		num := fmt.Sprintf("%*d ", gutterWidth, n)
		if m.marks.Has(n) {
			sb.WriteString(m.styles.Bookmark.Render(num))
		} else {
			sb.WriteString(m.styles.Gutter.Render(num))
		}
	}

	decision := m.resolver.Resolve(n, line.Text)
	switch decision.Kind {
	case highlight.KindBookmark:
		sb.WriteString(m.styles.Bookmark.Render(line.Text))
	case highlight.KindSearchMatch:
		sb.WriteString(m.styles.Search.Render(line.Text))
	case highlight.KindTermRule:
		rule := decision.Rule
		sb.WriteString(m.theme.RuleStyle(rule.Background, rule.Foreground, rule.Bold).Render(line.Text))
	default:
		for _, run := range line.Runs {
			sb.WriteString(m.theme.runStyle(run.Style).Render(run.Text))
		}
	}

	return m.fitLine(sb.String())
}

// fitLine wraps or clips a styled line to the viewport width.
func (m *Model) fitLine(s string) string {
	if m.viewport.Width <= 0 {
		return s
	}
	if m.lineWrap {
		return lipgloss.NewStyle().Width(m.viewport.Width).Render(s)
	}
	return lipgloss.NewStyle().MaxWidth(m.viewport.Width).Render(s)
}

func (m *Model) emptyView() string {
	if m.filePath == "" {
		return m.styles.Gutter.Render("no file open (usage: loupe <path>)")
	}
	if m.loading {
		return m.styles.Gutter.Render("loading…")
	}
	return m.styles.Gutter.Render("(empty file)")
}
