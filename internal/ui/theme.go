package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/calder/loupe/internal/ansi"
)

// Theme defines the palette for one appearance mode.
type Theme struct {
	Name string

	Background string
	Text       string
	Muted      string // gutter, separators
	Accent     string

	StatusBg string
	StatusFg string

	SearchBg string // active search match line
	SearchFg string

	TermBg string // default term-rule background
	TermFg string

	CursorBg string
}

var darkTheme = Theme{
	Name:       "dark",
	Background: "#2b2b2b",
	Text:       "#ffffff",
	Muted:      "#808080",
	Accent:     "#2a82da",
	StatusBg:   "#3f3f3f",
	StatusFg:   "#ffffff",
	SearchBg:   "#ffff00",
	SearchFg:   "#000000",
	TermBg:     "#6495ed",
	TermFg:     "#000000",
	CursorBg:   "#3a3a3a",
}

var lightTheme = Theme{
	Name:       "light",
	Background: "#fafafa",
	Text:       "#1a1a1a",
	Muted:      "#9a9a9a",
	Accent:     "#2a82da",
	StatusBg:   "#e0e0e0",
	StatusFg:   "#1a1a1a",
	SearchBg:   "#ffdf00",
	SearchFg:   "#000000",
	TermBg:     "#6495ed",
	TermFg:     "#000000",
	CursorBg:   "#ececec",
}

// themeByName resolves a configured theme name. "system" resolves to dark:
// a TUI cannot portably query the terminal background, and dark is the
// dominant terminal default.
func themeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return lightTheme
	default:
		return darkTheme
	}
}

// Styles holds the compiled lipgloss styles for a theme.
type Styles struct {
	Text       lipgloss.Style
	Gutter     lipgloss.Style
	Status     lipgloss.Style
	StatusNote lipgloss.Style
	Search     lipgloss.Style
	Bookmark   lipgloss.Style
	Cursor     lipgloss.Style
}

// Styles compiles the theme. The bookmark background comes from
// configuration rather than the palette.
func (t Theme) Styles(bookmarkColor string) Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		Gutter: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		Status: lipgloss.NewStyle().
			Background(lipgloss.Color(t.StatusBg)).
			Foreground(lipgloss.Color(t.StatusFg)),

		StatusNote: lipgloss.NewStyle().
			Background(lipgloss.Color(t.StatusBg)).
			Foreground(lipgloss.Color(t.Accent)),

		Search: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SearchBg)).
			Foreground(lipgloss.Color(t.SearchFg)),

		Bookmark: lipgloss.NewStyle().
			Background(namedColor(bookmarkColor, t.TermBg)).
			Foreground(lipgloss.Color(t.TermFg)),

		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color(t.CursorBg)),
	}
}

// RuleStyle compiles the style for one term rule, falling back to the
// theme's default term colors.
func (t Theme) RuleStyle(background, foreground string, bold bool) lipgloss.Style {
	st := lipgloss.NewStyle().
		Background(namedColor(background, t.TermBg)).
		Foreground(namedColor(foreground, t.TermFg))
	if bold {
		st = st.Bold(true)
	}
	return st
}

// colorNames maps the color words accepted in configuration to hex values.
var colorNames = map[string]string{
	"black":   "#000000",
	"red":     "#cc4444",
	"green":   "#44aa44",
	"yellow":  "#d7af00",
	"blue":    "#4477cc",
	"magenta": "#aa44aa",
	"cyan":    "#44aaaa",
	"white":   "#ffffff",
	"gray":    "#808080",
	"grey":    "#808080",
	"orange":  "#d78700",
	"purple":  "#875fd7",
}

// namedColor resolves a configured color string: hex values and ANSI color
// numbers pass through, known names map to hex, anything else falls back.
func namedColor(s, fallback string) lipgloss.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return lipgloss.Color(fallback)
	}
	if strings.HasPrefix(s, "#") {
		return lipgloss.Color(s)
	}
	if _, err := strconv.Atoi(s); err == nil {
		return lipgloss.Color(s)
	}
	if hex, ok := colorNames[s]; ok {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(fallback)
}

// runStyle compiles the style for one decoded SGR run. The 16 ANSI palette
// colors pass straight through so the terminal's own palette applies.
func (t Theme) runStyle(st ansi.Style) lipgloss.Style {
	out := lipgloss.NewStyle()
	if st.Foreground != ansi.Default {
		out = out.Foreground(lipgloss.Color(strconv.Itoa(int(st.Foreground) - 1)))
	} else {
		out = out.Foreground(lipgloss.Color(t.Text))
	}
	if st.Bold {
		out = out.Bold(true)
	}
	return out
}
