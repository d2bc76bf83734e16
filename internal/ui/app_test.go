package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder/loupe/internal/config"
	"github.com/calder/loupe/internal/highlight"
	"github.com/calder/loupe/internal/ingest"
)

func newTestModel(t *testing.T, cfg config.Config) Model {
	t.Helper()
	m := New(Options{Config: cfg, FilePath: "/tmp/test.log"})
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return mm.(Model)
}

func feed(t *testing.T, m Model, text string) Model {
	t.Helper()
	ch := make(chan ingest.Event)
	close(ch)
	mm, _ := m.Update(loadEventMsg{
		ev: ingest.Chunk{Seq: 1, Total: 1, Text: text, Progress: 100},
		ch: ch,
	})
	m = mm.(Model)
	mm, _ = m.Update(loadEventMsg{ev: ingest.Done{Encoding: "utf-8"}, ch: ch})
	return mm.(Model)
}

func TestChunksFillBufferWithStyles(t *testing.T) {
	m := newTestModel(t, config.Default())
	m = feed(t, m, "plain\n\x1b[31mred line\x1b[0m\n")

	if got := m.buf.LineCount(); got != 2 {
		t.Fatalf("LineCount() = %d, want 2", got)
	}
	line, _ := m.buf.Line(2)
	if line.Text != "red line" {
		t.Errorf("Line(2).Text = %q", line.Text)
	}
	if len(line.Runs) != 1 || line.Runs[0].Style.Foreground.String() != "red" {
		t.Errorf("Line(2).Runs = %#v, want one red run", line.Runs)
	}
}

func TestANSIDisabledPassesTextThrough(t *testing.T) {
	cfg := config.Default()
	cfg.ANSIProcessingEnabled = false
	m := newTestModel(t, cfg)
	m = feed(t, m, "\x1b[31mred\x1b[0m\n")

	line, _ := m.buf.Line(1)
	if line.Text != "\x1b[31mred\x1b[0m" {
		t.Errorf("Line(1).Text = %q, want raw escapes preserved", line.Text)
	}
}

func TestSearchAndNavigation(t *testing.T) {
	m := newTestModel(t, config.Default())
	m = feed(t, m, "line1\nERROR something\nline3\n")

	m.searchInput.SetValue("Error")
	m.buildSearch()

	off, ok := m.searchIx.Current()
	if !ok || off != 6 {
		t.Fatalf("current match = (%d, %v), want (6, true)", off, ok)
	}
	if got := m.resolver.ActiveMatchLine(); got != 2 {
		t.Errorf("active match line = %d, want 2", got)
	}
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}

	// Single match: next then previous stays put.
	m.nextMatch()
	m.previousMatch()
	if off, _ := m.searchIx.Current(); off != 6 {
		t.Errorf("after next+previous, current = %d, want 6", off)
	}
}

func TestBookmarkPrecedenceThroughModel(t *testing.T) {
	cfg := config.Default()
	cfg.HighlightTerms = []highlight.TermRule{{Pattern: "ERROR"}}
	m := newTestModel(t, cfg)
	m = feed(t, m, "line1\nERROR something\nline3\n")

	m.searchInput.SetValue("ERROR")
	m.buildSearch()
	m.setCursor(2)
	m.toggleBookmark()

	line, _ := m.buf.Line(2)
	if d := m.resolver.Resolve(2, line.Text); d.Kind != highlight.KindBookmark {
		t.Errorf("Resolve() = %v, want bookmark to win", d.Kind)
	}

	// Removing the bookmark reveals the search match underneath.
	m.toggleBookmark()
	if d := m.resolver.Resolve(2, line.Text); d.Kind != highlight.KindSearchMatch {
		t.Errorf("Resolve() after removal = %v, want search match", d.Kind)
	}
}

func TestLoadFailureSetsStatus(t *testing.T) {
	m := newTestModel(t, config.Default())
	ch := make(chan ingest.Event)
	close(ch)
	mm, _ := m.Update(loadEventMsg{ev: ingest.Failed{Err: errTest}, ch: ch})
	m = mm.(Model)
	if m.loading || m.status == "" {
		t.Errorf("failure not reflected: loading=%v status=%q", m.loading, m.status)
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "read failed" }

func TestFlagSummary(t *testing.T) {
	m := New(Options{Config: config.Default()})
	// Defaults: ansi on, case off, wrap off, numbers on.
	if got := m.flagSummary(); got != "AcwL" {
		t.Errorf("flagSummary() = %q, want %q", got, "AcwL")
	}
}

func TestThemeByName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"system", "dark"},
		{"", "dark"},
		{"Light", "light"},
	}
	for _, tt := range tests {
		if got := themeByName(tt.in); got.Name != tt.want {
			t.Errorf("themeByName(%q).Name = %q, want %q", tt.in, got.Name, tt.want)
		}
	}
}

func TestNamedColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#ff0000", "#ff0000"},
		{"yellow", "#d7af00"},
		{"Yellow", "#d7af00"},
		{"12", "12"},
		{"", "#fallback"},
		{"nonsense", "#fallback"},
	}
	for _, tt := range tests {
		if got := namedColor(tt.in, "#fallback"); string(got) != tt.want {
			t.Errorf("namedColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
