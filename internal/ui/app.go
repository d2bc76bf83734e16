// Package ui provides the Bubble Tea terminal interface for Loupe: the
// scrolling log view, the search bar, and the status line. All highlight
// and search state changes happen here, on the program's event loop, so
// buffer reads never race the chunk appends coming from a load.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder/loupe/internal/ansi"
	"github.com/calder/loupe/internal/bookmark"
	"github.com/calder/loupe/internal/buffer"
	"github.com/calder/loupe/internal/config"
	"github.com/calder/loupe/internal/highlight"
	"github.com/calder/loupe/internal/ingest"
	"github.com/calder/loupe/internal/search"
)

// searchDebounce coalesces rapid typing into one index rebuild.
const searchDebounce = 100 * time.Millisecond

// Options configures the UI.
type Options struct {
	Config     config.Config
	ConfigPath string
	FilePath   string // absolute path of the file to open; empty opens nothing
	Loader     *ingest.Loader
	Marks      *bookmark.Set
}

// FileChangedMsg is sent from outside the program when the open file
// changes on disk.
type FileChangedMsg struct{}

type initialLoadMsg struct{}

type loadEventMsg struct {
	ev ingest.Event
	ch <-chan ingest.Event
}

type searchTickMsg struct {
	seq int
}

// Model is the root application state.
type Model struct {
	cfg      config.Config
	filePath string

	loader   *ingest.Loader
	buf      *buffer.Buffer
	dec      ansi.State
	searchIx *search.Index
	resolver *highlight.Resolver
	marks    *bookmark.Set

	theme  Theme
	styles Styles
	keys   keyMap

	viewport    viewport.Model
	searchInput textinput.Model

	width  int
	height int
	ready  bool

	cursor        int // 1-based line the cursor is on
	loading       bool
	progress      int
	pendingReload bool
	encodingNote  string
	status        string
	searchStatus  string

	searchFocused bool
	searchSeq     int // debounce token

	ansiEnabled   bool
	caseSensitive bool
	lineWrap      bool
	lineNumbers   bool
}

// New creates the root model.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"

	marks := opts.Marks
	if marks == nil {
		marks = bookmark.NewSet()
	}
	loader := opts.Loader
	if loader == nil {
		loader = ingest.NewLoader()
	}

	theme := themeByName(opts.Config.Theme)

	m := Model{
		cfg:           opts.Config,
		filePath:      opts.FilePath,
		loader:        loader,
		buf:           buffer.New(),
		searchIx:      search.New(),
		marks:         marks,
		theme:         theme,
		styles:        theme.Styles(opts.Config.BookmarkHighlightColor),
		keys:          defaultKeyMap(),
		searchInput:   ti,
		cursor:        1,
		ansiEnabled:   opts.Config.ANSIProcessingEnabled,
		caseSensitive: opts.Config.CaseSensitiveSearch,
		lineWrap:      opts.Config.LineWrapEnabled,
		lineNumbers:   opts.Config.LineNumbersEnabled,
	}
	m.resolver = highlight.NewResolver(opts.Config.HighlightTerms, marks.Has)
	return m
}

// Marks exposes the bookmark working set for persistence on exit.
func (m Model) Marks() *bookmark.Set {
	return m.marks
}

// FilePath returns the path of the open file, empty when none.
func (m Model) FilePath() string {
	return m.filePath
}

// Config returns the configuration including any toggles changed during the
// session, for persistence on exit.
func (m Model) Config() config.Config {
	return m.cfg
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if m.filePath != "" {
		cmds = append(cmds, func() tea.Msg { return initialLoadMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := msg.Height - chromeHeight
		if bodyHeight < 1 {
			bodyHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = bodyHeight
		}
		m.searchInput.Width = msg.Width - 4
		m.renderContent()
		return m, nil

	case initialLoadMsg:
		return m, m.startLoad()

	case loadEventMsg:
		return m.handleLoadEvent(msg)

	case FileChangedMsg:
		if m.filePath == "" {
			return m, nil
		}
		if m.loading {
			m.pendingReload = true
			return m, nil
		}
		m.status = "file changed on disk, reloading"
		return m, m.startLoad()

	case searchTickMsg:
		if msg.seq == m.searchSeq && m.searchFocused {
			m.buildSearch()
		}
		return m, nil
	}

	return m, nil
}

// startLoad begins ingesting the current file. Clearing the buffer, search
// index, and line numbering is a precondition of every new load; it happens
// only once the loader has accepted the request, so a refused load leaves
// the current view intact.
func (m *Model) startLoad() tea.Cmd {
	ch, err := m.loader.Load(context.Background(), m.filePath)
	if err != nil {
		m.status = "a load is already in progress"
		return nil
	}

	m.buf.Reset()
	m.dec = ansi.State{}
	m.searchIx.Clear()
	m.resolver.SetActiveMatchLine(0)
	m.cursor = 1
	m.loading = true
	m.progress = 0
	m.encodingNote = ""
	m.searchStatus = ""
	m.status = ""
	m.renderContent()
	return waitLoadEvent(ch)
}

func waitLoadEvent(ch <-chan ingest.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return loadEventMsg{ev: ev, ch: ch}
	}
}

func (m Model) handleLoadEvent(msg loadEventMsg) (tea.Model, tea.Cmd) {
	switch ev := msg.ev.(type) {
	case ingest.Chunk:
		m.appendChunk(ev.Text)
		m.progress = ev.Progress
		m.renderContent()
		return m, waitLoadEvent(msg.ch)

	case ingest.Done:
		runs, dec := ansi.Flush(m.dec)
		m.dec = dec
		if len(runs) > 0 {
			m.buf.Append(runs)
		}
		m.buf.Complete()
		m.loading = false
		m.progress = 100
		if ev.Fallback {
			m.encodingNote = "decoded byte-by-byte (no text encoding matched)"
		} else if ev.Encoding != "utf-8" {
			m.encodingNote = "decoded as " + ev.Encoding
		}
		// Content replaced the buffer, so any previous index is stale.
		if m.searchInput.Value() != "" {
			m.buildSearch()
		}
		m.renderContent()
		if m.pendingReload {
			m.pendingReload = false
			return m, m.startLoad()
		}
		return m, nil

	case ingest.Failed:
		m.loading = false
		m.status = ev.Err.Error()
		m.renderContent()
		return m, nil
	}
	return m, nil
}

// appendChunk runs one decoded chunk through the escape decoder (or passes
// it through verbatim when ANSI processing is off) and into the buffer.
func (m *Model) appendChunk(text string) {
	if m.ansiEnabled {
		runs, dec := ansi.Decode(m.dec, text)
		m.dec = dec
		m.buf.Append(runs)
		return
	}
	m.buf.Append([]ansi.Run{{Text: text}})
}

// buildSearch rebuilds the match index for the current query and jumps to
// the first match.
func (m *Model) buildSearch() {
	term := m.searchInput.Value()
	m.searchIx.Clear()
	m.resolver.SetActiveMatchLine(0)
	if term == "" {
		m.searchStatus = ""
		m.renderContent()
		return
	}
	if err := m.searchIx.Build(m.buf.PlainText(), term, m.caseSensitive); err != nil {
		m.searchStatus = err.Error()
		m.renderContent()
		return
	}
	if off, err := m.searchIx.Next(); err == nil {
		m.jumpToOffset(off)
	} else {
		m.searchStatus = fmt.Sprintf("pattern not found: %s", term)
	}
	m.renderContent()
}

// jumpToOffset moves the active match, the cursor, and the view to the line
// owning a match offset.
func (m *Model) jumpToOffset(off int) {
	line := m.buf.LineForOffset(off)
	if line == 0 {
		return
	}
	m.resolver.SetActiveMatchLine(line)
	m.cursor = line
	m.centerCursor()
	pos, total := m.searchIx.CurrentPosition()
	m.searchStatus = fmt.Sprintf("match %d/%d", pos, total)
}

func (m *Model) nextMatch() {
	if off, err := m.searchIx.Next(); err == nil {
		m.jumpToOffset(off)
		m.renderContent()
	} else {
		m.searchStatus = "no matches"
	}
}

func (m *Model) previousMatch() {
	if off, err := m.searchIx.Previous(); err == nil {
		m.jumpToOffset(off)
		m.renderContent()
	} else {
		m.searchStatus = "no matches"
	}
}

// centerCursor scrolls the viewport so the cursor line sits mid-screen.
func (m *Model) centerCursor() {
	if !m.ready {
		return
	}
	target := m.cursor - 1 - m.viewport.Height/2
	if target < 0 {
		target = 0
	}
	m.viewport.SetYOffset(target)
}

// ensureCursorVisible scrolls just enough to keep the cursor on screen.
func (m *Model) ensureCursorVisible() {
	if !m.ready {
		return
	}
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	switch {
	case m.cursor-1 < top:
		m.viewport.SetYOffset(m.cursor - 1)
	case m.cursor-1 > bottom:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height)
	}
}

func debounceSearch(seq int) tea.Cmd {
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq}
	})
}
