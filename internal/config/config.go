// Package config handles Loupe's persisted configuration: highlight term
// rules, viewer toggles, and per-file bookmarks. The file lives at
// ~/.config/loupe/config.toml unless overridden on the command line.
//
// highlight_terms accepts both structured entries and legacy bare strings:
//
//	highlight_terms = [
//	    "ERROR",
//	    { term = "WARN", color = "yellow", text_color = "black", bold = true },
//	]
//
// A bare string means default colors and case-insensitive matching. Entries
// are normalized into rules at load time; the legacy shape never reaches the
// engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/calder/loupe/internal/bookmark"
	"github.com/calder/loupe/internal/highlight"
)

const (
	defaultConfigPath    = "~/.config/loupe/config.toml"
	defaultBookmarkColor = "#6495ed" // cornflower blue
	defaultTheme         = "system"
)

// Config is the normalized configuration consumed by the viewer.
type Config struct {
	Theme                  string // system, light, or dark
	BookmarkHighlightColor string
	CaseSensitiveSearch    bool
	ANSIProcessingEnabled  bool
	LineWrapEnabled        bool
	LineNumbersEnabled     bool
	HighlightTerms         []highlight.TermRule
	Bookmarks              map[string][]BookmarkEntry // keyed by absolute file path
}

// BookmarkEntry is the persisted form of one bookmark.
type BookmarkEntry struct {
	Line      int       `toml:"line"`
	Content   string    `toml:"content"`
	Timestamp time.Time `toml:"timestamp"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Theme:                  defaultTheme,
		BookmarkHighlightColor: defaultBookmarkColor,
		ANSIProcessingEnabled:  true,
		LineNumbersEnabled:     true,
		Bookmarks:              map[string][]BookmarkEntry{},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// fileConfig is the on-disk schema. Booleans are pointers so that an absent
// key keeps its default rather than reading as false. Table-valued fields
// sit last so scalar keys serialize before any table header.
type fileConfig struct {
	Theme                  string                     `toml:"theme,omitempty"`
	BookmarkHighlightColor string                     `toml:"bookmark_highlight_color,omitempty"`
	CaseSensitiveSearch    *bool                      `toml:"case_sensitive_search,omitempty"`
	ANSIProcessingEnabled  *bool                      `toml:"ansi_processing_enabled,omitempty"`
	LineWrapEnabled        *bool                      `toml:"line_wrap_enabled,omitempty"`
	LineNumbersEnabled     *bool                      `toml:"line_numbers_enabled,omitempty"`
	HighlightTerms         []any                      `toml:"highlight_terms,omitempty"`
	Bookmarks              map[string][]BookmarkEntry `toml:"bookmarks,omitempty"`
}

// Load reads the configuration at path (empty means the default location).
// A missing file yields defaults with no error; a malformed file yields
// defaults plus the parse error so the caller can surface it.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if theme := strings.TrimSpace(raw.Theme); theme != "" {
		cfg.Theme = theme
	}
	switch cfg.Theme {
	case "system", "light", "dark":
	default:
		cfg.Theme = defaultTheme
	}
	if c := strings.TrimSpace(raw.BookmarkHighlightColor); c != "" {
		cfg.BookmarkHighlightColor = c
	}
	if raw.CaseSensitiveSearch != nil {
		cfg.CaseSensitiveSearch = *raw.CaseSensitiveSearch
	}
	if raw.ANSIProcessingEnabled != nil {
		cfg.ANSIProcessingEnabled = *raw.ANSIProcessingEnabled
	}
	if raw.LineWrapEnabled != nil {
		cfg.LineWrapEnabled = *raw.LineWrapEnabled
	}
	if raw.LineNumbersEnabled != nil {
		cfg.LineNumbersEnabled = *raw.LineNumbersEnabled
	}
	for _, entry := range raw.HighlightTerms {
		if rule, ok := normalizeTerm(entry); ok {
			cfg.HighlightTerms = append(cfg.HighlightTerms, rule)
		}
	}
	if raw.Bookmarks != nil {
		cfg.Bookmarks = raw.Bookmarks
	}
	return cfg, nil
}

// Save writes cfg to path (empty means the default location), creating the
// directory as needed. Term rules are always written in structured form.
func Save(path string, cfg Config) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw := fileConfig{
		Theme:                  cfg.Theme,
		BookmarkHighlightColor: cfg.BookmarkHighlightColor,
		CaseSensitiveSearch:    &cfg.CaseSensitiveSearch,
		ANSIProcessingEnabled:  &cfg.ANSIProcessingEnabled,
		LineWrapEnabled:        &cfg.LineWrapEnabled,
		LineNumbersEnabled:     &cfg.LineNumbersEnabled,
		Bookmarks:              cfg.Bookmarks,
	}
	for _, rule := range cfg.HighlightTerms {
		raw.HighlightTerms = append(raw.HighlightTerms, termEntry{
			Term:          rule.Pattern,
			Color:         rule.Background,
			TextColor:     rule.Foreground,
			Bold:          rule.Bold,
			CaseSensitive: rule.CaseSensitive,
		})
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// termEntry is the structured on-disk shape of one highlight term.
type termEntry struct {
	Term          string `toml:"term"`
	Color         string `toml:"color,omitempty"`
	TextColor     string `toml:"text_color,omitempty"`
	Bold          bool   `toml:"bold,omitempty"`
	CaseSensitive bool   `toml:"case_sensitive,omitempty"`
}

// normalizeTerm converts one highlight_terms entry (bare string or table)
// into a rule. Invalid entries are skipped, not fatal.
func normalizeTerm(entry any) (highlight.TermRule, bool) {
	switch v := entry.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return highlight.TermRule{}, false
		}
		return highlight.TermRule{Pattern: v}, true
	case map[string]any:
		term, _ := v["term"].(string)
		if strings.TrimSpace(term) == "" {
			return highlight.TermRule{}, false
		}
		rule := highlight.TermRule{Pattern: term}
		if s, ok := v["color"].(string); ok {
			rule.Background = s
		}
		if s, ok := v["text_color"].(string); ok {
			rule.Foreground = s
		}
		if b, ok := v["bold"].(bool); ok {
			rule.Bold = b
		}
		if b, ok := v["case_sensitive"].(bool); ok {
			rule.CaseSensitive = b
		}
		return rule, true
	default:
		return highlight.TermRule{}, false
	}
}

// BookmarksFor returns the persisted marks for a file path.
func (c Config) BookmarksFor(path string) []bookmark.Mark {
	entries := c.Bookmarks[path]
	marks := make([]bookmark.Mark, 0, len(entries))
	for _, e := range entries {
		marks = append(marks, bookmark.Mark{Line: e.Line, Preview: e.Content, CreatedAt: e.Timestamp})
	}
	return marks
}

// SetBookmarks records the marks for a file path, dropping the key when the
// set is empty.
func (c *Config) SetBookmarks(path string, marks []bookmark.Mark) {
	if c.Bookmarks == nil {
		c.Bookmarks = map[string][]BookmarkEntry{}
	}
	if len(marks) == 0 {
		delete(c.Bookmarks, path)
		return
	}
	entries := make([]BookmarkEntry, 0, len(marks))
	for _, m := range marks {
		entries = append(entries, BookmarkEntry{Line: m.Line, Content: m.Preview, Timestamp: m.CreatedAt})
	}
	c.Bookmarks[path] = entries
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
