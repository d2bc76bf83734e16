// Package app wires Loupe together: configuration, bookmark hydration, the
// file watcher, and the UI program.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder/loupe/internal/bookmark"
	"github.com/calder/loupe/internal/config"
	"github.com/calder/loupe/internal/ingest"
	"github.com/calder/loupe/internal/ui"
	"github.com/calder/loupe/internal/watch"
)

// Options configure the application.
type Options struct {
	ConfigPath string // empty uses ~/.config/loupe/config.toml
	FilePath   string // optional file to open on startup
}

// Run boots the viewer until the context is cancelled or the user quits,
// then persists bookmarks and changed settings.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		// Defaults still apply; the user should know their file was ignored.
		fmt.Fprintf(os.Stderr, "loupe: config ignored: %v\n", err)
	}

	filePath := opts.FilePath
	if filePath != "" {
		abs, err := filepath.Abs(filePath)
		if err != nil {
			return fmt.Errorf("resolve file path: %w", err)
		}
		filePath = abs
	}

	marks := bookmark.FromMarks(cfg.BookmarksFor(filePath))

	m := ui.New(ui.Options{
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		FilePath:   filePath,
		Loader:     ingest.NewLoader(),
		Marks:      marks,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if filePath != "" {
		if w, err := watch.New(); err == nil {
			if err := w.Watch(filePath, func() { p.Send(ui.FileChangedMsg{}) }); err == nil {
				defer w.Stop()
			} else {
				w.Stop()
			}
		}
		// A failed watcher only disables auto-reload; the viewer still works.
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	fm, ok := final.(ui.Model)
	if !ok {
		return nil
	}
	out := fm.Config()
	if path := fm.FilePath(); path != "" {
		out.SetBookmarks(path, fm.Marks().List())
	}
	if err := config.Save(opts.ConfigPath, out); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
