package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/vim-fall/fall.vim/internal/config"
	"github.com/vim-fall/fall.vim/internal/core/session"
)

// loadSessionStore reads the on-disk session history into a freshly
// constructed Store, giving fallpicker continuity across invocations
// even though the Store itself is an in-memory ring (session.New): a
// missing file is not an error, just an empty history.
func loadSessionStore(cfg *config.Config) (*session.Store, error) {
	store := session.New(cfg.Session.Capacity)

	path := config.DefaultPaths().SessionsFile()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}

	var sessions []session.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, err
	}
	// sessions.json is most-recent-first (session.Store.List's order);
	// replay oldest-to-newest so re-Save-ing reproduces it.
	for i := len(sessions) - 1; i >= 0; i-- {
		_ = store.Save(sessions[i])
	}
	return store, nil
}

// saveSessionStore persists store's history to disk, most-recent-first.
func saveSessionStore(store *session.Store) error {
	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(store.List(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(paths.SessionsFile(), data, 0644)
}
