// Package state wires the per-invocation application state: configuration,
// the notes directory, and the rebuilt search index.
package state

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/stashmd/stash/internal/config"
	"github.com/stashmd/stash/internal/constants"
	"github.com/stashmd/stash/internal/note"
	"github.com/stashmd/stash/internal/search"
)

type State struct {
	Config   *config.Config
	Home     string
	NotesDir string
}

func NewState() (*State, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	// Seed the shared viper store from the config file so bound flags and
	// viper.GetString readers see the persisted values. A missing file is
	// the first-run case.
	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)
	_ = viper.ReadInConfig()

	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}

	return &State{
		Config:   cfg,
		Home:     home,
		NotesDir: cfg.NotesDir,
	}, nil
}

// LoadNotes reads the notes directory from scratch. Per-file failures are
// returned alongside the successfully parsed notes.
func (s *State) LoadNotes() ([]note.Note, []note.LoadFailure) {
	return note.Load(s.NotesDir)
}

// BuildIndex loads the notes directory and indexes it. The index is
// ephemeral; each call rebuilds it from disk.
func (s *State) BuildIndex() (*search.Index, []note.LoadFailure) {
	notes, failures := s.LoadNotes()
	return search.Build(notes), failures
}
