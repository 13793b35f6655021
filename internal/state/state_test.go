package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/stashmd/stash/internal/config"
)

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	path := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestNewStateSeedsViperFromConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()

	notesDir := filepath.Join(home, "my-notes")
	writeConfig(t, home, "notes_dir: "+notesDir+"\neditor: vim\n")

	s, err := NewState()
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}

	if s.NotesDir != notesDir {
		t.Fatalf("NotesDir = %q, want %q", s.NotesDir, notesDir)
	}
	if got := viper.GetString("notes_dir"); got != notesDir {
		t.Fatalf("viper notes_dir = %q, want %q", got, notesDir)
	}
	if got := viper.GetString("editor"); got != "vim" {
		t.Fatalf("viper editor = %q, want vim", got)
	}
}

func TestNewStateWithoutConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()

	s, err := NewState()
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}

	if want := filepath.Join(home, ".stash", "notes"); s.NotesDir != want {
		t.Fatalf("NotesDir = %q, want default %q", s.NotesDir, want)
	}
}
