package state

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// NotesChangedMsg is emitted to the TUI when a note file changes on disk.
type NotesChangedMsg struct {
	Path string
}

// NotesWatcherErrMsg surfaces watcher failures to the TUI.
type NotesWatcherErrMsg struct {
	Err error
}

// NotesWatcher watches the notes directory and feeds change events into a
// bubbletea program so the browser can rebuild its index.
type NotesWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
	done    chan struct{}
	once    sync.Once
}

func NewNotesWatcher(dir string) (*NotesWatcher, error) {
	cleaned := filepath.Clean(dir)
	if cleaned == "" || cleaned == "." {
		return nil, errors.New("notes directory cannot be empty")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	nw := &NotesWatcher{
		watcher: w,
		dir:     cleaned,
		done:    make(chan struct{}),
	}

	if err := nw.addRecursive(cleaned); err != nil {
		_ = nw.Close()
		return nil, err
	}

	return nw, nil
}

// Start returns a command that blocks until the next relevant event. The
// model re-invokes it after every message to keep the stream alive.
func (w *NotesWatcher) Start() tea.Cmd {
	if w == nil {
		return nil
	}

	return func() tea.Msg {
		for {
			select {
			case <-w.done:
				return nil
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}

				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = w.addRecursive(event.Name)
						continue
					}
				}

				if !w.isRelevant(event) {
					continue
				}
				return NotesChangedMsg{Path: event.Name}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				return NotesWatcherErrMsg{Err: err}
			}
		}
	}
}

func (w *NotesWatcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return filepath.Ext(name) == ".md"
}

func (w *NotesWatcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *NotesWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
