package note

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LoadFailure reports a note file that could not be loaded. Failures are
// collected per file and never abort a load batch.
type LoadFailure struct {
	Path string
	Err  error
}

func (f LoadFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// Load reads every markdown note under dir and returns the successfully
// parsed notes alongside per-file failures.
//
// A missing directory is the first-run case and yields an empty note set.
// Files are parsed concurrently but merged in sorted path order, so loading
// an unchanged directory twice produces identical results.
func Load(dir string) ([]Note, []LoadFailure) {
	paths, err := listNoteFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []LoadFailure{{Path: dir, Err: err}}
	}

	type outcome struct {
		note Note
		err  error
	}
	outcomes := make([]outcome, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			n, err := LoadFile(path)
			outcomes[i] = outcome{note: n, err: err}
			return nil
		})
	}
	// Workers never return errors; per-file problems land in outcomes.
	_ = g.Wait()

	var notes []Note
	var failures []LoadFailure
	firstPath := make(map[uuid.UUID]string, len(paths))

	for i, path := range paths {
		if outcomes[i].err != nil {
			failures = append(failures, LoadFailure{Path: path, Err: outcomes[i].err})
			continue
		}

		n := outcomes[i].note
		if prev, ok := firstPath[n.ID]; ok {
			failures = append(failures, LoadFailure{
				Path: path,
				Err:  fmt.Errorf("duplicate note id %s: already loaded from %s", n.ID, prev),
			})
			continue
		}
		firstPath[n.ID] = path
		notes = append(notes, n)
	}

	return notes, failures
}

func listNoteFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && filepath.Ext(path) == ".md" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}
