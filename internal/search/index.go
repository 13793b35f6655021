// Package search implements the note index and query engine: an in-memory
// index over loaded notes, a query grammar, and a deterministic matcher and
// ranker. The index is rebuilt from disk on every invocation and never
// persisted.
package search

import (
	"sort"

	"github.com/google/uuid"

	"github.com/stashmd/stash/internal/note"
)

// Index holds the per-invocation lookup structures. It is a pure function of
// the loaded note set; no state is carried between runs.
type Index struct {
	byID      map[uuid.UUID]note.Note
	byTag     map[string]map[uuid.UUID]struct{}
	byProject map[string]map[uuid.UUID]struct{}
}

// Build constructs an index from the loaded notes. Build is total: duplicate
// ids (already reported by the loader) keep the first occurrence.
func Build(notes []note.Note) *Index {
	idx := &Index{
		byID:      make(map[uuid.UUID]note.Note, len(notes)),
		byTag:     make(map[string]map[uuid.UUID]struct{}),
		byProject: make(map[string]map[uuid.UUID]struct{}),
	}

	for _, n := range notes {
		if _, ok := idx.byID[n.ID]; ok {
			continue
		}
		idx.byID[n.ID] = n

		for _, tag := range n.Tags {
			if idx.byTag[tag] == nil {
				idx.byTag[tag] = make(map[uuid.UUID]struct{})
			}
			idx.byTag[tag][n.ID] = struct{}{}
		}
		for _, project := range n.Projects {
			if idx.byProject[project] == nil {
				idx.byProject[project] = make(map[uuid.UUID]struct{})
			}
			idx.byProject[project][n.ID] = struct{}{}
		}
	}

	return idx
}

// Len reports the number of indexed notes.
func (idx *Index) Len() int {
	return len(idx.byID)
}

// Get returns the indexed note for id.
func (idx *Index) Get(id uuid.UUID) (note.Note, bool) {
	n, ok := idx.byID[id]
	return n, ok
}

// IDsForTag returns the ids of notes carrying tag. Unknown tags yield an
// empty set, not an error.
func (idx *Index) IDsForTag(tag string) map[uuid.UUID]struct{} {
	return copyIDSet(idx.byTag[tag])
}

// IDsForProject returns the ids of notes referencing project.
func (idx *Index) IDsForProject(project string) map[uuid.UUID]struct{} {
	return copyIDSet(idx.byProject[project])
}

// Notes returns every indexed note, newest first. Ties on the creation
// timestamp fall back to id ordering so the output is stable.
func (idx *Index) Notes() []note.Note {
	notes := make([]note.Note, 0, len(idx.byID))
	for _, n := range idx.byID {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].Created.Equal(notes[j].Created) {
			return notes[i].Created.After(notes[j].Created)
		}
		return notes[i].ID.String() < notes[j].ID.String()
	})
	return notes
}

// TokenCount pairs a tag or project token with the number of notes using it.
type TokenCount struct {
	Token string
	Count int
}

// Tags lists every indexed tag with usage counts, sorted by token.
func (idx *Index) Tags() []TokenCount {
	return countTokens(idx.byTag)
}

// Projects lists every indexed project with usage counts, sorted by token.
func (idx *Index) Projects() []TokenCount {
	return countTokens(idx.byProject)
}

func countTokens(sets map[string]map[uuid.UUID]struct{}) []TokenCount {
	out := make([]TokenCount, 0, len(sets))
	for token, ids := range sets {
		out = append(out, TokenCount{Token: token, Count: len(ids)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Token < out[j].Token
	})
	return out
}

func copyIDSet(ids map[uuid.UUID]struct{}) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for id := range ids {
		out[id] = struct{}{}
	}
	return out
}
