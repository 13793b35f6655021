package search

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stashmd/stash/internal/note"
)

func testNote(t testing.TB, id, title string, tags, projects []string, created string, body string) note.Note {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		t.Fatalf("bad created timestamp %q: %v", created, err)
	}
	return note.Note{
		ID:       uuid.MustParse(id),
		Title:    title,
		Tags:     tags,
		Projects: projects,
		Created:  ts.UTC(),
		Body:     body,
	}
}

const (
	idRust = "11111111-1111-4111-8111-111111111111"
	idGo   = "22222222-2222-4222-8222-222222222222"
	idMisc = "33333333-3333-4333-8333-333333333333"
)

func fixtureNotes(t testing.TB) []note.Note {
	return []note.Note{
		testNote(t, idRust, "ownership",
			[]string{"rust"}, []string{"lang-study"},
			"2024-03-01T10:00:00Z", "learned about rust ownership"),
		testNote(t, idGo, "channels",
			[]string{"go"}, nil,
			"2024-03-02T10:00:00Z", "go concurrency patterns"),
		testNote(t, idMisc, "groceries",
			nil, []string{"home"},
			"2024-03-03T10:00:00Z", "milk eggs bread"),
	}
}

func TestBuildIndexesTagsAndProjects(t *testing.T) {
	idx := Build(fixtureNotes(t))

	if idx.Len() != 3 {
		t.Fatalf("Len = %d, want 3", idx.Len())
	}

	rustIDs := idx.IDsForTag("rust")
	if len(rustIDs) != 1 {
		t.Fatalf("rust ids = %v, want one entry", rustIDs)
	}
	if _, ok := rustIDs[uuid.MustParse(idRust)]; !ok {
		t.Fatalf("rust ids missing the rust note: %v", rustIDs)
	}

	homeIDs := idx.IDsForProject("home")
	if _, ok := homeIDs[uuid.MustParse(idMisc)]; !ok {
		t.Fatalf("home ids missing the groceries note: %v", homeIDs)
	}
}

func TestUnknownTokensYieldEmptySets(t *testing.T) {
	idx := Build(fixtureNotes(t))

	if ids := idx.IDsForTag("nope"); len(ids) != 0 {
		t.Fatalf("unknown tag returned ids: %v", ids)
	}
	if ids := idx.IDsForProject("nope"); len(ids) != 0 {
		t.Fatalf("unknown project returned ids: %v", ids)
	}
	if _, ok := idx.Get(uuid.New()); ok {
		t.Fatal("Get returned a note for an unknown id")
	}
}

func TestEveryPostingIDExistsInByID(t *testing.T) {
	idx := Build(fixtureNotes(t))

	for _, tc := range idx.Tags() {
		for id := range idx.IDsForTag(tc.Token) {
			if _, ok := idx.Get(id); !ok {
				t.Fatalf("tag %q references unknown id %s", tc.Token, id)
			}
		}
	}
	for _, tc := range idx.Projects() {
		for id := range idx.IDsForProject(tc.Token) {
			if _, ok := idx.Get(id); !ok {
				t.Fatalf("project %q references unknown id %s", tc.Token, id)
			}
		}
	}
}

func TestBuildIsOrderIndependent(t *testing.T) {
	notes := fixtureNotes(t)
	idx := Build(notes)

	shuffled := append([]note.Note(nil), notes...)
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		other := Build(shuffled)

		if !reflect.DeepEqual(idx.Tags(), other.Tags()) {
			t.Fatalf("tag contents differ after shuffle: %v vs %v", idx.Tags(), other.Tags())
		}
		if !reflect.DeepEqual(idx.Projects(), other.Projects()) {
			t.Fatalf("project contents differ after shuffle: %v vs %v", idx.Projects(), other.Projects())
		}
		if !reflect.DeepEqual(idx.Notes(), other.Notes()) {
			t.Fatalf("note ordering differs after shuffle")
		}
	}
}

func TestNotesAreNewestFirst(t *testing.T) {
	idx := Build(fixtureNotes(t))

	notes := idx.Notes()
	for i := 1; i < len(notes); i++ {
		if notes[i].Created.After(notes[i-1].Created) {
			t.Fatalf("notes out of order at %d: %s after %s", i, notes[i].Created, notes[i-1].Created)
		}
	}
	if notes[0].Title != "groceries" {
		t.Fatalf("newest note first = %q, want groceries", notes[0].Title)
	}
}

func TestTokenCounts(t *testing.T) {
	notes := fixtureNotes(t)
	notes = append(notes, testNote(t, "44444444-4444-4444-8444-444444444444", "more rust",
		[]string{"rust"}, nil, "2024-03-04T10:00:00Z", "borrow checker"))

	idx := Build(notes)

	want := []TokenCount{{Token: "go", Count: 1}, {Token: "rust", Count: 2}}
	if got := idx.Tags(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Tags = %v, want %v", got, want)
	}
}
