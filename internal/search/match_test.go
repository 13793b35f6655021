package search

import (
	"testing"

	"github.com/stashmd/stash/internal/note"
)

func matchFixture(t testing.TB) *Index {
	return Build([]note.Note{
		testNote(t, idRust, "ownership",
			[]string{"rust"}, []string{"lang-study"},
			"2024-03-01T10:00:00Z", "learned about rust ownership and concurrency"),
		testNote(t, idGo, "channels",
			[]string{"go"}, nil,
			"2024-03-02T10:00:00Z", "go concurrency patterns with channels"),
		testNote(t, idMisc, "groceries",
			nil, []string{"home"},
			"2024-03-03T10:00:00Z", "milk eggs bread"),
	})
}

func mustParse(t testing.TB, raw string, caseSensitive bool) Query {
	t.Helper()
	q, err := Parse(raw, caseSensitive)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", raw, err)
	}
	return q
}

func resultTitles(results []Result) []string {
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Note.Title
	}
	return titles
}

func TestMatchByTag(t *testing.T) {
	idx := matchFixture(t)

	results := Match(idx, mustParse(t, "#rust", false))
	if len(results) != 1 {
		t.Fatalf("results = %v, want only the rust note", resultTitles(results))
	}
	if results[0].Note.Title != "ownership" {
		t.Fatalf("matched %q, want ownership", results[0].Note.Title)
	}
}

func TestMatchTermWithExcludedTag(t *testing.T) {
	idx := matchFixture(t)

	// Both the rust and go notes mention concurrency; -#rust keeps only go.
	results := Match(idx, mustParse(t, "concurrency -#rust", false))
	if len(results) != 1 {
		t.Fatalf("results = %v, want only the go note", resultTitles(results))
	}
	if results[0].Note.Title != "channels" {
		t.Fatalf("matched %q, want channels", results[0].Note.Title)
	}
}

func TestMatchEmptyQueryReturnsEverything(t *testing.T) {
	idx := matchFixture(t)

	results := Match(idx, Query{})
	if len(results) != idx.Len() {
		t.Fatalf("got %d results, want %d", len(results), idx.Len())
	}
	// Scores tie at zero, so newest note comes first.
	if results[0].Note.Title != "groceries" {
		t.Fatalf("first result %q, want groceries", results[0].Note.Title)
	}
}

func TestMatchExclusionOnlyQuery(t *testing.T) {
	idx := matchFixture(t)

	results := Match(idx, mustParse(t, "-#rust", false))
	if len(results) != 2 {
		t.Fatalf("results = %v, want everything but the rust note", resultTitles(results))
	}
	for _, r := range results {
		if r.Note.Title == "ownership" {
			t.Fatal("excluded note survived the match")
		}
	}
}

func TestMatchExcludedTermDropsNote(t *testing.T) {
	idx := matchFixture(t)

	results := Match(idx, mustParse(t, "concurrency -channels", false))
	if len(results) != 1 {
		t.Fatalf("results = %v, want only the rust note", resultTitles(results))
	}
	if results[0].Note.Title != "ownership" {
		t.Fatalf("matched %q, want ownership", results[0].Note.Title)
	}
}

func TestMatchEmptyIndex(t *testing.T) {
	if results := Match(Build(nil), mustParse(t, "anything", false)); len(results) != 0 {
		t.Fatalf("empty index produced results: %v", resultTitles(results))
	}
	if results := Match(nil, Query{}); len(results) != 0 {
		t.Fatalf("nil index produced results: %v", resultTitles(results))
	}
}

func TestMatchCaseSensitivity(t *testing.T) {
	idx := Build([]note.Note{
		testNote(t, idRust, "API design",
			nil, nil, "2024-03-01T10:00:00Z", "designing the public API surface"),
		testNote(t, idGo, "api scratchpad",
			nil, nil, "2024-03-02T10:00:00Z", "lowercase api notes"),
	})

	insensitive := Match(idx, mustParse(t, "API", false))
	if len(insensitive) != 2 {
		t.Fatalf("case-insensitive results = %v, want both notes", resultTitles(insensitive))
	}

	sensitive := Match(idx, mustParse(t, "API", true))
	if len(sensitive) != 1 {
		t.Fatalf("case-sensitive results = %v, want one note", resultTitles(sensitive))
	}
	if sensitive[0].Note.Title != "API design" {
		t.Fatalf("case-sensitive match = %q, want the uppercase note", sensitive[0].Note.Title)
	}
}

func TestMatchCaseSensitiveFuzzyNonASCII(t *testing.T) {
	idx := Build([]note.Note{
		testNote(t, idRust, "Fenster",
			nil, nil, "2024-03-01T10:00:00Z", "die Größe vom Fenster anpassen"),
	})

	// "Gröe" is not a substring of "Größe" but covers 4 of its 5 runes.
	results := Match(idx, mustParse(t, "Gröe", true))
	if len(results) != 1 {
		t.Fatalf("results = %v, want the Größe note", resultTitles(results))
	}

	if results := Match(idx, mustParse(t, "GRÖE", true)); len(results) != 0 {
		t.Fatalf("case mismatch matched anyway: %v", resultTitles(results))
	}
}

func TestMatchRanksTitleHitsAboveBodyHits(t *testing.T) {
	idx := Build([]note.Note{
		testNote(t, idRust, "channels deep dive",
			nil, nil, "2024-03-01T10:00:00Z", "notes on select loops"),
		testNote(t, idGo, "concurrency",
			nil, nil, "2024-03-05T10:00:00Z", "mostly about channels"),
	})

	results := Match(idx, mustParse(t, "channels", false))
	if len(results) != 2 {
		t.Fatalf("results = %v, want both notes", resultTitles(results))
	}
	if results[0].Note.Title != "channels deep dive" {
		t.Fatalf("title hit ranked below body hit: %v", resultTitles(results))
	}
	if results[0].Score <= results[1].Score {
		t.Fatalf("title score %v not above body score %v", results[0].Score, results[1].Score)
	}
}

func TestMatchTieBreaksByCreatedThenID(t *testing.T) {
	idx := Build([]note.Note{
		testNote(t, idRust, "alpha channels",
			nil, nil, "2024-03-01T10:00:00Z", "x"),
		testNote(t, idGo, "beta channels",
			nil, nil, "2024-03-02T10:00:00Z", "x"),
		testNote(t, idMisc, "gamma channels",
			nil, nil, "2024-03-02T10:00:00Z", "x"),
	})

	results := Match(idx, mustParse(t, "channels", false))
	if len(results) != 3 {
		t.Fatalf("results = %v, want all three", resultTitles(results))
	}
	// Same score everywhere: newest first, then id ascending among equals.
	want := []string{"beta channels", "gamma channels", "alpha channels"}
	for i, title := range want {
		if results[i].Note.Title != title {
			t.Fatalf("order = %v, want %v", resultTitles(results), want)
		}
	}
}

func TestMatchFuzzyTypoWithinThreshold(t *testing.T) {
	idx := matchFixture(t)

	// "ownersip" covers 8 of ownership's 9 runes, above the similarity floor.
	results := Match(idx, mustParse(t, "ownersip", false))
	if len(results) != 1 {
		t.Fatalf("results = %v, want the ownership note", resultTitles(results))
	}
	if results[0].Note.Title != "ownership" {
		t.Fatalf("matched %q, want ownership", results[0].Note.Title)
	}
	if results[0].Score >= titleExactScore {
		t.Fatalf("fuzzy score %v should stay below an exact title hit", results[0].Score)
	}
}

func TestMatchFuzzyBelowThresholdDrops(t *testing.T) {
	idx := matchFixture(t)

	// "onsp" is a subsequence of "ownership" but covers under 60% of it.
	results := Match(idx, mustParse(t, "onsp", false))
	if len(results) != 0 {
		t.Fatalf("below-threshold term matched: %v", resultTitles(results))
	}
}

func TestMatchShortTermHitsAsSubstring(t *testing.T) {
	idx := matchFixture(t)

	// "own" is too short for a fuzzy hit on "ownership" but is an exact
	// substring, which always counts.
	results := Match(idx, mustParse(t, "own", false))
	if len(results) != 1 {
		t.Fatalf("results = %v, want the ownership note", resultTitles(results))
	}
	if results[0].Score != titleExactScore {
		t.Fatalf("substring score = %v, want %v", results[0].Score, titleExactScore)
	}
}

func TestMatchQuotedPhraseIsSubstringOnly(t *testing.T) {
	idx := Build([]note.Note{
		testNote(t, idRust, "borrow checker",
			nil, nil, "2024-03-01T10:00:00Z", "fighting the borrow checker again"),
		testNote(t, idGo, "scattered words",
			nil, nil, "2024-03-02T10:00:00Z", "borrow a book, checker board"),
	})

	results := Match(idx, mustParse(t, `"borrow checker"`, false))
	if len(results) != 1 {
		t.Fatalf("results = %v, want only the contiguous phrase", resultTitles(results))
	}
	if results[0].Note.Title != "borrow checker" {
		t.Fatalf("matched %q, want the phrase note", results[0].Note.Title)
	}
}

func TestMatchAllTermsRequired(t *testing.T) {
	idx := matchFixture(t)

	results := Match(idx, mustParse(t, "concurrency milk", false))
	if len(results) != 0 {
		t.Fatalf("results = %v, want none since no note has both terms", resultTitles(results))
	}
}
