package search

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseGrammar(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Query
	}{
		{
			name: "plain terms",
			raw:  "rust ownership",
			want: Query{Terms: []string{"rust", "ownership"}},
		},
		{
			name: "required tag and project",
			raw:  "#rust +lang-study",
			want: Query{RequiredTags: []string{"rust"}, RequiredProjects: []string{"lang-study"}},
		},
		{
			name: "excluded tag and term",
			raw:  "-#draft -boring",
			want: Query{ExcludedTags: []string{"draft"}, ExcludedTerms: []string{"boring"}},
		},
		{
			name: "mixed query",
			raw:  "concurrency #go +webapp -#draft -legacy",
			want: Query{
				Terms:            []string{"concurrency"},
				RequiredTags:     []string{"go"},
				RequiredProjects: []string{"webapp"},
				ExcludedTags:     []string{"draft"},
				ExcludedTerms:    []string{"legacy"},
			},
		},
		{
			name: "quoted span is a literal term",
			raw:  `"#not a tag" rust`,
			want: Query{Terms: []string{"#not a tag", "rust"}},
		},
		{
			name: "quoted phrase keeps spaces",
			raw:  `"borrow checker"`,
			want: Query{Terms: []string{"borrow checker"}},
		},
		{
			name: "tags normalize and dedupe",
			raw:  "#Rust #rust #RUST",
			want: Query{RequiredTags: []string{"rust"}},
		},
		{
			name: "terms keep their case and order",
			raw:  "Rust rust",
			want: Query{Terms: []string{"Rust", "rust"}},
		},
		{
			name: "whitespace only",
			raw:  "  \t  ",
			want: Query{},
		},
		{
			name: "empty input",
			raw:  "",
			want: Query{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw, false)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.raw, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

// -# binds before -, and a -+x token is an excluded term "+x", not a project.
func TestParsePrefixPrecedence(t *testing.T) {
	got, err := Parse("-#draft -+oddball", false)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if want := []string{"draft"}; !reflect.DeepEqual(got.ExcludedTags, want) {
		t.Fatalf("ExcludedTags = %v, want %v", got.ExcludedTags, want)
	}
	if want := []string{"+oddball"}; !reflect.DeepEqual(got.ExcludedTerms, want) {
		t.Fatalf("ExcludedTerms = %v, want %v", got.ExcludedTerms, want)
	}
	if len(got.RequiredProjects) != 0 {
		t.Fatalf("unexpected required projects: %v", got.RequiredProjects)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "unterminated quote", raw: `rust "borrow checker`},
		{name: "bare hash", raw: "rust #"},
		{name: "bare plus", raw: "rust +"},
		{name: "bare minus", raw: "rust -"},
		{name: "bare excluded hash", raw: "rust -#"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw, false)
			if err == nil {
				t.Fatalf("Parse(%q) accepted malformed input", tc.raw)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) error type %T, want *ParseError", tc.raw, err)
			}
		})
	}
}

func TestParseCarriesCaseSensitivity(t *testing.T) {
	q, err := Parse("API", true)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !q.CaseSensitive {
		t.Fatal("expected CaseSensitive to be set")
	}
}

func TestIsEmpty(t *testing.T) {
	empty, err := Parse("   ", false)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !empty.IsEmpty() {
		t.Fatal("whitespace query should be empty")
	}

	full, err := Parse("#rust", false)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if full.IsEmpty() {
		t.Fatal("tag query should not be empty")
	}
}

func TestStringRoundTrip(t *testing.T) {
	inputs := []string{
		"concurrency #go +webapp -#draft -legacy",
		`"borrow checker" #rust`,
		"#rust",
		"plain terms only",
	}

	for _, raw := range inputs {
		original, err := Parse(raw, false)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", raw, err)
		}
		reparsed, err := Parse(original.String(), false)
		if err != nil {
			t.Fatalf("Parse(String(%q)) returned error: %v", raw, err)
		}
		if !reflect.DeepEqual(original, reparsed) {
			t.Fatalf("round trip changed query:\nraw      %q\nstring   %q\noriginal %+v\nreparsed %+v",
				raw, original.String(), original, reparsed)
		}
	}
}
