package search

import (
	"fmt"
	"strings"

	"github.com/stashmd/stash/internal/extract"
)

// Query is the parsed, transient form of one search string.
type Query struct {
	// Terms are required free-text tokens, matched fuzzily against the
	// note title and body in input order.
	Terms []string
	// RequiredTags and RequiredProjects must all be present on a note.
	RequiredTags     []string
	RequiredProjects []string
	// ExcludedTags drop any note carrying one of them; ExcludedTerms drop
	// any note whose text matches one at the fuzzy threshold.
	ExcludedTags  []string
	ExcludedTerms []string
	// CaseSensitive switches free-text matching to byte-exact comparison.
	// Tag and project identity is always case-insensitive.
	CaseSensitive bool
}

// IsEmpty reports whether the query carries no constraints at all. An empty
// query matches every note.
func (q Query) IsEmpty() bool {
	return len(q.Terms) == 0 &&
		len(q.RequiredTags) == 0 &&
		len(q.RequiredProjects) == 0 &&
		len(q.ExcludedTags) == 0 &&
		len(q.ExcludedTerms) == 0
}

// ParseError rejects a structurally invalid search string. No partial query
// is ever executed.
type ParseError struct {
	Input  string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("invalid query %q: token %q %s", e.Input, e.Token, e.Reason)
	}
	return fmt.Sprintf("invalid query %q: %s", e.Input, e.Reason)
}

// Parse compiles a raw search string into a Query.
//
// Grammar, applied to whitespace-separated tokens:
//
//	"quoted span"  literal free-text term, prefixes not interpreted
//	-#tag          excluded tag
//	-term          excluded free-text term
//	#tag           required tag
//	+project       required project
//	term           required free-text term
//
// The prefix order above is authoritative: a token matching several rules is
// classified by the first one that applies.
func Parse(raw string, caseSensitive bool) (Query, error) {
	tokens, err := tokenize(raw)
	if err != nil {
		return Query{}, err
	}

	q := Query{CaseSensitive: caseSensitive}
	for _, tok := range tokens {
		if tok.quoted {
			q.Terms = append(q.Terms, tok.text)
			continue
		}

		switch {
		case strings.HasPrefix(tok.text, "-#"):
			tag, err := classifyToken(raw, tok.text, tok.text[2:])
			if err != nil {
				return Query{}, err
			}
			q.ExcludedTags = appendToken(q.ExcludedTags, tag)
		case strings.HasPrefix(tok.text, "-"):
			term, err := classifyToken(raw, tok.text, tok.text[1:])
			if err != nil {
				return Query{}, err
			}
			q.ExcludedTerms = append(q.ExcludedTerms, term)
		case strings.HasPrefix(tok.text, "#"):
			tag, err := classifyToken(raw, tok.text, tok.text[1:])
			if err != nil {
				return Query{}, err
			}
			q.RequiredTags = appendToken(q.RequiredTags, tag)
		case strings.HasPrefix(tok.text, "+"):
			project, err := classifyToken(raw, tok.text, tok.text[1:])
			if err != nil {
				return Query{}, err
			}
			q.RequiredProjects = appendToken(q.RequiredProjects, project)
		default:
			q.Terms = append(q.Terms, tok.text)
		}
	}

	return q, nil
}

// classifyToken validates the remainder of a prefixed token.
func classifyToken(input, token, remainder string) (string, error) {
	if remainder == "" {
		return "", &ParseError{Input: input, Token: token, Reason: "has a prefix but no value"}
	}
	return remainder, nil
}

// appendToken inserts a normalized tag/project token, keeping set semantics.
func appendToken(set []string, token string) []string {
	return extract.Merge(set, []string{token})
}

type token struct {
	text   string
	quoted bool
}

func tokenize(raw string) ([]token, error) {
	var tokens []token
	runes := []rune(raw)

	for i := 0; i < len(runes); {
		switch {
		case isSpace(runes[i]):
			i++
		case runes[i] == '"':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '"' {
					end = j
					break
				}
			}
			if end == -1 {
				return nil, &ParseError{Input: raw, Reason: "has an unterminated quote"}
			}
			text := string(runes[i+1 : end])
			if strings.TrimSpace(text) != "" {
				tokens = append(tokens, token{text: text, quoted: true})
			}
			i = end + 1
		default:
			start := i
			for i < len(runes) && !isSpace(runes[i]) && runes[i] != '"' {
				i++
			}
			tokens = append(tokens, token{text: string(runes[start:i])})
		}
	}

	return tokens, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// String re-serializes the query into a string that parses back to an
// equivalent Query.
func (q Query) String() string {
	var parts []string
	for _, tag := range q.RequiredTags {
		parts = append(parts, "#"+tag)
	}
	for _, project := range q.RequiredProjects {
		parts = append(parts, "+"+project)
	}
	for _, tag := range q.ExcludedTags {
		parts = append(parts, "-#"+tag)
	}
	for _, term := range q.ExcludedTerms {
		// Excluded terms come from bare -tokens and never contain spaces.
		parts = append(parts, "-"+term)
	}
	for _, term := range q.Terms {
		parts = append(parts, quoteIfNeeded(term))
	}
	return strings.Join(parts, " ")
}

func quoteIfNeeded(term string) string {
	if strings.ContainsAny(term, " \t\n\r\"") || strings.ContainsAny(term[:1], "#+-") {
		return `"` + strings.ReplaceAll(term, `"`, ``) + `"`
	}
	return term
}
