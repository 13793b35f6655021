package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/stashmd/stash/internal/note"
)

// fuzzyThreshold is the fixed similarity floor for approximate term matches:
// the term must cover at least this share of the matched word. It is a
// release-level constant, not configuration.
const fuzzyThreshold = 0.6

// Scoring weights. Exact substring hits outrank fuzzy hits, and title hits
// outrank body hits.
const (
	titleExactScore = 100.0
	bodyExactScore  = 60.0
	titleFuzzyScore = 50.0
	bodyFuzzyScore  = 30.0
)

// Result pairs a matched note with its relevance score.
type Result struct {
	Note  note.Note
	Score float64
}

// Match evaluates q against idx and returns matching notes ordered by score
// descending, then creation time descending. It holds no state between
// calls; invoking it repeatedly with the same inputs yields the same output.
func Match(idx *Index, q Query) []Result {
	if idx == nil || idx.Len() == 0 {
		return nil
	}

	candidates := candidateIDs(idx, q)

	results := make([]Result, 0, len(candidates))
	for id := range candidates {
		n, ok := idx.Get(id)
		if !ok {
			continue
		}
		if hasAnyToken(n.Tags, q.ExcludedTags) {
			continue
		}

		score, ok := scoreNote(n, q)
		if !ok {
			continue
		}
		results = append(results, Result{Note: n, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Note.Created.Equal(results[j].Note.Created) {
			return results[i].Note.Created.After(results[j].Note.Created)
		}
		return results[i].Note.ID.String() < results[j].Note.ID.String()
	})
	return results
}

// candidateIDs intersects the tag and project postings. With no categorical
// constraints every indexed note is a candidate.
func candidateIDs(idx *Index, q Query) map[uuid.UUID]struct{} {
	if len(q.RequiredTags) == 0 && len(q.RequiredProjects) == 0 {
		all := make(map[uuid.UUID]struct{}, idx.Len())
		for _, n := range idx.Notes() {
			all[n.ID] = struct{}{}
		}
		return all
	}

	var candidates map[uuid.UUID]struct{}
	for _, tag := range q.RequiredTags {
		candidates = intersect(candidates, idx.IDsForTag(tag))
		if len(candidates) == 0 {
			return nil
		}
	}
	for _, project := range q.RequiredProjects {
		candidates = intersect(candidates, idx.IDsForProject(project))
		if len(candidates) == 0 {
			return nil
		}
	}
	return candidates
}

func intersect(acc, next map[uuid.UUID]struct{}) map[uuid.UUID]struct{} {
	if acc == nil {
		return next
	}
	out := make(map[uuid.UUID]struct{})
	for id := range acc {
		if _, ok := next[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func hasAnyToken(have, exclude []string) bool {
	if len(have) == 0 || len(exclude) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, tok := range have {
		set[tok] = struct{}{}
	}
	for _, tok := range exclude {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}

// scoreNote computes the free-text score for a candidate. Every required
// term must match the title or body at the threshold or the note is dropped;
// any excluded term matching at the threshold also drops the note.
func scoreNote(n note.Note, q Query) (float64, bool) {
	for _, term := range q.ExcludedTerms {
		if _, _, ok := matchText(term, n.Title, q.CaseSensitive); ok {
			return 0, false
		}
		if _, _, ok := matchText(term, n.Body, q.CaseSensitive); ok {
			return 0, false
		}
	}

	var total float64
	for _, term := range q.Terms {
		titleScore := fieldScore(term, n.Title, q.CaseSensitive, titleExactScore, titleFuzzyScore)
		bodyScore := fieldScore(term, n.Body, q.CaseSensitive, bodyExactScore, bodyFuzzyScore)

		best := titleScore
		if bodyScore > best {
			best = bodyScore
		}
		if best == 0 {
			return 0, false
		}
		total += best
	}
	return total, true
}

func fieldScore(term, text string, caseSensitive bool, exactWeight, fuzzyWeight float64) float64 {
	closeness, exact, ok := matchText(term, text, caseSensitive)
	if !ok {
		return 0
	}
	if exact {
		return exactWeight
	}
	return fuzzyWeight * closeness
}

// matchText reports whether term matches text, preferring exact substring
// containment and falling back to subsequence matching against individual
// words. The returned closeness is 1 for exact hits and the term/word length
// ratio for fuzzy hits.
func matchText(term, text string, caseSensitive bool) (closeness float64, exact, ok bool) {
	if term == "" || text == "" {
		return 0, false, false
	}

	haystack, needle := text, term
	if !caseSensitive {
		haystack = strings.ToLower(text)
		needle = strings.ToLower(term)
	}
	if strings.Contains(haystack, needle) {
		return 1, true, true
	}

	// Quoted phrases only match as substrings.
	if strings.ContainsAny(term, " \t") {
		return 0, false, false
	}

	words := splitWords(text)
	for _, m := range fuzzy.Find(term, words) {
		word := words[m.Index]
		ratio := float64(len([]rune(term))) / float64(len([]rune(word)))
		if ratio < fuzzyThreshold || ratio > 1 {
			continue
		}
		if caseSensitive && !matchedIndexesExact(term, word, m.MatchedIndexes) {
			continue
		}
		return ratio, false, true
	}
	return 0, false, false
}

// matchedIndexesExact verifies a case-insensitive fuzzy match holds up
// rune-for-rune, for case-sensitive queries. Matched indexes address runes,
// not bytes.
func matchedIndexesExact(term, word string, indexes []int) bool {
	termRunes := []rune(term)
	wordRunes := []rune(word)
	if len(indexes) != len(termRunes) {
		return false
	}
	for i, idx := range indexes {
		if idx >= len(wordRunes) || wordRunes[idx] != termRunes[i] {
			return false
		}
	}
	return true
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '_'
	})
}
