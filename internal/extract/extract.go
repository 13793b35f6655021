// Package extract derives structured metadata from raw note bodies.
//
// Tags are written inline as #token and projects as +token. A token starts
// with an alphanumeric character and may continue with alphanumerics,
// hyphens, and underscores. A prefix character glued to the end of a word
// (for example "issue#4") does not start a token, and a bare prefix followed
// by whitespace or punctuation is ignored.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	tagPattern     = regexp.MustCompile(`(?:^|[^A-Za-z0-9#+])#([A-Za-z0-9][A-Za-z0-9_-]*)`)
	projectPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9#+])\+([A-Za-z0-9][A-Za-z0-9_-]*)`)
	linkPattern    = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
)

// Tags returns the normalized set of inline #tags found in body.
func Tags(body string) []string {
	return scan(tagPattern, body)
}

// Projects returns the normalized set of inline +projects found in body.
func Projects(body string) []string {
	return scan(projectPattern, body)
}

// Links returns the [[wiki-link]] targets found in body, deduplicated in
// order of first appearance. Targets are free text naming other notes, so
// unlike tags they keep their case.
func Links(body string) []string {
	matches := linkPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var links []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		links = append(links, target)
	}
	return links
}

// MergeLinks unions declared links with links extracted from the body,
// keeping declared order first and dropping duplicates.
func MergeLinks(declared, extracted []string) []string {
	seen := make(map[string]struct{}, len(declared)+len(extracted))
	var links []string
	for _, target := range append(append([]string(nil), declared...), extracted...) {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		links = append(links, target)
	}
	return links
}

func scan(pattern *regexp.Regexp, body string) []string {
	matches := pattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m[1])
	}
	return Normalize(tokens)
}

// Normalize lowercases, deduplicates, and sorts a set of metadata tokens.
// Empty tokens are dropped.
func Normalize(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		lowered := strings.ToLower(strings.TrimSpace(tok))
		if lowered == "" {
			continue
		}
		if _, ok := seen[lowered]; ok {
			continue
		}
		seen[lowered] = struct{}{}
		out = append(out, lowered)
	}

	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Merge unions declared metadata tokens with tokens extracted from the body.
// Both inputs are normalized; a token declared in front matter but absent
// from the body is retained.
func Merge(declared, extracted []string) []string {
	combined := make([]string, 0, len(declared)+len(extracted))
	combined = append(combined, declared...)
	combined = append(combined, extracted...)
	return Normalize(combined)
}

// DeriveTitle produces a fallback title for a note whose front matter omits
// one: the text of the first markdown heading, else the first non-blank line,
// else the empty string.
func DeriveTitle(body string) string {
	source := []byte(body)
	document := goldmark.DefaultParser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = strings.TrimSpace(string(heading.Text(source)))
			if title != "" {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})

	if title != "" {
		return title
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return firstLineTitle(line)
		}
	}
	return ""
}

func firstLineTitle(line string) string {
	line = strings.TrimLeft(line, "# ")
	const maxTitleLen = 80
	if len(line) > maxTitleLen {
		line = strings.TrimSpace(line[:maxTitleLen])
	}
	return line
}
