// Package note defines the stash note model and its on-disk markdown
// representation: a YAML front matter header followed by the body.
package note

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/stashmd/stash/internal/extract"
)

// Capture sources recorded in front matter.
const (
	SourceQuickCapture = "QuickCapture"
	SourceEditor       = "Editor"
	SourceUI           = "UI"
)

var (
	ErrMissingFrontMatter = errors.New("note is missing a front matter block")
	ErrInvalidFrontMatter = errors.New("note front matter is not terminated")
)

// Note is an immutable snapshot of a note file for one load cycle.
// LinksTo holds [[wiki-link]] targets as written, naming other notes by
// title rather than by id.
type Note struct {
	ID         uuid.UUID
	Title      string
	Tags       []string
	Projects   []string
	LinksTo    []string
	Created    time.Time
	Updated    *time.Time
	Source     string
	Body       string
	SourcePath string
}

// frontMatter is the wire form of the metadata header. Timestamps stay as
// strings so loading can be tolerant of the formats other editors write.
type frontMatter struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title,omitempty"`
	Tags     []string `yaml:"tags"`
	Projects []string `yaml:"projects"`
	LinksTo  []string `yaml:"links_to,omitempty"`
	Created  string   `yaml:"created"`
	Updated  string   `yaml:"updated,omitempty"`
	Source   string   `yaml:"source,omitempty"`
}

var frontMatterPattern = regexp.MustCompile(`(?ms)^---\s*\n(.*?)\n---\s*\n?`)

func splitFrontMatter(data []byte) ([]byte, []byte, error) {
	if !strings.HasPrefix(strings.TrimLeft(string(data), "\r\n"), "---") {
		return nil, nil, ErrMissingFrontMatter
	}

	loc := frontMatterPattern.FindSubmatchIndex(data)
	if len(loc) < 4 {
		return nil, nil, ErrInvalidFrontMatter
	}
	return data[loc[2]:loc[3]], data[loc[1]:], nil
}

// FromMarkdown parses a serialized note. Declared tags and projects are
// unioned with the ones extracted from the body, and a missing title is
// derived from the body content.
func FromMarkdown(data []byte) (Note, error) {
	fmBytes, body, err := splitFrontMatter(data)
	if err != nil {
		return Note{}, err
	}

	var fm frontMatter
	if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
		return Note{}, fmt.Errorf("parse front matter: %w", err)
	}

	if strings.TrimSpace(fm.ID) == "" {
		return Note{}, errors.New("front matter is missing required field \"id\"")
	}
	id, err := uuid.Parse(strings.TrimSpace(fm.ID))
	if err != nil {
		return Note{}, fmt.Errorf("front matter field \"id\": %w", err)
	}

	if strings.TrimSpace(fm.Created) == "" {
		return Note{}, errors.New("front matter is missing required field \"created\"")
	}
	created, err := dateparse.ParseAny(fm.Created)
	if err != nil {
		return Note{}, fmt.Errorf("front matter field \"created\": %w", err)
	}

	var updated *time.Time
	if strings.TrimSpace(fm.Updated) != "" && fm.Updated != "null" {
		ts, err := dateparse.ParseAny(fm.Updated)
		if err != nil {
			return Note{}, fmt.Errorf("front matter field \"updated\": %w", err)
		}
		ts = ts.UTC()
		updated = &ts
	}

	bodyText := string(body)
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = extract.DeriveTitle(bodyText)
	}

	return Note{
		ID:         id,
		Title:      title,
		Tags:       extract.Merge(fm.Tags, extract.Tags(bodyText)),
		Projects:   extract.Merge(fm.Projects, extract.Projects(bodyText)),
		LinksTo:    extract.MergeLinks(fm.LinksTo, extract.Links(bodyText)),
		Created:    created.UTC(),
		Updated:    updated,
		Source:     fm.Source,
		Body:       bodyText,
	}, nil
}

// ToMarkdown serializes the note back to its on-disk form.
func (n Note) ToMarkdown() ([]byte, error) {
	fm := frontMatter{
		ID:       n.ID.String(),
		Title:    n.Title,
		Tags:     n.Tags,
		Projects: n.Projects,
		Created:  n.Created.UTC().Format(time.RFC3339),
		Source:   n.Source,
	}
	if n.Updated != nil {
		fm.Updated = n.Updated.UTC().Format(time.RFC3339)
	}
	fm.LinksTo = n.LinksTo

	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n")
	b.WriteString(n.Body)
	return []byte(b.String()), nil
}

// LoadFile reads and parses a single note file.
func LoadFile(path string) (Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Note{}, err
	}

	n, err := FromMarkdown(data)
	if err != nil {
		return Note{}, err
	}
	n.SourcePath = filepath.Clean(path)
	if n.Title == "" {
		base := filepath.Base(path)
		n.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return n, nil
}

// NewQuickCapture builds a note for freshly captured content. The id is
// generated once here and never regenerated afterwards.
func NewQuickCapture(content, title string) Note {
	return Note{
		ID:       uuid.New(),
		Title:    strings.TrimSpace(title),
		Tags:     extract.Tags(content),
		Projects: extract.Projects(content),
		LinksTo:  extract.Links(content),
		Created:  time.Now().UTC(),
		Source:   SourceQuickCapture,
		Body:     content,
	}
}

// Filename returns the on-disk name for the note, prefixed with the creation
// timestamp so a directory listing sorts chronologically.
func (n Note) Filename() string {
	return fmt.Sprintf("%s-%s.md", n.Created.UTC().Format("20060102T150405"), n.ID)
}

// Save writes the note into dir, creating the directory when needed.
func (n *Note) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create notes directory: %w", err)
	}

	path := filepath.Join(dir, n.Filename())
	data, err := n.ToMarkdown()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write note: %w", err)
	}

	n.SourcePath = path
	return path, nil
}
