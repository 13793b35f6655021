// Package fzf provides the interactive fuzzy picker behind `stash open`.
package fzf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/muesli/termenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/stashmd/stash/internal/config"
)

// FuzzyFinder encapsulates the fuzzy finder functionality
type FuzzyFinder struct {
	cfg      *config.Config
	notesDir string
	Header   string
	files    []string
}

func NewFuzzyFinder(notesDir string, cfg *config.Config, header string) *FuzzyFinder {
	return &FuzzyFinder{notesDir: notesDir, cfg: cfg, Header: header}
}

// Run finds a note and either returns its path or opens it in the editor.
func (f *FuzzyFinder) Run(execute bool) (string, error) {
	return f.RunWithQuery("", execute)
}

func (f *FuzzyFinder) RunWithQuery(query string, execute bool) (string, error) {
	idx, err := f.find(query)
	if err != nil {
		f.handleFuzzySelectError(err)
		return "", err
	}

	if idx == -1 {
		return "", fmt.Errorf("no file selected")
	}

	if execute {
		return "", f.openInEditor(f.files[idx])
	}
	return f.files[idx], nil
}

func (f *FuzzyFinder) find(query string) (int, error) {
	files, err := f.listFiles()
	if err != nil {
		return -1, fmt.Errorf("error listing files: %w", err)
	}

	f.files = files
	return f.fuzzySelectFile(query)
}

// listFiles walks the notes directory gathering markdown files for searching
func (f *FuzzyFinder) listFiles() ([]string, error) {
	var files []string
	err := filepath.Walk(
		f.notesDir,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if strings.HasPrefix(filepath.Base(path), ".") {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !info.IsDir() && filepath.Ext(path) == ".md" {
				files = append(files, path)
			}
			return nil
		},
	)
	return files, err
}

// fuzzySelectFile performs fuzzy selection on files based on query
func (f *FuzzyFinder) fuzzySelectFile(query string) (int, error) {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderMarkdownPreview),
	}

	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	labels := make([]string, len(f.files))
	for i, file := range f.files {
		content, err := os.ReadFile(file)
		if err != nil {
			return -1, err
		}

		title, tags := parseFrontMatter(content)
		if title == "" {
			title = filepath.Base(file)
		}

		if len(tags) == 0 {
			labels[i] = fmt.Sprintf("%s [No tags]", title)
		} else {
			labels[i] = fmt.Sprintf("%s [Tags: %s]", title, strings.Join(tags, ", "))
		}
	}

	return fuzzyfinder.Find(f.files, func(i int) string {
		return labels[i]
	}, options...)
}

var frontMatterBlock = regexp.MustCompile(`(?ms)^---\n(.+?)\n---`)

// parseFrontMatter extracts title and tags for the picker labels. Parse
// problems degrade to filename labels rather than failing the picker.
func parseFrontMatter(content []byte) (string, []string) {
	match := frontMatterBlock.FindSubmatch(content)
	if len(match) < 2 {
		return "", nil
	}

	var data struct {
		Title string   `yaml:"title"`
		Tags  []string `yaml:"tags"`
	}
	if err := yaml.Unmarshal(match[1], &data); err != nil {
		return "", nil
	}

	return strings.TrimSpace(data.Title), data.Tags
}

func (f *FuzzyFinder) renderMarkdownPreview(i, w, h int) string {
	if i == -1 {
		return ""
	}

	content, err := os.ReadFile(f.files[i])
	if err != nil {
		return "Error reading file"
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(100),
		glamour.WithColorProfile(termenv.ANSI256),
	)

	markdown, err := r.Render(string(content))
	if err != nil {
		return "Error rendering markdown"
	}

	return markdown
}

// handleFuzzySelectError prints appropriate messages for fuzzy select errors
func (f *FuzzyFinder) handleFuzzySelectError(err error) {
	if err == fuzzyfinder.ErrAbort {
		fmt.Println("No file selected")
	} else {
		fmt.Println("Error selecting file:", err)
	}
}

// openInEditor opens the selected note in the configured editor.
func (f *FuzzyFinder) openInEditor(path string) error {
	editor := strings.TrimSpace(viper.GetString("editor"))
	if editor == "" {
		editor = f.cfg.Editor
	}
	if editor == "" {
		editor = "nvim"
	}

	cmdArgs := []string{editor, path}
	if f.cfg.EditorArgs != "" {
		cmdArgs = append(cmdArgs, strings.Fields(f.cfg.EditorArgs)...)
	}

	cmd := exec.Command(cmdArgs[0], cmdArgs[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}
