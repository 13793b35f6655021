// Package notes implements the interactive terminal browser. It owns no
// search logic: every keystroke round-trips through the query parser and
// matcher, and disk changes rebuild the index through the notes watcher.
package notes

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/viper"

	"github.com/stashmd/stash/internal/search"
	"github.com/stashmd/stash/internal/state"
)

type BrowserModel struct {
	state   *state.State
	watcher *state.NotesWatcher
	keys    *browserKeyMap

	input   textinput.Model
	list    list.Model
	preview viewport.Model

	index      *search.Index
	loadErrors int
	status     string

	width        int
	height       int
	previewFocus bool
}

func NewBrowserModel(s *state.State) (*BrowserModel, error) {
	input := textinput.New()
	input.Placeholder = "search: #tag +project text -#excluded"
	input.Prompt = "/ "
	input.Focus()

	delegate := list.NewDefaultDelegate()
	resultList := list.New(nil, delegate, 0, 0)
	resultList.Title = "stash"
	resultList.Styles.Title = titleStyle
	resultList.SetShowFilter(false)
	resultList.SetFilteringEnabled(false)
	resultList.SetShowHelp(false)

	keys := newBrowserKeyMap()
	resultList.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.openNote, keys.toggleFocus}
	}

	watcher, err := state.NewNotesWatcher(s.NotesDir)
	if err != nil {
		// A missing notes directory is the first-run case; browse an
		// empty result set without live reload.
		watcher = nil
	}

	m := &BrowserModel{
		state:   s,
		watcher: watcher,
		keys:    keys,
		input:   input,
		list:    resultList,
		preview: viewport.New(0, 0),
	}
	m.reload()
	return m, nil
}

func (m *BrowserModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Start())
	}
	return tea.Batch(cmds...)
}

func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case state.NotesChangedMsg:
		m.reload()
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.Start())
		}

	case state.NotesWatcherErrMsg:
		m.status = fmt.Sprintf("watcher error: %v", msg.Err)
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.Start())
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			m.closeWatcher()
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggleFocus):
			m.previewFocus = !m.previewFocus
			return m, nil
		case key.Matches(msg, m.keys.openNote):
			return m, m.openSelected()
		}

		if m.previewFocus {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}

		var inputCmd tea.Cmd
		m.input, inputCmd = m.input.Update(msg)
		cmds = append(cmds, inputCmd)

		var listCmd tea.Cmd
		m.list, listCmd = m.list.Update(msg)
		cmds = append(cmds, listCmd)

		m.runQuery()
		m.renderPreview()
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	m.renderPreview()

	return m, tea.Batch(cmds...)
}

// reload rebuilds the index from disk and re-runs the current query.
func (m *BrowserModel) reload() {
	idx, failures := m.state.BuildIndex()
	m.index = idx
	m.loadErrors = len(failures)
	m.runQuery()
	m.renderPreview()
}

// runQuery parses the current input and refreshes the result list. Parse
// errors keep the previous results and surface in the status line.
func (m *BrowserModel) runQuery() {
	raw := m.input.Value()

	q, err := search.Parse(raw, m.state.Config.Search.CaseSensitive)
	if err != nil {
		m.status = err.Error()
		return
	}

	results := search.Match(m.index, q)

	items := make([]list.Item, 0, len(results))
	for _, r := range results {
		items = append(items, newResultItem(r))
	}
	m.list.SetItems(items)

	m.status = fmt.Sprintf("%d of %d notes", len(results), m.index.Len())
	if m.loadErrors > 0 {
		m.status += fmt.Sprintf(" · %d load errors", m.loadErrors)
	}
}

func (m *BrowserModel) renderPreview() {
	item, ok := m.list.SelectedItem().(resultItem)
	if !ok {
		m.preview.SetContent("")
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.preview.Width),
	)
	if err != nil {
		m.preview.SetContent(item.result.Note.Body)
		return
	}

	rendered, err := renderer.Render(item.result.Note.Body)
	if err != nil {
		m.preview.SetContent(item.result.Note.Body)
		return
	}
	m.preview.SetContent(rendered)
}

func (m *BrowserModel) openSelected() tea.Cmd {
	item, ok := m.list.SelectedItem().(resultItem)
	if !ok || item.result.Note.SourcePath == "" {
		return nil
	}

	editor := strings.TrimSpace(viper.GetString("editor"))
	if editor == "" {
		editor = m.state.Config.Editor
	}
	if editor == "" {
		editor = "nvim"
	}

	cmd := exec.Command(editor, item.result.Note.SourcePath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return state.NotesChangedMsg{Path: item.result.Note.SourcePath}
	})
}

func (m *BrowserModel) layout() {
	frameW, frameH := appStyle.GetFrameSize()
	usableW := m.width - frameW
	usableH := m.height - frameH

	listWidth := usableW / 2
	previewWidth := usableW - listWidth - 2

	m.input.Width = usableW - 4
	m.list.SetSize(listWidth, usableH-4)
	m.preview.Width = previewWidth
	m.preview.Height = usableH - 4
}

func (m *BrowserModel) closeWatcher() {
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

func (m *BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")

	panes := joinPanes(m.list.View(), previewStyle.Render(m.preview.View()))
	b.WriteString(panes)
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))

	return appStyle.Render(b.String())
}

// Run launches the browser and blocks until the user quits.
func Run(s *state.State) error {
	m, err := NewBrowserModel(s)
	if err != nil {
		return err
	}
	defer m.closeWatcher()

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
