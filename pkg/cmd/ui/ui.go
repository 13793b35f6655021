package ui

import (
	"errors"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stashmd/stash/internal/state"
	"github.com/stashmd/stash/internal/tui/notes"
)

func NewCmdUI(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Browse and search notes interactively",
		Long: heredoc.Doc(`
			UI opens the interactive browser: type to search with the same query
			grammar as 'stash search', preview the selected note as rendered
			markdown, and press enter to edit it. The list refreshes when note
			files change on disk.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(s)
		},
	}

	return cmd
}

// Run launches the browser. The bare `stash` invocation shares it with the
// ui subcommand.
func Run(s *state.State) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("ui requires an interactive terminal")
	}
	return notes.Run(s)
}
