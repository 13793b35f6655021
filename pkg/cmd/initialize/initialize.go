package initialize

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/stashmd/stash/internal/state"
)

func NewCmdInit(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "new",
		Aliases: []string{"init"},
		Short:   "Create the stash directory and default configuration",
		Long: heredoc.Doc(`
			New bootstraps ~/.stash: the notes directory and a default cfg.yaml.
			Running it on an existing stash is safe and changes nothing.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(s)
		},
	}

	return cmd
}

func runInit(s *state.State) error {
	if err := os.MkdirAll(s.NotesDir, 0o755); err != nil {
		return fmt.Errorf("create notes directory: %w", err)
	}

	if err := s.Config.Save(); err != nil {
		return err
	}

	fmt.Println("stash initialized at", s.NotesDir)
	return nil
}
