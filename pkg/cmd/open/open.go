package open

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stashmd/stash/internal/fzf"
	"github.com/stashmd/stash/internal/state"
)

func NewCmdOpen(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [query]",
		Short: "Fuzzy-find a note and open it in your editor",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("open requires an interactive terminal")
			}

			finder := fzf.NewFuzzyFinder(s.NotesDir, s.Config, "Select a note to open")
			_, err := finder.RunWithQuery(strings.Join(args, " "), true)
			return err
		},
	}

	return cmd
}
