package rewrite

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/stashmd/stash/internal/ai"
	"github.com/stashmd/stash/internal/note"
	"github.com/stashmd/stash/internal/state"
)

func NewCmdRewrite(s *state.State) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "rewrite <note-file>",
		Short: "Polish a note's content with the configured AI model",
		Long: heredoc.Doc(`
			Rewrite sends the note body to the AI model and prints an improved
			version: same meaning, cleaner prose, proper markdown. The style is
			controlled by 'stash config style'. With --write the note file is
			updated in place; otherwise the result goes to stdout.

			Requires an OpenAI API key; set one with 'stash config set-key'.
		`),
		Example: heredoc.Doc(`
			stash rewrite path/to/note.md
			stash rewrite --write path/to/note.md
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(s, cmd, args[0], write)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Update the note file instead of printing")

	return cmd
}

func runRewrite(s *state.State, cmd *cobra.Command, path string, write bool) error {
	n, err := note.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load note: %w", err)
	}

	client, err := ai.NewClient(s.Config)
	if err != nil {
		return err
	}

	rewritten, err := client.RewriteNote(cmd.Context(), n)
	if err != nil {
		return err
	}

	if !write {
		fmt.Println(rewritten)
		return nil
	}

	n.Body = rewritten
	data, err := n.ToMarkdown()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	fmt.Println("note rewritten:", path)
	return nil
}
