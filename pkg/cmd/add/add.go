package add

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/stashmd/stash/internal/note"
	"github.com/stashmd/stash/internal/state"
)

var readClipboard = clipboard.ReadAll

func NewCmdAdd(s *state.State) *cobra.Command {
	var title string
	var paste bool

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Quick-capture a note",
		Long: heredoc.Doc(`
			Add captures a note straight from the command line. Inline #tags and
			+projects in the content are extracted into the note's metadata, so the
			note is immediately searchable by them.

			With --paste the content is read from the system clipboard instead of
			the arguments.
		`),
		Example: heredoc.Doc(`
			stash add "learned about #rust ownership +lang-study"
			stash add --paste --title "meeting notes"
		`),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(s, strings.Join(args, " "), title, paste)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Title to assign to the captured note")
	cmd.Flags().BoolVarP(&paste, "paste", "p", false, "Capture the clipboard contents")

	return cmd
}

func runAdd(s *state.State, content, title string, paste bool) error {
	if paste {
		clip, err := readClipboard()
		if err != nil {
			return fmt.Errorf("failed to read clipboard: %w", err)
		}
		content = clip
	}

	if strings.TrimSpace(content) == "" {
		return errors.New("nothing to capture: provide content or use --paste")
	}

	n := note.NewQuickCapture(content, title)
	path, err := n.Save(s.NotesDir)
	if err != nil {
		return err
	}

	fmt.Println("note saved to", path)
	return nil
}
