package ask

import (
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/stashmd/stash/internal/ai"
	"github.com/stashmd/stash/internal/state"
	"github.com/stashmd/stash/pkg/cmd/search"
)

func NewCmdAsk(s *state.State) *cobra.Command {
	var opts search.Options

	cmd := &cobra.Command{
		Use:   "ask [natural language query]",
		Short: "Search notes with a natural language question",
		Long: heredoc.Doc(`
			Ask sends your question to the configured AI model, which translates it
			into a stash search query, and then runs that query locally. When the
			translator is unavailable the raw question is searched as literal text
			instead.

			Requires an OpenAI API key; set one with 'stash config set-key'.
		`),
		Example: heredoc.Doc(`
			stash ask "what did I write about rust last month"
			stash ask "my webapp project notes that aren't marked done"
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(s, cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.CaseSensitive, "case-sensitive", false, "Match free text case-sensitively")

	return cmd
}

func runAsk(s *state.State, cmd *cobra.Command, input string, opts search.Options) error {
	query, err := translate(s, cmd, input)
	if err != nil {
		// Translator failures are not search failures: fall back to the
		// raw input as a literal query.
		fmt.Fprintf(os.Stderr, "warning: %v; searching for the literal text instead\n", err)
		query = input
	}

	return search.Run(s, query, opts)
}

func translate(s *state.State, cmd *cobra.Command, input string) (string, error) {
	client, err := ai.NewClient(s.Config)
	if err != nil {
		return "", err
	}

	query, err := client.TranslateQuery(cmd.Context(), input)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "query: %s\n", query)
	return query, nil
}
