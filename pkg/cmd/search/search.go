package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/stashmd/stash/internal/note"
	"github.com/stashmd/stash/internal/search"
	"github.com/stashmd/stash/internal/state"
)

// Options mirror the search command's flags.
type Options struct {
	FilterTags     string
	FilterProjects string
	ListTags       bool
	ListProjects   bool
	CaseSensitive  bool
}

func NewCmdSearch(s *state.State) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search notes by text, #tags, and +projects",
		Long: heredoc.Doc(`
			Search matches notes against a query of free text, #tags, and +projects.
			Free text matches the title and body fuzzily; prefix a token with - to
			exclude it, or -# to exclude a tag. Double quotes group a multi-word
			phrase into a single term.
		`),
		Example: heredoc.Doc(`
			stash search "#rust ownership"
			stash search "concurrency -#rust"
			stash search --case-sensitive API
			stash search --list-tags
		`),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(s, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.FilterTags, "tags", "t", "", "Additional required tags (comma-separated)")
	cmd.Flags().StringVarP(&opts.FilterProjects, "projects", "p", "", "Additional required projects (comma-separated)")
	cmd.Flags().BoolVar(&opts.ListTags, "list-tags", false, "List all tags in use")
	cmd.Flags().BoolVar(&opts.ListProjects, "list-projects", false, "List all projects in use")
	cmd.Flags().BoolVar(&opts.CaseSensitive, "case-sensitive", false, "Match free text case-sensitively")

	return cmd
}

// Run executes one search invocation: load, index, parse, match, print.
// It is shared with the ask command, which feeds it translated queries.
func Run(s *state.State, raw string, opts Options) error {
	idx, failures := s.BuildIndex()
	reportFailures(failures)

	if opts.ListTags || opts.ListProjects {
		if opts.ListTags {
			printTokenCounts("tags", idx.Tags())
		}
		if opts.ListProjects {
			printTokenCounts("projects", idx.Projects())
		}
		return nil
	}

	caseSensitive := opts.CaseSensitive || s.Config.Search.CaseSensitive
	q, err := search.Parse(raw, caseSensitive)
	if err != nil {
		return err
	}
	q = applyFilterFlags(q, opts)

	results := search.Match(idx, q)
	if len(results) == 0 {
		fmt.Println("no matching notes")
		return nil
	}

	for _, r := range results {
		title := r.Note.Title
		if title == "" {
			title = "(untitled)"
		}

		line := fmt.Sprintf("%s  %s", r.Note.Created.Format("2006-01-02"), title)
		if len(r.Note.Tags) > 0 {
			line += "  #" + strings.Join(r.Note.Tags, " #")
		}
		if len(r.Note.Projects) > 0 {
			line += "  +" + strings.Join(r.Note.Projects, " +")
		}
		fmt.Println(line)
		fmt.Printf("    %s\n", r.Note.SourcePath)
	}
	fmt.Printf("%d matching notes\n", len(results))

	return nil
}

// applyFilterFlags folds the --tags/--projects flag values into the parsed
// query as additional required filters.
func applyFilterFlags(q search.Query, opts Options) search.Query {
	for _, tag := range splitCommaList(opts.FilterTags) {
		q.RequiredTags = append(q.RequiredTags, strings.ToLower(tag))
	}
	for _, project := range splitCommaList(opts.FilterProjects) {
		q.RequiredProjects = append(q.RequiredProjects, strings.ToLower(project))
	}
	return q
}

func splitCommaList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printTokenCounts(kind string, counts []search.TokenCount) {
	if len(counts) == 0 {
		fmt.Printf("no %s in use\n", kind)
		return
	}
	for _, tc := range counts {
		fmt.Printf("%-30s %d\n", tc.Token, tc.Count)
	}
}

func reportFailures(failures []note.LoadFailure) {
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "warning: skipped %s\n", f)
	}
}
