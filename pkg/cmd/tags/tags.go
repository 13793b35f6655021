package tags

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stashmd/stash/internal/state"
)

func NewCmdTags(s *state.State) *cobra.Command {
	var projects bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List every tag (or project) in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, failures := s.BuildIndex()
			for _, f := range failures {
				fmt.Fprintf(os.Stderr, "warning: skipped %s\n", f)
			}

			counts := idx.Tags()
			if projects {
				counts = idx.Projects()
			}

			for _, tc := range counts {
				fmt.Printf("%-30s %d\n", tc.Token, tc.Count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&projects, "projects", "p", false, "List projects instead of tags")

	return cmd
}
