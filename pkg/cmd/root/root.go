package root

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stashmd/stash/internal/constants"
	"github.com/stashmd/stash/internal/state"
	"github.com/stashmd/stash/pkg/cmd/add"
	"github.com/stashmd/stash/pkg/cmd/ask"
	"github.com/stashmd/stash/pkg/cmd/initialize"
	"github.com/stashmd/stash/pkg/cmd/open"
	"github.com/stashmd/stash/pkg/cmd/rewrite"
	"github.com/stashmd/stash/pkg/cmd/search"
	"github.com/stashmd/stash/pkg/cmd/settings"
	"github.com/stashmd/stash/pkg/cmd/tags"
	"github.com/stashmd/stash/pkg/cmd/ui"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "stash",
		Version: constants.Version,
		Short:   "Capture and search markdown notes from the command line.",
		Long: `Stash keeps your notes as plain markdown files and gets out of the way.

  stash add "learned about #rust ownership +lang-study"
  stash search "#rust ownership"
  `,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run(s)
		},
		// Runs after flag parsing: the bound notes_dir key resolves the
		// flag when set, otherwise the config file value seeded by
		// viper.ReadInConfig.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if dir := viper.GetString("notes_dir"); dir != "" {
				s.NotesDir = dir
			}
		},
	}

	cmd.PersistentFlags().
		StringP("notes-dir", "d", "", "Notes directory to use for this command.")
	if err := viper.BindPFlag("notes_dir", cmd.PersistentFlags().Lookup("notes-dir")); err != nil {
		return nil, err
	}

	cmd.AddCommand(
		initialize.NewCmdInit(s),
		add.NewCmdAdd(s),
		search.NewCmdSearch(s),
		ask.NewCmdAsk(s),
		rewrite.NewCmdRewrite(s),
		ui.NewCmdUI(s),
		open.NewCmdOpen(s),
		tags.NewCmdTags(s),
		settings.NewCmdSettings(s),
	)

	return cmd, nil
}
