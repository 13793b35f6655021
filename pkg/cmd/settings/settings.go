package settings

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/spf13/cobra"

	"github.com/stashmd/stash/internal/config"
	"github.com/stashmd/stash/internal/state"
)

func NewCmdSettings(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"settings"},
		Short:   "Manage stash configuration",
		Long: heredoc.Doc(`
			Config manages the settings stored in ~/.stash/cfg.yaml: the OpenAI
			API key used by 'stash ask', and the rewrite prompt style used when
			polishing notes.
		`),
	}

	cmd.AddCommand(
		newCmdSetKey(s),
		newCmdClearKey(s),
		newCmdStyle(s),
	)

	return cmd
}

func newCmdSetKey(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key [api-key]",
		Short: "Store the OpenAI API key and enable AI features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Config.SetAPIKey(args[0]); err != nil {
				return err
			}
			fmt.Println("api key saved")
			return nil
		},
	}
}

func newCmdClearKey(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-key",
		Short: "Remove the stored API key and disable AI features",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Config.ClearAPIKey(); err != nil {
				return err
			}
			fmt.Println("api key cleared")
			return nil
		},
	}
}

func newCmdStyle(s *state.State) *cobra.Command {
	var customPrompt string

	cmd := &cobra.Command{
		Use:   "style [name]",
		Short: "Choose the AI rewrite prompt style",
		Long: heredoc.Doc(`
			Style selects how the AI rewrites note content. Run without arguments
			for an interactive picker, or pass one of the style names directly.
			The custom style uses the instruction given with --prompt.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style := ""
			if len(args) == 1 {
				style = strings.TrimSpace(args[0])
			} else {
				sel := selection.New("Choose a rewrite style:", config.PromptStyles)
				sel.PageSize = len(config.PromptStyles)

				choice, err := sel.RunPrompt()
				if err != nil {
					return err
				}
				style = choice
			}

			if err := s.Config.SetPromptStyle(style); err != nil {
				return err
			}
			if style == "custom" && customPrompt != "" {
				if err := s.Config.SetCustomPrompt(customPrompt); err != nil {
					return err
				}
			}

			fmt.Println("prompt style set to", style)
			return nil
		},
	}

	cmd.Flags().StringVar(&customPrompt, "prompt", "", "Custom rewrite instruction (with style 'custom')")

	return cmd
}
