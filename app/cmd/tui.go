package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lexcodex/reagent/app/tui"
)

// newTUICmd launches the full-screen chat surface.
func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Chat with the agent in a full-screen terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, _, err := buildController(globalCfg)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), controller)
		},
	}
}
