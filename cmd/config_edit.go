package cmd

import (
	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/tui"
)

func init() {
	configCmd.AddCommand(configEditCmd)
}

var configEditCmd = &cobra.Command{
	Use:     "edit",
	Aliases: []string{"tui"},
	Short:   "Browse and edit profiles in an interactive terminal UI",
	Long: `Opens a two-pane browser listing every profile of the merged config
and the resolved properties of the selected one. Properties can be added,
edited and deleted in the active layer, which can be switched with "l".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), cfg)
	},
}
