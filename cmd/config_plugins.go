package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/tui"
)

func init() {
	configCmd.AddCommand(configPluginsCmd)
	configPluginsCmd.AddCommand(pluginsListCmd, pluginsAddCmd, pluginsRemoveCmd)
}

var configPluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Manage the plugin list of the config",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the plugins of the project and global configs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range cfg.Plugins().Get() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var pluginsAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Add plugins to the active layer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPlugins(cmd, args, true)
	},
}

var pluginsRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove plugins from the active layer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editPlugins(cmd, args, false)
	},
}

func editPlugins(cmd *cobra.Command, names []string, add bool) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	changed := false
	for _, name := range names {
		var ok bool
		if add {
			ok = cfg.Plugins().Add(name)
		} else {
			ok = cfg.Plugins().Remove(name)
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), tui.Warning("unchanged: "+name))
		}
		changed = changed || ok
	}

	if !changed {
		return nil
	}
	if err := cfg.Save(cmd.Context(), false); err != nil {
		return err
	}
	printSaved(cmd, cfg)
	return nil
}
