package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/credential"
	"go.dot.industries/zcfg/internal/settings"
	"go.dot.industries/zcfg/internal/tui"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change CLI settings",
	Long: `Settings live in settings.toml inside the application home. They
select the credential manager (overrides.credential-manager) and the Vault
server used when it is "vault" (vault.address, vault.mount, vault.dir).`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := appHome()
		if err != nil {
			return err
		}
		s, err := loadSettings(home)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			val, err := s.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, val)
			return nil
		}

		for _, key := range settings.Keys() {
			val, _ := s.Get(key)
			fmt.Fprintf(out, "%s = %q\n", tui.Key(key), val)
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting, keeping the rest of the file intact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if key == "overrides.credential-manager" && value != "vault" {
			if _, err := credential.Open(value, flagApp); err != nil {
				return err
			}
		}

		home, err := appHome()
		if err != nil {
			return err
		}
		path := settings.Path(home)
		if err := settings.Set(path, key, value); err != nil {
			return err
		}

		printSavedPath(cmd, path)
		return nil
	},
}
