package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/tui"
)

func init() {
	configCmd.AddCommand(configSecureCmd)
}

var configSecureCmd = &cobra.Command{
	Use:   "secure",
	Short: "Prompt for every secure property of the active layer",
	Long: `Prompts, with masked input, for the value of each property listed in a
secure array of the active layer and stores the answers in the credential
manager. A blank answer keeps the current value.`,
	Args: cobra.NoArgs,
	RunE: runConfigSecure,
}

func runConfigSecure(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Secure().LoadFailed() {
		return fmt.Errorf("cannot store secure properties: %w", config.ErrSecureUnavailable)
	}

	fields := cfg.Secure().SecureFields()
	if len(fields) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Muted("No secure properties found in "+cfg.LayerActive().Path))
		return nil
	}

	prompter := newPrompter(cmd)
	changed := 0
	for _, field := range fields {
		answer, err := prompter.Ask("Enter "+field+" - blank to skip:", "", true)
		if err != nil {
			return err
		}
		if answer == "" {
			continue
		}
		if err := cfg.Set(field, answer, config.SetOptions{ParseString: true, Secure: config.BoolPtr(true)}); err != nil {
			return err
		}
		changed++
	}

	if changed == 0 {
		return nil
	}

	if err := cfg.Save(cmd.Context(), false); err != nil {
		return err
	}

	printSaved(cmd, cfg)
	return nil
}
