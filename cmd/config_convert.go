package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/credential"
	"go.dot.industries/zcfg/internal/migrate"
	"go.dot.industries/zcfg/internal/schema"
	"go.dot.industries/zcfg/internal/tui"
)

// legacyServices are the keyring services V1 profiles kept secure values
// under, newest first.
var legacyServices = []string{"@zowe/cli", "Zowe-Plugin", "@brightside/core", "Broadcom-Plugin", "Zowe"}

var flagConvertDelete bool

func init() {
	configCmd.AddCommand(configConvertCmd)

	configConvertCmd.Flags().BoolVar(&flagConvertDelete, "delete", false, "delete the V1 profiles and their secure values after converting")
}

var configConvertCmd = &cobra.Command{
	Use:   "convert-profiles",
	Short: "Convert V1 profiles to a global team config",
	Long: `Reads the V1 profiles under <app home>/profiles, one YAML file per
profile grouped by type, and writes them to the global team config. Secure
values are read from the legacy keyring services and stored in the current
credential manager. Nothing is converted when a team config already exists.`,
	Args: cobra.NoArgs,
	RunE: runConfigConvert,
}

func runConfigConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	stores := make([]migrate.SecretStore, 0, len(legacyServices))
	for _, service := range legacyServices {
		stores = append(stores, credential.NewKeyring(service))
	}

	res, err := migrate.Run(cmd.Context(), cfg, migrate.Options{
		Delete:  flagConvertDelete,
		Secrets: stores,
		Schema:  schema.Build(catalog.Types),
	})

	out := cmd.OutOrStdout()
	if res != nil {
		for _, msg := range res.Messages {
			if msg.Error {
				fmt.Fprintln(out, tui.Error(msg.Text))
			} else {
				fmt.Fprintln(out, msg.Text)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("converting profiles: %w", err)
	}

	if len(res.ProfilesFailed) > 0 {
		return fmt.Errorf("%d profile(s) could not be converted", len(res.ProfilesFailed))
	}
	return nil
}
