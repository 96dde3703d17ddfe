package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/profiletypes"
	"go.dot.industries/zcfg/internal/schema"
)

func init() {
	configCmd.AddCommand(configUpdateSchemaCmd)
}

var configUpdateSchemaCmd = &cobra.Command{
	Use:   "update-schema",
	Short: "Regenerate the JSON schema of the active layer",
	Long: `Writes the JSON schema describing the known profile types next to the
active config file and points its $schema at it. Types found only in the
existing schema are kept.`,
	Args: cobra.NoArgs,
	RunE: runConfigUpdateSchema,
}

func runConfigUpdateSchema(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	types, err := schemaTypes(cfg, catalog)
	if err != nil {
		return err
	}

	if err := cfg.SetSchema("", schema.Build(types)); err != nil {
		return err
	}
	if err := cfg.Save(cmd.Context(), false); err != nil {
		return err
	}

	info := cfg.SchemaInfo()
	if info.Local {
		printSavedPath(cmd, info.Resolved)
	} else {
		log.Info().Str("schema", info.Original).Msg("config references a remote schema; not rewritten")
	}
	return nil
}

// schemaTypes returns the catalog types together with any type that only
// the active layer's current local schema describes.
func schemaTypes(cfg *config.Config, catalog *profiletypes.Catalog) ([]config.ProfileType, error) {
	info := cfg.SchemaInfo()
	if !info.Local {
		return catalog.Types, nil
	}
	if _, err := os.Stat(info.Resolved); err != nil {
		return catalog.Types, nil
	}

	existing, err := schema.Load(info.Resolved)
	if err != nil {
		return nil, err
	}
	types, err := schema.ProfileTypes(existing)
	if err != nil {
		log.Warn().Err(err).Str("path", info.Resolved).Msg("ignoring unreadable schema")
		return catalog.Types, nil
	}

	merged := &profiletypes.Catalog{Base: catalog.Base, Types: types}
	merged.Extend(catalog)
	return merged.Types, nil
}
