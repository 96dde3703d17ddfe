package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/schema"
)

var (
	flagInitDryRun    bool
	flagInitPrompt    bool
	flagInitOverwrite bool
)

func init() {
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&flagInitDryRun, "dry-run", false, "print the result without writing")
	configInitCmd.Flags().BoolVar(&flagInitPrompt, "prompt", true, "prompt for base profile properties")
	configInitCmd.Flags().BoolVar(&flagInitOverwrite, "overwrite", false, "replace an existing config instead of merging into it")
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with a profile for each known type",
	Long: `Creates the project config, or the global one with --global, holding one
profile per profile type with template defaults. Base profile properties
without a default are prompted for; secure answers go to the credential
manager. With --user an empty user config is created instead. An existing
file is merged into unless --overwrite is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	// init always targets the layer named by the flags, even when a higher
	// layer exists.
	cfg.Layers().Activate(flagUser, flagGlobal)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	opts := config.BuildOptions{PopulateProperties: !flagUser}
	if !flagUser && flagInitPrompt && !flagInitDryRun {
		opts.BaseType = catalog.Base
		opts.Prompt = newPrompter(cmd).PropertyPrompt()
	}

	doc, err := config.Build(catalog.Types, opts)
	if err != nil {
		return fmt.Errorf("building config: %w", err)
	}

	layer := cfg.LayerActive()
	log.Debug().Str("path", layer.Path).Bool("exists", layer.Exists).Msg("initializing config")

	if flagInitDryRun {
		result := doc
		if layer.Exists && !flagInitOverwrite {
			result = cfg.Layers().MergeDryRun(doc).Properties
		}
		return printValue(cmd.OutOrStdout(), maskDocument(result), true)
	}

	if layer.Exists && !flagInitOverwrite {
		cfg.Layers().Merge(doc)
	} else {
		cfg.Layers().Set(doc)
	}

	if !flagUser {
		if err := cfg.SetSchema("", schema.Build(catalog.Types)); err != nil {
			return err
		}
	}

	if err := cfg.Save(cmd.Context(), false); err != nil {
		return err
	}

	printSaved(cmd, cfg)
	return nil
}
