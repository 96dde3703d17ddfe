package cmd

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/config"
)

var (
	flagListLayers     bool
	flagShowSecure     bool
	flagJSON           bool
	flagSetSecure      bool
	flagSetJSON        bool
	flagKeepSecure     bool
	flagImportDryRun   bool
	flagImportOverride bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd, configDeleteCmd, configImportCmd)

	configListCmd.Flags().BoolVar(&flagListLayers, "layers", false, "list each layer separately")
	configListCmd.Flags().BoolVar(&flagShowSecure, "show-secure", false, "print secure values instead of a mask")
	configListCmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON instead of YAML")

	configGetCmd.Flags().BoolVar(&flagShowSecure, "show-secure", false, "print secure values instead of a mask")
	configGetCmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON instead of YAML")

	configSetCmd.Flags().BoolVar(&flagSetSecure, "secure", false, "store the value in the credential manager")
	configSetCmd.Flags().BoolVar(&flagSetJSON, "json", false, "parse the value as JSON")

	configDeleteCmd.Flags().BoolVar(&flagKeepSecure, "keep-secure", false, "keep the property in its profile's secure list")

	configImportCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "print the merged result without writing")
	configImportCmd.Flags().BoolVar(&flagImportOverride, "overwrite", false, "replace the layer instead of merging into it")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and edit the team configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "Print the merged configuration, or the value at a path",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !flagListLayers {
		return printAt(cmd, configView(cfg, flagShowSecure), args)
	}

	for _, layer := range cfg.AllLayers() {
		status := ""
		if !layer.Exists {
			status = " (missing)"
		}
		fmt.Fprintf(out, "%s%s\n", layer.Path, status)
		if !layer.Exists {
			continue
		}
		props := layer.Properties
		if !flagShowSecure {
			props = maskDocument(props)
		}
		if err := printAt(cmd, props, args); err != nil {
			return err
		}
	}
	return nil
}

var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print the merged value at a dotted path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		return printAt(cmd, configView(cfg, flagShowSecure), args)
	},
}

// configView returns the merged config, masked unless showSecure is set.
func configView(cfg *config.Config, showSecure bool) *config.Document {
	if showSecure {
		return cfg.Properties()
	}
	return cfg.MaskedProperties()
}

// maskDocument returns a copy of doc with every secure value masked.
func maskDocument(doc *config.Document) *config.Document {
	masked := doc.Clone()
	var walk func(map[string]*config.Profile)
	walk = func(profiles map[string]*config.Profile) {
		for _, p := range profiles {
			if p == nil {
				continue
			}
			for _, prop := range p.Secure {
				if _, ok := p.Properties[prop]; ok {
					p.Properties[prop] = config.SecureValue
				}
			}
			walk(p.Profiles)
		}
	}
	walk(masked.Profiles)
	return masked
}

// printAt prints v, or the value at the path in args[0].
func printAt(cmd *cobra.Command, v any, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return printValue(cmd.OutOrStdout(), v, flagJSON)
	}

	val, ok, err := lookupPath(v, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: not set", args[0])
	}
	return printValue(cmd.OutOrStdout(), val, flagJSON)
}

var configSetCmd = &cobra.Command{
	Use:   "set <path> [value]",
	Short: "Set a value in the active layer",
	Long: `Sets the value at a dotted path such as profiles.base.properties.host.
Values are stored as numbers or booleans when they spell one. A property
that is already secure stays secure. When the value is omitted it is
prompted for, masked when the property is secure.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	path := args[0]

	var secure *bool
	if cmd.Flags().Changed("secure") {
		secure = config.BoolPtr(flagSetSecure)
	} else if isSecurePath(cfg, path) {
		secure = config.BoolPtr(true)
	}

	var raw string
	if len(args) == 2 {
		raw = args[1]
	} else {
		raw, err = newPrompter(cmd).Ask("Enter a value for "+path+":", "", secure != nil && *secure)
		if err != nil {
			return err
		}
	}

	var value any = raw
	if flagSetJSON {
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("parsing value as JSON: %w", err)
		}
	}

	if err := cfg.Set(path, value, config.SetOptions{ParseString: !flagSetJSON, Secure: secure}); err != nil {
		return err
	}

	if err := cfg.Save(cmd.Context(), false); err != nil {
		return err
	}

	printSaved(cmd, cfg)
	return nil
}

// isSecurePath reports whether path is a property declared secure in the
// active layer, on its own profile or on an ancestor.
func isSecurePath(cfg *config.Config, path string) bool {
	info, ok := cfg.Secure().SecureInfoForProp(path, true)
	if !ok {
		return false
	}
	owner := strings.TrimSuffix(info.Path, ".secure")
	return slices.Contains(cfg.Secure().SecureFields(), owner+".properties."+info.Prop)
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Delete a value from the active layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		if err := cfg.Delete(args[0], config.DeleteOptions{KeepSecure: flagKeepSecure}); err != nil {
			return err
		}
		if err := cfg.Save(cmd.Context(), false); err != nil {
			return err
		}

		printSaved(cmd, cfg)
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a config file into the active layer",
	Long: `Reads a team config file and merges it into the active layer. Values
already in the layer win; new profiles, properties and defaults are added.
With --overwrite the layer is replaced instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigImport,
}

func runConfigImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	doc, err := config.ReadLayerFile(args[0])
	if err != nil {
		return err
	}

	if flagImportDryRun {
		var result *config.Document
		if flagImportOverride {
			result = doc
		} else {
			result = cfg.Layers().MergeDryRun(doc).Properties
		}
		return printValue(cmd.OutOrStdout(), maskDocument(result), flagJSON)
	}

	if flagImportOverride {
		cfg.Layers().Set(doc)
	} else {
		cfg.Layers().Merge(doc)
	}

	if err := cfg.Save(cmd.Context(), false); err != nil {
		return err
	}

	printSaved(cmd, cfg)
	return nil
}
