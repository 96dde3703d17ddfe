package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/config"
)

var (
	flagProfilesType       string
	flagProfilesShowSecure bool
)

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd, profilesShowCmd, profilesRenameCmd, profilesDefaultCmd)

	profilesListCmd.Flags().StringVarP(&flagProfilesType, "type", "t", "", "only list profiles of this type")
	profilesShowCmd.Flags().BoolVar(&flagProfilesShowSecure, "show-secure", false, "print secure values instead of a mask")
	profilesShowCmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON instead of YAML")
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect and manage profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles of the merged config",
	Args:  cobra.NoArgs,
	RunE:  runProfilesList,
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	names := cfg.Profiles().Names()
	if flagProfilesType != "" {
		names = cfg.Profiles().NamesOfType(flagProfilesType)
	}

	defaults := cfg.Properties().Defaults

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tTYPE\tLAYER")
	for _, name := range names {
		typ := cfg.Profiles().Type(name)
		label := name
		if typ != "" && defaults[typ] == name {
			label += " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", label, typ, layerName(cfg, name))
	}
	return w.Flush()
}

// layerName labels the highest layer defining a profile.
func layerName(cfg *config.Config, name string) string {
	user, global, ok := cfg.Layers().Find(name)
	if !ok {
		return "-"
	}
	label := "project"
	if global {
		label = "global"
	}
	if user {
		label += " user"
	}
	return label
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the resolved properties of a profile",
	Long: `Prints a profile's properties merged with those of its parent
profiles. Secure values are masked unless --show-secure is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfilesShow,
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	name := args[0]
	props, err := cfg.Profiles().Get(name)
	if err != nil {
		return err
	}

	if !flagProfilesShowSecure {
		for _, prop := range cfg.Secure().SecurePropsForProfile(name) {
			if _, ok := props[prop]; ok {
				props[prop] = config.SecureValue
			}
		}
	}

	return printValue(cmd.OutOrStdout(), props, flagJSON)
}

var profilesRenameCmd = &cobra.Command{
	Use:   "rename <from> <to>",
	Short: "Rename a profile of the active layer",
	Long: `Moves a profile, with its child profiles and secure values, to a new
dotted name. Defaults pointing at it are updated.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		if err := cfg.Move(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(cmd.Context(), false); err != nil {
			return err
		}

		printSaved(cmd, cfg)
		return nil
	},
}

var profilesDefaultCmd = &cobra.Command{
	Use:   "default <type> [name]",
	Short: "Print or set the default profile of a type",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runProfilesDefault,
}

func runProfilesDefault(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	typ := args[0]
	if len(args) == 1 {
		name := cfg.Profiles().DefaultName(typ)
		if name == "" {
			return fmt.Errorf("no default %s profile", typ)
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	}

	name := args[1]
	if !cfg.Profiles().Exists(name) {
		return fmt.Errorf("profile %q: %w", name, config.ErrProfileNotFound)
	}
	if got := cfg.Profiles().Type(name); got != "" && got != typ {
		return fmt.Errorf("profile %q has type %q, not %q", name, got, typ)
	}

	cfg.Profiles().DefaultSet(typ, name)
	if err := cfg.Save(cmd.Context(), false); err != nil {
		return err
	}

	printSaved(cmd, cfg)
	return nil
}
