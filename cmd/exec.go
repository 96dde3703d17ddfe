package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/config"
	zexec "go.dot.industries/zcfg/internal/exec"
	"go.dot.industries/zcfg/internal/tui"
)

var (
	flagExecProfile  string
	flagExecType     string
	flagExecNoBase   bool
	flagExecNoPrompt bool
)

// connectionProps are prompted for when the profile type defines them and
// the resolved profile has no value.
var connectionProps = []string{"host", "port", "user", "password"}

// execPrompt asks for a property value on the command's terminal.
var execPrompt = func(cmd *cobra.Command, name string, def config.PropertyDefinition) (string, error) {
	label := "Enter " + name
	if def.Description != "" {
		label += " (" + def.Description + ")"
	}
	return newPrompter(cmd).Ask(label+" - blank to skip:", "", def.Secure)
}

// execRun starts the child process.
var execRun = zexec.Run

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVarP(&flagExecProfile, "profile", "p", "", "profile to export (default: the default profile of --type)")
	execCmd.Flags().StringVarP(&flagExecType, "type", "t", "zosmf", "profile type whose default profile is exported")
	execCmd.Flags().BoolVar(&flagExecNoBase, "no-base", false, "do not fill in properties from the default base profile")
	execCmd.Flags().BoolVar(&flagExecNoPrompt, "no-prompt", false, "do not prompt for missing connection and secure properties")
}

var execCmd = &cobra.Command{
	Use:   "exec -- <command> [args...]",
	Short: "Run a command with profile properties as environment variables",
	Long: `Resolves a profile, fills in missing properties from the default base
profile, and runs the command with each property exported as
<APP>_OPT_<NAME>, e.g. ZOWE_OPT_HOST or ZOWE_OPT_REJECT_UNAUTHORIZED.
Secure properties are exported too.

Secure properties without a value, and host, port, user or password when
the profile type defines them but no value is set, are prompted for. When
the config enables autoStore the answers are saved to the layer holding
the profile, secure answers in the credential manager.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	name, props, err := resolveExecProfile(cfg)
	if err != nil {
		return err
	}

	if !flagExecNoPrompt {
		if err := promptMissing(cmd, cfg, name, props); err != nil {
			return err
		}
	}

	env, err := zexec.ProfileEnv(zexec.OptionPrefix(cfg.App()), props)
	if err != nil {
		return err
	}

	log.Debug().Int("vars", len(env)).Strs("command", args).Msg("running command")

	if err := execRun(cmd.Context(), args, env); err != nil {
		os.Exit(zexec.ExitCode(err))
	}
	return nil
}

// resolveExecProfile returns the selected profile's name and its properties
// over those of the default base profile.
func resolveExecProfile(cfg *config.Config) (string, map[string]any, error) {
	name := flagExecProfile
	if name == "" {
		name = cfg.Profiles().DefaultName(flagExecType)
		if name == "" {
			return "", nil, fmt.Errorf("no default %s profile; pass --profile", flagExecType)
		}
	}

	props, err := cfg.Profiles().Get(name)
	if err != nil {
		return "", nil, err
	}

	if flagExecNoBase || cfg.Profiles().Type(name) == "base" {
		return name, props, nil
	}

	merged := map[string]any{}
	if base := cfg.Profiles().DefaultName("base"); base != "" {
		maps.Copy(merged, cfg.Profiles().GetOptional(base))
	}
	maps.Copy(merged, props)
	return name, merged, nil
}

// promptMissing asks for the secure and connection properties of profile
// that have no value, adds the answers to props and stores them when
// autoStore is enabled.
func promptMissing(cmd *cobra.Command, cfg *config.Config, profile string, props map[string]any) error {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	typ := cfg.Profiles().Type(profile)
	pt, _ := catalog.Find(typ)

	opts := config.StoreOptions{TypeSecure: typeSecureProps(pt)}
	if !flagExecNoBase && typ != "base" {
		opts.BaseProfile = cfg.Profiles().DefaultName("base")
		if bt, ok := catalog.Find(catalog.Base); ok {
			opts.BaseTypeSecure = typeSecureProps(bt)
		}
	}

	secure := cfg.Secure().SecurePropsForProfile(profile)
	if opts.BaseProfile != "" {
		secure = append(secure, cfg.Secure().SecurePropsForProfile(opts.BaseProfile)...)
	}

	var wanted []string
	for _, name := range connectionProps {
		if _, ok := pt.Properties[name]; ok {
			wanted = append(wanted, name)
		}
	}
	sort.Strings(secure)
	for _, name := range secure {
		if !slices.Contains(wanted, name) {
			wanted = append(wanted, name)
		}
	}

	answers := map[string]any{}
	for _, name := range wanted {
		if props[name] != nil {
			continue
		}

		def, ok := pt.Properties[name]
		if !ok {
			def = config.PropertyDefinition{Type: "string"}
		}
		def.Secure = def.Secure || slices.Contains(secure, name)

		raw, err := execPrompt(cmd, name, def)
		if err != nil {
			return err
		}
		value, err := tui.ParseAnswer(raw, def.Type)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if value == nil {
			continue
		}
		answers[name] = value
		props[name] = value
	}

	if len(answers) == 0 {
		return nil
	}

	if !cfg.AutoStoreEnabled() {
		log.Debug().Str("profile", profile).Msg("autoStore disabled; prompted values not saved")
		return nil
	}

	if cfg.Secure().LoadFailed() {
		log.Warn().Msg("credential manager unavailable; prompted values not saved")
		return nil
	}

	stored, err := cfg.StoreProperties(cmd.Context(), profile, answers, opts)
	if err != nil {
		return fmt.Errorf("storing prompted values: %w", err)
	}
	log.Info().Str("profile", profile).Strs("properties", stored).Msg("saved prompted values")

	return nil
}

// typeSecureProps lists the properties a profile type marks secure.
func typeSecureProps(pt config.ProfileType) []string {
	var names []string
	for name, def := range pt.Properties {
		if def.Secure {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
