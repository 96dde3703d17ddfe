package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/credential"
	"go.dot.industries/zcfg/internal/profiletypes"
	"go.dot.industries/zcfg/internal/settings"
	"go.dot.industries/zcfg/internal/token"
	"go.dot.industries/zcfg/internal/vault"
)

const (
	defaultApp = "zowe"

	// profileTypesFile extends the built-in profile types when present in
	// the application home.
	profileTypesFile = "profile-types.yaml"
)

var (
	flagApp               string
	flagUser              bool
	flagGlobal            bool
	flagProjectDir        string
	flagCredentialManager string
	flagVerbose           bool
)

var rootCmd = &cobra.Command{
	Use:   "zcfg",
	Short: "Manage layered team configuration profiles",
	Long: `zcfg reads and edits team configuration: project and global config
files, each with an optional user variant, merged into one set of profiles.
Secure properties such as passwords are kept out of the files and stored in
a credential manager (OS keyring or HashiCorp Vault).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagApp, "app", defaultApp, "application name used to discover config files")
	rootCmd.PersistentFlags().BoolVar(&flagUser, "user", false, "target the user config layer")
	rootCmd.PersistentFlags().BoolVar(&flagGlobal, "global", false, "target the global config layer in the application home")
	rootCmd.PersistentFlags().StringVar(&flagProjectDir, "project-dir", "", "directory the project config search starts from (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&flagCredentialManager, "credential-manager", "", "credential manager: keyring, vault, memory or none (overrides settings)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(initLogger)
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)
}

// appHome returns the application home directory: $<APP>_CLI_HOME when set,
// ~/.<app> otherwise.
func appHome() (string, error) {
	env := strings.ToUpper(strings.ReplaceAll(flagApp, "-", "_")) + "_CLI_HOME"
	if dir := os.Getenv(env); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, "."+flagApp), nil
}

// loadSettings reads settings.toml from the application home.
func loadSettings(home string) (*settings.Settings, error) {
	return settings.Load(settings.Path(home), flagApp)
}

// credentialManager returns the manager selected by flag, falling back to
// the settings file.
func credentialManager(s *settings.Settings) string {
	if flagCredentialManager != "" {
		return flagCredentialManager
	}
	return s.Overrides.CredentialManager
}

// openVault opens the credential manager holding secure properties.
func openVault(home string, s *settings.Settings) (config.Vault, error) {
	kind := credentialManager(s)
	if !strings.EqualFold(kind, "vault") {
		return credential.Open(kind, flagApp)
	}

	client, err := vaultClient(s)
	if err != nil {
		return nil, err
	}

	tok, err := token.NewSink(home).Resolve()
	if err != nil {
		// Without a token the store reports itself uninitialized and
		// configs load without secure values.
		log.Debug().Err(err).Msg("no vault token")
	} else {
		client.SetToken(tok)
	}

	return vault.NewStore(client, s.Vault.Dir), nil
}

// vaultClient creates a client for the Vault server named in the settings
// or $VAULT_ADDR.
func vaultClient(s *settings.Settings) (*vault.Client, error) {
	addr := s.Vault.Address
	if env := os.Getenv("VAULT_ADDR"); addr == "" && env != "" {
		addr = env
	}
	if addr == "" {
		return nil, fmt.Errorf("vault address not set; run `zcfg settings set vault.address <url>` or set VAULT_ADDR")
	}

	return vault.NewClient(addr, s.Vault.Mount)
}

// loadConfig loads the team configuration and activates the layer selected
// by --user and --global.
func loadConfig(ctx context.Context) (*config.Config, error) {
	home, err := appHome()
	if err != nil {
		return nil, err
	}

	s, err := loadSettings(home)
	if err != nil {
		return nil, err
	}

	v, err := openVault(home, s)
	if err != nil {
		return nil, err
	}

	opts := []config.Option{
		config.WithHomeDir(home),
		config.WithVault(v),
		config.WithLogger(log.Logger),
	}
	if flagProjectDir != "" {
		opts = append(opts, config.WithProjectDir(flagProjectDir))
	}

	cfg, err := config.Load(ctx, flagApp, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Secure().LoadFailed() {
		log.Warn().Str("manager", v.Name()).Msg("secure properties unavailable")
	}

	if layerFlagsSet() {
		cfg.Layers().Activate(flagUser, flagGlobal)
	}

	log.Debug().Str("layer", cfg.LayerActive().Path).Msg("active config layer")

	return cfg, nil
}

// layerFlagsSet reports whether --user or --global was given. Without
// either the highest existing layer stays active.
func layerFlagsSet() bool {
	return flagUser || flagGlobal
}

// loadCatalog returns the built-in profile types, extended by
// profile-types.yaml in the application home.
func loadCatalog(cfg *config.Config) (*profiletypes.Catalog, error) {
	catalog, err := profiletypes.Builtin()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(cfg.HomeDir(), profileTypesFile)
	if _, err := os.Stat(path); err != nil {
		return catalog, nil
	}

	extra, err := profiletypes.LoadFile(path)
	if err != nil {
		return nil, err
	}
	catalog.Extend(extra)

	log.Debug().Str("path", path).Int("types", len(extra.Types)).Msg("loaded profile types")

	return catalog, nil
}
