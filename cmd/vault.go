package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/token"
	"go.dot.industries/zcfg/internal/tui"
	"go.dot.industries/zcfg/internal/vault"
)

var (
	flagLoginMethod string
	flagRoleID      string
	flagSecretID    string
)

func init() {
	rootCmd.AddCommand(vaultCmd)
	vaultCmd.AddCommand(vaultLoginCmd, vaultLogoutCmd, vaultStatusCmd)

	vaultLoginCmd.Flags().StringVar(&flagLoginMethod, "method", "token", "authentication method: token or approle")
	vaultLoginCmd.Flags().StringVar(&flagRoleID, "role-id", os.Getenv("VAULT_ROLE_ID"), "AppRole role ID (for --method approle)")
	vaultLoginCmd.Flags().StringVar(&flagSecretID, "secret-id", os.Getenv("VAULT_SECRET_ID"), "AppRole secret ID (for --method approle)")
}

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage the HashiCorp Vault credential manager",
}

var vaultLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Vault and save the token",
	Long: `Obtains a Vault token and saves it to vault-token in the application
home, where the "vault" credential manager reads it. With --method token the
token is prompted for; with --method approle it is obtained with the given
role and secret IDs, for CI pipelines.`,
	Args: cobra.NoArgs,
	RunE: runVaultLogin,
}

func runVaultLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	home, err := appHome()
	if err != nil {
		return err
	}
	s, err := loadSettings(home)
	if err != nil {
		return err
	}

	client, err := vaultClient(s)
	if err != nil {
		return err
	}

	switch flagLoginMethod {
	case "token":
		tok, err := newPrompter(cmd).Ask("Vault token for "+client.Address()+":", "", true)
		if err != nil {
			return err
		}
		client.SetToken(tok)
	case "approle":
		if err := vault.AppRoleAuth(ctx, client, flagRoleID, flagSecretID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown login method %q (want token or approle)", flagLoginMethod)
	}

	ttl, err := client.TokenTTL(ctx)
	if err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}

	sink := token.NewSink(home)
	if err := sink.Write(client.Token()); err != nil {
		return err
	}

	log.Info().Str("address", client.Address()).Msg("authenticated successfully")
	fmt.Fprintf(cmd.OutOrStdout(), "%s token saved to %s (%s remaining)\n",
		tui.Success("Authenticated;"), sink.Path(), formatTTL(ttl))

	if credentialManager(s) != "vault" {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Muted("Run `zcfg settings set overrides.credential-manager vault` to store secure properties in Vault."))
	}
	return nil
}

var vaultLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved Vault token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := appHome()
		if err != nil {
			return err
		}
		return token.NewSink(home).Remove()
	},
}

var vaultStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the Vault token and the stored secure accounts",
	Args:  cobra.NoArgs,
	RunE:  runVaultStatus,
}

func runVaultStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	home, err := appHome()
	if err != nil {
		return err
	}
	s, err := loadSettings(home)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Manager:  %s\n", credentialManager(s))

	client, err := vaultClient(s)
	if err != nil {
		fmt.Fprintln(out, "Vault:    "+tui.Muted("not configured"))
		return nil
	}
	fmt.Fprintf(out, "Vault:    %s (mount %s, dir %s)\n", client.Address(), client.Mount(), s.Vault.Dir)

	tok, err := token.NewSink(home).Resolve()
	if err != nil {
		fmt.Fprintln(out, "Token:    "+tui.Warning("not found"))
		return nil
	}
	client.SetToken(tok)

	ttl, err := client.TokenTTL(ctx)
	switch {
	case err != nil:
		fmt.Fprintln(out, "Token:    "+tui.Warning("present but unverifiable"))
		return nil
	case ttl == 0:
		fmt.Fprintln(out, "Token:    "+tui.Success("valid (no expiry)"))
	default:
		expires := time.Now().Add(ttl).Format("15:04:05")
		fmt.Fprintf(out, "Token:    %s (%s remaining, expires %s)\n", tui.Success("valid"), formatTTL(ttl), expires)
	}

	accounts, err := vault.NewStore(client, s.Vault.Dir).Accounts(ctx)
	if err != nil {
		fmt.Fprintln(out, "Accounts: "+tui.Warning(err.Error()))
		return nil
	}
	if len(accounts) == 0 {
		fmt.Fprintln(out, "Accounts: "+tui.Muted("none"))
		return nil
	}
	for _, a := range accounts {
		marker := ""
		if a == config.SecureAccount {
			marker = tui.Muted(" (team config)")
		}
		fmt.Fprintf(out, "Accounts: %s%s\n", a, marker)
	}
	return nil
}

// formatTTL formats a duration in a human-readable way (e.g. "2h 15m").
func formatTTL(d time.Duration) string {
	if d == 0 {
		return "no expiry"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}

	return fmt.Sprintf("%dm", m)
}
