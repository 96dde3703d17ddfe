package vault

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.dot.industries/zcfg/internal/config"
)

var _ config.Vault = (*Store)(nil)

func TestStore_SaveAndLoad(t *testing.T) {
	fv, srv := newFakeVault(t)
	ctx := context.Background()

	client, err := NewClientWithToken(srv.URL, "secret", fv.token)
	if err != nil {
		t.Fatalf("NewClientWithToken() error: %v", err)
	}
	store := NewStore(client, "zowe")

	if !store.Initialized() {
		t.Fatal("Initialized() = false with a token")
	}

	got, err := store.Load(ctx, config.SecureAccount)
	if err != nil {
		t.Fatalf("Load() of missing account error: %v", err)
	}
	if got != "" {
		t.Errorf("Load() of missing account = %q, want empty", got)
	}

	payload := `{"/p/zowe.config.json":{"profiles.base.properties.password":"pw"}}`
	if err := store.Save(ctx, config.SecureAccount, payload); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if stored := fv.secrets["zowe/secure_config_props"]["value"]; stored != payload {
		t.Errorf("server holds %v, want payload", stored)
	}

	got, err = store.Load(ctx, config.SecureAccount)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != payload {
		t.Errorf("Load() = %q, want %q", got, payload)
	}

	accounts, err := store.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts() error: %v", err)
	}
	if len(accounts) != 1 || accounts[0] != config.SecureAccount {
		t.Errorf("Accounts() = %v", accounts)
	}
}

func TestStore_PermissionDenied(t *testing.T) {
	fv, srv := newFakeVault(t)
	fv.denied = true

	client, err := NewClientWithToken(srv.URL, "secret", fv.token)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewStore(client, "zowe").Load(context.Background(), config.SecureAccount)
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Load() error = %v, want permission denied", err)
	}
}

func TestStore_NotInitializedWithoutToken(t *testing.T) {
	t.Setenv("VAULT_TOKEN", "")

	client, err := NewClient("http://127.0.0.1:8200", "secret")
	if err != nil {
		t.Fatal(err)
	}

	if NewStore(client, "zowe").Initialized() {
		t.Error("Initialized() = true without a token")
	}
	if NewStore(nil, "zowe").Initialized() {
		t.Error("Initialized() = true without a client")
	}
}

// TestStore_BacksConfig drives a full configuration save and reload through
// the Vault store.
func TestStore_BacksConfig(t *testing.T) {
	fv, srv := newFakeVault(t)
	ctx := context.Background()

	client, err := NewClientWithToken(srv.URL, "secret", fv.token)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(client, "zowe")

	home, project := t.TempDir(), t.TempDir()
	opts := []config.Option{config.WithHomeDir(home), config.WithProjectDir(project), config.WithVault(store)}

	cfg, err := config.Load(ctx, "zowe", opts...)
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	cfg.Profiles().Set("base", &config.Profile{
		Type:       "base",
		Properties: map[string]any{"user": "ibmuser"},
		Secure:     []string{"user"},
	})
	if err := cfg.Save(ctx, false); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := config.Load(ctx, "zowe", opts...)
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	props, err := reloaded.Profiles().Get("base")
	if err != nil {
		t.Fatal(err)
	}
	if props["user"] != "ibmuser" {
		t.Errorf("user = %v, want ibmuser", props["user"])
	}

	fv.denied = true
	_, err = config.Load(ctx, "zowe", opts...)
	if err == nil {
		t.Fatal("config.Load() with a denied vault should fail")
	}
	if errors.Is(err, config.ErrSecureUnavailable) {
		t.Error("a denied read is a vault error, not an unavailable manager")
	}
}
