package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), FileName), "zowe")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if s.Overrides.CredentialManager != "keyring" {
		t.Errorf("CredentialManager = %q, want keyring", s.Overrides.CredentialManager)
	}
	if s.Vault.Mount != "secret" || s.Vault.Dir != "zowe" {
		t.Errorf("Vault = %+v", s.Vault)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `# team settings
[overrides]
credential-manager = "vault"

[vault]
address = "https://vault.example.com:8200"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path, "zowe")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := map[string]string{
		"overrides.credential-manager": "vault",
		"vault.address":                "https://vault.example.com:8200",
		"vault.mount":                  "secret",
		"vault.dir":                    "zowe",
	}
	for key, want := range tests {
		got, err := s.Get(key)
		if err != nil {
			t.Errorf("Get(%q) error: %v", key, err)
			continue
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[overrides\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, "zowe"); err == nil {
		t.Error("Load() of invalid TOML should fail")
	}
}

func TestSet_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".zowe", FileName)

	if err := Set(path, "vault.address", "http://127.0.0.1:8200"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	s, err := Load(path, "zowe")
	if err != nil {
		t.Fatal(err)
	}
	if s.Vault.Address != "http://127.0.0.1:8200" {
		t.Errorf("Vault.Address = %q", s.Vault.Address)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != filePerms {
		t.Errorf("permissions = %o, want %o", perm, filePerms)
	}
}

func TestSet_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `# managed by the platform team
[overrides]
# keyring is unavailable on build agents
credential-manager = "keyring"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Set(path, "overrides.credential-manager", "memory"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := Set(path, "vault.mount", "kv"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"# managed by the platform team", "# keyring is unavailable on build agents", `"memory"`, "[vault]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"keyring"`) {
		t.Errorf("old value still present:\n%s", out)
	}

	s, err := Load(path, "zowe")
	if err != nil {
		t.Fatal(err)
	}
	if s.Overrides.CredentialManager != "memory" || s.Vault.Mount != "kv" {
		t.Errorf("settings = %+v", s)
	}
}

func TestUnknownKey(t *testing.T) {
	if err := Set(filepath.Join(t.TempDir(), FileName), "vault.token", "x"); err == nil {
		t.Error("Set() of unknown key should fail")
	}
	if _, err := Default("zowe").Get("overrides"); err == nil {
		t.Error("Get() of unknown key should fail")
	}
}
