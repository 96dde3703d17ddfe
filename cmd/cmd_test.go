package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.dot.industries/zcfg/internal/config"
)

// testEnv isolates the application home and project directory of a test.
type testEnv struct {
	home    string
	project string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{home: t.TempDir(), project: t.TempDir()}
	t.Setenv("ZOWE_CLI_HOME", env.home)
	t.Setenv("VAULT_ADDR", "")
	return env
}

// run executes the command tree with args against the test directories and
// returns its stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--project-dir", e.project, "--credential-manager", "memory"}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigInit(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "config", "init", "--prompt=false"); err != nil {
		t.Fatalf("config init: %v", err)
	}

	doc, err := config.ReadLayerFile(filepath.Join(env.project, "zowe.config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Profiles["zosmf"] == nil || doc.Defaults["zosmf"] != "zosmf" {
		t.Errorf("initialized config missing zosmf profile: %+v", doc.Defaults)
	}
	if doc.Schema != "./zowe.schema.json" {
		t.Errorf("$schema = %q", doc.Schema)
	}
	if _, err := os.Stat(filepath.Join(env.project, "zowe.schema.json")); err != nil {
		t.Errorf("schema not written: %v", err)
	}

	out, err := env.run(t, "validate")
	if err != nil {
		t.Fatalf("validate after init: %v\n%s", err, out)
	}
}

func TestConfigSetAndGet(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.project, "zowe.config.json")
	writeTestFile(t, path, `{
		// team profiles
		"profiles": {"base": {"type": "base", "secure": ["password"]}},
		"defaults": {"base": "base"}
	}`)

	if _, err := env.run(t, "config", "set", "profiles.base.properties.port", "1443"); err != nil {
		t.Fatalf("config set: %v", err)
	}

	out, err := env.run(t, "config", "get", "profiles.base.properties.port", "--json")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if strings.TrimSpace(out) != "1443" {
		t.Errorf("config get = %q, want 1443", out)
	}

	if _, err := env.run(t, "config", "set", "profiles.base.properties.password", "s3cret"); err != nil {
		t.Fatalf("config set secure: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "s3cret") {
		t.Errorf("secure value written to disk:\n%s", data)
	}
	if !strings.Contains(string(data), "// team profiles") {
		t.Errorf("comment lost:\n%s", data)
	}
}

func TestConfigDelete(t *testing.T) {
	env := newTestEnv(t)
	writeTestFile(t, filepath.Join(env.project, "zowe.config.json"),
		`{"profiles": {"base": {"type": "base", "properties": {"host": "h", "port": 1}}}, "defaults": {}}`)

	if _, err := env.run(t, "config", "delete", "profiles.base.properties.host"); err != nil {
		t.Fatalf("config delete: %v", err)
	}

	_, err := env.run(t, "config", "get", "profiles.base.properties.host")
	if err == nil || !strings.Contains(err.Error(), "not set") {
		t.Errorf("get after delete error = %v, want not set", err)
	}
}

func TestProfilesRenameAndDefault(t *testing.T) {
	env := newTestEnv(t)
	writeTestFile(t, filepath.Join(env.project, "zowe.config.json"),
		`{"profiles": {"lpar": {"profiles": {"zosmf": {"type": "zosmf"}}}, "ssh1": {"type": "ssh"}}, "defaults": {"zosmf": "lpar.zosmf"}}`)

	if _, err := env.run(t, "profiles", "rename", "lpar", "prod"); err != nil {
		t.Fatalf("profiles rename: %v", err)
	}

	out, err := env.run(t, "profiles", "default", "zosmf")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "prod.zosmf" {
		t.Errorf("default zosmf = %q, want prod.zosmf", out)
	}

	if _, err := env.run(t, "profiles", "default", "zosmf", "ssh1"); err == nil {
		t.Error("setting a default of the wrong type should fail")
	}

	out, err = env.run(t, "profiles", "list", "--type", "ssh")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ssh1") || strings.Contains(out, "prod.zosmf") {
		t.Errorf("profiles list --type ssh:\n%s", out)
	}
}

func TestValidateReportsBrokenFile(t *testing.T) {
	env := newTestEnv(t)
	writeTestFile(t, filepath.Join(env.home, "zowe.config.json"), `{"profiles": {`)
	writeTestFile(t, filepath.Join(env.project, "zowe.config.json"),
		`{"profiles": {}, "defaults": {"zosmf": "missing"}}`)

	out, err := env.run(t, "validate")
	if err == nil {
		t.Fatalf("validate should fail:\n%s", out)
	}
	if !strings.Contains(err.Error(), "2 config file(s)") {
		t.Errorf("validate error = %v", err)
	}
}

func TestSettingsSetAndGet(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "settings", "set", "vault.address", "https://vault.example.com"); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	out, err := env.run(t, "settings", "get", "vault.address")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "https://vault.example.com" {
		t.Errorf("settings get = %q", out)
	}

	if _, err := env.run(t, "settings", "set", "overrides.credential-manager", "bogus"); err == nil {
		t.Error("unknown credential manager should be rejected")
	}
}

func TestMaskDocument(t *testing.T) {
	doc := &config.Document{
		Profiles: map[string]*config.Profile{
			"lpar": {
				Properties: map[string]any{"user": "ibmuser", "host": "h"},
				Secure:     []string{"user", "password"},
			},
		},
	}

	masked := maskDocument(doc)

	want := map[string]any{"user": config.SecureValue, "host": "h"}
	if diff := cmp.Diff(want, masked.Profiles["lpar"].Properties); diff != "" {
		t.Errorf("maskDocument() mismatch (-want +got):\n%s", diff)
	}
	if doc.Profiles["lpar"].Properties["user"] != "ibmuser" {
		t.Error("maskDocument() mutated its input")
	}
}

func TestConfigImportDryRunNullProfile(t *testing.T) {
	env := newTestEnv(t)
	src := filepath.Join(t.TempDir(), "team.json")
	writeTestFile(t, src, `{"profiles": {"a": null, "b": {"properties": {"password": "s3cret"}, "secure": ["password"]}}}`)

	out, err := env.run(t, "config", "import", src, "--dry-run", "--overwrite")
	if err != nil {
		t.Fatalf("config import: %v", err)
	}
	if strings.Contains(out, "s3cret") {
		t.Errorf("secure value printed:\n%s", out)
	}
	if !strings.Contains(out, "a: null") {
		t.Errorf("null profile missing from output:\n%s", out)
	}
}

func TestLookupPath(t *testing.T) {
	doc := &config.Document{
		Profiles: map[string]*config.Profile{"base": {Properties: map[string]any{"port": 443.0}}},
		Defaults: map[string]string{"base": "base"},
	}

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"profiles.base.properties.port", 443.0, true},
		{"defaults.base", "base", true},
		{"profiles.base.properties.host", nil, false},
		{"defaults.base.deeper", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok, err := lookupPath(doc, tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.ok || !cmp.Equal(tt.want, got) {
				t.Errorf("lookupPath() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatTTL(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "no expiry"},
		{45 * time.Second, "45s"},
		{5 * time.Minute, "5m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
	}

	for _, tt := range tests {
		if got := formatTTL(tt.d); got != tt.want {
			t.Errorf("formatTTL(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
