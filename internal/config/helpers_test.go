package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writeTestFile is a test helper that writes content to a file path.
func writeTestFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// memVault is an in-memory Vault for tests.
type memVault struct {
	ready bool
	data  map[string]string
	saves int
}

func newMemVault() *memVault {
	return &memVault{ready: true, data: map[string]string{}}
}

func (v *memVault) Name() string      { return "memory" }
func (v *memVault) Initialized() bool { return v.ready }

func (v *memVault) Load(_ context.Context, account string) (string, error) {
	return v.data[account], nil
}

func (v *memVault) Save(_ context.Context, account, payload string) error {
	v.data[account] = payload
	v.saves++
	return nil
}

// stored decodes the secure payload held by the vault.
func (v *memVault) stored(t *testing.T) map[string]map[string]any {
	t.Helper()
	out := map[string]map[string]any{}
	if v.data[SecureAccount] == "" {
		return out
	}
	if err := json.Unmarshal([]byte(v.data[SecureAccount]), &out); err != nil {
		t.Fatalf("decoding vault payload: %v", err)
	}
	return out
}

// testEnv holds the directories of an isolated configuration.
type testEnv struct {
	home    string
	project string
	vault   *memVault
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		home:    t.TempDir(),
		project: t.TempDir(),
		vault:   newMemVault(),
	}
}

func (e *testEnv) load(t *testing.T, opts ...Option) *Config {
	t.Helper()
	base := []Option{WithHomeDir(e.home), WithProjectDir(e.project), WithVault(e.vault)}
	cfg, err := Load(context.Background(), "zowe", append(base, opts...)...)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return cfg
}

func (e *testEnv) projectFile() string     { return filepath.Join(e.project, "zowe.config.json") }
func (e *testEnv) projectUserFile() string { return filepath.Join(e.project, "zowe.config.user.json") }
func (e *testEnv) globalFile() string      { return filepath.Join(e.home, "zowe.config.json") }
func (e *testEnv) globalUserFile() string  { return filepath.Join(e.home, "zowe.config.user.json") }
