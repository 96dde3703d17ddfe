// Package settings reads and edits the CLI settings file
// (~/.<app>/settings.toml), which selects the credential manager and the
// Vault server backing secure properties.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/creachadair/tomledit"
	"github.com/creachadair/tomledit/parser"
	"github.com/creachadair/tomledit/transform"
	toml "github.com/pelletier/go-toml/v2"
)

// FileName is the settings file inside the application home directory.
const FileName = "settings.toml"

const (
	dirPerms  = 0700
	filePerms = 0600
)

// Settings is the content of settings.toml.
type Settings struct {
	Overrides Overrides     `toml:"overrides"`
	Vault     VaultSettings `toml:"vault"`
}

// Overrides replaces built-in components.
type Overrides struct {
	// CredentialManager is one of keyring, memory, vault or none.
	CredentialManager string `toml:"credential-manager"`
}

// VaultSettings locates the HashiCorp Vault KV v2 store used when the
// credential manager is "vault".
type VaultSettings struct {
	Address string `toml:"address"`
	Mount   string `toml:"mount"`
	Dir     string `toml:"dir"`
}

// Default returns the settings in effect when no file exists.
func Default(app string) *Settings {
	return &Settings{
		Overrides: Overrides{CredentialManager: "keyring"},
		Vault:     VaultSettings{Mount: "secret", Dir: app},
	}
}

// Path returns the settings file path inside homeDir.
func Path(homeDir string) string {
	return filepath.Join(homeDir, FileName)
}

// Load reads the settings file at path over the defaults for app. A missing
// file yields the defaults.
func Load(path string, app string) (*Settings, error) {
	s := Default(app)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	return s, nil
}

// keys maps each settable key to its field.
var keys = map[string]func(*Settings) *string{
	"overrides.credential-manager": func(s *Settings) *string { return &s.Overrides.CredentialManager },
	"vault.address":                func(s *Settings) *string { return &s.Vault.Address },
	"vault.mount":                  func(s *Settings) *string { return &s.Vault.Mount },
	"vault.dir":                    func(s *Settings) *string { return &s.Vault.Dir },
}

// Keys lists the settable keys, sorted.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the value of a dotted key such as "vault.address".
func (s *Settings) Get(key string) (string, error) {
	field, ok := keys[key]
	if !ok {
		return "", unknownKey(key)
	}
	return *field(s), nil
}

// Set writes key = value into the settings file at path, keeping the
// comments and layout of the rest of the file. The file is created when
// missing.
func Set(path, key, value string) error {
	if _, ok := keys[key]; !ok {
		return unknownKey(key)
	}
	section, name, _ := strings.Cut(key, ".")

	doc, perm, err := readDoc(path)
	if err != nil {
		return err
	}

	quoted := parser.MustValue(strconv.Quote(value))
	if entry := doc.First(section, name); entry != nil && entry.KeyValue != nil {
		entry.KeyValue.Value = quoted
	} else {
		sec := findSection(doc, section)
		if sec == nil {
			sec = &tomledit.Section{Heading: &parser.Heading{Name: parser.Key{section}}}
			doc.Sections = append(doc.Sections, sec)
		}
		transform.InsertMapping(sec, &parser.KeyValue{Name: parser.Key{name}, Value: quoted}, false)
	}

	var buf bytes.Buffer
	var fmtr tomledit.Formatter
	if err := fmtr.Format(&buf, doc); err != nil {
		return fmt.Errorf("formatting settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// readDoc parses the file at path, or an empty document when it is missing.
// It also returns the permissions to write the file back with.
func readDoc(path string) (*tomledit.Document, os.FileMode, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, 0, fmt.Errorf("reading settings %s: %w", path, err)
	}

	perm := os.FileMode(filePerms)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	doc, err := tomledit.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	return doc, perm, nil
}

func findSection(doc *tomledit.Document, name string) *tomledit.Section {
	for _, e := range doc.Find(name) {
		if e.IsSection() {
			return e.Section
		}
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
}
