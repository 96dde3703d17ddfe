// Package migrate converts V1 profiles (one YAML file per profile, grouped
// in a directory per profile type) into a team configuration.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"go.dot.industries/zcfg/internal/config"
)

// ProfilesDirName is the V1 profiles directory inside the application home.
const ProfilesDirName = "profiles"

// oldSuffix is appended to the profiles directory once it is converted.
const oldSuffix = "-old"

// secureMarker prefixes V1 property values whose real value lives in the
// credential manager.
const secureMarker = "managed by"

// renamedProps maps V1 property names to their current names.
var renamedProps = map[string]string{
	"hostname": "host",
	"username": "user",
	"pass":     "password",
}

// SecretStore holds the secure values of V1 profiles.
type SecretStore interface {
	Load(ctx context.Context, account string) (string, error)
	Delete(ctx context.Context, account string) error
}

// Failure records a profile, or a type's default, that could not be read.
type Failure struct {
	Type string
	Name string // empty when the type's meta file failed
	Err  error
}

// Converted is the team configuration built from a V1 profiles directory.
type Converted struct {
	Document          *config.Document
	NumProfilesFound  int
	ProfilesConverted map[string][]string
	ProfilesFailed    []Failure
}

// ProfileKey is the team config profile name for a V1 profile.
func ProfileKey(profileType, name string) string {
	return profileType + "_" + name
}

// SecretAccount is the credential manager account under which V1 stored a
// secure property.
func SecretAccount(profileType, name, prop string) string {
	return profileType + "_" + name + "_" + strings.ReplaceAll(prop, ".", "_")
}

// CountProfiles returns the number of V1 profile files under root. A missing
// root counts as zero.
func CountProfiles(root string) (int, error) {
	types, err := profileTypes(root)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, typ := range types {
		names, err := profileNames(filepath.Join(root, typ), typ)
		if err != nil {
			return 0, err
		}
		total += len(names)
	}
	return total, nil
}

// ConvertDir reads every V1 profile under root into a new document. Secure
// values are fetched from the first store holding them; a secure property
// with no stored value is dropped. Per-profile failures are collected rather
// than returned.
func ConvertDir(ctx context.Context, root string, stores ...SecretStore) (*Converted, error) {
	types, err := profileTypes(root)
	if err != nil {
		return nil, err
	}

	out := &Converted{
		Document:          config.EmptyDocument(),
		ProfilesConverted: make(map[string][]string),
	}

	for _, typ := range types {
		typeDir := filepath.Join(root, typ)
		names, err := profileNames(typeDir, typ)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			continue
		}
		out.NumProfilesFound += len(names)

		for _, name := range names {
			profile, err := convertProfile(ctx, typeDir, typ, name, stores)
			if err != nil {
				out.ProfilesFailed = append(out.ProfilesFailed, Failure{Type: typ, Name: name, Err: err})
				continue
			}
			out.Document.Profiles[ProfileKey(typ, name)] = profile
			out.ProfilesConverted[typ] = append(out.ProfilesConverted[typ], name)
		}

		def, err := readDefault(filepath.Join(typeDir, typ+"_meta.yaml"))
		if err != nil {
			out.ProfilesFailed = append(out.ProfilesFailed, Failure{Type: typ, Err: err})
			continue
		}
		if def != "" {
			out.Document.Defaults[typ] = ProfileKey(typ, def)
		}
	}

	renameProps(out.Document)
	out.Document.AutoStore = config.BoolPtr(true)

	return out, nil
}

// SecretAccounts lists the credential manager accounts referenced by the V1
// profiles under root.
func SecretAccounts(root string) ([]string, error) {
	types, err := profileTypes(root)
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, typ := range types {
		typeDir := filepath.Join(root, typ)
		names, err := profileNames(typeDir, typ)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			props, err := readProfile(filepath.Join(typeDir, name+".yaml"))
			if err != nil {
				continue
			}
			for _, key := range sortedKeys(props) {
				if isSecureMarker(props[key]) {
					accounts = append(accounts, SecretAccount(typ, name, key))
				}
			}
		}
	}
	return accounts, nil
}

func convertProfile(ctx context.Context, typeDir, typ, name string, stores []SecretStore) (*config.Profile, error) {
	props, err := readProfile(filepath.Join(typeDir, name+".yaml"))
	if err != nil {
		return nil, err
	}

	var secure []string
	for _, key := range sortedKeys(props) {
		if !isSecureMarker(props[key]) {
			continue
		}
		value, found, err := loadSecret(ctx, stores, SecretAccount(typ, name, key))
		if err != nil {
			return nil, err
		}
		if !found {
			delete(props, key)
			continue
		}
		props[key] = value
		secure = append(secure, key)
	}

	return &config.Profile{Type: typ, Properties: props, Secure: secure}, nil
}

// loadSecret returns the decoded value of account from the first store that
// has it. V1 stored values JSON-encoded; a value that is not JSON is
// returned as a plain string.
func loadSecret(ctx context.Context, stores []SecretStore, account string) (any, bool, error) {
	for _, store := range stores {
		raw, err := store.Load(ctx, account)
		if err != nil {
			return nil, false, fmt.Errorf("loading secure value %s: %w", account, err)
		}
		if raw == "" {
			continue
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return raw, true, nil
		}
		return value, true, nil
	}
	return nil, false, nil
}

func isSecureMarker(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, secureMarker)
}

// readProfile decodes a V1 profile file. Values are normalized to the shapes
// encoding/json produces so they compare equal to values read from a team
// config.
func readProfile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing profile %s: %w", path, err)
	}
	props := make(map[string]any)
	if err := json.Unmarshal(encoded, &props); err != nil {
		return nil, fmt.Errorf("normalizing profile %s: %w", path, err)
	}
	return props, nil
}

type metaFile struct {
	DefaultProfile string `yaml:"defaultProfile"`
}

// readDefault returns the default profile name from a type's meta file. A
// missing meta file means no default.
func readDefault(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading meta file %s: %w", path, err)
	}

	var meta metaFile
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return "", fmt.Errorf("parsing meta file %s: %w", path, err)
	}
	return meta.DefaultProfile, nil
}

// profileTypes lists the type directories under root, sorted.
func profileTypes(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profiles directory %s: %w", root, err)
	}

	var types []string
	for _, e := range entries {
		if e.IsDir() {
			types = append(types, e.Name())
		}
	}
	return types, nil
}

// profileNames lists the profile names in a type directory, skipping the
// type's meta file.
func profileNames(typeDir, typ string) ([]string, error) {
	entries, err := os.ReadDir(typeDir)
	if err != nil {
		return nil, fmt.Errorf("reading profile directory %s: %w", typeDir, err)
	}

	meta := typ + "_meta"
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".yaml")
		if name != meta {
			names = append(names, name)
		}
	}
	return names, nil
}

// renameProps replaces V1 property names with their current names, in both
// the properties and the secure list.
func renameProps(doc *config.Document) {
	for _, profile := range doc.Profiles {
		for oldName, newName := range renamedProps {
			if v, ok := profile.Properties[oldName]; ok {
				delete(profile.Properties, oldName)
				profile.Properties[newName] = v
			}
		}
		for i, name := range profile.Secure {
			if newName, ok := renamedProps[name]; ok {
				profile.Secure[i] = newName
			}
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
