package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.dot.industries/zcfg/internal/config"
)

// Message is one line of the conversion report.
type Message struct {
	Text  string
	Error bool
}

// Result reports what a conversion did.
type Result struct {
	Messages          []Message
	NumProfilesFound  int
	ProfilesConverted map[string][]string
	ProfilesFailed    []Failure
	ConfigPath        string
}

func (r *Result) report(format string, args ...any) {
	r.Messages = append(r.Messages, Message{Text: fmt.Sprintf(format, args...)})
}

func (r *Result) fail(format string, args ...any) {
	r.Messages = append(r.Messages, Message{Text: fmt.Sprintf(format, args...), Error: true})
}

// Options controls Run.
type Options struct {
	// Delete removes the converted profiles directory and the V1 secure
	// values instead of keeping them.
	Delete bool
	// Secrets are searched in order for V1 secure values.
	Secrets []SecretStore
	// Schema, when set, is written next to the new config file.
	Schema map[string]any
}

// Run converts the V1 profiles in the application home of cfg into its
// global team config. Nothing is converted when a team config already
// exists. The profiles directory is then renamed with an "-old" suffix, or
// deleted together with its secure values when opts.Delete is set.
//
// Problems are reported in the result; the returned error is reserved for
// failures that leave the conversion incomplete.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	root := filepath.Join(cfg.HomeDir(), ProfilesDirName)
	oldRoot := strings.TrimRight(root, `\/`) + oldSuffix

	res := &Result{ProfilesConverted: make(map[string][]string)}

	if cfg.Exists() {
		res.report("A team configuration was detected. V1 profiles will not be converted.")
	} else {
		n, err := CountProfiles(root)
		if err != nil {
			return res, err
		}
		res.NumProfilesFound = n
		if n == 0 {
			res.report("Found no V1 profiles to convert.")
		} else if err := convert(ctx, cfg, root, oldRoot, opts, res); err != nil {
			return res, err
		}
	}

	if opts.Delete {
		deleteOld(ctx, oldRoot, opts.Secrets, res)
		return res, nil
	}

	if res.ConfigPath != "" {
		res.report("Your V1 profiles have been moved to %s. Delete them by re-running this operation with --delete.", oldRoot)
		res.report("To convert them again, rename %s to %s and delete %s.", oldRoot, root, res.ConfigPath)
	}
	return res, nil
}

func convert(ctx context.Context, cfg *config.Config, root, oldRoot string, opts Options, res *Result) error {
	converted, err := ConvertDir(ctx, root, opts.Secrets...)
	if err != nil {
		return err
	}
	res.ProfilesConverted = converted.ProfilesConverted
	res.ProfilesFailed = converted.ProfilesFailed

	for _, typ := range sortedTypes(converted.ProfilesConverted) {
		res.report("Converted %s profiles: %s", typ, strings.Join(converted.ProfilesConverted[typ], ", "))
	}
	if len(converted.ProfilesFailed) > 0 {
		res.fail("Failed to convert %d profile(s). See details below:", len(converted.ProfilesFailed))
		for _, f := range converted.ProfilesFailed {
			if f.Name != "" {
				res.fail("Failed to load %s profile %q: %v", f.Type, f.Name, f.Err)
			} else {
				res.fail("Failed to find default %s profile: %v", f.Type, f.Err)
			}
		}
	}

	cfg.Layers().Activate(false, true)
	cfg.Layers().Merge(converted.Document)
	if opts.Schema != nil {
		if err := cfg.SetSchema("", opts.Schema); err != nil {
			return err
		}
	}
	if err := cfg.Save(ctx, false); err != nil {
		return fmt.Errorf("saving converted config: %w", err)
	}
	res.ConfigPath = cfg.LayerActive().Path

	if err := os.Rename(root, oldRoot); err != nil {
		res.fail("Failed to rename profiles directory to %s: %v", oldRoot, err)
	}
	res.report("Your new profiles have been saved to %s.", res.ConfigPath)
	return nil
}

// deleteOld removes the V1 secure values referenced by the converted
// profiles, then the directory itself.
func deleteOld(ctx context.Context, oldRoot string, stores []SecretStore, res *Result) {
	accounts, err := SecretAccounts(oldRoot)
	if err != nil {
		res.fail("Failed to list V1 secure values: %v", err)
	}
	for _, account := range accounts {
		deleted := true
		for _, store := range stores {
			if err := store.Delete(ctx, account); err != nil {
				res.fail("Failed to delete secure value %q: %v", account, err)
				deleted = false
			}
		}
		if deleted {
			res.report("Deleted secure value %q.", account)
		}
	}

	if _, err := os.Stat(oldRoot); err != nil {
		if !os.IsNotExist(err) {
			res.fail("Failed to inspect %s: %v", oldRoot, err)
		}
		return
	}
	if err := os.RemoveAll(oldRoot); err != nil {
		res.fail("Failed to delete the profiles directory %s: %v", oldRoot, err)
		return
	}
	res.report("Deleted the profiles directory %s.", oldRoot)
}

func sortedTypes(m map[string][]string) []string {
	types := make([]string, 0, len(m))
	for k := range m {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
