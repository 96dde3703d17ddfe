package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Search walks up directories starting from startDir looking for file.
// Directories listed in ignoreDirs are skipped but the walk continues past
// them. Returns the absolute path of the first match, or "" if none exists.
func Search(file string, startDir string, ignoreDirs ...string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path for %s: %w", startDir, err)
	}

	ignored := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		if abs, err := filepath.Abs(d); err == nil {
			ignored[abs] = true
		}
	}

	for {
		if !ignored[dir] {
			candidate := filepath.Join(dir, file)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

// defaultHomeDir returns ~/.<app>.
func defaultHomeDir(app string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, "."+app), nil
}

// layerPath computes the file bound to one of the four layers.
func (c *Config) layerPath(idx layerIndex) (string, error) {
	switch idx {
	case layerProjectUser, layerProject:
		name := c.ConfigName()
		if idx == layerProjectUser {
			name = c.UserConfigName()
		}
		found, err := Search(name, c.projectDir, c.homeDir)
		if err != nil {
			return "", err
		}
		if found != "" {
			return found, nil
		}
		return filepath.Join(c.projectDir, name), nil
	case layerGlobalUser:
		return filepath.Join(c.homeDir, c.UserConfigName()), nil
	default:
		return filepath.Join(c.homeDir, c.ConfigName()), nil
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
