package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/tui"
)

// printValue writes v as YAML, or as indented JSON when asJSON is set.
func printValue(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	tree, err := toTree(v)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}

// toTree converts v to plain maps and slices through its JSON encoding,
// so YAML output uses the JSON field names.
func toTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}

	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	return tree, nil
}

// lookupPath returns the value at a dotted path inside v.
func lookupPath(v any, path string) (any, bool, error) {
	tree, err := toTree(v)
	if err != nil {
		return nil, false, err
	}

	for _, segment := range strings.Split(path, ".") {
		obj, ok := tree.(map[string]any)
		if !ok {
			return nil, false, nil
		}
		if tree, ok = obj[segment]; !ok {
			return nil, false, nil
		}
	}
	return tree, true, nil
}

// newPrompter returns a prompter on the command's stdio.
func newPrompter(cmd *cobra.Command) *tui.Prompter {
	return tui.NewPrompter(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr())
}

// printSaved reports the file the active layer was written to.
func printSaved(cmd *cobra.Command, cfg *config.Config) {
	printSavedPath(cmd, cfg.LayerActive().Path)
}

// printSavedPath reports a written file.
func printSavedPath(cmd *cobra.Command, path string) {
	fmt.Fprintln(cmd.OutOrStdout(), tui.Success("Saved")+" "+path)
}
