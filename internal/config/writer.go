package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
)

const (
	dirPerms  = 0755
	filePerms = 0644
)

// patchOp is one RFC 6902 operation.
type patchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// renderDocument produces the file content for doc. When source holds the
// tree the file was read from, the changes are applied to it as a patch so
// comments attached to untouched keys are kept verbatim. It returns the new
// source tree.
func renderDocument(doc *Document, source *hujson.Value) (*hujson.Value, error) {
	if source == nil {
		data, err := json.MarshalIndent(doc, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}
		fresh, err := hujson.Parse(append(data, '\n'))
		if err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}
		return &fresh, nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	var desired any
	if err := json.Unmarshal(data, &desired); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	standard := source.Clone()
	standard.Standardize()
	var current any
	if err := json.Unmarshal(standard.Pack(), &current); err != nil {
		return nil, fmt.Errorf("decoding existing config: %w", err)
	}

	ops := diffValues("", current, desired, nil)
	out := source.Clone()
	if len(ops) > 0 {
		patch, err := json.Marshal(ops)
		if err != nil {
			return nil, fmt.Errorf("encoding config patch: %w", err)
		}
		if err := out.Patch(patch); err != nil {
			return nil, fmt.Errorf("applying config patch: %w", err)
		}
	}
	out.Format()
	dropTrailingCommas(&out)

	return &out, nil
}

// dropTrailingCommas removes the commas Format puts after the last member
// of multi-line objects and arrays, so files stay readable as plain JSON.
func dropTrailingCommas(v *hujson.Value) {
	for node := range v.All() {
		var last *hujson.Value
		var after *hujson.Extra
		switch comp := node.Value.(type) {
		case *hujson.Object:
			if n := len(comp.Members); n > 0 {
				last, after = &comp.Members[n-1].Value, &comp.AfterExtra
			}
		case *hujson.Array:
			if n := len(comp.Elements); n > 0 {
				last, after = &comp.Elements[n-1], &comp.AfterExtra
			}
		}
		if last != nil && last.AfterExtra != nil {
			*after = append(last.AfterExtra, *after...)
			last.AfterExtra = nil
		}
	}
	v.UpdateOffsets()
}

// diffValues appends the operations that turn from into to. Objects are
// compared key by key; any other differing value is replaced whole.
func diffValues(path string, from, to any, ops []patchOp) []patchOp {
	fromMap, fromIsMap := from.(map[string]any)
	toMap, toIsMap := to.(map[string]any)

	if !fromIsMap || !toIsMap {
		if !reflect.DeepEqual(from, to) {
			ops = append(ops, patchOp{Op: "replace", Path: path, Value: rawJSON(to)})
		}
		return ops
	}

	for _, key := range sortedKeys(fromMap) {
		if _, ok := toMap[key]; !ok {
			ops = append(ops, patchOp{Op: "remove", Path: path + "/" + escapePointer(key)})
		}
	}

	for _, key := range sortedKeys(toMap) {
		child := path + "/" + escapePointer(key)
		fv, ok := fromMap[key]
		if !ok {
			ops = append(ops, patchOp{Op: "add", Path: child, Value: rawJSON(toMap[key])})
			continue
		}
		ops = diffValues(child, fv, toMap[key], ops)
	}

	return ops
}

// rawJSON encodes a value that came out of json.Unmarshal, which cannot fail
// to encode again.
func rawJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

// escapePointer escapes a key for use as a JSON pointer token.
func escapePointer(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	return strings.ReplaceAll(key, "/", "~1")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeFile writes rendered content to path, creating parent directories.
func writeFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, content, filePerms); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
