// Package profiletypes holds the catalog of profile type definitions used
// to generate starter configs and their JSON schema.
package profiletypes

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"go.dot.industries/zcfg/internal/config"
)

//go:embed types.yaml
var builtin []byte

// Catalog is a set of profile types and the type used as the base profile.
type Catalog struct {
	Base  string               `yaml:"base"`
	Types []config.ProfileType `yaml:"types"`
}

// Builtin returns the catalog shipped with the binary.
func Builtin() (*Catalog, error) {
	cat, err := decode(builtin)
	if err != nil {
		return nil, fmt.Errorf("built-in profile types: %w", err)
	}
	return cat, nil
}

// Read decodes a catalog from r.
func Read(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading profile types: %w", err)
	}
	return decode(data)
}

// LoadFile decodes the catalog stored at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening profile types %s: %w", path, err)
	}
	defer f.Close()

	cat, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Find returns the type named typ.
func (c *Catalog) Find(typ string) (config.ProfileType, bool) {
	for _, pt := range c.Types {
		if pt.Type == typ {
			return pt, true
		}
	}
	return config.ProfileType{}, false
}

// Extend adds the types of other, replacing same-named types in place.
func (c *Catalog) Extend(other *Catalog) {
	for _, pt := range other.Types {
		replaced := false
		for i := range c.Types {
			if c.Types[i].Type == pt.Type {
				c.Types[i] = pt
				replaced = true
				break
			}
		}
		if !replaced {
			c.Types = append(c.Types, pt)
		}
	}
	if other.Base != "" {
		c.Base = other.Base
	}
}

func decode(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing profile types: %w", err)
	}

	for i, pt := range cat.Types {
		if pt.Type == "" {
			return nil, fmt.Errorf("profile type %d has no name", i)
		}
		for name, def := range pt.Properties {
			def.Default = jsonValue(def.Default)
			for j, v := range def.Enum {
				def.Enum[j] = jsonValue(v)
			}
			pt.Properties[name] = def
		}
	}

	if cat.Base != "" {
		if _, ok := cat.Find(cat.Base); !ok {
			return nil, fmt.Errorf("base type %q is not defined", cat.Base)
		}
	}

	return &cat, nil
}

// jsonValue converts YAML scalars to the types encoding/json decodes to, so
// defaults compare equal to values read back from a config file.
func jsonValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = jsonValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = jsonValue(item)
		}
		return out
	default:
		return v
	}
}
