package config

import (
	"fmt"
)

// Profiles reads profiles from the merged view of all layers and writes
// them to the active layer.
type Profiles struct {
	c *Config
}

// Profiles returns the profile API of c.
func (c *Config) Profiles() Profiles {
	return Profiles{c: c}
}

// Get returns the properties of a profile merged with those of its
// ancestors, a child's value overriding an ancestor's. Secure values are
// included when they were loaded.
func (p Profiles) Get(name string) (map[string]any, error) {
	merged := p.c.Properties()
	if findProfile(merged.Profiles, name) == nil {
		return nil, fmt.Errorf("profile %q: %w", name, ErrProfileNotFound)
	}
	return buildProfile(merged.Profiles, name), nil
}

// GetOptional is Get returning an empty map for a missing profile.
func (p Profiles) GetOptional(name string) map[string]any {
	props, err := p.Get(name)
	if err != nil {
		return map[string]any{}
	}
	return props
}

// Exists reports whether a profile is defined in any layer.
func (p Profiles) Exists(name string) bool {
	return findProfile(p.c.Properties().Profiles, name) != nil
}

// Set stores a copy of profile in the active layer, replacing any profile of
// that name together with its children. Missing ancestors are created as
// empty containers.
func (p Profiles) Set(name string, profile *Profile) {
	layer := p.c.LayerActive()

	stored := profile.Clone()
	if stored == nil {
		stored = &Profile{}
	}
	if len(stored.Properties) == 0 {
		stored.Properties = nil
	}

	parent, leaf := ensureParent(layer.Properties, name)
	parent[leaf] = stored
}

// Type returns the type of a profile from the merged view, or "".
func (p Profiles) Type(name string) string {
	if profile := findProfile(p.c.Properties().Profiles, name); profile != nil {
		return profile.Type
	}
	return ""
}

// DefaultSet makes name the default profile of type typ in the active layer.
func (p Profiles) DefaultSet(typ, name string) {
	layer := p.c.LayerActive()
	layer.Properties.normalize()
	layer.Properties.Defaults[typ] = name
}

// DefaultGet returns the properties of the default profile of type typ.
func (p Profiles) DefaultGet(typ string) (map[string]any, error) {
	name := p.DefaultName(typ)
	if name == "" {
		return nil, fmt.Errorf("no default %s profile: %w", typ, ErrProfileNotFound)
	}
	return p.Get(name)
}

// DefaultName returns the name of the default profile of type typ, or "".
func (p Profiles) DefaultName(typ string) string {
	return p.c.Properties().Defaults[typ]
}

// Names lists every profile name in the merged view, sorted.
func (p Profiles) Names() []string {
	return profileNames(p.c.Properties().Profiles)
}

// NamesOfType lists the profiles of type typ in the merged view, sorted.
func (p Profiles) NamesOfType(typ string) []string {
	merged := p.c.Properties().Profiles

	var names []string
	for _, name := range profileNames(merged) {
		if findProfile(merged, name).Type == typ {
			names = append(names, name)
		}
	}
	return names
}
