package config

import (
	"github.com/tailscale/hujson"
)

const (
	// SecureValue masks secure property values in displayed configuration.
	SecureValue = "(secure value)"

	// SecureAccount is the vault account under which all secure values of
	// all configuration files are stored as one JSON payload.
	SecureAccount = "secure_config_props"

	teamConfigSuffix = ".config.json"
	userConfigSuffix = ".config.user.json"
	schemaSuffix     = ".schema.json"
)

// Document is the content of one configuration file.
type Document struct {
	Schema    string              `json:"$schema,omitempty"`
	Profiles  map[string]*Profile `json:"profiles"`
	Defaults  map[string]string   `json:"defaults"`
	Plugins   []string            `json:"plugins,omitempty"`
	AutoStore *bool               `json:"autoStore,omitempty"`
}

// Profile is a node in the profile tree. A profile without a Type that only
// holds nested Profiles is an organizational container.
type Profile struct {
	Type       string              `json:"type,omitempty"`
	Properties map[string]any      `json:"properties,omitempty"`
	Secure     []string            `json:"secure,omitempty"`
	Profiles   map[string]*Profile `json:"profiles,omitempty"`
}

// Layer binds a Document to one of the four configuration files.
type Layer struct {
	Path       string
	Exists     bool
	User       bool
	Global     bool
	Properties *Document

	// source is the comment-bearing tree the layer was read from. Writes are
	// applied to it as a patch so untouched comments survive.
	source *hujson.Value
}

// layerIndex orders the four layers by precedence, highest first.
type layerIndex int

const (
	layerProjectUser layerIndex = iota
	layerProject
	layerGlobalUser
	layerGlobal
)

// EmptyDocument returns a document with empty profiles and defaults.
func EmptyDocument() *Document {
	return &Document{
		Profiles: map[string]*Profile{},
		Defaults: map[string]string{},
	}
}

// BoolPtr returns a pointer to b. Handy for Document.AutoStore.
func BoolPtr(b bool) *bool {
	return &b
}

// normalize fills in the maps a document must always carry.
func (d *Document) normalize() {
	if d.Profiles == nil {
		d.Profiles = map[string]*Profile{}
	}
	if d.Defaults == nil {
		d.Defaults = map[string]string{}
	}
}

// Clone creates a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	out := &Document{
		Schema:   d.Schema,
		Profiles: cloneProfiles(d.Profiles),
		Defaults: copyStringMap(d.Defaults),
	}
	if d.Profiles == nil {
		out.Profiles = nil
	}
	if d.Defaults == nil {
		out.Defaults = nil
	}
	if d.Plugins != nil {
		out.Plugins = append([]string{}, d.Plugins...)
	}
	if d.AutoStore != nil {
		out.AutoStore = BoolPtr(*d.AutoStore)
	}

	return out
}

// Clone creates a deep copy of the profile and its children.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	out := &Profile{
		Type:       p.Type,
		Properties: cloneMap(p.Properties),
		Profiles:   cloneProfiles(p.Profiles),
	}
	if p.Secure != nil {
		out.Secure = append([]string{}, p.Secure...)
	}

	return out
}

// Clone creates a deep copy of the layer, including its source tree.
func (l *Layer) Clone() *Layer {
	out := &Layer{
		Path:       l.Path,
		Exists:     l.Exists,
		User:       l.User,
		Global:     l.Global,
		Properties: l.Properties.Clone(),
	}
	if l.source != nil {
		src := l.source.Clone()
		out.source = &src
	}

	return out
}

func cloneProfiles(src map[string]*Profile) map[string]*Profile {
	if src == nil {
		return nil
	}

	dst := make(map[string]*Profile, len(src))
	for name, p := range src {
		dst[name] = p.Clone()
	}

	return dst
}

// cloneMap creates a deep copy of a JSON object.
func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}

	return dst
}

// cloneValue creates a deep copy of a JSON value.
func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		dst := make([]any, len(v))
		for i, item := range v {
			dst[i] = cloneValue(item)
		}
		return dst
	default:
		return val
	}
}

// copyStringMap creates a shallow copy of a string map.
func copyStringMap(src map[string]string) map[string]string {
	result := make(map[string]string, len(src))
	for k, v := range src {
		result[k] = v
	}
	return result
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
