// Package bridge adapts the config API for use by the TUI. Every method
// works on the one Config the TUI was started with and persists edits to
// its active layer. Methods serialize access to the Config, so Bubble Tea
// commands may call them from their own goroutines.
package bridge

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.dot.industries/zcfg/internal/config"
)

// LayerTarget describes one of the four config layers.
type LayerTarget struct {
	Label  string // e.g. "project" or "global user"
	User   bool
	Global bool
	Path   string
	Exists bool
}

// Profile is one entry of the profile list.
type Profile struct {
	Name      string // dotted name, e.g. "lpar1.zosmf"
	Type      string
	IsDefault bool
}

// Property is one resolved property of a profile.
type Property struct {
	Name      string
	Value     any
	Secure    bool
	Inherited bool // defined on an ancestor profile
	Path      string
}

// Bridge provides TUI access to a loaded config.
type Bridge struct {
	ctx context.Context

	mu  sync.Mutex
	cfg *config.Config
}

// New creates a Bridge over cfg. ctx bounds vault calls made while saving.
func New(ctx context.Context, cfg *config.Config) *Bridge {
	return &Bridge{ctx: ctx, cfg: cfg}
}

// App returns the application name of the config.
func (b *Bridge) App() string {
	return b.cfg.App()
}

// Reload re-reads every layer and the vault.
func (b *Bridge) Reload() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.cfg.Reload(b.ctx)
}

// Layers lists the four layers in precedence order.
func (b *Bridge) Layers() []LayerTarget {
	b.mu.Lock()
	defer b.mu.Unlock()

	layers := b.cfg.AllLayers()
	out := make([]LayerTarget, 0, len(layers))
	for _, l := range layers {
		out = append(out, LayerTarget{
			Label:  LayerLabel(l.User, l.Global),
			User:   l.User,
			Global: l.Global,
			Path:   l.Path,
			Exists: l.Exists,
		})
	}
	return out
}

// ActiveLayer returns the layer edits are written to.
func (b *Bridge) ActiveLayer() LayerTarget {
	b.mu.Lock()
	defer b.mu.Unlock()

	l := b.cfg.LayerActive()
	return LayerTarget{
		Label:  LayerLabel(l.User, l.Global),
		User:   l.User,
		Global: l.Global,
		Path:   l.Path,
		Exists: l.Exists,
	}
}

// Activate makes target the layer edits are written to.
func (b *Bridge) Activate(target LayerTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cfg.Layers().Activate(target.User, target.Global)
}

// Profiles lists every profile of the merged config, sorted by name.
func (b *Bridge) Profiles() []Profile {
	b.mu.Lock()
	defer b.mu.Unlock()

	props := b.cfg.Properties()

	defaults := make(map[string]bool, len(props.Defaults))
	for _, name := range props.Defaults {
		defaults[name] = true
	}

	names := b.cfg.Profiles().Names()
	out := make([]Profile, 0, len(names))
	for _, name := range names {
		out = append(out, Profile{
			Name:      name,
			Type:      b.cfg.Profiles().Type(name),
			IsDefault: defaults[name],
		})
	}
	return out
}

// Properties resolves the properties of profile, including those inherited
// from its ancestors, sorted by name.
func (b *Bridge) Properties(profile string) ([]Property, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	resolved, err := b.cfg.Profiles().Get(profile)
	if err != nil {
		return nil, err
	}

	own := ownProperties(b.cfg.Properties(), profile)
	secure := make(map[string]bool)
	for _, name := range b.cfg.Secure().SecurePropsForProfile(profile) {
		secure[name] = true
	}

	out := make([]Property, 0, len(resolved))
	for name, value := range resolved {
		_, isOwn := own[name]
		out = append(out, Property{
			Name:      name,
			Value:     value,
			Secure:    secure[name],
			Inherited: !isOwn,
			Path:      config.ExpandPath(profile) + ".properties." + name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetProperty assigns a property of profile in the active layer and saves
// the layer. value is coerced to a boolean or number when it spells one.
func (b *Bridge) SetProperty(profile, name, value string, secure bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if name == "" {
		return fmt.Errorf("property name is required")
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("property name %q must not contain dots", name)
	}

	path := config.ExpandPath(profile) + ".properties." + name
	if err := b.cfg.Set(path, config.CoerceValue(value), config.SetOptions{Secure: &secure}); err != nil {
		return err
	}
	return b.cfg.Save(b.ctx, false)
}

// DeleteProperty removes a property of profile from the active layer and
// saves the layer.
func (b *Bridge) DeleteProperty(profile, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := config.ExpandPath(profile) + ".properties." + name
	if err := b.cfg.Delete(path, config.DeleteOptions{}); err != nil {
		return err
	}
	return b.cfg.Save(b.ctx, false)
}

// LayerLabel names a layer for display.
func LayerLabel(user, global bool) string {
	label := "project"
	if global {
		label = "global"
	}
	if user {
		label += " user"
	}
	return label
}

// FormatValue renders a property value on one line.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// ownProperties returns the properties declared on profile itself.
func ownProperties(doc *config.Document, name string) map[string]any {
	profiles := doc.Profiles
	var p *config.Profile
	for _, segment := range strings.Split(name, ".") {
		p = profiles[segment]
		if p == nil {
			return nil
		}
		profiles = p.Profiles
	}
	return p.Properties
}
