package config

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
)

// Vault stores the secure properties of every configuration file as one
// JSON payload under a single account.
type Vault interface {
	// Name identifies the credential manager in messages.
	Name() string

	// Initialized reports whether the backend is usable.
	Initialized() bool

	// Load returns the stored payload, or "" when nothing is stored yet.
	Load(ctx context.Context, account string) (string, error)

	// Save replaces the stored payload.
	Save(ctx context.Context, account, payload string) error
}

// Secure manages the secure properties of a Config. The cache maps a layer
// file path to the values of that layer's secure properties, keyed by
// storage path such as "profiles.base.properties.password".
type Secure struct {
	c *Config
}

// Secure returns the secure property API of c.
func (c *Config) Secure() Secure {
	return Secure{c: c}
}

// SecureInfo locates the secure list that governs one property.
type SecureInfo struct {
	// Path is the storage path of the secure list, e.g. "profiles.base.secure".
	Path string
	// Prop is the property name that appears in the list.
	Prop string
}

// Load reads the vault payload into the cache and splices the values into
// every layer.
func (s Secure) Load(ctx context.Context) error {
	if err := s.fetch(ctx); err != nil {
		return err
	}

	for _, layer := range s.c.layers {
		s.c.spliceSecure(layer)
	}

	return nil
}

// fetch replaces the cache with the vault payload.
func (s Secure) fetch(ctx context.Context) error {
	c := s.c

	if c.vault == nil {
		return nil
	}
	if !c.vault.Initialized() {
		c.setLoadFailed(true)
		return &SecureUnavailableError{Manager: c.vault.Name(), Op: "load"}
	}

	payload, err := c.vault.Load(ctx, SecureAccount)
	if err != nil {
		c.setLoadFailed(true)
		return fmt.Errorf("loading secure properties from %s: %w", c.vault.Name(), err)
	}

	secure := map[string]map[string]any{}
	if strings.TrimSpace(payload) != "" {
		plain, err := hujson.Standardize([]byte(payload))
		if err != nil {
			c.setLoadFailed(true)
			return fmt.Errorf("decoding secure properties from %s: %w", c.vault.Name(), err)
		}
		if err := json.Unmarshal(plain, &secure); err != nil {
			c.setLoadFailed(true)
			return fmt.Errorf("decoding secure properties from %s: %w", c.vault.Name(), err)
		}
	}

	c.secure = secure
	c.setLoadFailed(false)

	c.logger.Debug().Str("manager", c.vault.Name()).Int("files", len(secure)).Msg("loaded secure properties")

	return nil
}

// LoadCached splices cached secure values into the active layer without
// contacting the vault.
func (s Secure) LoadCached() {
	s.c.spliceSecure(s.c.LayerActive())
}

// CacheAndPrune records the current secure values of the active layer in the
// cache, dropping entries for properties no longer declared secure. When
// props is non-nil the secure values are also deleted from it.
func (s Secure) CacheAndPrune(props *Document) {
	layer := s.c.LayerActive()
	s.c.cacheLayer(layer, collectSecure(layer.Properties))
	if props != nil {
		pruneSecure(props)
	}
}

// Save caches the secure values of the active layer, or of all layers, and
// writes the whole cache to the vault.
func (s Secure) Save(ctx context.Context, allLayers bool) error {
	layers := []*Layer{s.c.LayerActive()}
	if allLayers {
		layers = s.c.layers
	}
	return s.save(ctx, layers)
}

func (s Secure) save(ctx context.Context, layers []*Layer) error {
	c := s.c

	pending := make(map[string]map[string]any, len(layers))
	values := 0
	for _, layer := range layers {
		sp := collectSecure(layer.Properties)
		pending[layer.Path] = sp
		values += len(sp)
	}

	if c.vault == nil || !c.vault.Initialized() {
		if values == 0 {
			return nil
		}
		return &SecureUnavailableError{Manager: vaultName(c.vault), Op: "save"}
	}

	// Never overwrite the payload without having read what other files keep
	// in it.
	if c.loadFailed == nil {
		if err := s.fetch(ctx); err != nil {
			return err
		}
	}
	if *c.loadFailed {
		if values == 0 {
			return nil
		}
		return &SecureUnavailableError{Manager: c.vault.Name(), Op: "save"}
	}

	changed := false
	for _, layer := range layers {
		sp := pending[layer.Path]
		if _, had := c.secure[layer.Path]; had || len(sp) > 0 {
			changed = true
		}
		c.cacheLayer(layer, sp)
	}

	if !changed {
		return nil
	}

	return s.store(ctx)
}

// store writes the cache to the vault.
func (s Secure) store(ctx context.Context) error {
	c := s.c

	payload, err := json.Marshal(c.secure)
	if err != nil {
		return fmt.Errorf("encoding secure properties: %w", err)
	}

	if err := c.vault.Save(ctx, SecureAccount, string(payload)); err != nil {
		return fmt.Errorf("saving secure properties to %s: %w", c.vault.Name(), err)
	}

	c.logger.Debug().Str("manager", c.vault.Name()).Int("files", len(c.secure)).Msg("saved secure properties")

	return nil
}

// SecureFields lists the storage paths of every secure property declared in
// the active layer.
func (s Secure) SecureFields() []string {
	return secureFieldPaths(s.c.LayerActive().Properties.Profiles)
}

// SecurePropsForProfile lists the secure property names that apply to a
// profile, including those declared on its ancestors.
func (s Secure) SecurePropsForProfile(name string) []string {
	target := ExpandPath(name)

	var props []string
	for _, path := range s.SecureFields() {
		owner, prop, ok := splitPropertyPath(path)
		if !ok {
			continue
		}
		prefix := ExpandPath(owner)
		if target == prefix || strings.HasPrefix(target, prefix+".") {
			if !contains(props, prop) {
				props = append(props, prop)
			}
		}
	}

	return props
}

// SecureInfoForProp returns the secure list that governs the property at
// path. With findUp set, the profile's ancestors in the active layer are
// searched for a secure list that already names the property; otherwise, or
// when none does, the property's own profile is returned. ok is false when
// path does not address a profile property.
func (s Secure) SecureInfoForProp(path string, findUp bool) (SecureInfo, bool) {
	name, prop, ok := splitPropertyPath(path)
	if !ok {
		return SecureInfo{}, false
	}

	if findUp {
		layer := s.c.LayerActive()
		segments := strings.Split(name, ".")
		for i := len(segments); i > 0; i-- {
			owner := strings.Join(segments[:i], ".")
			p := findProfile(layer.Properties.Profiles, owner)
			if p != nil && contains(p.Secure, prop) {
				return SecureInfo{Path: ExpandPath(owner) + ".secure", Prop: prop}, true
			}
		}
	}

	return SecureInfo{Path: ExpandPath(name) + ".secure", Prop: prop}, true
}

// RemoveUnusedProps drops cache entries for configuration files that no
// longer exist and returns their paths.
func (s Secure) RemoveUnusedProps() []string {
	var removed []string
	for path := range s.c.secure {
		if !fileExists(path) {
			delete(s.c.secure, path)
			removed = append(removed, path)
		}
	}
	sort.Strings(removed)
	return removed
}

// LoadFailed reports whether secure values could not be loaded. Before any
// load attempt it reports whether the vault is unusable.
func (s Secure) LoadFailed() bool {
	if s.c.loadFailed != nil {
		return *s.c.loadFailed
	}
	return s.c.vault == nil || !s.c.vault.Initialized()
}

func (c *Config) setLoadFailed(failed bool) {
	c.loadFailed = &failed
}

// spliceSecure copies cached secure values into the layer's profiles.
func (c *Config) spliceSecure(layer *Layer) {
	entries := c.secure[layer.Path]
	if len(entries) == 0 {
		return
	}

	for _, path := range secureFieldPaths(layer.Properties.Profiles) {
		val, ok := entries[path]
		if !ok {
			continue
		}
		name, prop, ok := splitPropertyPath(path)
		if !ok {
			continue
		}
		p := findProfile(layer.Properties.Profiles, name)
		if p == nil {
			continue
		}
		if p.Properties == nil {
			p.Properties = map[string]any{}
		}
		p.Properties[prop] = cloneValue(val)
	}
}

// cacheLayer replaces the cache entry of a layer.
func (c *Config) cacheLayer(layer *Layer, values map[string]any) {
	if c.vault == nil {
		return
	}
	if c.secure == nil {
		c.secure = map[string]map[string]any{}
	}

	delete(c.secure, layer.Path)
	if len(values) > 0 {
		c.secure[layer.Path] = values
	}
}

// collectSecure returns the values of every declared secure property that
// is set in doc.
func collectSecure(doc *Document) map[string]any {
	values := map[string]any{}
	if doc == nil {
		return values
	}

	for _, path := range secureFieldPaths(doc.Profiles) {
		name, prop, ok := splitPropertyPath(path)
		if !ok {
			continue
		}
		p := findProfile(doc.Profiles, name)
		if p == nil {
			continue
		}
		if val, ok := p.Properties[prop]; ok && val != nil {
			values[path] = cloneValue(val)
		}
	}

	return values
}

// pruneSecure deletes every declared secure property from doc.
func pruneSecure(doc *Document) {
	forEachSecure(doc, func(p *Profile, prop string) {
		delete(p.Properties, prop)
		if len(p.Properties) == 0 {
			p.Properties = nil
		}
	})
}

// maskSecure replaces every set secure property in doc with SecureValue.
func maskSecure(doc *Document) {
	forEachSecure(doc, func(p *Profile, prop string) {
		if _, ok := p.Properties[prop]; ok {
			p.Properties[prop] = SecureValue
		}
	})
}

func forEachSecure(doc *Document, fn func(p *Profile, prop string)) {
	if doc == nil {
		return
	}

	for _, path := range secureFieldPaths(doc.Profiles) {
		name, prop, ok := splitPropertyPath(path)
		if !ok {
			continue
		}
		if p := findProfile(doc.Profiles, name); p != nil {
			fn(p, prop)
		}
	}
}

func vaultName(v Vault) string {
	if v == nil {
		return ""
	}
	return v.Name()
}
