// Package config implements the layered team configuration: four JSON files
// (project/global scope, each with a user override) holding a tree of
// profiles, merged on read, with secure properties kept in a credential
// vault instead of on disk.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Option configures a Config at load time.
type Option func(*Config)

// WithHomeDir sets the application home directory holding the global
// layers. Defaults to ~/.<app>.
func WithHomeDir(dir string) Option {
	return func(c *Config) {
		c.homeDir = dir
	}
}

// WithProjectDir sets the directory the project layer search starts from.
// Defaults to the working directory.
func WithProjectDir(dir string) Option {
	return func(c *Config) {
		c.projectDir = dir
	}
}

// WithVault attaches the credential vault holding secure properties. Nil
// values are ignored.
func WithVault(v Vault) Option {
	return func(c *Config) {
		if v != nil {
			c.vault = v
		}
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithoutLoad builds the layer set without reading any file or the vault.
func WithoutLoad() Option {
	return func(c *Config) {
		c.noLoad = true
	}
}

// Config is the layered configuration of one application. Create it with
// Load; the zero value has no layers. A Config is not safe for concurrent
// use; one process is expected to own it.
type Config struct {
	app        string
	homeDir    string
	projectDir string
	noLoad     bool
	logger     zerolog.Logger

	// layers is always ordered project-user, project, global-user, global.
	layers       []*Layer
	activeUser   bool
	activeGlobal bool

	vault      Vault
	secure     map[string]map[string]any
	loadFailed *bool
}

// Load discovers and reads the four configuration layers of app, selects
// the active layer and splices in secure values from the vault.
//
// A malformed layer file aborts the load with a *ParseError. An
// uninitialized vault does not: the layers load without their secure values
// and Secure().LoadFailed reports true.
func Load(ctx context.Context, app string, opts ...Option) (*Config, error) {
	if app == "" {
		return nil, fmt.Errorf("application name is required")
	}

	c := &Config{
		app:    app,
		logger: zerolog.Nop(),
		secure: map[string]map[string]any{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.Reload(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Reload rebuilds the layer set from disk and reloads secure values.
func (c *Config) Reload(ctx context.Context) error {
	if c.homeDir == "" {
		home, err := defaultHomeDir(c.app)
		if err != nil {
			return err
		}
		c.homeDir = home
	}

	if c.projectDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		c.projectDir = cwd
	}

	layers := make([]*Layer, 0, 4)
	for idx := layerProjectUser; idx <= layerGlobal; idx++ {
		path, err := c.layerPath(idx)
		if err != nil {
			return err
		}
		layers = append(layers, &Layer{
			Path:       path,
			User:       idx == layerProjectUser || idx == layerGlobalUser,
			Global:     idx == layerGlobalUser || idx == layerGlobal,
			Properties: EmptyDocument(),
		})
	}
	c.layers = layers

	// With no file present the highest-precedence layer, project-user, is
	// the one a first write creates.
	c.activeUser, c.activeGlobal = true, false
	activeFound := false
	for _, layer := range c.layers {
		if !c.noLoad {
			if err := c.readLayer(layer); err != nil {
				return err
			}
		}
		if !activeFound && layer.Exists {
			c.activeUser, c.activeGlobal = layer.User, layer.Global
			activeFound = true
		}
	}

	if c.noLoad || c.vault == nil {
		return nil
	}

	if !c.vault.Initialized() {
		c.setLoadFailed(true)
		c.logger.Warn().Str("manager", c.vault.Name()).Msg("credential manager not initialized; secure properties not loaded")
		return nil
	}

	return c.Secure().Load(ctx)
}

// Save persists secure values and writes the active layer, or every layer
// when allLayers is set.
func (c *Config) Save(ctx context.Context, allLayers bool) error {
	if len(c.layers) == 0 {
		return ErrNoActiveLayer
	}

	selected := make([]*Layer, 0, len(c.layers))
	for _, layer := range c.layers {
		if allLayers || c.isActive(layer) {
			selected = append(selected, layer)
		}
	}

	if err := c.Secure().save(ctx, selected); err != nil {
		return err
	}

	for _, layer := range selected {
		if err := c.writeLayer(layer); err != nil {
			return err
		}
	}

	return nil
}

// readLayer populates layer from its file. A missing file leaves in-memory
// content alone unless the layer previously existed on disk.
func (c *Config) readLayer(layer *Layer) error {
	if !fileExists(layer.Path) {
		if layer.Exists {
			layer.Properties = EmptyDocument()
			layer.source = nil
			layer.Exists = false
		}
		if layer.Properties == nil {
			layer.Properties = EmptyDocument()
		}
		layer.Properties.normalize()
		return nil
	}

	doc, source, err := readLayerFile(layer.Path)
	if err != nil {
		return err
	}

	layer.Properties = doc
	layer.source = source
	layer.Exists = true

	c.logger.Debug().Str("path", layer.Path).Bool("user", layer.User).Bool("global", layer.Global).Msg("read config layer")

	c.spliceSecure(layer)

	return nil
}

// writeLayer writes layer to disk with secure values removed.
func (c *Config) writeLayer(layer *Layer) error {
	props := layer.Properties.Clone()
	if props == nil {
		props = EmptyDocument()
	}
	props.normalize()
	pruneSecure(props)

	source, err := renderDocument(props, layer.source)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", layer.Path, err)
	}

	if err := writeFile(layer.Path, source.Pack()); err != nil {
		return err
	}

	layer.source = source
	layer.Exists = true

	c.logger.Debug().Str("path", layer.Path).Msg("wrote config layer")

	return nil
}

// App returns the application name.
func (c *Config) App() string {
	return c.app
}

// HomeDir returns the directory holding the global layers.
func (c *Config) HomeDir() string {
	return c.homeDir
}

// ProjectDir returns the directory the project layer search started from.
func (c *Config) ProjectDir() string {
	return c.projectDir
}

// ConfigName returns the team configuration file name, e.g. zowe.config.json.
func (c *Config) ConfigName() string {
	return c.app + teamConfigSuffix
}

// UserConfigName returns the user configuration file name.
func (c *Config) UserConfigName() string {
	return c.app + userConfigSuffix
}

// SchemaName returns the schema file name, e.g. zowe.schema.json.
func (c *Config) SchemaName() string {
	return c.app + schemaSuffix
}

// Exists reports whether any layer was found on disk.
func (c *Config) Exists() bool {
	for _, layer := range c.layers {
		if layer.Exists {
			return true
		}
	}
	return false
}

// Paths returns the file path of each layer in precedence order.
func (c *Config) Paths() []string {
	paths := make([]string, 0, len(c.layers))
	for _, layer := range c.layers {
		paths = append(paths, layer.Path)
	}
	return paths
}

// AllLayers returns deep copies of the four layers in precedence order.
func (c *Config) AllLayers() []*Layer {
	out := make([]*Layer, 0, len(c.layers))
	for _, layer := range c.layers {
		out = append(out, layer.Clone())
	}
	return out
}

// Properties returns the merged view of all layers. The result is a copy.
func (c *Config) Properties() *Document {
	return c.mergedView(false, false)
}

// ProjectProperties returns the merged view of the project layers only.
func (c *Config) ProjectProperties() *Document {
	return c.mergedView(false, true)
}

// MaskedProperties is Properties with every secure value replaced by
// SecureValue.
func (c *Config) MaskedProperties() *Document {
	return c.mergedView(true, false)
}

func (c *Config) mergedView(mask bool, excludeGlobal bool) *Document {
	layers := c.layers
	if mask {
		layers = c.AllLayers()
		for _, layer := range layers {
			maskSecure(layer.Properties)
		}
	}
	return mergeLayers(layers, excludeGlobal)
}

// FindLayer returns the live layer with the given scope flags.
func (c *Config) FindLayer(user, global bool) *Layer {
	for _, layer := range c.layers {
		if layer.User == user && layer.Global == global {
			return layer
		}
	}
	return nil
}

// LayerActive returns the live active layer. Changes to it are changes to
// the configuration; use Layers().Get for a copy. It panics on a Config that
// did not come from Load; methods that return an error report
// ErrNoActiveLayer instead.
func (c *Config) LayerActive() *Layer {
	layer, err := c.activeLayer()
	if err != nil {
		panic(err)
	}
	return layer
}

// activeLayer returns the live active layer, or ErrNoActiveLayer when the
// layer set was never built.
func (c *Config) activeLayer() (*Layer, error) {
	layer := c.FindLayer(c.activeUser, c.activeGlobal)
	if layer == nil {
		return nil, ErrNoActiveLayer
	}
	return layer, nil
}

func (c *Config) isActive(layer *Layer) bool {
	return layer.User == c.activeUser && layer.Global == c.activeGlobal
}

// LayerExists reports whether a configuration layer (user or not) lives in
// dir, either as a loaded layer or as a file on disk.
func (c *Config) LayerExists(dir string) bool {
	return c.layerExists(dir, nil)
}

// LayerExistsUser is LayerExists restricted to user or non-user layers.
func (c *Config) LayerExistsUser(dir string, user bool) bool {
	return c.layerExists(dir, &user)
}

func (c *Config) layerExists(dir string, user *bool) bool {
	for _, layer := range c.layers {
		if !layer.Exists || filepath.Dir(layer.Path) != dir {
			continue
		}
		if user == nil || layer.User == *user {
			return true
		}
	}

	if user == nil {
		return fileExists(filepath.Join(dir, c.ConfigName())) || fileExists(filepath.Join(dir, c.UserConfigName()))
	}

	name := c.ConfigName()
	if *user {
		name = c.UserConfigName()
	}
	return fileExists(filepath.Join(dir, name))
}

// SetOptions controls Config.Set.
type SetOptions struct {
	// ParseString coerces string values ("true", "12") to JSON types and
	// appends to an existing array instead of replacing it.
	ParseString bool

	// Secure, when non-nil, adds (true) or removes (false) the property
	// from its profile's secure list. Only valid for profile properties.
	Secure *bool
}

// Set assigns value at a dotted property path in the active layer, e.g.
// "profiles.base.properties.host" or "defaults.zosmf". Missing intermediate
// objects are created.
func (c *Config) Set(path string, value any, opts SetOptions) error {
	layer, err := c.activeLayer()
	if err != nil {
		return err
	}

	if opts.ParseString {
		if s, ok := value.(string); ok {
			value = CoerceValue(s)
		}
	}

	tree, err := documentToMap(layer.Properties)
	if err != nil {
		return err
	}

	segments := strings.Split(path, ".")
	obj := tree
	for _, segment := range segments[:len(segments)-1] {
		next, ok := obj[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			obj[segment] = next
		}
		obj = next
	}

	last := segments[len(segments)-1]
	if existing, ok := obj[last].([]any); ok && opts.ParseString {
		obj[last] = append(existing, value)
	} else {
		obj[last] = value
	}

	doc, err := documentFromMap(tree)
	if err != nil {
		return fmt.Errorf("setting %s: %w", path, err)
	}
	layer.Properties = doc

	if opts.Secure == nil {
		return nil
	}

	name, prop, ok := splitPropertyPath(path)
	if !ok {
		if *opts.Secure {
			return fmt.Errorf("setting %s: the secure option is only valid for a single profile property", path)
		}
		return nil
	}

	profile := findProfile(layer.Properties.Profiles, name)
	if *opts.Secure && !contains(profile.Secure, prop) {
		profile.Secure = append(profile.Secure, prop)
	} else if !*opts.Secure {
		profile.Secure = removeString(profile.Secure, prop)
	}

	return nil
}

// DeleteOptions controls Config.Delete.
type DeleteOptions struct {
	// KeepSecure leaves the property in its profile's secure list.
	KeepSecure bool
}

// Delete removes the value at a dotted property path from the active layer.
// Deleting a missing path is not an error.
func (c *Config) Delete(path string, opts DeleteOptions) error {
	layer, err := c.activeLayer()
	if err != nil {
		return err
	}

	tree, err := documentToMap(layer.Properties)
	if err != nil {
		return err
	}

	segments := strings.Split(path, ".")
	obj := tree
	for _, segment := range segments[:len(segments)-1] {
		next, ok := obj[segment].(map[string]any)
		if !ok {
			return nil
		}
		obj = next
	}
	delete(obj, segments[len(segments)-1])

	doc, err := documentFromMap(tree)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	layer.Properties = doc

	if opts.KeepSecure {
		return nil
	}

	if name, prop, ok := splitPropertyPath(path); ok {
		if profile := findProfile(layer.Properties.Profiles, name); profile != nil {
			profile.Secure = removeString(profile.Secure, prop)
		}
	}

	return nil
}

// Move renames a profile of the active layer, carrying along its children
// and any cached secure values. The target must not exist yet.
func (c *Config) Move(from, to string) error {
	layer, err := c.activeLayer()
	if err != nil {
		return err
	}

	if !c.Profiles().Exists(from) {
		return fmt.Errorf("moving profile %q: %w", from, ErrProfileNotFound)
	}
	if c.Profiles().Exists(to) {
		return fmt.Errorf("moving profile %q: profile %q already exists", from, to)
	}

	profile := findProfile(layer.Properties.Profiles, from)
	if profile == nil {
		return fmt.Errorf("moving profile %q: not defined in the active layer %s", from, layer.Path)
	}

	parentName := ""
	if idx := strings.LastIndex(from, "."); idx >= 0 {
		parentName = from[:idx]
	}
	parent := layer.Properties.Profiles
	if parentName != "" {
		parent = findProfile(layer.Properties.Profiles, parentName).Profiles
	}
	delete(parent, from[strings.LastIndex(from, ".")+1:])

	newParent, leaf := ensureParent(layer.Properties, to)
	newParent[leaf] = profile

	oldPrefix := ExpandPath(from) + "."
	newPrefix := ExpandPath(to) + "."
	if entries := c.secure[layer.Path]; entries != nil {
		for key, val := range entries {
			if strings.HasPrefix(key, oldPrefix) {
				delete(entries, key)
				entries[newPrefix+strings.TrimPrefix(key, oldPrefix)] = val
			}
		}
	}

	for typ, name := range layer.Properties.Defaults {
		if name == from {
			layer.Properties.Defaults[typ] = to
		} else if strings.HasPrefix(name, from+".") {
			layer.Properties.Defaults[typ] = to + strings.TrimPrefix(name, from)
		}
	}

	return nil
}

// SchemaInfo describes the $schema reference of the active layer.
type SchemaInfo struct {
	Original string
	Resolved string
	Local    bool
}

// SchemaInfo resolves the active layer's $schema. Relative "./" references
// resolve against the layer's directory; file:// URLs become paths.
func (c *Config) SchemaInfo() SchemaInfo {
	layer := c.LayerActive()
	original := layer.Properties.Schema
	if original == "" {
		return SchemaInfo{}
	}

	ref := original
	if u, err := url.Parse(original); err == nil && u.Scheme == "file" {
		ref = u.Path
	}

	if isURL(ref) {
		return SchemaInfo{Original: original, Resolved: original}
	}

	resolved := ref
	if strings.HasPrefix(ref, "./") {
		resolved = filepath.Join(filepath.Dir(layer.Path), ref)
	} else if !filepath.IsAbs(ref) {
		resolved = filepath.Join(c.projectDir, ref)
	}

	return SchemaInfo{Original: original, Resolved: filepath.Clean(resolved), Local: true}
}

// SetSchema points the active layer at a schema. When schema is non-nil and
// uri is empty, the schema is written next to the layer as SchemaName() and
// referenced relatively. An existing $schema reference is kept.
func (c *Config) SetSchema(uri string, schema map[string]any) error {
	layer, err := c.activeLayer()
	if err != nil {
		return err
	}

	if uri == "" {
		uri = "./" + c.SchemaName()
	}
	if layer.Properties.Schema == "" {
		layer.Properties.Schema = uri
	}

	if schema == nil {
		return nil
	}

	info := c.SchemaInfo()
	if !info.Local {
		return nil
	}

	data, err := json.MarshalIndent(schema, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}

	return writeFile(info.Resolved, append(data, '\n'))
}

// CoerceValue converts a command-line string to the JSON value it spells:
// booleans and numbers become typed, everything else stays a string.
func CoerceValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(strings.ToLower(s), "infa") {
		return f
	}

	return s
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func documentToMap(doc *Document) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	return tree, nil
}

func documentFromMap(tree map[string]any) (*Document, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc.normalize()

	return &doc, nil
}

func removeString(items []string, target string) []string {
	if !contains(items, target) {
		return items
	}

	out := make([]string, 0, len(items)-1)
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
