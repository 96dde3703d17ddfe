package config

import (
	"context"
	"path/filepath"
)

// Layers selects and edits the active layer of a Config.
type Layers struct {
	c *Config
}

// Layers returns the layer API of c.
func (c *Config) Layers() Layers {
	return Layers{c: c}
}

// Read re-reads the active layer from disk.
func (l Layers) Read() error {
	layer, err := l.c.activeLayer()
	if err != nil {
		return err
	}
	return l.c.readLayer(layer)
}

// Write saves the active layer's secure values to the vault, then writes
// the layer to disk without them. Comments in the existing file survive for
// every key that did not change.
func (l Layers) Write(ctx context.Context) error {
	layer, err := l.c.activeLayer()
	if err != nil {
		return err
	}

	if err := l.c.Secure().save(ctx, []*Layer{layer}); err != nil {
		return err
	}

	return l.c.writeLayer(layer)
}

// Activate makes the layer with the given scope flags the target of edits.
func (l Layers) Activate(user, global bool) {
	l.c.activeUser, l.c.activeGlobal = user, global
}

// ActivateIn activates a layer and rebinds it to a file in dir, reading that
// file when it exists. An empty dir behaves like Activate.
func (l Layers) ActivateIn(user, global bool, dir string) error {
	l.Activate(user, global)
	if dir == "" {
		return nil
	}

	layer, err := l.c.activeLayer()
	if err != nil {
		return err
	}
	if filepath.Dir(layer.Path) == dir {
		return nil
	}

	layer.Path = filepath.Join(dir, filepath.Base(layer.Path))
	layer.source = nil
	if layer.Exists {
		layer.Properties = EmptyDocument()
		layer.Exists = false
	}

	return l.c.readLayer(layer)
}

// Get returns a copy of the active layer.
func (l Layers) Get() *Layer {
	return l.c.LayerActive().Clone()
}

// Set replaces the content of the active layer with a copy of doc.
func (l Layers) Set(doc *Document) {
	layer := l.c.LayerActive()
	layer.Properties = doc.Clone()
	if layer.Properties == nil {
		layer.Properties = EmptyDocument()
	}
	layer.Properties.normalize()
}

// Merge merges doc into the active layer; existing values win.
func (l Layers) Merge(doc *Document) {
	layer := l.c.LayerActive()
	layer.Properties = MergeDocuments(layer.Properties, doc)
}

// MergeDryRun returns a copy of the active layer with doc merged in. The
// configuration is not modified.
func (l Layers) MergeDryRun(doc *Document) *Layer {
	layer := l.c.LayerActive().Clone()
	layer.Properties = MergeDocuments(layer.Properties, doc)
	return layer
}

// Find returns the scope of the highest-precedence layer that defines the
// named profile.
func (l Layers) Find(profileName string) (user, global bool, ok bool) {
	for _, layer := range l.c.layers {
		if findProfile(layer.Properties.profilesOrNil(), profileName) != nil {
			return layer.User, layer.Global, true
		}
	}
	return false, false, false
}
