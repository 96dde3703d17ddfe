package config

// Plugins manages the list of plugin names.
type Plugins struct {
	c *Config
}

// Plugins returns the plugin API of c.
func (c *Config) Plugins() Plugins {
	return Plugins{c: c}
}

// Get returns the plugins of all layers, de-duplicated in precedence order.
func (p Plugins) Get() []string {
	return p.c.Properties().Plugins
}

// Add appends name to the active layer's plugins. It reports false when the
// layer already lists it.
func (p Plugins) Add(name string) bool {
	layer := p.c.LayerActive()
	if contains(layer.Properties.Plugins, name) {
		return false
	}
	layer.Properties.Plugins = append(layer.Properties.Plugins, name)
	return true
}

// Remove deletes name from the active layer's plugins. It reports false when
// the layer does not list it.
func (p Plugins) Remove(name string) bool {
	layer := p.c.LayerActive()
	if !contains(layer.Properties.Plugins, name) {
		return false
	}
	layer.Properties.Plugins = removeString(layer.Properties.Plugins, name)
	return true
}
