package config

// MergeDocuments merges incoming into target and returns target. Values that
// already exist in target always win; incoming only contributes what target
// lacks. This makes merging additive: it can introduce new profiles,
// properties, defaults and plugins but never overwrite a user's settings.
//
//   - profiles: union by name, recursing into profiles present on both sides
//   - properties: target leaf values win, nested objects merge recursively
//   - secure: set union, so a property never loses its secure flag
//   - defaults: target's mapping for a type wins
//   - plugins: target order first, then unseen incoming entries
//   - autoStore: target's explicit value wins
//
// Missing fields in incoming are treated as empty. incoming is not mutated.
func MergeDocuments(target, incoming *Document) *Document {
	if target == nil {
		target = EmptyDocument()
	}
	target.normalize()

	if incoming == nil {
		return target
	}

	target.Profiles = mergeProfileMaps(target.Profiles, incoming.Profiles)

	for typ, name := range incoming.Defaults {
		if _, ok := target.Defaults[typ]; !ok {
			target.Defaults[typ] = name
		}
	}

	target.Plugins = unionStrings(target.Plugins, incoming.Plugins)

	if target.AutoStore == nil && incoming.AutoStore != nil {
		target.AutoStore = BoolPtr(*incoming.AutoStore)
	}

	if target.Schema == "" {
		target.Schema = incoming.Schema
	}

	return target
}

// mergeProfileMaps merges secondary into primary, primary winning on every
// conflict, and returns primary. secondary is not mutated.
func mergeProfileMaps(primary, secondary map[string]*Profile) map[string]*Profile {
	if primary == nil {
		primary = make(map[string]*Profile, len(secondary))
	}

	for name, sp := range secondary {
		if sp == nil {
			continue
		}
		pp, ok := primary[name]
		if !ok || pp == nil {
			primary[name] = sp.Clone()
			continue
		}
		mergeProfile(pp, sp)
	}

	return primary
}

// mergeProfile merges secondary into primary in place, primary winning.
func mergeProfile(primary, secondary *Profile) {
	if primary.Type == "" {
		primary.Type = secondary.Type
	}

	if len(secondary.Properties) > 0 {
		if primary.Properties == nil {
			primary.Properties = map[string]any{}
		}
		mergeObjects(primary.Properties, secondary.Properties)
	}

	primary.Secure = unionStrings(primary.Secure, secondary.Secure)

	if len(secondary.Profiles) > 0 {
		primary.Profiles = mergeProfileMaps(primary.Profiles, secondary.Profiles)
	}
}

// mergeObjects copies keys from secondary that primary lacks. When both hold
// an object under the same key the objects are merged recursively; any other
// value already in primary is kept as is.
func mergeObjects(primary, secondary map[string]any) {
	for key, sv := range secondary {
		pv, exists := primary[key]
		if !exists {
			primary[key] = cloneValue(sv)
			continue
		}

		pm, pIsMap := pv.(map[string]any)
		sm, sIsMap := sv.(map[string]any)
		if pIsMap && sIsMap {
			mergeObjects(pm, sm)
		}
	}
}

// unionStrings appends the entries of extra that are not already in base,
// preserving order. It returns nil when both inputs are empty.
func unionStrings(base, extra []string) []string {
	if len(base) == 0 && len(extra) == 0 {
		return base
	}

	result := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, item := range list {
			if seen[item] {
				continue
			}
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}

// mergeLayers builds the combined view of all layers. Layers are given in
// precedence order, highest first.
//
// Within a scope the user layer overrides its non-user sibling for every
// profile value. Across scopes a project profile shadows a global profile of
// the same top-level name entirely. Defaults and autoStore take the first
// value seen in precedence order; plugins are the union of all layers.
func mergeLayers(layers []*Layer, excludeGlobal bool) *Document {
	merged := EmptyDocument()

	for _, layer := range layers {
		props := layer.Properties
		if props == nil {
			continue
		}
		merged.Plugins = unionStrings(merged.Plugins, props.Plugins)
		for typ, name := range props.Defaults {
			if _, ok := merged.Defaults[typ]; !ok {
				merged.Defaults[typ] = name
			}
		}
		if merged.AutoStore == nil && props.AutoStore != nil {
			merged.AutoStore = BoolPtr(*props.AutoStore)
		}
	}

	project := mergeProfileMaps(layerProfiles(layers[layerProjectUser]), layers[layerProject].Properties.profilesOrNil())
	merged.Profiles = project

	if !excludeGlobal {
		global := mergeProfileMaps(layerProfiles(layers[layerGlobalUser]), layers[layerGlobal].Properties.profilesOrNil())
		for name, p := range global {
			if _, ok := merged.Profiles[name]; !ok {
				merged.Profiles[name] = p
			}
		}
	}

	return merged
}

// layerProfiles returns a deep copy of a layer's profiles, never nil.
func layerProfiles(layer *Layer) map[string]*Profile {
	profiles := cloneProfiles(layer.Properties.profilesOrNil())
	if profiles == nil {
		profiles = map[string]*Profile{}
	}
	return profiles
}

func (d *Document) profilesOrNil() map[string]*Profile {
	if d == nil {
		return nil
	}
	return d.Profiles
}
