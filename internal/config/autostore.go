package config

import (
	"context"
	"sort"
	"strings"
)

// StoreOptions controls StoreProperties.
type StoreOptions struct {
	// BaseProfile receives values the profile does not declare when the
	// base profile does, or when the profile does not exist at all.
	BaseProfile string

	// TypeSecure names properties the profile's type marks secure, in
	// addition to the profile's own secure lists.
	TypeSecure []string

	// BaseTypeSecure is TypeSecure for the base profile's type.
	BaseTypeSecure []string
}

// AutoStoreEnabled reports whether values gathered interactively should be
// written back to the configuration. The first layer that sets autoStore
// decides; an unset value means no.
func (c *Config) AutoStoreEnabled() bool {
	if !c.Exists() {
		return false
	}
	auto := c.Properties().AutoStore
	return auto != nil && *auto
}

// StoreProperties writes values gathered for a profile, typically answers
// to prompts, into the layer that defines the profile and saves it. The
// active layer is restored afterwards. Nothing is stored when autoStore is
// not enabled; the returned names are the properties that were written.
//
// A value goes to the base profile instead when the profile does not exist
// or when only the base profile declares the property. Secure properties
// stay secure, and a property listed as secure on an ancestor is written to
// that ancestor.
func (c *Config) StoreProperties(ctx context.Context, profile string, values map[string]any, opts StoreOptions) ([]string, error) {
	if len(values) == 0 || !c.AutoStoreEnabled() {
		return nil, nil
	}

	prevUser, prevGlobal := c.activeUser, c.activeGlobal
	defer c.Layers().Activate(prevUser, prevGlobal)

	if user, global, ok := c.Layers().Find(profile); ok {
		c.Layers().Activate(user, global)
	}

	profiles := c.Profiles()
	own := profiles.GetOptional(profile)
	ownSecure := append(c.Secure().SecurePropsForProfile(profile), opts.TypeSecure...)

	var base map[string]any
	var baseSecure []string
	if opts.BaseProfile != "" {
		base = profiles.GetOptional(opts.BaseProfile)
		baseSecure = append(c.Secure().SecurePropsForProfile(opts.BaseProfile), opts.BaseTypeSecure...)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target := profile
		secure := contains(ownSecure, name)

		if opts.BaseProfile != "" && useBaseProfile(profiles, profile, opts.BaseProfile, name, own, ownSecure, base, baseSecure) {
			target = opts.BaseProfile
			secure = contains(baseSecure, name)
		}

		targetPath := ExpandPath(target)
		if secure {
			info, _ := c.Secure().SecureInfoForProp(propertyPath(target, name), true)
			owner := strings.TrimSuffix(info.Path, ".secure")
			if strings.Count(owner, ".") < strings.Count(targetPath, ".") {
				targetPath = owner
			}
		}

		if err := c.Set(targetPath+".properties."+name, values[name], SetOptions{Secure: BoolPtr(secure)}); err != nil {
			return nil, err
		}
	}

	if err := c.Save(ctx, false); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("layer", c.LayerActive().Path).Strs("properties", names).Msg("stored prompted properties")

	return names, nil
}

// useBaseProfile reports whether a gathered value belongs in the base
// profile rather than in the profile it was gathered for.
func useBaseProfile(profiles Profiles, profile, baseName, prop string, own map[string]any, ownSecure []string, base map[string]any, baseSecure []string) bool {
	switch {
	case !profiles.Exists(profile) && profiles.Exists(baseName):
		return true
	case profiles.Type(profile) == "base":
		return true
	case own[prop] == nil && !contains(ownSecure, prop) && (base[prop] != nil || contains(baseSecure, prop)):
		return true
	}
	return false
}
