package config

import (
	"sort"
	"strings"
)

// ExpandPath converts a dotted profile name into its storage path inside a
// Document, e.g. "lpar1.zosmf" -> "profiles.lpar1.profiles.zosmf".
//
// The rule is purely mechanical: a segment literally named "profiles" is
// expanded like any other, so "profiles.zosmf" becomes
// "profiles.profiles.profiles.zosmf".
func ExpandPath(name string) string {
	return "profiles." + strings.ReplaceAll(name, ".", ".profiles.")
}

// ProfileNameFromPath is the inverse of ExpandPath. Any trailing
// "properties.<name>", "secure" or "type" segments are dropped, so
// "profiles.lpar1.profiles.zosmf.properties.host" yields "lpar1.zosmf".
func ProfileNameFromPath(path string) string {
	segments := strings.Split(path, ".")
	names := make([]string, 0, len(segments)/2)

	for i := 0; i+1 < len(segments) && segments[i] == "profiles"; i += 2 {
		names = append(names, segments[i+1])
	}

	return strings.Join(names, ".")
}

// propertyPath returns the storage path of one property of a profile.
func propertyPath(profileName, prop string) string {
	return ExpandPath(profileName) + ".properties." + prop
}

// splitPropertyPath splits "profiles.a.profiles.b.properties.x" into the
// profile name "a.b" and property "x". ok is false for paths that do not
// address a profile property.
func splitPropertyPath(path string) (profileName, prop string, ok bool) {
	idx := strings.LastIndex(path, ".properties.")
	if idx < 0 {
		return "", "", false
	}

	prop = path[idx+len(".properties."):]
	profileName = ProfileNameFromPath(path[:idx])
	if prop == "" || profileName == "" || ExpandPath(profileName) != path[:idx] {
		return "", "", false
	}

	return profileName, prop, true
}

// findProfile walks a profile tree along a dotted name. It returns nil when
// any segment is missing.
func findProfile(profiles map[string]*Profile, name string) *Profile {
	if name == "" {
		return nil
	}

	var current *Profile
	for _, segment := range strings.Split(name, ".") {
		current = profiles[segment]
		if current == nil {
			return nil
		}
		profiles = current.Profiles
	}

	return current
}

// ensureParent walks a profile tree along a dotted name, creating empty
// container profiles for missing ancestors. It returns the map that holds
// (or will hold) the named profile and the profile's own segment.
func ensureParent(doc *Document, name string) (map[string]*Profile, string) {
	doc.normalize()

	segments := strings.Split(name, ".")
	profiles := doc.Profiles
	for _, segment := range segments[:len(segments)-1] {
		p := profiles[segment]
		if p == nil {
			p = &Profile{}
			profiles[segment] = p
		}
		if p.Profiles == nil {
			p.Profiles = map[string]*Profile{}
		}
		profiles = p.Profiles
	}

	return profiles, segments[len(segments)-1]
}

// ensureProfile returns the named profile, creating it and any missing
// ancestors as empty containers.
func ensureProfile(doc *Document, name string) *Profile {
	parent, leaf := ensureParent(doc, name)
	if parent[leaf] == nil {
		parent[leaf] = &Profile{}
	}
	return parent[leaf]
}

// buildProfile collects the properties along a dotted name from the root
// container down to the named profile. A child's value overrides the value
// inherited from any ancestor.
func buildProfile(profiles map[string]*Profile, name string) map[string]any {
	result := map[string]any{}

	for _, segment := range strings.Split(name, ".") {
		p := profiles[segment]
		if p == nil {
			break
		}
		for key, val := range p.Properties {
			result[key] = cloneValue(val)
		}
		profiles = p.Profiles
	}

	return result
}

// profileNames lists every dotted profile name in a tree, sorted.
func profileNames(profiles map[string]*Profile) []string {
	var names []string
	collectProfileNames(profiles, "", &names)
	sort.Strings(names)
	return names
}

func collectProfileNames(profiles map[string]*Profile, prefix string, names *[]string) {
	for name, p := range profiles {
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}
		*names = append(*names, full)
		if p != nil {
			collectProfileNames(p.Profiles, full, names)
		}
	}
}

// secureFieldPaths lists the storage paths of every property declared secure
// anywhere in the tree, e.g. "profiles.base.properties.password".
func secureFieldPaths(profiles map[string]*Profile) []string {
	var paths []string
	collectSecureFields(profiles, "profiles", &paths)
	sort.Strings(paths)
	return paths
}

func collectSecureFields(profiles map[string]*Profile, prefix string, paths *[]string) {
	for name, p := range profiles {
		if p == nil {
			continue
		}
		base := prefix + "." + name
		for _, prop := range p.Secure {
			*paths = append(*paths, base+".properties."+prop)
		}
		if p.Profiles != nil {
			collectSecureFields(p.Profiles, base+".profiles", paths)
		}
	}
}
