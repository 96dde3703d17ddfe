package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate checks the internal consistency of a document: every default
// names an existing profile of the matching type, and secure lists hold
// unique, non-empty property names. All problems are reported together.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("config is nil")
	}

	var errs []error

	for _, typ := range sortedDefaultTypes(doc.Defaults) {
		name := doc.Defaults[typ]
		p := findProfile(doc.Profiles, name)
		if p == nil {
			errs = append(errs, fmt.Errorf("default %s profile %q: %w", typ, name, ErrProfileNotFound))
			continue
		}
		if p.Type != "" && p.Type != typ {
			errs = append(errs, fmt.Errorf("default %s profile %q has type %q", typ, name, p.Type))
		}
	}

	for _, name := range profileNames(doc.Profiles) {
		p := findProfile(doc.Profiles, name)
		if p == nil {
			errs = append(errs, fmt.Errorf("profile %q is null", name))
			continue
		}
		if err := validateSecureList(p.Secure); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// ValidateWithTypes additionally checks every typed profile against the
// known profile types: the type must exist and secure properties must be
// declared by it.
func ValidateWithTypes(doc *Document, types []ProfileType) error {
	errs := []error{Validate(doc)}
	if doc == nil {
		return errors.Join(errs...)
	}

	known := make(map[string]ProfileType, len(types))
	for _, pt := range types {
		known[pt.Type] = pt
	}

	for _, name := range profileNames(doc.Profiles) {
		p := findProfile(doc.Profiles, name)
		if p == nil || p.Type == "" {
			continue
		}
		pt, ok := known[p.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("profile %q has unknown type %q", name, p.Type))
			continue
		}
		for _, prop := range p.Secure {
			if _, ok := pt.Properties[prop]; !ok {
				errs = append(errs, fmt.Errorf("profile %q: secure property %q is not defined by type %q", name, prop, p.Type))
			}
		}
	}

	return errors.Join(errs...)
}

func validateSecureList(secure []string) error {
	seen := make(map[string]bool, len(secure))
	var dupes []string
	for _, prop := range secure {
		if prop == "" {
			return fmt.Errorf("secure list contains an empty property name")
		}
		if seen[prop] {
			dupes = append(dupes, prop)
		}
		seen[prop] = true
	}

	if len(dupes) > 0 {
		return fmt.Errorf("secure list repeats [%s]", strings.Join(dupes, ", "))
	}

	return nil
}

func sortedDefaultTypes(defaults map[string]string) []string {
	types := make([]string, 0, len(defaults))
	for typ := range defaults {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
