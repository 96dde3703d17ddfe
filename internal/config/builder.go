package config

import (
	"fmt"
	"sort"
)

// ProfileType describes the properties a profile of one type may carry.
type ProfileType struct {
	Type        string                        `yaml:"type" json:"type"`
	Title       string                        `yaml:"title,omitempty" json:"title,omitempty"`
	Description string                        `yaml:"description,omitempty" json:"description,omitempty"`
	Properties  map[string]PropertyDefinition `yaml:"properties" json:"properties"`
}

// PropertyDefinition describes one property of a profile type.
type PropertyDefinition struct {
	Type              string `yaml:"type" json:"type"`
	Description       string `yaml:"description,omitempty" json:"description,omitempty"`
	Secure            bool   `yaml:"secure,omitempty" json:"secure,omitempty"`
	IncludeInTemplate bool   `yaml:"includeInTemplate,omitempty" json:"includeInTemplate,omitempty"`
	Default           any    `yaml:"default,omitempty" json:"default,omitempty"`
	Enum              []any  `yaml:"enum,omitempty" json:"enum,omitempty"`
}

// PromptFunc asks for the value of a property. A nil value leaves the
// property out.
type PromptFunc func(name string, def PropertyDefinition) (any, error)

// BuildOptions controls Build.
type BuildOptions struct {
	// PopulateProperties fills every template property with its default and
	// makes each generated profile the default of its type.
	PopulateProperties bool

	// BaseType names the profile type whose template properties without a
	// default are prompted for. Empty disables prompting.
	BaseType string

	// Prompt is called for each base profile property that needs a value.
	Prompt PromptFunc
}

// Build generates a starter document with one profile per type. The
// document enables autoStore.
func Build(types []ProfileType, opts BuildOptions) (*Document, error) {
	doc := EmptyDocument()

	for _, pt := range types {
		doc.Profiles[pt.Type] = buildDefaultProfile(pt, opts)
		if opts.PopulateProperties {
			doc.Defaults[pt.Type] = pt.Type
		}
	}

	if opts.BaseType != "" && opts.Prompt != nil {
		for _, pt := range types {
			if pt.Type != opts.BaseType {
				continue
			}
			for _, name := range sortedDefinitionNames(pt.Properties) {
				def := pt.Properties[name]
				if !def.IncludeInTemplate || def.Default != nil {
					continue
				}
				val, err := opts.Prompt(name, def)
				if err != nil {
					return nil, fmt.Errorf("prompting for %s: %w", name, err)
				}
				if val == nil {
					continue
				}
				p := doc.Profiles[pt.Type]
				if p.Properties == nil {
					p.Properties = map[string]any{}
				}
				p.Properties[name] = val
			}
		}
	}

	doc.AutoStore = BoolPtr(true)

	return doc, nil
}

func buildDefaultProfile(pt ProfileType, opts BuildOptions) *Profile {
	profile := &Profile{Type: pt.Type}
	if !opts.PopulateProperties {
		return profile
	}

	for _, name := range sortedDefinitionNames(pt.Properties) {
		def := pt.Properties[name]
		if !def.IncludeInTemplate {
			continue
		}
		if def.Secure {
			profile.Secure = append(profile.Secure, name)
			continue
		}
		if profile.Properties == nil {
			profile.Properties = map[string]any{}
		}
		if def.Default != nil {
			profile.Properties[name] = cloneValue(def.Default)
		} else {
			profile.Properties[name] = ZeroValue(def.Type)
		}
	}

	return profile
}

// ZeroValue returns the empty value of a JSON type name, or nil for an
// unknown type.
func ZeroValue(typ string) any {
	switch typ {
	case "string":
		return ""
	case "number", "integer":
		return float64(0)
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	default:
		return nil
	}
}

func sortedDefinitionNames(props map[string]PropertyDefinition) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
