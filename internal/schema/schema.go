// Package schema generates the JSON schema referenced by config files via
// $schema, and reads profile types back out of one.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.dot.industries/zcfg/internal/config"
)

const (
	draft   = "https://json-schema.org/draft/2020-12/schema"
	version = "1.0"
)

// Build returns the schema describing a config whose profiles use types.
func Build(types []config.ProfileType) map[string]any {
	typeNames := make([]any, 0, len(types))
	defaults := make(map[string]any, len(types))
	allOf := []any{
		map[string]any{
			"if": map[string]any{"properties": map[string]any{"type": false}},
			"then": map[string]any{"properties": map[string]any{
				"properties": map[string]any{"title": "Missing profile type"},
			}},
		},
	}

	for _, pt := range types {
		typeNames = append(typeNames, pt.Type)
		defaults[pt.Type] = map[string]any{
			"description": "Default " + pt.Type + " profile",
			"type":        "string",
		}
		allOf = append(allOf, map[string]any{
			"if":   map[string]any{"properties": map[string]any{"type": map[string]any{"const": pt.Type}}},
			"then": map[string]any{"properties": typeSchema(pt)},
		})
	}

	return map[string]any{
		"$schema":     draft,
		"$version":    version,
		"type":        "object",
		"description": "Zowe configuration",
		"properties": map[string]any{
			"profiles": map[string]any{
				"type":        "object",
				"description": "Mapping of profile names to profile configurations",
				"patternProperties": map[string]any{
					`^\S*$`: map[string]any{
						"type":        "object",
						"description": "Profile configuration object",
						"properties": map[string]any{
							"type": map[string]any{
								"description": "Profile type",
								"type":        "string",
								"enum":        typeNames,
							},
							"properties": map[string]any{
								"description": "Profile properties object",
								"type":        "object",
							},
							"profiles": map[string]any{
								"description": "Optional subprofile configurations",
								"type":        "object",
								"$ref":        "#/properties/profiles",
							},
							"secure": map[string]any{
								"description": "Secure property names",
								"type":        "array",
								"items":       map[string]any{"type": "string"},
								"uniqueItems": true,
							},
						},
						"allOf": allOf,
					},
				},
			},
			"defaults": map[string]any{
				"type":        "object",
				"description": "Mapping of profile types to default profile names",
				"properties":  defaults,
			},
			"autoStore": map[string]any{
				"type":        "boolean",
				"description": "If true, values you enter when prompted are stored for future use",
			},
		},
	}
}

// typeSchema is the "then" branch applied to profiles of one type.
func typeSchema(pt config.ProfileType) map[string]any {
	props := make(map[string]any, len(pt.Properties))
	var secure []any

	for _, name := range sortedNames(pt.Properties) {
		def := pt.Properties[name]
		prop := map[string]any{"type": def.Type}
		if def.Description != "" {
			prop["description"] = def.Description
		}
		if def.Default != nil {
			prop["default"] = def.Default
		}
		if len(def.Enum) > 0 {
			prop["enum"] = def.Enum
		}
		props[name] = prop
		if def.Secure {
			secure = append(secure, name)
		}
	}

	out := map[string]any{
		"properties": map[string]any{
			"type":        "object",
			"title":       pt.Title,
			"description": pt.Description,
			"properties":  props,
		},
	}
	if len(secure) > 0 {
		out["secure"] = map[string]any{"items": map[string]any{"enum": secure}}
	}
	return out
}

// ProfileTypes extracts the profile types described by a schema produced by
// Build. Schemas using the older "prefixItems" form for secure lists are
// also understood.
func ProfileTypes(schema map[string]any) ([]config.ProfileType, error) {
	branches, ok := lookup(schema, "properties", "profiles", "patternProperties", `^\S*$`, "allOf").([]any)
	if !ok {
		return nil, fmt.Errorf("schema has no profile type definitions")
	}

	var types []config.ProfileType
	for _, b := range branches {
		typ, ok := lookup(b, "if", "properties", "type", "const").(string)
		if !ok {
			continue
		}
		then, _ := lookup(b, "then", "properties").(map[string]any)
		types = append(types, parseType(typ, then))
	}
	return types, nil
}

func parseType(typ string, then map[string]any) config.ProfileType {
	pt := config.ProfileType{
		Type:       typ,
		Properties: map[string]config.PropertyDefinition{},
	}
	pt.Title, _ = lookup(then, "properties", "title").(string)
	pt.Description, _ = lookup(then, "properties", "description").(string)

	secure := map[string]bool{}
	enum, ok := lookup(then, "secure", "items", "enum").([]any)
	if !ok {
		enum, _ = lookup(then, "secure", "prefixItems", "enum").([]any)
	}
	for _, name := range enum {
		if s, ok := name.(string); ok {
			secure[s] = true
		}
	}

	props, _ := lookup(then, "properties", "properties").(map[string]any)
	for name, raw := range props {
		prop, _ := raw.(map[string]any)
		def := config.PropertyDefinition{Secure: secure[name], Default: prop["default"]}
		def.Type, _ = prop["type"].(string)
		def.Description, _ = prop["description"].(string)
		def.Enum, _ = prop["enum"].([]any)
		pt.Properties[name] = def
	}
	return pt
}

// Load reads and decodes the schema file at path.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}

	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	return schema, nil
}

func lookup(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

func sortedNames(props map[string]config.PropertyDefinition) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
