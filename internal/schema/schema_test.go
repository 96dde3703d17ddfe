package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.dot.industries/zcfg/internal/config"
)

func testTypes() []config.ProfileType {
	return []config.ProfileType{
		{
			Type:        "zosmf",
			Title:       "z/OSMF Profile",
			Description: "z/OSMF Profile",
			Properties: map[string]config.PropertyDefinition{
				"host":     {Type: "string", Description: "Host name."},
				"port":     {Type: "number", Default: 443.0},
				"protocol": {Type: "string", Enum: []any{"http", "https"}},
				"password": {Type: "string", Secure: true},
			},
		},
		{
			Type:       "base",
			Properties: map[string]config.PropertyDefinition{"host": {Type: "string"}},
		},
	}
}

func TestBuild(t *testing.T) {
	s := Build(testTypes())

	if s["$schema"] != draft || s["$version"] != version {
		t.Errorf("header = %v %v", s["$schema"], s["$version"])
	}

	enum := lookup(s, "properties", "profiles", "patternProperties", `^\S*$`, "properties", "type", "enum")
	if diff := cmp.Diff([]any{"zosmf", "base"}, enum); diff != "" {
		t.Errorf("type enum mismatch (-want +got):\n%s", diff)
	}

	def := lookup(s, "properties", "defaults", "properties", "base", "description")
	if def != "Default base profile" {
		t.Errorf("default description = %v", def)
	}

	allOf := lookup(s, "properties", "profiles", "patternProperties", `^\S*$`, "allOf").([]any)
	if len(allOf) != 3 {
		t.Fatalf("allOf has %d entries, want 3", len(allOf))
	}
	if got := lookup(allOf[1], "then", "properties", "secure", "items", "enum"); !cmp.Equal(got, []any{"password"}) {
		t.Errorf("zosmf secure enum = %v", got)
	}
	if got := lookup(allOf[2], "then", "properties", "secure"); got != nil {
		t.Errorf("base secure = %v, want none", got)
	}
}

func TestBuild_SerializesAsJSON(t *testing.T) {
	data, err := json.Marshal(Build(testTypes()))
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	got, err := ProfileTypes(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testTypes(), got); diff != "" {
		t.Errorf("types after JSON round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileTypes_PrefixItems(t *testing.T) {
	s := map[string]any{
		"properties": map[string]any{"profiles": map[string]any{"patternProperties": map[string]any{
			`^\S*$`: map[string]any{"allOf": []any{
				map[string]any{
					"if": map[string]any{"properties": map[string]any{"type": map[string]any{"const": "ssh"}}},
					"then": map[string]any{"properties": map[string]any{
						"properties": map[string]any{"properties": map[string]any{
							"privateKey":    map[string]any{"type": "string"},
							"keyPassphrase": map[string]any{"type": "string"},
						}},
						"secure": map[string]any{"prefixItems": map[string]any{"enum": []any{"keyPassphrase"}}},
					}},
				},
			}},
		}}},
	}

	got, err := ProfileTypes(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Properties["keyPassphrase"].Secure || got[0].Properties["privateKey"].Secure {
		t.Errorf("ProfileTypes() = %+v", got)
	}
}

func TestProfileTypes_NotASchema(t *testing.T) {
	if _, err := ProfileTypes(map[string]any{"type": "object"}); err == nil {
		t.Error("ProfileTypes() error = nil")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zowe.schema.json")
	if err := os.WriteFile(path, []byte(`{"type": "object"}`), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s["type"] != "object" {
		t.Errorf("Load() = %v", s)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}
