package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLayers_Activate(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.load(t)

	cfg.Layers().Activate(true, true)
	if got := cfg.LayerActive().Path; got != env.globalUserFile() {
		t.Errorf("active path = %q, want %q", got, env.globalUserFile())
	}

	cfg.Profiles().Set("g", &Profile{Type: "base"})
	if err := cfg.Layers().Write(context.Background()); err != nil {
		t.Fatal(err)
	}

	user, global, ok := cfg.Layers().Find("g")
	if !ok || !user || !global {
		t.Errorf("Find(g) = %v, %v, %v", user, global, ok)
	}
}

func TestLayers_ActivateIn(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.load(t)

	other := t.TempDir()
	writeTestFile(t, filepath.Join(other, "zowe.config.json"), `{"profiles": {"remote": {"type": "zosmf"}}, "defaults": {}}`)

	if err := cfg.Layers().ActivateIn(false, false, other); err != nil {
		t.Fatalf("ActivateIn() error: %v", err)
	}

	layer := cfg.LayerActive()
	if layer.Path != filepath.Join(other, "zowe.config.json") {
		t.Errorf("active path = %q", layer.Path)
	}
	if !layer.Exists || layer.Properties.Profiles["remote"] == nil {
		t.Errorf("layer not read from new directory: %+v", layer.Properties)
	}
}

func TestLayers_MergeDryRunDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.load(t)

	cfg.Profiles().Set("fruit", &Profile{Type: "fruit", Properties: map[string]any{"origin": "California"}})
	cfg.Profiles().DefaultSet("fruit", "fruit")
	before := cfg.Layers().Get().Properties

	incoming := &Document{
		Profiles: map[string]*Profile{
			"grape": {Type: "fruit"},
			"fruit": {Properties: map[string]any{"origin": "Chile", "color": "purple"}},
		},
		Defaults: map[string]string{"fruit": "grape"},
	}

	dry := cfg.Layers().MergeDryRun(incoming)

	if diff := cmp.Diff(before, cfg.Layers().Get().Properties); diff != "" {
		t.Errorf("MergeDryRun() mutated the layer (-before +after):\n%s", diff)
	}
	if dry.Properties.Profiles["grape"] == nil {
		t.Error("dry run result missing merged profile")
	}
	if got := dry.Properties.Profiles["fruit"].Properties["origin"]; got != "California" {
		t.Errorf("dry run origin = %v, want California", got)
	}
	if got := dry.Properties.Defaults["fruit"]; got != "fruit" {
		t.Errorf("dry run default = %q, want fruit", got)
	}

	cfg.Layers().Merge(incoming)
	if got := cfg.Profiles().GetOptional("fruit")["color"]; got != "purple" {
		t.Errorf("Merge() color = %v, want purple", got)
	}
}

func TestLayers_SetCopiesInput(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.load(t)

	doc := &Document{Profiles: map[string]*Profile{"p": {Type: "t"}}}
	cfg.Layers().Set(doc)
	doc.Profiles["p"].Type = "changed"

	if got := cfg.Profiles().Type("p"); got != "t" {
		t.Errorf("Type(p) = %q, want t", got)
	}
	if cfg.LayerActive().Properties.Defaults == nil {
		t.Error("Set() left defaults nil")
	}
}

func TestLayers_ReadDropsUnsavedChanges(t *testing.T) {
	env := newTestEnv(t)
	writeTestFile(t, env.projectFile(), `{"profiles": {"p": {"type": "t"}}, "defaults": {}}`)
	cfg := env.load(t)

	cfg.Profiles().Set("q", &Profile{Type: "t"})
	if err := cfg.Layers().Read(); err != nil {
		t.Fatal(err)
	}
	if cfg.Profiles().Exists("q") {
		t.Error("Read() kept an unsaved profile")
	}
}

func TestPlugins(t *testing.T) {
	env := newTestEnv(t)
	writeTestFile(t, env.globalFile(), `{"profiles": {}, "defaults": {}, "plugins": ["@zowe/db2", "@zowe/cics"]}`)
	cfg := env.load(t)

	cfg.Layers().Activate(false, false)
	if !cfg.Plugins().Add("@zowe/cics") {
		t.Error("Add() to the project layer = false")
	}
	if cfg.Plugins().Add("@zowe/cics") {
		t.Error("Add() of a listed plugin = true")
	}

	if diff := cmp.Diff([]string{"@zowe/cics", "@zowe/db2"}, cfg.Plugins().Get()); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	if !cfg.Plugins().Remove("@zowe/cics") || cfg.Plugins().Remove("@zowe/cics") {
		t.Error("Remove() reported wrong results")
	}
	if got := cfg.LayerActive().Properties.Plugins; len(got) != 0 {
		t.Errorf("project plugins = %v, want none", got)
	}
}
