package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeDocuments_ExistingValuesWin(t *testing.T) {
	target := &Document{
		Profiles: map[string]*Profile{
			"fruit": {
				Type:       "fruit",
				Properties: map[string]any{"origin": "California"},
				Secure:     []string{"secret"},
			},
		},
		Defaults:  map[string]string{"fruit": "fruit.apple"},
		Plugins:   []string{"@zowe/cics"},
		AutoStore: BoolPtr(false),
	}
	incoming := &Document{
		Profiles: map[string]*Profile{
			"fruit": {
				Type:       "vegetable",
				Properties: map[string]any{"origin": "Florida", "color": "green"},
				Secure:     []string{"secret", "token"},
			},
			"grape": {Type: "fruit"},
		},
		Defaults:  map[string]string{"fruit": "grape", "vegetable": "carrot"},
		Plugins:   []string{"@zowe/cics", "@zowe/db2"},
		AutoStore: BoolPtr(true),
	}

	got := MergeDocuments(target, incoming)

	want := &Document{
		Profiles: map[string]*Profile{
			"fruit": {
				Type:       "fruit",
				Properties: map[string]any{"origin": "California", "color": "green"},
				Secure:     []string{"secret", "token"},
			},
			"grape": {Type: "fruit"},
		},
		Defaults:  map[string]string{"fruit": "fruit.apple", "vegetable": "carrot"},
		Plugins:   []string{"@zowe/cics", "@zowe/db2"},
		AutoStore: BoolPtr(false),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeDocuments() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDocuments_DoesNotMutateIncoming(t *testing.T) {
	incoming := &Document{
		Profiles: map[string]*Profile{
			"base": {Properties: map[string]any{"nested": map[string]any{"a": 1.0}}},
		},
		Defaults: map[string]string{},
	}
	before := incoming.Clone()

	merged := MergeDocuments(EmptyDocument(), incoming)
	merged.Profiles["base"].Properties["nested"].(map[string]any)["a"] = 2.0

	if diff := cmp.Diff(before, incoming); diff != "" {
		t.Errorf("incoming mutated (-before +after):\n%s", diff)
	}
}

func TestMergeDocuments_NestedObjectsMerge(t *testing.T) {
	target := &Document{Profiles: map[string]*Profile{
		"base": {Properties: map[string]any{"opts": map[string]any{"a": "keep"}}},
	}}
	incoming := &Document{Profiles: map[string]*Profile{
		"base": {Properties: map[string]any{"opts": map[string]any{"a": "drop", "b": "add"}}},
	}}

	got := MergeDocuments(target, incoming).Profiles["base"].Properties["opts"]
	want := map[string]any{"a": "keep", "b": "add"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("nested merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDocuments_NilInputs(t *testing.T) {
	got := MergeDocuments(nil, nil)
	if got == nil || got.Profiles == nil || got.Defaults == nil {
		t.Fatalf("MergeDocuments(nil, nil) = %+v, want empty document", got)
	}
}

func TestMergeLayers_Precedence(t *testing.T) {
	layers := []*Layer{
		{User: true, Properties: &Document{
			Profiles: map[string]*Profile{"base": {Properties: map[string]any{"user": "me"}}},
			Defaults: map[string]string{"base": "base"},
		}},
		{Properties: &Document{
			Profiles: map[string]*Profile{"base": {Type: "base", Properties: map[string]any{"host": "project", "user": "team"}}},
			Plugins:  []string{"a"},
		}},
		{User: true, Global: true, Properties: EmptyDocument()},
		{Global: true, Properties: &Document{
			Profiles: map[string]*Profile{
				"base":  {Type: "base", Properties: map[string]any{"port": 443.0}},
				"extra": {Type: "zosmf"},
			},
			Defaults:  map[string]string{"base": "global", "zosmf": "extra"},
			Plugins:   []string{"b", "a"},
			AutoStore: BoolPtr(true),
		}},
	}

	got := mergeLayers(layers, false)

	if diff := cmp.Diff(map[string]any{"host": "project", "user": "me"}, got.Profiles["base"].Properties); diff != "" {
		t.Errorf("base properties mismatch (-want +got):\n%s", diff)
	}
	if got.Profiles["extra"] == nil {
		t.Error("global-only profile missing from merged view")
	}
	if diff := cmp.Diff(map[string]string{"base": "base", "zosmf": "extra"}, got.Defaults); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got.Plugins); diff != "" {
		t.Errorf("plugins mismatch (-want +got):\n%s", diff)
	}
	if got.AutoStore == nil || !*got.AutoStore {
		t.Error("autoStore should come from the global layer")
	}

	projectOnly := mergeLayers(layers, true)
	if projectOnly.Profiles["extra"] != nil {
		t.Error("excludeGlobal still included a global profile")
	}
}
