package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadLayerFile_AcceptsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zowe.config.json")
	writeTestFile(t, path, `{
    // team connection
    "$schema": "./zowe.schema.json",
    "profiles": {
        "base": {
            "type": "base",
            "properties": {
                "host": "example.com", /* trailing */
                "port": 443,
            },
            "secure": ["password"],
        },
    },
    "defaults": { "base": "base" },
    "autoStore": false,
}`)

	doc, err := ReadLayerFile(path)
	if err != nil {
		t.Fatalf("ReadLayerFile() error: %v", err)
	}

	if doc.Schema != "./zowe.schema.json" {
		t.Errorf("Schema = %q", doc.Schema)
	}
	base := doc.Profiles["base"]
	if base == nil || base.Type != "base" {
		t.Fatalf("base profile = %+v", base)
	}
	if base.Properties["port"] != 443.0 {
		t.Errorf("port = %v, want 443", base.Properties["port"])
	}
	if doc.AutoStore == nil || *doc.AutoStore {
		t.Errorf("AutoStore = %v, want explicit false", doc.AutoStore)
	}
}

func TestReadLayerFile_EmptyObjectNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zowe.config.json")
	writeTestFile(t, path, `{}`)

	doc, err := ReadLayerFile(path)
	if err != nil {
		t.Fatalf("ReadLayerFile() error: %v", err)
	}
	if doc.Profiles == nil || doc.Defaults == nil {
		t.Errorf("doc = %+v, want non-nil profiles and defaults", doc)
	}
	if doc.AutoStore != nil {
		t.Error("AutoStore should stay unset")
	}
}

func TestReadLayerFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{name: "syntax", content: "{\n  \"profiles\": {,}\n}", wantLine: 2},
		{name: "wrong shape", content: "{\n  \"profiles\": []\n}", wantLine: 2},
		{name: "truncated", content: `{"profiles": {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "zowe.config.json")
			writeTestFile(t, path, tt.content)

			_, err := ReadLayerFile(path)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("ReadLayerFile() error = %v, want *ParseError", err)
			}
			if parseErr.Path != path {
				t.Errorf("Path = %q, want %q", parseErr.Path, path)
			}
			if tt.wantLine > 0 && parseErr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", parseErr.Line, tt.wantLine)
			}
		})
	}
}

func TestReadLayerFile_Missing(t *testing.T) {
	_, err := ReadLayerFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestPositionFromOffset(t *testing.T) {
	data := []byte("ab\ncd\nef")
	line, col := positionFromOffset(data, 4)
	if line != 2 || col != 2 {
		t.Errorf("positionFromOffset() = %d:%d, want 2:2", line, col)
	}
}
