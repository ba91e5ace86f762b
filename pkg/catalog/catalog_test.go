package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/mosaic/pkg/errors"
)

const sampleTOML = `
[[items]]
id = "espresso"
title = "Espresso"
category = "coffee"
tags = ["hot", "strong"]

[[items]]
id = "matcha"
title = "Matcha Latte"
category = "tea"
tags = ["green"]
image = "img/matcha.png"
`

func TestParseTOML(t *testing.T) {
	c, err := ParseTOML([]byte(sampleTOML))
	if err != nil {
		t.Fatalf("ParseTOML() error: %v", err)
	}
	if len(c) != 2 {
		t.Fatalf("len = %d, want 2", len(c))
	}
	if c[0].ID != "espresso" || c[0].Category != "coffee" {
		t.Errorf("item 0 = %+v", c[0])
	}
	if len(c[0].Tags) != 2 || c[0].Tags[1] != "strong" {
		t.Errorf("tags = %v, want [hot strong]", c[0].Tags)
	}
	if c[1].Image != "img/matcha.png" {
		t.Errorf("image = %q", c[1].Image)
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"envelope", `{"items":[{"id":"a","title":"A"},{"id":"b"}]}`, 2, false},
		{"bare array", `[{"id":"a"}]`, 1, false},
		{"empty", `{"items":[]}`, 0, false},
		{"duplicate", `[{"id":"a"},{"id":"a"}]`, 0, true},
		{"missing id", `[{"title":"x"}]`, 0, true},
		{"malformed", `{"items":`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
					t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidCatalog)
				}
				return
			}
			if len(c) != tt.want {
				t.Errorf("len = %d, want %d", len(c), tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "menu.toml")
	if err := os.WriteFile(tomlPath, []byte(sampleTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(tomlPath)
	if err != nil {
		t.Fatalf("LoadFile(toml) error: %v", err)
	}
	if got := c.IDs(); len(got) != 2 || got[1] != "matcha" {
		t.Errorf("IDs() = %v", got)
	}

	jsonPath := filepath.Join(dir, "menu.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"id":"x"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if c, err := LoadFile(jsonPath); err != nil || len(c) != 1 {
		t.Errorf("LoadFile(json) = %v, %v", c, err)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}

func TestIndexAndLabel(t *testing.T) {
	c := Catalog{{ID: "a", Title: "Alpha"}, {ID: "b"}}
	idx := c.Index()
	if idx["a"] != 0 || idx["b"] != 1 {
		t.Errorf("Index() = %v", idx)
	}
	if c[0].Label() != "Alpha" || c[1].Label() != "b" {
		t.Errorf("Label() = %q, %q", c[0].Label(), c[1].Label())
	}
}

func TestLoadExampleCatalogs(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "catalog", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example catalogs")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			items, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error: %v", err)
			}
			if len(items) == 0 {
				t.Error("example catalog is empty")
			}
			if err := items.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}
