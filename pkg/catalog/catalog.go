// Package catalog defines the items laid out by the engine and loads them
// from TOML or JSON files.
//
// Items are owned by the caller and treated as immutable by the engine. A
// catalog is an ordered list; its order decides point indices, collision pair
// order and the order of published cells.
//
// # File formats
//
// TOML:
//
//	[[items]]
//	id = "espresso"
//	title = "Espresso"
//	category = "coffee"
//	tags = ["hot", "strong"]
//	image = "img/espresso.png"
//
// JSON:
//
//	{"items": [{"id": "espresso", "title": "Espresso", "category": "coffee"}]}
package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mosaic/pkg/errors"
)

// Item is a single labeled entry of the catalog.
type Item struct {
	ID       string   `json:"id" toml:"id"`
	Title    string   `json:"title" toml:"title"`
	Category string   `json:"category,omitempty" toml:"category"`
	Tags     []string `json:"tags,omitempty" toml:"tags"`
	Image    string   `json:"image,omitempty" toml:"image"`
}

// Label returns the title, falling back to the ID.
func (it Item) Label() string {
	if it.Title != "" {
		return it.Title
	}
	return it.ID
}

// Catalog is the ordered, fixed set of items for one simulation lifetime.
type Catalog []Item

// Validate checks that every item has a well-formed, unique identifier.
func (c Catalog) Validate() error {
	seen := make(map[string]int, len(c))
	for i, it := range c {
		if err := errors.ValidateItemID(it.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "item %d", i)
		}
		if prev, ok := seen[it.ID]; ok {
			return errors.New(errors.ErrCodeInvalidCatalog, "duplicate item id %q (items %d and %d)", it.ID, prev, i)
		}
		seen[it.ID] = i
	}
	return nil
}

// IDs returns the item identifiers in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, it := range c {
		ids[i] = it.ID
	}
	return ids
}

// Index returns a map from item ID to catalog position.
func (c Catalog) Index() map[string]int {
	idx := make(map[string]int, len(c))
	for i, it := range c {
		idx[it.ID] = i
	}
	return idx
}

// file is the on-disk envelope shared by the TOML and JSON formats.
type file struct {
	Items []Item `json:"items" toml:"items"`
}

// LoadFile reads a catalog from path. The format is chosen by extension:
// ".toml" for TOML, anything else is parsed as JSON.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog %s", path)
	}
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return ParseJSON(data)
}

// ParseTOML decodes and validates a TOML catalog.
func ParseTOML(data []byte) (Catalog, error) {
	var f file
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode TOML catalog")
	}
	c := Catalog(f.Items)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseJSON decodes and validates a JSON catalog. Both the {"items": [...]}
// envelope and a bare array are accepted.
func ParseJSON(data []byte) (Catalog, error) {
	var f file
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &f.Items); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode JSON catalog")
		}
	} else if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode JSON catalog")
	}
	c := Catalog(f.Items)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Canonical returns the catalog as JSON for hashing into cache keys.
func (c Catalog) Canonical() []byte {
	data, _ := json.Marshal(file{Items: c})
	return data
}
