package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/geom"
	"github.com/matzehuels/mosaic/pkg/tessellate"
)

var bounds = geom.Rect{W: 200, H: 100}

// twoCells splits bounds down the middle.
func twoCells() engine.Frame {
	return engine.Frame{
		Seq:   3,
		Query: "tools",
		Cells: []tessellate.Cell{
			{
				ID:        "a",
				Polygon:   geom.Polygon{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}},
				Relevance: 1,
				Center:    geom.V(50, 50),
			},
			{
				ID:        "b",
				Polygon:   geom.Polygon{{X: 100, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}, {X: 100, Y: 100}},
				Relevance: 0,
				Center:    geom.V(150, 50),
			},
		},
		Links: []tessellate.Link{{A: "a", B: "b"}},
	}
}

var items = catalog.Catalog{
	{ID: "a", Title: "Alpha & Co"},
	{ID: "b", Title: "Beta"},
}

func TestShade(t *testing.T) {
	tests := []struct {
		rel  float64
		want rgb
	}{
		{0, baseColor},
		{1, accentColor},
		{-3, baseColor},
		{7, accentColor},
	}
	for _, tt := range tests {
		if got := shade(tt.rel); got != tt.want {
			t.Errorf("shade(%v) = %v, want %v", tt.rel, got, tt.want)
		}
	}
	mid := shade(0.5)
	if mid == baseColor || mid == accentColor {
		t.Errorf("shade(0.5) = %v, want a blend", mid)
	}
	if got := (rgb{0x25, 0x63, 0xeb}).Hex(); got != "#2563eb" {
		t.Errorf("Hex() = %q", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(twoCells(), bounds))

	for _, want := range []string{
		`viewBox="0 0 200.0 100.0"`,
		`id="cell-a"`,
		`id="cell-b"`,
		`d="M0.00,0.00 L100.00,0.00 L100.00,100.00 L0.00,100.00 Z"`,
		`fill="` + accentColor.Hex() + `"`,
		`</svg>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, "<text") {
		t.Error("labels drawn without WithLabels")
	}
	if strings.Contains(svg, "<line") {
		t.Error("links drawn without WithLinks")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(twoCells(), bounds, WithLabels(items), WithLinks()))
	if !strings.Contains(svg, "Alpha &amp; Co") {
		t.Error("label not escaped or missing")
	}
	if !strings.Contains(svg, ">Beta</text>") {
		t.Error("missing label for b")
	}
	if !strings.Contains(svg, `<line x1="50.00" y1="50.00" x2="150.00" y2="50.00"/>`) {
		t.Error("missing link line")
	}

	svg = string(RenderSVG(twoCells(), bounds, WithLabels(items), WithLabelThreshold(0.5)))
	if strings.Contains(svg, "Beta") {
		t.Error("label below threshold drawn")
	}
}

func TestRenderSVGEmptyFrame(t *testing.T) {
	svg := string(RenderSVG(engine.Frame{}, bounds))
	if !strings.HasPrefix(svg, "<svg") || strings.Contains(svg, "<path") {
		t.Errorf("empty frame SVG = %s", svg)
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(twoCells(), bounds, WithJSONSeed(42), WithJSONTicks(300), WithJSONLabels(items))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if out.Width != 200 || out.Height != 100 {
		t.Errorf("size = %vx%v, want 200x100", out.Width, out.Height)
	}
	if out.Seq != 3 || out.Query != "tools" || out.Seed != 42 || out.Ticks != 300 {
		t.Errorf("header = %+v", out)
	}
	if len(out.Cells) != 2 {
		t.Fatalf("Cells count = %d, want 2", len(out.Cells))
	}
	if out.Cells[0].Label != "Alpha & Co" {
		t.Errorf("Label = %q", out.Cells[0].Label)
	}
	if out.Cells[0].Area != 10000 {
		t.Errorf("Area = %v, want 10000", out.Cells[0].Area)
	}
	if diff := cmp.Diff(twoCells().Cells[1].Polygon, out.Cells[1].Polygon); diff != "" {
		t.Errorf("polygon mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(twoCells().Links, out.Links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(data), `"x": 100`) {
		t.Error("vertices should use lowercase keys")
	}
}

func TestRenderJSONEmptyCells(t *testing.T) {
	data, err := RenderJSON(engine.Frame{}, bounds)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"cells": []`) {
		t.Errorf("empty frame should encode cells as [], got %s", data)
	}
}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name  string
		opts  []PNGOption
		wantW int
		wantH int
	}{
		{"default scale", nil, 400, 200},
		{"scale 1", []PNGOption{WithScale(1)}, 200, 100},
		{"links", []PNGOption{WithScale(1), WithPNGLinks()}, 200, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := RenderPNG(twoCells(), bounds, tt.opts...)
			if err != nil {
				t.Fatalf("RenderPNG() error: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("png.Decode() error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderPNGInvalid(t *testing.T) {
	if _, err := RenderPNG(twoCells(), bounds, WithScale(0)); err == nil {
		t.Error("expected error for zero scale")
	}
	if _, err := RenderPNG(twoCells(), geom.Rect{}); err == nil {
		t.Error("expected error for empty bounds")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(twoCells(), bounds, DOTOptions{Labels: items})

	for _, want := range []string{
		"graph G {",
		"layout=neato;",
		`"a" [label="Alpha & Co", pos="50.00,50.00!", width=0.80`,
		`"b" [label="Beta", pos="150.00,50.00!", width=0.30`,
		`"a" -- "b";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "->") {
		t.Error("neighbor graph must be undirected")
	}
}

func TestToDOTFlipsY(t *testing.T) {
	f := engine.Frame{Cells: []tessellate.Cell{{ID: "top", Center: geom.V(10, 20)}}}
	dot := ToDOT(f, bounds, DOTOptions{})
	if !strings.Contains(dot, `pos="10.00,80.00!"`) {
		t.Errorf("expected flipped y, got\n%s", dot)
	}
	if !strings.Contains(dot, `label="top"`) {
		t.Error("nodes without labels should use the ID")
	}
}

func TestRenderNeighborsSVG(t *testing.T) {
	svg, err := RenderNeighborsSVG(context.Background(), twoCells(), bounds, DOTOptions{})
	if err != nil {
		t.Fatalf("RenderNeighborsSVG() error: %v", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(svg), []byte("<?xml")) && !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Error("input without viewBox should pass through")
	}
}
