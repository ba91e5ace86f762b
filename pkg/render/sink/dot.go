package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/geom"
)

// DOTOptions configures neighbor graph output.
type DOTOptions struct {
	// Labels names nodes by item label instead of ID.
	Labels catalog.Catalog
}

// ToDOT converts the frame's neighbor links to an undirected Graphviz graph.
// Nodes are pinned at their cell centers with Y flipped, since Graphviz
// points grow upwards.
func ToDOT(f engine.Frame, bounds geom.Rect, opts DOTOptions) string {
	labels := labelMap(opts.Labels)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontsize=10, fontname=\"sans-serif\"];\n")
	buf.WriteString("  edge [color=\"#9ca3af\"];\n")
	buf.WriteString("\n")

	for _, c := range f.Cells {
		label := c.ID
		if l, ok := labels[c.ID]; ok {
			label = l
		}
		x := c.Center.X
		y := bounds.H - c.Center.Y
		width := 0.3 + 0.5*c.Relevance
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.2f,%.2f!\", width=%.2f, fillcolor=%q];\n",
			c.ID, label, x, y, width, shade(c.Relevance).Hex())
	}

	buf.WriteString("\n")
	for _, l := range f.Links {
		fmt.Fprintf(&buf, "  %q -- %q;\n", l.A, l.B)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderNeighborsSVG renders the neighbor graph of f to SVG with Graphviz.
func RenderNeighborsSVG(ctx context.Context, f engine.Frame, bounds geom.Rect, opts DOTOptions) ([]byte, error) {
	return RenderDOT(ctx, ToDOT(f, bounds, opts))
}

// RenderDOT renders a DOT graph to SVG using the neato engine, which honors
// pinned node positions.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's root element with a plain one whose
// viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
