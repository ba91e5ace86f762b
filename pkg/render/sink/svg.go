package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/geom"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels    map[string]string
	minLabel  float64
	showLinks bool
}

// WithLabels draws each item's label at its cell center.
func WithLabels(items catalog.Catalog) SVGOption {
	return func(r *svgRenderer) { r.labels = labelMap(items) }
}

// WithLabelThreshold only labels cells whose relevance is at least min.
func WithLabelThreshold(min float64) SVGOption {
	return func(r *svgRenderer) { r.minLabel = min }
}

// WithLinks overlays the Delaunay neighbor links as thin lines.
func WithLinks() SVGOption { return func(r *svgRenderer) { r.showLinks = true } }

// RenderSVG draws every cell of f as a polygon inside bounds.
func RenderSVG(f engine.Frame, bounds geom.Rect, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		bounds.W, bounds.H, bounds.W, bounds.H)
	fmt.Fprintf(&buf, `  <rect width="%.1f" height="%.1f" fill="%s"/>`+"\n", bounds.W, bounds.H, baseColor.Hex())

	buf.WriteString(`  <g class="cells">` + "\n")
	for _, c := range f.Cells {
		fmt.Fprintf(&buf, `    <path id="cell-%s" class="cell" d="%s" fill="%s" stroke="%s" stroke-width="2" stroke-linejoin="round" data-relevance="%.3f"/>`+"\n",
			escapeXML(c.ID), pathData(c.Polygon), shade(c.Relevance).Hex(), strokeColor.Hex(), c.Relevance)
	}
	buf.WriteString("  </g>\n")

	if r.showLinks && len(f.Links) > 0 {
		renderLinks(&buf, f)
	}
	if r.labels != nil {
		renderLabels(&buf, f, r)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func pathData(p geom.Polygon) string {
	var sb strings.Builder
	for i, v := range p {
		if i == 0 {
			fmt.Fprintf(&sb, "M%.2f,%.2f", v.X, v.Y)
		} else {
			fmt.Fprintf(&sb, " L%.2f,%.2f", v.X, v.Y)
		}
	}
	if len(p) > 0 {
		sb.WriteString(" Z")
	}
	return sb.String()
}

func renderLinks(buf *bytes.Buffer, f engine.Frame) {
	centers := make(map[string]geom.Vec, len(f.Cells))
	for _, c := range f.Cells {
		centers[c.ID] = c.Center
	}
	buf.WriteString(`  <g class="links" stroke="#9ca3af" stroke-width="0.5">` + "\n")
	for _, l := range f.Links {
		a, okA := centers[l.A]
		b, okB := centers[l.B]
		if !okA || !okB {
			continue
		}
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", a.X, a.Y, b.X, b.Y)
	}
	buf.WriteString("  </g>\n")
}

func renderLabels(buf *bytes.Buffer, f engine.Frame, r svgRenderer) {
	fmt.Fprintf(buf, `  <g class="labels" font-family="sans-serif" text-anchor="middle" dominant-baseline="middle" fill="%s">`+"\n", textColor.Hex())
	for _, c := range f.Cells {
		if c.Relevance < r.minLabel {
			continue
		}
		label, ok := r.labels[c.ID]
		if !ok {
			continue
		}
		size := 10 + 8*c.Relevance
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f">%s</text>`+"\n",
			c.Center.X, c.Center.Y, size, escapeXML(label))
	}
	buf.WriteString("  </g>\n")
}
