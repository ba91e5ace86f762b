package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/geom"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale     float64
	showLinks bool
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGLinks overlays the neighbor links.
func WithPNGLinks() PNGOption { return func(r *pngRenderer) { r.showLinks = true } }

// RenderPNG rasterizes the cells of f. The image is bounds scaled by the
// scale factor, rounded up to whole pixels.
func RenderPNG(f engine.Frame, bounds geom.Rect, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		return nil, fmt.Errorf("invalid scale %v", r.scale)
	}

	w := int(math.Ceil(bounds.W * r.scale))
	h := int(math.Ceil(bounds.H * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()

	dc.SetRGB(baseColor.Floats())
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("fill background: %w", err)
	}

	dc.SetLineWidth(2 * r.scale)
	for _, c := range f.Cells {
		if len(c.Polygon) < 3 {
			continue
		}
		tracePolygon(dc, c.Polygon, r.scale)
		dc.SetRGB(shade(c.Relevance).Floats())
		if err := dc.FillPreserve(); err != nil {
			return nil, fmt.Errorf("fill cell %s: %w", c.ID, err)
		}
		dc.SetRGB(strokeColor.Floats())
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("stroke cell %s: %w", c.ID, err)
		}
	}

	if r.showLinks {
		if err := drawLinks(dc, f, r.scale); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func tracePolygon(dc *gg.Context, p geom.Polygon, scale float64) {
	dc.ClearPath()
	dc.MoveTo(p[0].X*scale, p[0].Y*scale)
	for _, v := range p[1:] {
		dc.LineTo(v.X*scale, v.Y*scale)
	}
	dc.ClosePath()
}

func drawLinks(dc *gg.Context, f engine.Frame, scale float64) error {
	centers := make(map[string]geom.Vec, len(f.Cells))
	for _, c := range f.Cells {
		centers[c.ID] = c.Center
	}
	dc.SetRGBA(0.61, 0.64, 0.69, 0.8)
	dc.SetLineWidth(0.5 * scale)
	for _, l := range f.Links {
		a, okA := centers[l.A]
		b, okB := centers[l.B]
		if !okA || !okB {
			continue
		}
		dc.ClearPath()
		dc.MoveTo(a.X*scale, a.Y*scale)
		dc.LineTo(b.X*scale, b.Y*scale)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("stroke link %s-%s: %w", l.A, l.B, err)
		}
	}
	return nil
}
