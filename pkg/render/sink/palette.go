package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/geom"
)

// Ramp endpoints for cell shading.
var (
	baseColor   = rgb{0xe5, 0xe7, 0xeb}
	accentColor = rgb{0x25, 0x63, 0xeb}
	strokeColor = rgb{0xff, 0xff, 0xff}
	textColor   = rgb{0x11, 0x18, 0x27}
)

type rgb struct{ R, G, B uint8 }

// Hex returns the color as #rrggbb.
func (c rgb) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Floats returns the channels in [0,1].
func (c rgb) Floats() (float64, float64, float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// shade interpolates between the base and accent colors.
func shade(relevance float64) rgb {
	t := geom.Clamp(relevance, 0, 1)
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return rgb{
		mix(baseColor.R, accentColor.R),
		mix(baseColor.G, accentColor.G),
		mix(baseColor.B, accentColor.B),
	}
}

// labelMap maps item IDs to display labels.
func labelMap(items catalog.Catalog) map[string]string {
	if len(items) == 0 {
		return nil
	}
	m := make(map[string]string, len(items))
	for _, it := range items {
		m[it.ID] = it.Label()
	}
	return m
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
