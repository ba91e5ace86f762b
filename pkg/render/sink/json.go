package sink

import (
	"encoding/json"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/geom"
	"github.com/matzehuels/mosaic/pkg/tessellate"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	seed   uint64
	ticks  int
	labels map[string]string
}

// WithJSONSeed records the placement seed for reproducible reruns.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

// WithJSONTicks records how many ticks produced the frame.
func WithJSONTicks(n int) JSONOption { return func(r *jsonRenderer) { r.ticks = n } }

// WithJSONLabels includes each item's display label.
func WithJSONLabels(items catalog.Catalog) JSONOption {
	return func(r *jsonRenderer) { r.labels = labelMap(items) }
}

type jsonOutput struct {
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Seq     uint64            `json:"seq"`
	Query   string            `json:"query"`
	Seed    uint64            `json:"seed,omitempty"`
	Ticks   int               `json:"ticks,omitempty"`
	Cells   []jsonCell        `json:"cells"`
	Links   []tessellate.Link `json:"links,omitempty"`
	Dropped []string          `json:"dropped,omitempty"`
}

type jsonCell struct {
	ID        string       `json:"id"`
	Label     string       `json:"label,omitempty"`
	Relevance float64      `json:"relevance"`
	Center    geom.Vec     `json:"center"`
	Area      float64      `json:"area"`
	Polygon   geom.Polygon `json:"polygon"`
}

// RenderJSON exports the frame and its bounds as a pretty-printed JSON
// document. Item labels are included when [WithJSONLabels] is given.
func RenderJSON(f engine.Frame, bounds geom.Rect, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:   bounds.W,
		Height:  bounds.H,
		Seq:     f.Seq,
		Query:   f.Query,
		Seed:    r.seed,
		Ticks:   r.ticks,
		Cells:   make([]jsonCell, 0, len(f.Cells)),
		Links:   f.Links,
		Dropped: f.Dropped,
	}
	for _, c := range f.Cells {
		out.Cells = append(out.Cells, jsonCell{
			ID:        c.ID,
			Label:     r.labels[c.ID],
			Relevance: c.Relevance,
			Center:    c.Center,
			Area:      c.Polygon.Area(),
			Polygon:   c.Polygon,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
