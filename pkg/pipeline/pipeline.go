// Package pipeline provides the headless simulate-and-render pipeline for
// mosaic.
//
// This package runs a layout engine for a fixed number of ticks on a manual
// scheduler and renders the final frame in one or more formats. The CLI uses
// it for `mosaic run`; anything else that wants a still image of a catalog can
// use it the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Simulate: Start an engine over the catalog and advance it N ticks
//  2. Render: Turn the last frame into SVG, PNG, JSON or DOT output
//
// A headless run is a pure function of catalog, configuration, query, seed and
// tick count, so both stages are cached.
//
// # Usage
//
//	r := pipeline.NewRunner(fc, nil, logger)
//	res, err := r.Execute(ctx, pipeline.Options{
//		Catalog: items,
//		Query:   "tools",
//		Formats: []string{pipeline.FormatSVG, pipeline.FormatPNG},
//	})
//	if err != nil {
//		return err
//	}
//	os.WriteFile("shop.svg", res.Artifacts[pipeline.FormatSVG], 0o644)
//
// [Runner.Simulate] and [Runner.Render] run one stage each.
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/sim"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTicks is how many ticks a headless run simulates. At the stock
	// configuration radii settle to within 1% of target well before this.
	DefaultTicks = 300

	// DefaultSeed makes runs without --seed reproducible.
	DefaultSeed = uint64(42)

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatGraph = "graph"
)

// ValidFormats lists the formats Render accepts.
var ValidFormats = map[string]bool{
	FormatSVG:   true,
	FormatPNG:   true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatGraph: true,
}

// Extension returns the file extension for a format's output.
func Extension(format string) string {
	if format == FormatGraph {
		return "graph.svg"
	}
	return format
}

// Options contains all configuration for a headless run.
type Options struct {
	// Simulation options
	Catalog catalog.Catalog `json:"-"`
	Config  sim.Config      `json:"config"`
	Query   string          `json:"query,omitempty"`
	Seed    uint64          `json:"seed,omitempty"`
	Ticks   int             `json:"ticks,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Links   bool     `json:"links,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	Logger *log.Logger `json:"-"`

	// Progress, when set, is called after each simulated tick. It is not
	// called when the frame is served from cache.
	Progress func(done, total int) `json:"-"`
}

// Result is what [Runner.Execute] produces: the final frame, its hash and one
// artifact per requested format.
type Result struct {
	Frame     engine.Frame
	FrameHash string
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats reports sizes and stage durations of a run.
type Stats struct {
	Items        int
	Cells        int
	Dropped      int
	Ticks        int
	SimulateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo records which stages were served from the cache. RenderHit is
// set only when every requested format was.
type CacheInfo struct {
	SimulateHit bool
	RenderHit   bool
}

// ValidateFormat returns an INVALID_FORMAT error for unknown formats.
func ValidateFormat(format string) error {
	if ValidFormats[format] {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
		format, strings.Join(FormatNames(), ", "))
}

// ValidateFormats returns the first invalid format's error.
func ValidateFormats(formats []string) error {
	for _, name := range formats {
		if err := ValidateFormat(name); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// SetDefaults fills unset fields. A zero Config becomes [sim.DefaultConfig].
func (o *Options) SetDefaults() {
	if o.Config == (sim.Config{}) {
		o.Config = sim.DefaultConfig()
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Ticks == 0 {
		o.Ticks = DefaultTicks
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForSimulate applies defaults and checks the simulation inputs.
func (o *Options) ValidateForSimulate() error {
	o.SetDefaults()
	if err := o.Catalog.Validate(); err != nil {
		return err
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.Ticks < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ticks must be positive, got %d", o.Ticks)
	}
	return nil
}

// ValidateForRender applies defaults and checks the render inputs.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// Validate checks every input of a full run.
func (o *Options) Validate() error {
	if err := o.ValidateForSimulate(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// ConfigHash returns the content hash of the simulation configuration.
func (o *Options) ConfigHash() string {
	data, err := o.Config.EncodeTOML()
	if err != nil {
		return cache.Hash([]byte(fmt.Sprintf("%+v", o.Config)))
	}
	return cache.Hash(data)
}

// FrameKeyOpts returns cache key options for the simulation stage.
func (o *Options) FrameKeyOpts() cache.FrameKeyOpts {
	return cache.FrameKeyOpts{
		ConfigHash: o.ConfigHash(),
		Query:      o.Query,
		Seed:       o.Seed,
		Ticks:      o.Ticks,
	}
}

// ArtifactKeyOpts returns the render-stage key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Labels: o.Labels,
		Links:  o.Links,
		Scale:  o.Scale,
	}
}
