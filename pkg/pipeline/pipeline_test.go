package pipeline

import (
	"bytes"
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/observability"
	"github.com/matzehuels/mosaic/pkg/sim"
)

var items = catalog.Catalog{
	{ID: "1", Title: "Alpha", Category: "tools", Tags: []string{"red"}},
	{ID: "2", Title: "Beta", Category: "games", Tags: []string{"blue"}},
	{ID: "3", Title: "Gamma", Category: "tools", Tags: []string{"green"}},
	{ID: "4", Title: "Delta", Category: "music", Tags: []string{"red", "loud"}},
}

func testOptions() Options {
	return Options{
		Catalog: items,
		Query:   "tools",
		Ticks:   25,
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"dot", false},
		{"graph", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v, want INVALID_FORMAT", tt.format, err)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestFormatNames(t *testing.T) {
	want := []string{"dot", "graph", "json", "png", "svg"}
	if diff := cmp.Diff(want, FormatNames()); diff != "" {
		t.Errorf("FormatNames() mismatch (-want +got):\n%s", diff)
	}
	if Extension(FormatGraph) != "graph.svg" || Extension(FormatPNG) != "png" {
		t.Error("unexpected extensions")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Catalog: items}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Config != sim.DefaultConfig() {
		t.Errorf("Config = %+v, want defaults", opts.Config)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed should be %d, got %d", DefaultSeed, opts.Seed)
	}
	if opts.Ticks != DefaultTicks {
		t.Errorf("Ticks should be %d, got %d", DefaultTicks, opts.Ticks)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should default to svg, got %v", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %v, got %v", DefaultScale, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidate(t *testing.T) {
	badConfig := sim.DefaultConfig()
	badConfig.MaxRadius = badConfig.BaseRadius - 1

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative ticks", Options{Catalog: items, Ticks: -1}, errors.ErrCodeInvalidInput},
		{"bad config", Options{Catalog: items, Config: badConfig}, errors.ErrCodeInvalidConfig},
		{"duplicate ids", Options{Catalog: catalog.Catalog{{ID: "a"}, {ID: "a"}}}, errors.ErrCodeInvalidCatalog},
		{"bad format", Options{Catalog: items, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative scale", Options{Catalog: items, Scale: -2}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFrameKeyOpts(t *testing.T) {
	a := testOptions()
	a.SetDefaults()
	b := testOptions()
	b.SetDefaults()
	if diff := cmp.Diff(a.FrameKeyOpts(), b.FrameKeyOpts()); diff != "" {
		t.Errorf("equal options gave different keys:\n%s", diff)
	}

	b.Config.Friction = 0.5
	if a.ConfigHash() == b.ConfigHash() {
		t.Error("config change should change the config hash")
	}
}

func TestSimulate(t *testing.T) {
	opts := testOptions()
	frame, err := Simulate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if frame.Seq != 25 {
		t.Errorf("Seq = %d, want 25", frame.Seq)
	}
	if frame.Query != "tools" {
		t.Errorf("Query = %q, want tools", frame.Query)
	}
	if len(frame.Cells) != len(items) {
		t.Fatalf("cells = %d, want %d", len(frame.Cells), len(items))
	}

	cfg := sim.DefaultConfig()
	var area float64
	for _, c := range frame.Cells {
		area += c.Polygon.Area()
	}
	if want := cfg.Width * cfg.Height; math.Abs(area-want) > 1e-6*want {
		t.Errorf("area sum = %v, want %v", area, want)
	}

	top := frame.TopCells(2)
	for _, c := range top {
		if c.ID != "1" && c.ID != "3" {
			t.Errorf("TopCells(2) contains %s, want tools items", c.ID)
		}
	}
}

func TestSimulateDeterministic(t *testing.T) {
	a, err := Simulate(context.Background(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(context.Background(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different frames (-a +b):\n%s", diff)
	}

	other := testOptions()
	other.Seed = 7
	c, err := Simulate(context.Background(), other)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Equal(a.Cells, c.Cells) {
		t.Error("different seeds gave identical cells")
	}
}

func TestSimulateProgress(t *testing.T) {
	opts := testOptions()
	var calls []int
	opts.Progress = func(done, total int) {
		if total != opts.Ticks {
			t.Errorf("total = %d, want %d", total, opts.Ticks)
		}
		calls = append(calls, done)
	}
	if _, err := Simulate(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if len(calls) != opts.Ticks || calls[0] != 1 || calls[len(calls)-1] != opts.Ticks {
		t.Errorf("progress calls = %v", calls)
	}
}

func TestSimulateEmptyCatalog(t *testing.T) {
	frame, err := Simulate(context.Background(), Options{Ticks: 3})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if !frame.Empty() || frame.Seq != 3 {
		t.Errorf("frame = %+v, want 3 empty ticks", frame)
	}
}

func TestSimulateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Simulate(ctx, testOptions()); err != context.Canceled {
		t.Errorf("Simulate() = %v, want context.Canceled", err)
	}
}

func TestRender(t *testing.T) {
	opts := testOptions()
	opts.Formats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}
	opts.Labels = true
	opts.Scale = 1

	frame, err := Simulate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	artifacts, err := Render(context.Background(), frame, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	checks := map[string][]byte{
		FormatSVG:  []byte("<svg"),
		FormatPNG:  []byte("\x89PNG"),
		FormatJSON: []byte(`"query": "tools"`),
		FormatDOT:  []byte("graph G {"),
	}
	for format, want := range checks {
		data, ok := artifacts[format]
		if !ok {
			t.Errorf("missing %s artifact", format)
			continue
		}
		if !bytes.Contains(data, want) {
			t.Errorf("%s artifact missing %q", format, want)
		}
	}
	if !bytes.Contains(artifacts[FormatSVG], []byte("Alpha")) {
		t.Error("labels requested but not drawn")
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := testOptions()
	opts.Formats = []string{FormatSVG, FormatJSON}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.SimulateHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}
	if first.Stats.Ticks != 25 || first.Stats.Items != 4 || first.Stats.Cells != 4 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	if first.FrameHash == "" {
		t.Error("FrameHash not set")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.SimulateHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if second.FrameHash != first.FrameHash {
		t.Error("cached frame hashes differently")
	}
	if diff := cmp.Diff(first.Artifacts, second.Artifacts); diff != "" {
		t.Errorf("cached artifacts differ:\n%s", diff)
	}

	opts.Query = "games"
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.SimulateHit {
		t.Error("query change should miss the frame cache")
	}

	opts.Query = "tools"
	opts.Refresh = true
	fourth, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.SimulateHit {
		t.Error("refresh should bypass the frame cache")
	}
}

func TestRunnerNullCache(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, ok := r.Cache.(*cache.NullCache); !ok {
		t.Errorf("Cache = %T, want *cache.NullCache", r.Cache)
	}
	res, err := r.Execute(context.Background(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.SimulateHit {
		t.Error("null cache should never hit")
	}
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingPipelineHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingPipelineHooks) OnSimulateStart(context.Context, int, int) {
	h.record("simulate.start")
}

func (h *recordingPipelineHooks) OnSimulateComplete(_ context.Context, _ int, _ time.Duration, err error) {
	if err != nil {
		h.record("simulate.error")
		return
	}
	h.record("simulate.done")
}

func (h *recordingPipelineHooks) OnRenderStart(context.Context, []string) {
	h.record("render.start")
}

func (h *recordingPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render.done")
}

func TestRunnerHooks(t *testing.T) {
	hooks := &recordingPipelineHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), testOptions()); err != nil {
		t.Fatal(err)
	}
	want := []string{"simulate.start", "simulate.done", "render.start", "render.done"}
	if diff := cmp.Diff(want, hooks.events); diff != "" {
		t.Errorf("hook events mismatch (-want +got):\n%s", diff)
	}
}
