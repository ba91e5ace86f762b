package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	configPath string // simulation config TOML; empty uses defaults
	output     string // output file path (or base path for multiple outputs)
	noCache    bool   // disable the frame and artifact cache
}

// runCommand creates the run command for headless simulation and rendering.
func (c *CLI) runCommand() *cobra.Command {
	var (
		flags      runOpts
		formatsStr string
	)
	opts := pipeline.Options{
		Ticks: pipeline.DefaultTicks,
		Seed:  pipeline.DefaultSeed,
		Scale: pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "run [catalog]",
		Short: "Simulate a catalog and render the settled mosaic",
		Long: `Simulate a catalog and render the settled mosaic.

The run command loads a TOML or JSON catalog, advances the layout for a fixed
number of ticks against the given query and renders the final frame. Output
formats:

  svg    cell polygons shaded by relevance
  png    the same picture, rasterized
  json   frame data: cells, polygons, relevance, neighbor links
  dot    the Delaunay neighbor graph in Graphviz DOT
  graph  the neighbor graph rendered to SVG by Graphviz

Results are cached locally; a run with the same catalog, config, query, seed
and tick count is served from cache.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCatalog,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRun(cmd, args[0], opts, flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "simulation config file (TOML)")

	// Simulation flags
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "query that weights the cells")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", opts.Ticks, "number of ticks to simulate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for initial placement")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached frames")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, dot, graph (comma-separated)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "draw item labels")
	cmd.Flags().BoolVar(&opts.Links, "links", false, "overlay neighbor links")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")

	return cmd
}

// runRun loads the inputs, executes the pipeline and writes the artifacts.
func (c *CLI) runRun(cmd *cobra.Command, input string, opts pipeline.Options, flags runOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := loggerFromContext(ctx)

	items, err := loadCatalog(input)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	opts.Catalog = items
	opts.Config = cfg
	opts.Logger = logger

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Simulating %d items...", len(items)))
	opts.Progress = spinner.SetProgress
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Simulation failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Simulated %d items", len(items)))

	printSuccess(out, "Laid out %s", StyleValue.Render(filepath.Base(input)))
	printStats(out, result.Stats, result.CacheInfo.SimulateHit)
	if result.Stats.Dropped > 0 {
		printWarning(out, "%d items have no visible cell", result.Stats.Dropped)
	}

	return writeArtifacts(artifactWriteParams{
		out:       out,
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    flags.output,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	out       io.Writer
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes each artifact to disk. A single format with an
// explicit output path is written to exactly that path; otherwise files are
// named base.<ext>.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("missing %s artifact", format)
		}
		path := base + "." + pipeline.Extension(format)
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(p.out, path)
	}
	if p.cacheHit {
		printDetail(p.out, "artifacts served from cache")
	}
	return nil
}

// basePath returns the output path without extension. Without an explicit
// output, artifacts land next to the input.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// Strip known format extensions from output path
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
