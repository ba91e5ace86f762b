package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mosaic/pkg/catalog"
	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/render/sink"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, f engine.Frame, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(gctx, f, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, f engine.Frame, format string, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bounds := opts.Config.Bounds()
	labels := labelsFor(opts)

	switch format {
	case FormatSVG:
		svgOpts := []sink.SVGOption{}
		if labels != nil {
			svgOpts = append(svgOpts, sink.WithLabels(labels))
		}
		if opts.Links {
			svgOpts = append(svgOpts, sink.WithLinks())
		}
		return sink.RenderSVG(f, bounds, svgOpts...), nil
	case FormatPNG:
		pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
		if opts.Links {
			pngOpts = append(pngOpts, sink.WithPNGLinks())
		}
		return sink.RenderPNG(f, bounds, pngOpts...)
	case FormatJSON:
		return sink.RenderJSON(f, bounds,
			sink.WithJSONSeed(opts.Seed),
			sink.WithJSONTicks(opts.Ticks),
			sink.WithJSONLabels(opts.Catalog),
		)
	case FormatDOT:
		return []byte(sink.ToDOT(f, bounds, sink.DOTOptions{Labels: labels})), nil
	case FormatGraph:
		return sink.RenderNeighborsSVG(ctx, f, bounds, sink.DOTOptions{Labels: labels})
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func labelsFor(opts Options) catalog.Catalog {
	if !opts.Labels {
		return nil
	}
	return opts.Catalog
}
