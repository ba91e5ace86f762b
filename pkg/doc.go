// Package pkg provides the core libraries for Mosaic, a relevance-weighted
// Voronoi layout engine.
//
// # Overview
//
// Mosaic arranges a catalog of items on a rectangle. Every item owns one cell
// of a Voronoi tessellation, and cells grow or shrink with how well the item
// matches the current query. The layout is driven by a small physics
// simulation: points drift toward the center, push apart where their circles
// overlap and ease their radius toward a relevance-dependent target.
//
// # Architecture
//
// The data flow of one tick:
//
//	[catalog] items + query
//	         ↓
//	    [relevance] (score → target radius)
//	         ↓
//	    [sim] (physics step, collision relaxation, clamp)
//	         ↓
//	    [tessellate] (Delaunay → Voronoi → clipped cells)
//	         ↓
//	    [engine] Frame → publisher
//
// # Main Packages
//
// [geom] - Vectors, rectangles and polygons with half-plane clipping.
//
// [catalog] - Items and catalog loading from TOML or JSON.
//
// [relevance] - The pluggable query scorer and the score to radius mapping.
//
// [sim] - Simulation config, per-point state and the physics stages.
//
// [tessellate] - Bowyer-Watson triangulation and Voronoi cell construction.
//
// [engine] - The tick lifecycle, schedulers and published frames.
//
// [render/sink] - SVG, PNG, JSON and Graphviz output for a frame.
//
// [pipeline] - Headless simulate → render orchestration with caching.
//
// [cache] - Cache interface with file and null implementations.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for simulation and pipeline events.
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/catalog
// [relevance]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/relevance
// [sim]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/sim
// [tessellate]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/tessellate
// [engine]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/engine
// [geom]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/geom
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/mosaic/pkg/observability
package pkg
