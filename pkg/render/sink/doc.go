// Package sink renders layout frames into output formats.
//
// # Overview
//
// A "sink" turns a published [engine.Frame] into bytes. Every renderer takes
// the frame together with the working rectangle it was laid out in:
//
//   - SVG: one filled polygon per cell, shaded by relevance
//   - JSON: the frame plus its bounds, for external tools
//   - PNG: the same picture as the SVG, rasterized with gogpu/gg
//   - DOT: the Delaunay neighbor graph with pinned node positions
//
// Basic usage:
//
//	svg := sink.RenderSVG(frame, cfg.Bounds(), sink.WithLabels(items))
//	png, err := sink.RenderPNG(frame, cfg.Bounds(), sink.WithScale(2))
//
// # Shading
//
// Cells are filled on a ramp from a neutral base color at relevance 0 to the
// accent color at relevance 1. Both SVG and PNG use the same ramp, so the two
// formats look alike.
//
// # Neighbor Graph
//
// [ToDOT] emits the frame's links as an undirected Graphviz graph. Each node
// is pinned at its cell center, so [RenderNeighborsSVG] lays it out with
// neato without moving anything.
//
// [engine.Frame]: github.com/matzehuels/mosaic/pkg/engine.Frame
package sink
