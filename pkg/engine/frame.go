package engine

import (
	"slices"

	"github.com/matzehuels/mosaic/pkg/tessellate"
)

// Frame is the snapshot published after every successful tick. Its slices are
// allocated fresh each tick and never alias engine state. The frame returned by
// Tick and the one passed to the Publisher share memory; treat them as
// read-only or Clone first.
type Frame struct {
	// Seq numbers frames from 1 within a run.
	Seq uint64 `json:"seq"`

	// Query is the query whose targets were in effect for this tick.
	Query string `json:"query"`

	Cells   []tessellate.Cell `json:"cells"`
	Links   []tessellate.Link `json:"links,omitempty"`
	Dropped []string          `json:"dropped,omitempty"`
}

// Publisher receives each frame. It is called without the engine lock held,
// so it may call back into the engine.
type Publisher func(Frame)

// Clone returns a deep copy of f, polygons included.
func (f Frame) Clone() Frame {
	out := f
	if f.Cells != nil {
		out.Cells = make([]tessellate.Cell, len(f.Cells))
		for i, c := range f.Cells {
			c.Polygon = c.Polygon.Clone()
			out.Cells[i] = c
		}
	}
	out.Links = slices.Clone(f.Links)
	out.Dropped = slices.Clone(f.Dropped)
	return out
}

// Empty reports whether the frame carries no cells.
func (f Frame) Empty() bool { return len(f.Cells) == 0 }

// Cell returns the cell of the given item.
func (f Frame) Cell(id string) (tessellate.Cell, bool) {
	for _, c := range f.Cells {
		if c.ID == id {
			return c, true
		}
	}
	return tessellate.Cell{}, false
}

// TopCells returns up to n cells ordered by descending relevance. Ties keep
// catalog order.
func (f Frame) TopCells(n int) []tessellate.Cell {
	cells := slices.Clone(f.Cells)
	slices.SortStableFunc(cells, func(a, b tessellate.Cell) int {
		switch {
		case a.Relevance > b.Relevance:
			return -1
		case a.Relevance < b.Relevance:
			return 1
		}
		return 0
	})
	if n >= 0 && n < len(cells) {
		cells = cells[:n]
	}
	return cells
}
