package zonegrid

import (
	"github.com/vk/ednavoyage/internal/cellstate"
)

// DefaultSize is the number of zones per side when none is given.
const DefaultSize = 8

// Cell is one zone of the grid.
type Cell struct {
	Index int
	State cellstate.State
}

// Label is the 1-based number shown for the cell.
func (c Cell) Label() int {
	return c.Index + 1
}

// Option customizes a Grid.
type Option func(*Grid)

// WithClickHandler registers fn to be called with the index of a clicked cell.
func WithClickHandler(fn func(index int)) Option {
	return func(g *Grid) {
		g.onClick = fn
	}
}

// Grid is an immutable view over a size x size state array.
type Grid struct {
	size    int
	states  []cellstate.State
	onClick func(index int)
}

// New builds a grid of size x size cells. Sizes below 1 are clamped to 1.
// The states slice is copied; missing entries are inactive and undefined
// values are treated as inactive.
func New(size int, states []cellstate.State, opts ...Option) *Grid {
	if size < 1 {
		size = 1
	}
	g := &Grid{
		size:   size,
		states: make([]cellstate.State, size*size),
	}
	for i := 0; i < len(g.states) && i < len(states); i++ {
		if states[i].Valid() {
			g.states[i] = states[i]
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Size returns the number of cells per side.
func (g *Grid) Size() int {
	return g.size
}

// Len returns the total number of cells.
func (g *Grid) Len() int {
	return len(g.states)
}

// State returns the state of cell i, inactive for out-of-range indices.
func (g *Grid) State(i int) cellstate.State {
	if i < 0 || i >= len(g.states) {
		return cellstate.Inactive
	}
	return g.states[i]
}

// States returns a copy of the normalized state array.
func (g *Grid) States() []cellstate.State {
	out := make([]cellstate.State, len(g.states))
	copy(out, g.states)
	return out
}

// Cells returns every cell in row-major order.
func (g *Grid) Cells() []Cell {
	cells := make([]Cell, len(g.states))
	for i, s := range g.states {
		cells[i] = Cell{Index: i, State: s}
	}
	return cells
}

// Row returns the cells of row r, or nil when r is out of range.
func (g *Grid) Row(r int) []Cell {
	if r < 0 || r >= g.size {
		return nil
	}
	return g.Cells()[r*g.size : (r+1)*g.size]
}

// Click reports a click on cell i to the registered handler. It returns false
// when there is no handler or i is out of range, in which case nothing happens.
func (g *Grid) Click(i int) bool {
	if g.onClick == nil || i < 0 || i >= len(g.states) {
		return false
	}
	g.onClick(i)
	return true
}
