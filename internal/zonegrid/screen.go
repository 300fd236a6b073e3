package zonegrid

import (
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/vk/ednavoyage/internal/cellstate"
)

// Draw paints the grid onto screen with its top-left corner at (x, y). It does
// not call Show.
func (g *Grid) Draw(screen tcell.Screen, x, y int) {
	width := g.labelWidth()
	cw := g.CellWidth()
	for i, s := range g.states {
		col := i % g.size
		row := i / g.size
		style := cellstate.TerminalStyle(s)

		label := strconv.Itoa(i + 1)
		px := x + col*cw
		py := y + row
		// right-align the label within the label width
		for pad := 0; pad < width-len(label); pad++ {
			screen.SetContent(px+pad, py, ' ', nil, style)
		}
		for k, r := range label {
			screen.SetContent(px+width-len(label)+k, py, r, nil, style)
		}
		screen.SetContent(px+width, py, cellstate.StyleOf(s).Glyph, nil, style)
		screen.SetContent(px+width+1, py, ' ', nil, tcell.StyleDefault)
	}
}

// Bounds returns the width and height in terminal cells that Draw covers.
func (g *Grid) Bounds() (int, int) {
	return g.size*g.CellWidth() - 1, g.size
}

// HitTest maps a screen position to a cell index for a grid drawn at
// (originX, originY). The separator column after each cell belongs to no cell.
func (g *Grid) HitTest(originX, originY, px, py int) (int, bool) {
	dx := px - originX
	dy := py - originY
	if dx < 0 || dy < 0 || dy >= g.size {
		return 0, false
	}
	cw := g.CellWidth()
	col := dx / cw
	if col >= g.size || dx%cw == cw-1 {
		return 0, false
	}
	return dy*g.size + col, true
}
