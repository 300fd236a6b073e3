package zonegrid

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/ednavoyage/internal/cellstate"
)

// labelWidth is the number of digits needed for the largest label.
func (g *Grid) labelWidth() int {
	return len(strconv.Itoa(len(g.states)))
}

// CellWidth is the number of terminal columns one cell occupies, including
// the separating space.
func (g *Grid) CellWidth() int {
	return g.labelWidth() + 2
}

// Render writes the grid as text, one line per row. Each cell is its 1-based
// label right-aligned followed by the glyph of its state.
func (g *Grid) Render(w io.Writer) error {
	width := g.labelWidth()
	var buf bytes.Buffer
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			i := r*g.size + c
			if c > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%*d%c", width, i+1, cellstate.StyleOf(g.states[i]).Glyph)
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// String returns the text rendering.
func (g *Grid) String() string {
	var sb strings.Builder
	_ = g.Render(&sb)
	return sb.String()
}

// Legend returns a single line mapping each glyph to its state name.
func Legend() string {
	parts := make([]string, 0, len(cellstate.All()))
	for _, s := range cellstate.All() {
		parts = append(parts, fmt.Sprintf("%c %s", cellstate.StyleOf(s).Glyph, s))
	}
	return strings.Join(parts, "  ")
}
