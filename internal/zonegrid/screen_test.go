package zonegrid

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ednavoyage/internal/cellstate"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

func runeAt(cells []tcell.SimCell, width, x, y int) rune {
	c := cells[y*width+x]
	if len(c.Runes) == 0 {
		return ' '
	}
	return c.Runes[0]
}

func TestDraw_PlacesLabelsAndGlyphs(t *testing.T) {
	// --- Arrange ---
	screen := newSimScreen(t)
	g := New(4, []cellstate.State{cellstate.Complete, cellstate.Searching})

	// --- Act ---
	g.Draw(screen, 2, 1)
	screen.Show()
	cells, width, _ := screen.GetContents()

	// --- Assert ---
	// cell width is 4: two label digits, glyph, separator
	assert.Equal(t, ' ', runeAt(cells, width, 2, 1))
	assert.Equal(t, '1', runeAt(cells, width, 3, 1))
	assert.Equal(t, '#', runeAt(cells, width, 4, 1))
	assert.Equal(t, '2', runeAt(cells, width, 7, 1))
	assert.Equal(t, 's', runeAt(cells, width, 8, 1))
	assert.Equal(t, '1', runeAt(cells, width, 2, 4))
	assert.Equal(t, '3', runeAt(cells, width, 3, 4))

	w, h := g.Bounds()
	assert.Equal(t, 15, w)
	assert.Equal(t, 4, h)
}

func TestHitTest(t *testing.T) {
	t.Parallel()

	g := New(8, nil)

	idx, ok := g.HitTest(10, 5, 10, 5)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	// column 6 of row 0 starts at 10 + 6*4
	idx, ok = g.HitTest(10, 5, 10+6*4+1, 5)
	require.True(t, ok)
	assert.Equal(t, 6, idx)

	idx, ok = g.HitTest(10, 5, 10+1*4, 5+4)
	require.True(t, ok)
	assert.Equal(t, 33, idx)

	_, ok = g.HitTest(10, 5, 13, 5)
	assert.False(t, ok, "separator column belongs to no cell")
	_, ok = g.HitTest(10, 5, 9, 5)
	assert.False(t, ok)
	_, ok = g.HitTest(10, 5, 10, 13)
	assert.False(t, ok)
	_, ok = g.HitTest(10, 5, 10+8*4, 5)
	assert.False(t, ok)
}
