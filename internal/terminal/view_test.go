package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ednavoyage/internal/cellstate"
	"github.com/vk/ednavoyage/internal/clock"
	"github.com/vk/ednavoyage/internal/sequencer"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

func newLocal(t *testing.T) (*Local, *sequencer.Sequencer) {
	t.Helper()
	seq, err := sequencer.New(sequencer.DefaultConfig(), sequencer.WithClock(clock.NewFake(time.Unix(0, 0))))
	require.NoError(t, err)
	t.Cleanup(seq.Cancel)
	return NewLocal(context.Background(), seq), seq
}

func screenLine(s tcell.SimulationScreen, y int) string {
	cells, width, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < width; x++ {
		c := cells[y*width+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(b.String(), " ")
}

func TestNextLevel(t *testing.T) {
	levels := []string{"cluster", "zone"}

	next, ok := NextLevel(levels, "zone")
	require.True(t, ok)
	assert.Equal(t, "cluster", next)

	next, _ = NextLevel(levels, "cluster")
	assert.Equal(t, "zone", next)

	next, _ = NextLevel(levels, "galaxy")
	assert.Equal(t, "cluster", next)

	_, ok = NextLevel(nil, "zone")
	assert.False(t, ok)
}

func TestHandle_Keys(t *testing.T) {
	// --- Arrange ---
	screen := newSimScreen(t)
	ctrl, seq := newLocal(t)
	v := New(screen, ctrl, "eDNA Voyage")

	// --- Act ---
	restarted := v.handle(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	aggregated := v.handle(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))

	// --- Assert ---
	assert.True(t, restarted)
	assert.True(t, aggregated)
	snap := seq.Snapshot()
	assert.Equal(t, sequencer.StepSearching, snap.Step)
	assert.Equal(t, "cluster", snap.Level)
	assert.Equal(t, 6, cellstate.Count(snap.States, cellstate.Selecting))
	assert.Equal(t, "Aggregation: cluster", v.status)

	assert.False(t, v.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, v.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, v.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
}

func TestHandle_MouseClickShowsZone(t *testing.T) {
	// --- Arrange ---
	screen := newSimScreen(t)
	ctrl, _ := newLocal(t)
	ctrl.Restart()
	v := New(screen, ctrl, "eDNA Voyage")

	// --- Act ---
	// zone 7 is column 6 of row 0; cells are four columns wide on an 8x8 grid
	v.handle(tcell.NewEventMouse(GridX+6*4, GridY, tcell.Button1, tcell.ModNone))

	// --- Assert ---
	assert.Equal(t, "Zone 7: selecting", v.status)

	v.status = ""
	v.handle(tcell.NewEventMouse(0, 0, tcell.Button1, tcell.ModNone))
	assert.Empty(t, v.status, "clicks outside the grid are ignored")
}

func TestDraw_Layout(t *testing.T) {
	screen := newSimScreen(t)
	ctrl, _ := newLocal(t)
	v := New(screen, ctrl, "eDNA Voyage")

	v.draw()

	assert.Equal(t, "eDNA Voyage", screenLine(screen, 0))
	assert.Equal(t, "Step 1/5 idle  level zone  idle", screenLine(screen, 1))
	assert.True(t, strings.HasPrefix(screenLine(screen, GridY), "   1.  2."))
	assert.Equal(t, helpLine, screenLine(screen, GridY+8+3))
}

func TestRun_QuitsOnKey(t *testing.T) {
	// --- Arrange ---
	screen := newSimScreen(t)
	ctrl, _ := newLocal(t)
	v := New(screen, ctrl, "eDNA Voyage")
	errCh := make(chan error, 1)

	// --- Act ---
	go func() { errCh <- v.Run(context.Background()) }()
	require.Eventually(t, func() bool {
		return screenLine(screen, 0) == "eDNA Voyage"
	}, 5*time.Second, 10*time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	// --- Assert ---
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("view did not close on q")
	}
}

func TestRun_RedrawsOnSnapshotAndStopsOnCancel(t *testing.T) {
	// --- Arrange ---
	screen := newSimScreen(t)
	ctrl, _ := newLocal(t)
	v := New(screen, ctrl, "eDNA Voyage")
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- v.Run(ctx) }()
	require.Eventually(t, func() bool {
		return screenLine(screen, 0) == "eDNA Voyage"
	}, 5*time.Second, 10*time.Millisecond)

	// --- Act ---
	ctrl.Restart()

	// --- Assert ---
	require.Eventually(t, func() bool {
		return strings.HasPrefix(screenLine(screen, 1), "Step 2/5 searching")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("view did not stop on cancel")
	}
}
