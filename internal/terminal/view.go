package terminal

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/sequencer"
	"github.com/vk/ednavoyage/internal/zonegrid"
)

// Layout of the view, in screen rows and columns.
const (
	GridX = 2
	GridY = 3
)

const helpLine = "q quit  r restart  a aggregation  click a zone"

// View draws controller snapshots onto a screen and translates input into
// controller actions.
type View struct {
	screen tcell.Screen
	ctrl   Controller
	title  string
	status string
}

// New returns a view on an initialized screen. The caller owns the screen
// and calls Fini after Run returns.
func New(screen tcell.Screen, ctrl Controller, title string) *View {
	return &View{screen: screen, ctrl: ctrl, title: title}
}

// Run renders until the user quits or ctx is done.
func (v *View) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("component", "terminal")

	v.screen.EnableMouse()
	defer v.screen.DisableMouse()

	// Observers run on the sequencer goroutine; they only flag a redraw.
	redraw := make(chan struct{}, 1)
	unsubscribe := v.ctrl.Subscribe(func(sequencer.Snapshot) {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	v.draw()
	logger.Debug("Terminal view started.")
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Terminal view stopped.", "reason", ctx.Err())
			return nil
		case <-redraw:
			v.draw()
		case ev := <-events:
			if !v.handle(ev) {
				logger.Debug("Terminal view closed by user.")
				return nil
			}
			v.draw()
		}
	}
}

// handle applies one input event. It reports false when the view should
// close.
func (v *View) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 'r', 'R':
				v.ctrl.Restart()
				v.status = "Sequence restarted."
			case 'a', 'A':
				v.cycleAggregation()
			}
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			v.click(x, y)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *View) cycleAggregation() {
	level, ok := NextLevel(v.ctrl.Levels(), v.ctrl.Snapshot().Level)
	if !ok {
		v.status = "No aggregation levels available."
		return
	}
	if err := v.ctrl.SetAggregation(level); err != nil {
		v.status = fmt.Sprintf("Aggregation failed: %v", err)
		return
	}
	v.status = "Aggregation: " + level
}

func (v *View) click(x, y int) {
	var grid *zonegrid.Grid
	grid = v.ctrl.Snapshot().Grid(zonegrid.WithClickHandler(func(i int) {
		v.status = fmt.Sprintf("Zone %d: %s", i+1, grid.State(i))
	}))
	if i, ok := grid.HitTest(GridX, GridY, x, y); ok {
		grid.Click(i)
	}
}

func (v *View) draw() {
	snap := v.ctrl.Snapshot()
	grid := snap.Grid()

	v.screen.Clear()
	bold := tcell.StyleDefault.Bold(true)
	putString(v.screen, 0, 0, v.title, bold)

	run := "idle"
	switch {
	case snap.Running:
		run = "running"
	case snap.Done:
		run = "done"
	}
	putString(v.screen, 0, 1, fmt.Sprintf("Step %d/%d %s  level %s  %s",
		snap.Step, sequencer.LastStep, snap.Step, snap.Level, run), tcell.StyleDefault)

	grid.Draw(v.screen, GridX, GridY)
	_, h := grid.Bounds()
	putString(v.screen, 0, GridY+h+1, zonegrid.Legend(), tcell.StyleDefault.Dim(true))
	putString(v.screen, 0, GridY+h+2, v.status, tcell.StyleDefault)
	putString(v.screen, 0, GridY+h+3, helpLine, tcell.StyleDefault.Dim(true))
	v.screen.Show()
}

func putString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
