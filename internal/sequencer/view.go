package sequencer

import (
	"fmt"

	"github.com/vk/ednavoyage/internal/cellstate"
)

// View is the wire form of a Snapshot. States encode as their names.
type View struct {
	Step     int               `json:"step"`
	StepName string            `json:"stepName"`
	Level    string            `json:"level"`
	Size     int               `json:"size"`
	States   []cellstate.State `json:"states"`
	Running  bool              `json:"running"`
	Done     bool              `json:"done"`
}

// View converts s to its wire form.
func (s Snapshot) View() View {
	return View{
		Step:     int(s.Step),
		StepName: s.Step.String(),
		Level:    s.Level,
		Size:     s.Size,
		States:   s.States,
		Running:  s.Running,
		Done:     s.Done,
	}
}

// Snapshot converts v back, validating the step and the state count.
func (v View) Snapshot() (Snapshot, error) {
	step := Step(v.Step)
	if step < StepIdle || step > StepComplete {
		return Snapshot{}, fmt.Errorf("step %d outside [1,5]", v.Step)
	}
	if v.Size < 1 || len(v.States) != v.Size*v.Size {
		return Snapshot{}, fmt.Errorf("%d states do not fill a %dx%d grid", len(v.States), v.Size, v.Size)
	}
	return Snapshot{
		Step:    step,
		Level:   v.Level,
		Size:    v.Size,
		States:  v.States,
		Running: v.Running,
		Done:    step.Terminal(),
	}, nil
}
