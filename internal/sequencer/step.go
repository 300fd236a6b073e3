package sequencer

import (
	"fmt"
	"time"

	"github.com/vk/ednavoyage/internal/cellstate"
)

// Step is the step number of the scripted sequence, 1 through 5.
type Step int

const (
	StepIdle Step = iota + 1
	StepSearching
	StepComparing
	StepMerging
	StepComplete
)

// FirstStep and LastStep bound the sequence.
const (
	FirstStep = StepIdle
	LastStep  = StepComplete
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepSearching:
		return "searching"
	case StepComparing:
		return "comparing"
	case StepMerging:
		return "merging"
	case StepComplete:
		return "complete"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Terminal reports whether s is the final step.
func (s Step) Terminal() bool {
	return s == LastStep
}

// SequenceStep is one static entry of the script. Applied is assigned to the
// active subset, Background to every other zone. Hold is how long the step
// stays before the next one is entered; the terminal step has no hold.
type SequenceStep struct {
	Number     Step
	Applied    cellstate.State
	Background cellstate.State
	Hold       time.Duration
}

// Default hold durations for steps 2, 3 and 4.
var DefaultHolds = []time.Duration{
	1800 * time.Millisecond,
	1800 * time.Millisecond,
	1600 * time.Millisecond,
}

// Script is the ordered list of steps. Index i holds step i+1.
type Script [5]SequenceStep

// NewScript builds the fixed script with the given holds for steps 2, 3 and 4.
// Step 1 is left immediately on Start, so its hold is zero.
func NewScript(holds []time.Duration) (Script, error) {
	if len(holds) != 3 {
		return Script{}, fmt.Errorf("%w: want 3 hold durations, got %d", ErrInvalidConfig, len(holds))
	}
	for i, h := range holds {
		if h <= 0 {
			return Script{}, fmt.Errorf("%w: hold for step %d must be positive, got %s", ErrInvalidConfig, i+2, h)
		}
	}
	return Script{
		{Number: StepIdle, Applied: cellstate.Inactive, Background: cellstate.Inactive},
		{Number: StepSearching, Applied: cellstate.Selecting, Background: cellstate.Searching, Hold: holds[0]},
		{Number: StepComparing, Applied: cellstate.Comparing, Background: cellstate.Inactive, Hold: holds[1]},
		{Number: StepMerging, Applied: cellstate.Merging, Background: cellstate.Inactive, Hold: holds[2]},
		{Number: StepComplete, Applied: cellstate.Complete, Background: cellstate.Inactive},
	}, nil
}

// At returns the script entry for step s.
func (sc Script) At(s Step) SequenceStep {
	return sc[int(s)-1]
}

// Apply computes the state array for step s over size*size zones with the
// given active subset.
func (sc Script) Apply(s Step, cells int, active []int) []cellstate.State {
	entry := sc.At(s)
	states := cellstate.Fill(cells, entry.Background)
	for _, i := range active {
		states[i] = entry.Applied
	}
	return states
}
