package terminal

import (
	"context"

	"github.com/vk/ednavoyage/internal/sequencer"
)

// Controller is the state source the view renders and the actions it
// triggers.
type Controller interface {
	Snapshot() sequencer.Snapshot
	Subscribe(fn sequencer.Observer) (unsubscribe func())
	Restart()
	SetAggregation(level string) error
	Levels() []string
}

// Local adapts an in-process sequencer. Restarts run under ctx.
type Local struct {
	ctx context.Context
	seq *sequencer.Sequencer
}

// NewLocal returns a Controller backed by seq.
func NewLocal(ctx context.Context, seq *sequencer.Sequencer) *Local {
	return &Local{ctx: ctx, seq: seq}
}

func (l *Local) Snapshot() sequencer.Snapshot { return l.seq.Snapshot() }

func (l *Local) Subscribe(fn sequencer.Observer) func() { return l.seq.Subscribe(fn) }

func (l *Local) Restart() { l.seq.Start(l.ctx) }

func (l *Local) SetAggregation(level string) error { return l.seq.SetAggregation(level) }

func (l *Local) Levels() []string { return l.seq.Levels() }

// NextLevel returns the level after current in levels, wrapping around. An
// unknown current level yields the first one.
func NextLevel(levels []string, current string) (string, bool) {
	if len(levels) == 0 {
		return "", false
	}
	for i, l := range levels {
		if l == current {
			return levels[(i+1)%len(levels)], true
		}
	}
	return levels[0], true
}
