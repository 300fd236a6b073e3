package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vk/ednavoyage/internal/sequencer"
	"github.com/vk/ednavoyage/internal/zonegrid"
)

// runRender plays one sequence on the real clock and prints every step.
func (a *App) runRender(ctx context.Context) error {
	seq, err := sequencer.New(a.config.SequencerConfig(), sequencer.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer seq.Cancel()

	var (
		mu       sync.Mutex
		writeErr error
	)
	// closed after the last step is written, which seq.Done does not promise
	finished := make(chan struct{})
	unsubscribe := seq.Subscribe(func(snap sequencer.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if writeErr == nil {
			writeErr = writeStep(a.outW, snap)
		}
		if snap.Step.Terminal() {
			close(finished)
		}
	})
	defer unsubscribe()

	a.logger.Info("Rendering sequence.", "level", seq.Snapshot().Level, "size", a.config.Grid.Size)
	seq.Start(ctx)
	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		return fmt.Errorf("failed to write grid: %w", writeErr)
	}
	_, err = fmt.Fprintln(a.outW, zonegrid.Legend())
	return err
}

func writeStep(w io.Writer, snap sequencer.Snapshot) error {
	if _, err := fmt.Fprintf(w, "Step %d/%d %s (level %s)\n", snap.Step, sequencer.LastStep, snap.Step, snap.Level); err != nil {
		return err
	}
	if err := snap.Grid().Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
