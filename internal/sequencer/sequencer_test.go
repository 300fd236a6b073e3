package sequencer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ednavoyage/internal/cellstate"
	"github.com/vk/ednavoyage/internal/clock"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects every snapshot an observer receives.
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.Step
	}
	return out
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func newFakeSequencer(t *testing.T, cfg Config) (*Sequencer, *clock.Fake, *recorder) {
	t.Helper()
	fake := clock.NewFake(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	seq, err := New(cfg, WithClock(fake))
	require.NoError(t, err)
	rec := &recorder{}
	seq.Subscribe(rec.observe)
	return seq, fake, rec
}

// expected builds a 64-cell array with background everywhere and applied at idx.
func expected(background, applied cellstate.State, idx ...int) []cellstate.State {
	out := cellstate.Fill(64, background)
	for _, i := range idx {
		out[i] = applied
	}
	return out
}

func TestSequencer_DefaultScenario(t *testing.T) {
	// --- Arrange ---
	seq, fake, rec := newFakeSequencer(t, DefaultConfig())

	// --- Act & Assert ---
	seq.Start(context.Background())
	snap := seq.Snapshot()
	require.Equal(t, StepSearching, snap.Step)
	assert.Equal(t, 61, cellstate.Count(snap.States, cellstate.Searching))
	assert.Equal(t, 3, cellstate.Count(snap.States, cellstate.Selecting))
	if diff := cmp.Diff(expected(cellstate.Searching, cellstate.Selecting, 6, 11, 33), snap.States); diff != "" {
		t.Fatalf("step 2 mismatch (-want +got):\n%s", diff)
	}

	fake.Advance(1799 * time.Millisecond)
	require.Equal(t, StepSearching, seq.Snapshot().Step, "step 3 must not start before its hold elapses")
	fake.Advance(time.Millisecond)
	snap = seq.Snapshot()
	require.Equal(t, StepComparing, snap.Step)
	assert.Equal(t, expected(cellstate.Inactive, cellstate.Comparing, 6, 11, 33), snap.States)

	fake.Advance(1800 * time.Millisecond)
	snap = seq.Snapshot()
	require.Equal(t, StepMerging, snap.Step)
	assert.Equal(t, expected(cellstate.Inactive, cellstate.Merging, 6, 11, 33), snap.States)

	fake.Advance(1600 * time.Millisecond)
	snap = seq.Snapshot()
	require.Equal(t, StepComplete, snap.Step)
	assert.Equal(t, expected(cellstate.Inactive, cellstate.Complete, 6, 11, 33), snap.States)
	assert.True(t, snap.Done)
	assert.False(t, snap.Running)

	assert.Equal(t, []Step{StepIdle, StepSearching, StepComparing, StepMerging, StepComplete}, rec.steps())
}

func TestSequencer_NoAdvanceAfterTerminal(t *testing.T) {
	seq, fake, rec := newFakeSequencer(t, DefaultConfig())
	seq.Start(context.Background())

	fake.Advance(time.Hour)
	require.Equal(t, StepComplete, seq.Snapshot().Step)
	notified := rec.len()

	fake.Advance(time.Hour)
	assert.Equal(t, StepComplete, seq.Snapshot().Step)
	assert.Equal(t, notified, rec.len())
	assert.Zero(t, fake.Pending(), "the terminal step must not schedule a timer")

	select {
	case <-seq.Done():
	default:
		t.Fatal("Done must be closed after step 5")
	}
}

func TestSequencer_StepsVisitedOnceInOrder(t *testing.T) {
	seq, fake, rec := newFakeSequencer(t, DefaultConfig())
	seq.Start(context.Background())

	// advance in uneven slices; the order must not depend on granularity
	for i := 0; i < 100; i++ {
		fake.Advance(137 * time.Millisecond)
	}

	want := []Step{StepIdle, StepSearching, StepComparing, StepMerging, StepComplete}
	assert.Equal(t, want, rec.steps())
}

func TestSequencer_CancelBetweenSteps(t *testing.T) {
	for _, tc := range []struct {
		name    string
		advance time.Duration
		at      Step
	}{
		{"during step 2", 1000 * time.Millisecond, StepSearching},
		{"during step 3", 2500 * time.Millisecond, StepComparing},
		{"during step 4", 4000 * time.Millisecond, StepMerging},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			seq, fake, rec := newFakeSequencer(t, DefaultConfig())
			seq.Start(context.Background())
			fake.Advance(tc.advance)
			require.Equal(t, tc.at, seq.Snapshot().Step)

			// --- Act ---
			seq.Cancel()
			before := seq.Snapshot()
			notified := rec.len()
			fake.Advance(time.Hour)

			// --- Assert ---
			after := seq.Snapshot()
			assert.Equal(t, before.Step, after.Step)
			assert.Equal(t, before.States, after.States)
			assert.False(t, after.Running)
			assert.Equal(t, notified, rec.len(), "no notification may follow Cancel")
			assert.Zero(t, fake.Pending())
		})
	}
}

func TestSequencer_StaleTimerIsNoop(t *testing.T) {
	// A timer whose Stop lost the race still fires; it must see a stale generation.
	seq, _, rec := newFakeSequencer(t, DefaultConfig())
	seq.Start(context.Background())

	seq.mu.Lock()
	staleGen := seq.gen
	seq.mu.Unlock()

	seq.Cancel()
	notified := rec.len()

	seq.advance(staleGen)
	assert.Equal(t, StepSearching, seq.Snapshot().Step)
	assert.Equal(t, notified, rec.len())
}

func TestSequencer_RestartResets(t *testing.T) {
	seq, fake, rec := newFakeSequencer(t, DefaultConfig())
	seq.Start(context.Background())
	fake.Advance(2 * time.Second)
	require.Equal(t, StepComparing, seq.Snapshot().Step)

	seq.Start(context.Background())
	assert.Equal(t, StepSearching, seq.Snapshot().Step)
	assert.Equal(t, 1, fake.Pending(), "the old chain must be cancelled before the new one starts")

	fake.Advance(time.Hour)
	want := []Step{
		StepIdle, StepSearching, StepComparing,
		StepIdle, StepSearching, StepComparing, StepMerging, StepComplete,
	}
	assert.Equal(t, want, rec.steps())
}

func TestSequencer_ContextCancellation(t *testing.T) {
	// --- Arrange ---
	seq, fake, _ := newFakeSequencer(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	seq.Start(ctx)

	// --- Act ---
	cancel()
	require.Eventually(t, func() bool { return !seq.Snapshot().Running }, time.Second, time.Millisecond)
	fake.Advance(time.Hour)

	// --- Assert ---
	assert.Equal(t, StepSearching, seq.Snapshot().Step)
}

func TestSequencer_OldContextDoesNotCancelNewRun(t *testing.T) {
	seq, fake, _ := newFakeSequencer(t, DefaultConfig())
	first, cancelFirst := context.WithCancel(context.Background())
	seq.Start(first)
	seq.Start(context.Background())

	cancelFirst()
	time.Sleep(10 * time.Millisecond)
	require.True(t, seq.Snapshot().Running)

	fake.Advance(time.Hour)
	assert.Equal(t, StepComplete, seq.Snapshot().Step)
}

func TestSequencer_SetAggregation(t *testing.T) {
	// --- Arrange ---
	seq, fake, rec := newFakeSequencer(t, DefaultConfig())
	seq.Start(context.Background())
	fake.Advance(1800 * time.Millisecond)
	require.Equal(t, StepComparing, seq.Snapshot().Step)

	// --- Act ---
	require.NoError(t, seq.SetAggregation("cluster"))

	// --- Assert ---
	snap := seq.Snapshot()
	assert.Equal(t, StepComparing, snap.Step, "changing level must not change the step")
	assert.Equal(t, "cluster", snap.Level)
	assert.Equal(t, expected(cellstate.Inactive, cellstate.Comparing, 6, 7, 11, 14, 33, 41), snap.States)

	err := seq.SetAggregation("galaxy")
	require.ErrorIs(t, err, ErrUnknownLevel)
	assert.Equal(t, "cluster", seq.Snapshot().Level)

	// the timer chain continues unchanged
	fake.Advance(1800 * time.Millisecond)
	assert.Equal(t, StepMerging, seq.Snapshot().Step)
	fake.Advance(time.Hour)

	steps := rec.steps()
	assert.Equal(t, []Step{StepIdle, StepSearching, StepComparing, StepComparing, StepMerging, StepComplete}, steps)
}

func TestSequencer_Unsubscribe(t *testing.T) {
	seq, fake, _ := newFakeSequencer(t, DefaultConfig())
	late := &recorder{}
	unsubscribe := seq.Subscribe(late.observe)

	seq.Start(context.Background())
	require.Equal(t, 2, late.len())
	unsubscribe()
	fake.Advance(time.Hour)
	assert.Equal(t, 2, late.len())
}

func TestSequencer_InitialSnapshot(t *testing.T) {
	seq, err := New(DefaultConfig())
	require.NoError(t, err)

	snap := seq.Snapshot()
	assert.Equal(t, StepIdle, snap.Step)
	assert.Equal(t, 64, cellstate.Count(snap.States, cellstate.Inactive))
	assert.False(t, snap.Running)
	assert.Equal(t, []string{"cluster", "zone"}, seq.Levels())
	assert.Equal(t, 64, snap.Grid().Len())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	base := DefaultConfig()
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero size", func(c *Config) { c.Size = 0 }, ErrInvalidConfig},
		{"negative size", func(c *Config) { c.Size = -8 }, ErrInvalidConfig},
		{"two holds", func(c *Config) { c.Holds = c.Holds[:2] }, ErrInvalidConfig},
		{"zero hold", func(c *Config) { c.Holds = []time.Duration{time.Second, 0, time.Second} }, ErrInvalidConfig},
		{"no levels", func(c *Config) { c.Levels = nil }, ErrInvalidConfig},
		{"index out of range", func(c *Config) { c.Levels = map[string][]int{"zone": {64}} }, ErrInvalidConfig},
		{"negative index", func(c *Config) { c.Levels = map[string][]int{"zone": {-1}} }, ErrInvalidConfig},
		{"duplicate index", func(c *Config) { c.Levels = map[string][]int{"zone": {6, 6}} }, ErrInvalidConfig},
		{"unknown level", func(c *Config) { c.Level = "reef" }, ErrUnknownLevel},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.Holds = append([]time.Duration(nil), base.Holds...)
			cfg.Levels = DefaultLevels()
			tc.mutate(&cfg)

			_, err := New(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestSequencer_RealClockCompletes(t *testing.T) {
	// --- Arrange ---
	cfg := DefaultConfig()
	cfg.Holds = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	seq, err := New(cfg)
	require.NoError(t, err)
	rec := &recorder{}
	seq.Subscribe(rec.observe)

	// --- Act ---
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	seq.Start(ctx)
	require.NoError(t, seq.Wait(ctx))

	// --- Assert ---
	assert.Equal(t, []Step{StepIdle, StepSearching, StepComparing, StepMerging, StepComplete}, rec.steps())
}

func TestSequencer_RealClockCancelLeavesNoTimers(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := DefaultConfig()
	cfg.Holds = []time.Duration{time.Hour, time.Hour, time.Hour}
	seq, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	seq.Start(ctx)
	seq.Cancel()
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer waitCancel()
	assert.ErrorIs(t, seq.Wait(waitCtx), context.DeadlineExceeded)
	assert.Equal(t, StepSearching, seq.Snapshot().Step)
}
