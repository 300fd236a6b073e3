package sequencer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vk/ednavoyage/internal/cellstate"
	"github.com/vk/ednavoyage/internal/clock"
	"github.com/vk/ednavoyage/internal/zonegrid"
)

var (
	// ErrInvalidConfig is returned by New for unusable configurations.
	ErrInvalidConfig = errors.New("invalid sequencer configuration")
	// ErrUnknownLevel is returned when an aggregation level is not configured.
	ErrUnknownLevel = errors.New("unknown aggregation level")
)

// DefaultLevel is the aggregation level used when none is configured.
const DefaultLevel = "zone"

// DefaultLevels returns the built-in aggregation levels.
func DefaultLevels() map[string][]int {
	return map[string][]int{
		"zone":    {6, 11, 33},
		"cluster": {6, 7, 11, 14, 33, 41},
	}
}

// Config holds the static configuration of a sequencer.
type Config struct {
	Size   int
	Holds  []time.Duration
	Levels map[string][]int
	Level  string
}

// DefaultConfig returns the stock 8x8 configuration.
func DefaultConfig() Config {
	holds := make([]time.Duration, len(DefaultHolds))
	copy(holds, DefaultHolds)
	return Config{
		Size:   zonegrid.DefaultSize,
		Holds:  holds,
		Levels: DefaultLevels(),
		Level:  DefaultLevel,
	}
}

// Snapshot is a copy of the sequencer state at one point in time.
type Snapshot struct {
	Step    Step
	Level   string
	Size    int
	States  []cellstate.State
	Running bool
	Done    bool
}

// Grid wraps the snapshot states in a zonegrid.Grid for rendering.
func (s Snapshot) Grid(opts ...zonegrid.Option) *zonegrid.Grid {
	return zonegrid.New(s.Size, s.States, opts...)
}

// Observer receives a snapshot after every state change.
type Observer func(Snapshot)

// Option customizes a Sequencer.
type Option func(*Sequencer)

// WithClock sets the clock used for hold timers.
func WithClock(c clock.Clock) Option {
	return func(s *Sequencer) {
		s.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = l
	}
}

type subscription struct {
	id uint64
	fn Observer
}

// Sequencer is the timer-driven state machine behind the zone analysis.
type Sequencer struct {
	clock  clock.Clock
	logger *slog.Logger
	script Script
	size   int
	levels map[string][]int

	// notifyMu serializes transitions together with their notifications.
	notifyMu sync.Mutex

	mu        sync.Mutex
	level     string
	step      Step
	states    []cellstate.State
	gen       uint64
	running   bool
	timer     clock.Timer
	done      chan struct{}
	stopCtx   func() bool
	observers []subscription
	nextObs   uint64
}

// Validate reports whether cfg can drive a sequencer.
func (cfg Config) Validate() error {
	_, _, _, err := cfg.normalize()
	return err
}

// normalize validates cfg and returns its script, a private copy of the
// levels and the resolved starting level.
func (cfg Config) normalize() (Script, map[string][]int, string, error) {
	if cfg.Size < 1 {
		return Script{}, nil, "", fmt.Errorf("%w: grid size must be at least 1, got %d", ErrInvalidConfig, cfg.Size)
	}
	script, err := NewScript(cfg.Holds)
	if err != nil {
		return Script{}, nil, "", err
	}
	if len(cfg.Levels) == 0 {
		return Script{}, nil, "", fmt.Errorf("%w: at least one aggregation level is required", ErrInvalidConfig)
	}

	cells := cfg.Size * cfg.Size
	levels := make(map[string][]int, len(cfg.Levels))
	for name, indices := range cfg.Levels {
		seen := make(map[int]struct{}, len(indices))
		for _, i := range indices {
			if i < 0 || i >= cells {
				return Script{}, nil, "", fmt.Errorf("%w: level %q index %d outside [0,%d)", ErrInvalidConfig, name, i, cells)
			}
			if _, dup := seen[i]; dup {
				return Script{}, nil, "", fmt.Errorf("%w: level %q repeats index %d", ErrInvalidConfig, name, i)
			}
			seen[i] = struct{}{}
		}
		levels[name] = append([]int(nil), indices...)
	}

	level := cfg.Level
	if level == "" {
		level = DefaultLevel
	}
	if _, ok := levels[level]; !ok {
		return Script{}, nil, "", fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	return script, levels, level, nil
}

// New validates cfg and returns an idle sequencer at step 1.
func New(cfg Config, opts ...Option) (*Sequencer, error) {
	script, levels, level, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	cells := cfg.Size * cfg.Size

	s := &Sequencer{
		clock:  clock.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		script: script,
		size:   cfg.Size,
		levels: levels,
		level:  level,
		step:   StepIdle,
		states: cellstate.Fill(cells, cellstate.Inactive),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Levels returns the configured aggregation level names, sorted.
func (s *Sequencer) Levels() []string {
	names := make([]string, 0, len(s.levels))
	for name := range s.levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start resets the sequence to step 1, enters step 2 immediately and begins
// the timer chain. A run in progress is cancelled first. When ctx is
// cancelled the run is cancelled as if Cancel had been called.
func (s *Sequencer) Start(ctx context.Context) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.cancelLocked()
	gen := s.gen
	s.running = true
	s.done = make(chan struct{})
	idle := s.enterLocked(StepIdle, gen)
	searching := s.enterLocked(StepSearching, gen)
	if ctx != nil {
		s.stopCtx = context.AfterFunc(ctx, func() { s.cancelRun(gen) })
	}
	observers := s.observerList()
	s.mu.Unlock()

	s.logger.Debug("Sequencer started.", "level", idle.Level, "size", idle.Size)
	notify(observers, idle)
	notify(observers, searching)
}

// Cancel stops the current run. It is safe to call at any time and more than
// once. After Cancel returns no further transition or notification happens.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	wasRunning := s.running
	s.cancelLocked()
	s.mu.Unlock()

	// wait out a notification that was already in flight
	s.notifyMu.Lock()
	s.notifyMu.Unlock()

	if wasRunning {
		s.logger.Debug("Sequencer cancelled.")
	}
}

// cancelRun cancels only if run gen is still current. Used by context hooks
// so a cancelled context from an earlier run cannot stop a later one.
func (s *Sequencer) cancelRun(gen uint64) {
	s.mu.Lock()
	current := s.gen == gen && s.running
	s.mu.Unlock()
	if current {
		s.Cancel()
	}
}

// cancelLocked invalidates pending timers. Caller holds s.mu.
func (s *Sequencer) cancelLocked() {
	s.gen++
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.stopCtx != nil {
		s.stopCtx()
		s.stopCtx = nil
	}
}

// enterLocked moves to step, recomputes the states and schedules the next
// transition. Caller holds s.mu.
func (s *Sequencer) enterLocked(step Step, gen uint64) Snapshot {
	s.step = step
	s.states = s.script.Apply(step, s.size*s.size, s.levels[s.level])
	s.timer = nil

	entry := s.script.At(step)
	switch {
	case step.Terminal():
		s.running = false
		close(s.done)
		if s.stopCtx != nil {
			s.stopCtx()
			s.stopCtx = nil
		}
	case entry.Hold > 0:
		s.timer = s.clock.AfterFunc(entry.Hold, func() { s.advance(gen) })
	}
	return s.snapshotLocked()
}

// advance is the timer callback for run gen.
func (s *Sequencer) advance(gen uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if gen != s.gen || !s.running || s.step.Terminal() {
		s.mu.Unlock()
		return
	}
	snap := s.enterLocked(s.step+1, gen)
	observers := s.observerList()
	s.mu.Unlock()

	s.logger.Debug("Sequencer entered step.", "step", int(snap.Step), "name", snap.Step.String())
	notify(observers, snap)
}

// SetAggregation switches the active index set and re-applies the current
// step. It never changes the step or the timers.
func (s *Sequencer) SetAggregation(level string) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if _, ok := s.levels[level]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	if level == s.level {
		s.mu.Unlock()
		return nil
	}
	s.level = level
	s.states = s.script.Apply(s.step, s.size*s.size, s.levels[level])
	snap := s.snapshotLocked()
	observers := s.observerList()
	s.mu.Unlock()

	s.logger.Debug("Sequencer aggregation changed.", "level", level)
	notify(observers, snap)
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Sequencer) snapshotLocked() Snapshot {
	states := make([]cellstate.State, len(s.states))
	copy(states, s.states)
	return Snapshot{
		Step:    s.step,
		Level:   s.level,
		Size:    s.size,
		States:  states,
		Running: s.running,
		Done:    s.step.Terminal(),
	}
}

// Subscribe registers fn for every future state change and returns a
// function that removes it.
func (s *Sequencer) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	s.nextObs++
	id := s.nextObs
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Sequencer) observerList() []Observer {
	out := make([]Observer, len(s.observers))
	for i, sub := range s.observers {
		out[i] = sub.fn
	}
	return out
}

func notify(observers []Observer, snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}

// Done returns a channel closed when the current run reaches step 5. A
// cancelled run never closes it.
func (s *Sequencer) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Wait blocks until the current run completes or ctx is done.
func (s *Sequencer) Wait(ctx context.Context) error {
	select {
	case <-s.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
