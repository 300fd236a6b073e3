package live

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vk/ednavoyage/internal/sequencer"
)

// Remote mirrors a hub's sequencer state. It satisfies the same read and
// control surface as a local sequencer.
type Remote struct {
	client *Client

	mu        sync.Mutex
	latest    sequencer.Snapshot
	levels    []string
	observers map[int]sequencer.Observer
	nextID    int
}

// DialRemote connects to a hub and waits for its first snapshot.
func DialRemote(ctx context.Context, opts ClientOptions) (*Remote, error) {
	r := &Remote{observers: make(map[int]sequencer.Observer)}
	first := make(chan struct{})
	var once sync.Once
	c, err := Dial(ctx, opts, func(snap sequencer.Snapshot, levels []string) {
		r.update(snap, levels)
		once.Do(func() { close(first) })
	})
	if err != nil {
		return nil, err
	}
	r.client = c

	select {
	case <-first:
		return r, nil
	case <-ctx.Done():
		c.Close()
		return nil, fmt.Errorf("context cancelled while waiting for first snapshot: %w", ctx.Err())
	}
}

func (r *Remote) update(snap sequencer.Snapshot, levels []string) {
	r.mu.Lock()
	r.latest = snap
	if levels != nil {
		r.levels = levels
	}
	observers := make([]sequencer.Observer, 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	r.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// Snapshot returns the last snapshot received.
func (r *Remote) Snapshot() sequencer.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.latest
	snap.States = slices.Clone(snap.States)
	return snap
}

// Subscribe registers fn for every snapshot received from now on.
func (r *Remote) Subscribe(fn sequencer.Observer) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.observers, id)
	}
}

// Levels returns the levels the hub last advertised.
func (r *Remote) Levels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.levels)
}

// Restart asks the hub to restart the sequence.
func (r *Remote) Restart() {
	r.client.Restart()
}

// SetAggregation asks the hub to switch levels. Levels the hub did not
// advertise are rejected locally.
func (r *Remote) SetAggregation(level string) error {
	if !slices.Contains(r.Levels(), level) {
		return fmt.Errorf("%w: %q", sequencer.ErrUnknownLevel, level)
	}
	r.client.SetAggregation(level)
	return nil
}

// Close disconnects from the hub.
func (r *Remote) Close() {
	r.client.Close()
}
