package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/vk/ednavoyage/internal/sequencer"
	"github.com/vk/ednavoyage/internal/zonegrid"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Drivers lists the supported storage drivers.
func Drivers() []string {
	return []string{DriverMemory, DriverBadger, DriverSQLite}
}

// DefaultListen is the HTTP listen address used when none is configured.
const DefaultListen = ":8080"

// Model is the unified, format-agnostic representation of the application
// configuration.
type Model struct {
	Grid         Grid
	Sequence     Sequence
	Aggregations map[string][]int
	Storage      Storage
	Server       Server
}

// Grid configures the zone grid.
type Grid struct {
	Size int
}

// Sequence configures the scripted analysis.
type Sequence struct {
	// Holds are the dwell times of steps 2, 3 and 4.
	Holds []time.Duration
	// Level is the aggregation level selected at startup.
	Level string
}

// Storage selects the document store backend.
type Storage struct {
	Driver string
	// Path is the badger directory or the sqlite file. Unused for memory.
	Path string
}

// Server configures the HTTP listener.
type Server struct {
	Listen string
}

// Default returns the stock configuration.
func Default() *Model {
	seq := sequencer.DefaultConfig()
	return &Model{
		Grid:         Grid{Size: zonegrid.DefaultSize},
		Sequence:     Sequence{Holds: seq.Holds, Level: seq.Level},
		Aggregations: seq.Levels,
		Storage:      Storage{Driver: DriverMemory},
		Server:       Server{Listen: DefaultListen},
	}
}

// DefaultStoragePath returns the path used by driver when none is configured.
func DefaultStoragePath(driver string) string {
	switch driver {
	case DriverBadger:
		return "data/badger"
	case DriverSQLite:
		return "data/ednavoyage.db"
	}
	return ""
}

// SequencerConfig converts the model into a sequencer configuration.
func (m *Model) SequencerConfig() sequencer.Config {
	levels := make(map[string][]int, len(m.Aggregations))
	for name, idx := range m.Aggregations {
		levels[name] = slices.Clone(idx)
	}
	return sequencer.Config{
		Size:   m.Grid.Size,
		Holds:  slices.Clone(m.Sequence.Holds),
		Levels: levels,
		Level:  m.Sequence.Level,
	}
}

// Validate reports the first problem with the model.
func (m *Model) Validate() error {
	if m.Grid.Size < 1 {
		return fmt.Errorf("%w: grid size must be at least 1, got %d", ErrInvalid, m.Grid.Size)
	}
	if err := m.SequencerConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !slices.Contains(Drivers(), m.Storage.Driver) {
		return fmt.Errorf("%w: unknown storage driver %q, want one of %v", ErrInvalid, m.Storage.Driver, Drivers())
	}
	if m.Server.Listen == "" {
		return fmt.Errorf("%w: server listen address is empty", ErrInvalid)
	}
	return nil
}

// Levels returns the configured aggregation level names, sorted.
func (m *Model) Levels() []string {
	return slices.Sorted(maps.Keys(m.Aggregations))
}
