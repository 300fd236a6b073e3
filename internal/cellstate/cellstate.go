// Package cellstate defines the closed set of visual states a zone grid cell
// can carry, along with the fixed style each state maps to.
package cellstate

import (
	"fmt"
	"strings"
)

// State is one entry of the closed cell state enumeration. The zero value is
// Inactive, so any cell that was never assigned reads as inactive.
type State uint8

const (
	Inactive State = iota
	Searching
	Comparing
	Selecting
	Merging
	Complete
)

// count is the number of defined states and must follow the last constant.
const count = int(Complete) + 1

var names = [count]string{
	Inactive:  "inactive",
	Searching: "searching",
	Comparing: "comparing",
	Selecting: "selecting",
	Merging:   "merging",
	Complete:  "complete",
}

// All returns every defined state in declaration order.
func All() []State {
	out := make([]State, count)
	for i := range out {
		out[i] = State(i)
	}
	return out
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return int(s) < count
}

// String returns the lowercase name of the state. Undefined values render as
// "state(N)" so they are visible in logs rather than silently aliased.
func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("state(%d)", uint8(s))
	}
	return names[s]
}

// Parse converts a state name into a State. Matching is case-insensitive and
// ignores surrounding whitespace. Unknown names are an error.
func Parse(name string) (State, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range names {
		if candidate == n {
			return State(i), nil
		}
	}
	return Inactive, fmt.Errorf("unknown cell state %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal undefined cell state %d", uint8(s))
	}
	return []byte(names[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Fill returns a slice of n cells all set to s.
func Fill(n int, s State) []State {
	if n < 0 {
		n = 0
	}
	out := make([]State, n)
	if s != Inactive {
		for i := range out {
			out[i] = s
		}
	}
	return out
}

// Count returns how many entries of states equal s.
func Count(states []State, s State) int {
	n := 0
	for _, v := range states {
		if v == s {
			n++
		}
	}
	return n
}
