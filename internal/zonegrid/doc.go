// Package zonegrid renders a square grid of zones, each carrying a
// cellstate.State, as plain text or onto a tcell screen.
//
// # Contract
//
// A Grid is a pure presentational mapping from (size, states) to output:
//   - Size defaults to 8 and is clamped to at least 1.
//   - A states slice shorter than size*size pads with inactive; extra entries are ignored.
//   - Identical inputs produce byte-identical text output.
//
// A Grid never mutates its states. An optional click callback receives the
// index of a clicked zone and nothing else happens; the caller decides what a
// click means.
package zonegrid
