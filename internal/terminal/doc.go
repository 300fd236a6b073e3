// Package terminal runs the interactive zone grid view on a tcell screen.
//
// Keys: q, Esc or Ctrl-C quit; r restarts the sequence; a cycles the
// aggregation level. Clicking a zone shows its number and state on the
// status line. The view is driven by a Controller, which is either a local
// sequencer or a remote live feed.
package terminal
