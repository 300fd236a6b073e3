package cellstate

import "github.com/gdamore/tcell/v2"

// Style is the fixed presentation of a state. Class is the CSS class list the
// web front end used for the same state and is kept for API consumers.
type Style struct {
	Class string
	Glyph rune
	Color tcell.Color
	Glow  bool
}

var styles = [count]Style{
	Inactive:  {Class: "bg-muted/20 border-border/20", Glyph: '.', Color: tcell.ColorGray},
	Searching: {Class: "bg-primary/30 border-primary/40 shadow-bioluminescent", Glyph: 's', Color: tcell.ColorDodgerBlue, Glow: true},
	Comparing: {Class: "bg-bioluminescent-teal/30 border-bioluminescent-teal/40 shadow-bioluminescent", Glyph: 'c', Color: tcell.ColorTeal, Glow: true},
	Selecting: {Class: "bg-coral-glow/30 border-coral-glow/40 shadow-bioluminescent", Glyph: '*', Color: tcell.ColorCoral, Glow: true},
	Merging:   {Class: "bg-bioluminescent-purple/30 border-bioluminescent-purple/40 shadow-bioluminescent", Glyph: 'm', Color: tcell.ColorMediumPurple, Glow: true},
	Complete:  {Class: "bg-species-glow/30 border-species-glow/40 shadow-species", Glyph: '#', Color: tcell.ColorLimeGreen, Glow: true},
}

// StyleOf returns the style for s. Undefined values fall back to the inactive
// style so rendering never fails.
func StyleOf(s State) Style {
	if !s.Valid() {
		return styles[Inactive]
	}
	return styles[s]
}

// TerminalStyle builds the tcell style used to draw a cell in state s.
func TerminalStyle(s State) tcell.Style {
	st := StyleOf(s)
	style := tcell.StyleDefault.Foreground(st.Color)
	if st.Glow {
		style = style.Bold(true)
	}
	return style
}
