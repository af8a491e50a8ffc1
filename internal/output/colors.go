package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ACTION_COLORS maps commit actions to terminal colors
var ACTION_COLORS = map[string]lipgloss.Color{
	"create": lipgloss.Color("2"), // Green
	"update": lipgloss.Color("3"), // Yellow
	"delete": lipgloss.Color("1"), // Red
	"skip":   lipgloss.Color("8"), // Gray
}

// ActionSymbols are the single-character markers shown before each path
var ActionSymbols = map[string]string{
	"create": "+",
	"update": "~",
	"delete": "-",
	"skip":   "=",
}

// DisableColor turns off color and styling for all later output
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
