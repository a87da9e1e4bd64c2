package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Colors - using more subtle, balanced palette
var (
	ColorPrimary   = lipgloss.Color("4")   // Blue
	ColorSecondary = lipgloss.Color("8")   // Gray
	ColorSuccess   = lipgloss.Color("2")   // Green (dimmer)
	ColorWarning   = lipgloss.Color("3")   // Yellow (dimmer)
	ColorDanger    = lipgloss.Color("1")   // Red (dimmer)
	ColorMuted     = lipgloss.Color("245") // Light gray
	ColorHighlight = lipgloss.Color("6")   // Cyan
	ColorText      = lipgloss.Color("252") // Light text
	ColorSticky    = lipgloss.Color("22")  // Dark green background
	ColorFocus     = lipgloss.Color("237") // Focus tint background
)

// Hex colors for faded elements. Fades blend from the background.
const (
	hexBackground = "#000000"
	hexAccent     = "#5f87d7"
	hexMuted      = "#8a8a8a"
)

// Styles
var (
	// Box styles
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	// Sheet box, drawn at the bottom of the screen
	SheetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	// Title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// Header style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	// Selected item style
	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	// Normal item style
	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Chip styles
	ChipStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	SelectedChipStyle = ChipStyle.
				Foreground(ColorHighlight).
				Bold(true)

	FocusedChipStyle = ChipStyle.
				Background(ColorFocus)

	MarkerStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	PendingStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	FailedStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	// Changed-row marker
	ChangedStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// Static thumbnail glyph style
	GlyphStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Align(lipgloss.Center, lipgloss.Center)

	StickyStyle = lipgloss.NewStyle().
			Background(ColorSticky)

	// Path style - more readable
	PathStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Save button style
	SaveStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	// Error style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	// Divider style
	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)
)

// Symbols
const (
	SymbolCursor  = "›"
	SymbolChanged = "•"
	SymbolPending = "…"
	SymbolFailed  = "!"
	SymbolShadow  = "▔"
	SymbolDivider = "─"
)

// Glyphs for static thumbnails.
var staticGlyphs = map[string]string{
	"self":    "¶",
	"link":    "↗",
	"nsfw":    "18+",
	"spoiler": "!?",
}

// faded returns a style whose foreground is hex blended into the background
// by alpha.
func faded(hex string, alpha float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(blend(hex, alpha))
}

func blend(hex string, alpha float64) lipgloss.Color {
	fg, err := colorful.Hex(hex)
	if err != nil {
		return lipgloss.Color(hex)
	}
	bg, _ := colorful.Hex(hexBackground)
	alpha = min(max(alpha, 0), 1)
	return lipgloss.Color(bg.BlendRgb(fg, alpha).Clamped().Hex())
}
