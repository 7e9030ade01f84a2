package ui

import (
	"github.com/csams/transcript-tui/internal/markdown"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/csams/transcript-tui/internal/transcript"
	"github.com/gdamore/tcell/v2"
)

// TokyoNight color palette
var (
	// Background colors
	ColorBg          = tcell.NewRGBColor(0x1a, 0x1b, 0x26) // #1a1b26 - Dark background
	ColorBgDark      = tcell.NewRGBColor(0x16, 0x16, 0x1e) // #16161e - Darker background
	ColorBgHighlight = tcell.NewRGBColor(0x29, 0x2e, 0x42) // #292e42 - Highlighted background
	ColorBgDialog    = tcell.NewRGBColor(0x1f, 0x23, 0x35) // #1f2335 - Dialog background

	// Foreground colors
	ColorFg       = tcell.NewRGBColor(0xc0, 0xca, 0xf5) // #c0caf5 - Default text
	ColorFgDark   = tcell.NewRGBColor(0x56, 0x5f, 0x89) // #565f89 - Dimmed text
	ColorFgGutter = tcell.NewRGBColor(0x3b, 0x42, 0x61) // #3b4261 - Gutter/border

	// Accent colors
	ColorBlue    = tcell.NewRGBColor(0x7a, 0xa2, 0xf7) // #7aa2f7 - Primary blue
	ColorCyan    = tcell.NewRGBColor(0x7d, 0xcf, 0xff) // #7dcfff - Cyan
	ColorGreen   = tcell.NewRGBColor(0x9e, 0xce, 0x6a) // #9ece6a - Green
	ColorTeal    = tcell.NewRGBColor(0x73, 0xda, 0xca) // #73daca - Teal
	ColorMagenta = tcell.NewRGBColor(0xbb, 0x9a, 0xf7) // #bb9af7 - Purple/Magenta
	ColorOrange  = tcell.NewRGBColor(0xff, 0x9e, 0x64) // #ff9e64 - Orange
	ColorRed     = tcell.NewRGBColor(0xf7, 0x76, 0x8e) // #f7768e - Red
	ColorRed1    = tcell.NewRGBColor(0xdb, 0x4b, 0x4b) // #db4b4b - Dark red
	ColorYellow  = tcell.NewRGBColor(0xe0, 0xaf, 0x68) // #e0af68 - Yellow
	ColorPink    = tcell.NewRGBColor(0xff, 0x00, 0x7c) // #ff007c - Bright magenta

	// UI-specific color mappings
	ColorSelection = ColorBgHighlight // Selected item background
	ColorHeader    = ColorBlue        // Headers
	ColorHighlight = ColorYellow      // Search highlights
	ColorBorder    = ColorBlue
	ColorError     = ColorRed    // Error messages
	ColorSuccess   = ColorGreen  // Success messages
	ColorDimmed    = ColorFgDark // Dimmed text
	ColorBright    = ColorFg     // Bright text
)

var (
	styleBase     = tcell.StyleDefault.Background(ColorBg).Foreground(ColorFg)
	styleDialog   = tcell.StyleDefault.Background(ColorBgDialog).Foreground(ColorFg)
	styleSelected = tcell.StyleDefault.Background(ColorSelection).Foreground(ColorBright)
)

// speakerPalette holds one color per transcript palette slot
var speakerPalette = [transcript.PaletteSize]tcell.Color{
	ColorBlue,
	ColorGreen,
	ColorMagenta,
	ColorOrange,
	ColorCyan,
	ColorYellow,
	ColorRed,
	ColorTeal,
}

// SpeakerColor maps a palette index to a color. Out of range indices (a
// speaker the transcript doesn't know) get the dimmed color.
func SpeakerColor(index int) tcell.Color {
	if index < 0 || index >= len(speakerPalette) {
		return ColorDimmed
	}
	return speakerPalette[index]
}

// StatusColor is the badge color of a job status
func StatusColor(status models.Status) tcell.Color {
	switch status {
	case models.StatusPending:
		return ColorDimmed
	case models.StatusDownloading:
		return ColorCyan
	case models.StatusTranscribing:
		return ColorYellow
	case models.StatusCompleted:
		return ColorGreen
	case models.StatusFailed:
		return ColorRed
	default:
		return ColorFgGutter
	}
}

// MarkdownStyle applies a markdown StyleType on top of base
func MarkdownStyle(base tcell.Style, styleType markdown.StyleType) tcell.Style {
	switch styleType {
	case markdown.StyleBold:
		return base.Bold(true)
	case markdown.StyleItalic:
		return base.Italic(true)
	case markdown.StyleCode:
		return base.Foreground(ColorTeal)
	case markdown.StyleLink:
		return base.Foreground(ColorCyan).Underline(true)
	case markdown.StyleHeader:
		return base.Foreground(ColorHeader).Bold(true)
	case markdown.StyleQuote:
		return base.Foreground(ColorDimmed).Italic(true)
	default:
		return base
	}
}
