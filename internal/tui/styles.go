package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/peledor/lifelines/internal/record"
)

// Semantic color palette, matching the SVG status colors.
var (
	colorHeld        = lipgloss.Color("#FF8C00") // Orange — alive in captivity
	colorReleased    = lipgloss.Color("#228B22") // Green — negotiated release
	colorOperation   = lipgloss.Color("#3B82F6") // Blue — military operation release
	colorDeceased    = lipgloss.Color("#FF5252") // Red — confirmed dead (terminal-bright)
	colorReturned    = lipgloss.Color("#9932CC") // Purple — body repatriated
	colorPrimary     = lipgloss.Color("#00BFFF") // Cyan — UI accent
	colorMuted       = lipgloss.Color("#636363") // Gray — de-emphasized
	colorMutedLight  = lipgloss.Color("#8C8C8C") // Lighter gray — normal text
	colorWhite       = lipgloss.Color("#EEEEEE") // Off-white — primary text
	colorBrightWhite = lipgloss.Color("#FFFFFF") // Pure white — emphatic text
	colorSurface     = lipgloss.Color("#1E1E2E") // Dark surface — header bg
)

// Selection indicator prepended to the active row.
const selectionIndicator = "▎"

// Journey icons for list rows.
const (
	iconCaptive  = "◎"
	iconReleased = "✓"
	iconDeceased = "✗"
	iconReturned = "⊘"
)

// Header bar — solid background, dominant.
var (
	styleHeader = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	styleHeaderCount = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleHeaderFilter = lipgloss.NewStyle().
				Foreground(colorMutedLight)
)

// List row styles.
var (
	styleRowSelected = lipgloss.NewStyle().
				Foreground(colorBrightWhite).
				Bold(true)

	styleRowNormal = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleSelectionIndicator = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)
)

// Detail panel — rounded border, styled title.
var (
	styleDetailBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Padding(0, 1)

	styleDetailTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleDetailLabel = lipgloss.NewStyle().
				Foreground(colorMuted)

	styleDetailValue = lipgloss.NewStyle().
				Foreground(colorWhite)
)

// Footer key help.
var (
	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFooterSep = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(colorMutedLight)
)

// journeyStyle colors a journey the way the rendered lifeline ends.
func journeyStyle(j record.Journey) lipgloss.Style {
	switch j {
	case record.JourneyReleasedAlive:
		return lipgloss.NewStyle().Foreground(colorReleased)
	case record.JourneyDiedInCaptivity, record.JourneyDeadFromStart:
		return lipgloss.NewStyle().Foreground(colorDeceased)
	case record.JourneyReleasedBody:
		return lipgloss.NewStyle().Foreground(colorReturned)
	default:
		return lipgloss.NewStyle().Foreground(colorHeld)
	}
}

// journeyIcon picks the list-row icon for a journey.
func journeyIcon(j record.Journey) string {
	switch j {
	case record.JourneyReleasedAlive:
		return iconReleased
	case record.JourneyDiedInCaptivity, record.JourneyDeadFromStart:
		return iconDeceased
	case record.JourneyReleasedBody:
		return iconReturned
	default:
		return iconCaptive
	}
}
