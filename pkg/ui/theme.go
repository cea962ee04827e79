package ui

import (
	"os"

	"github.com/vanderheijden86/archlens/pkg/model"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme is the explorer palette plus the styles derived from it.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Entity kinds
	Service  lipgloss.AdaptiveColor
	Database lipgloss.AdaptiveColor
	Queue    lipgloss.AdaptiveColor
	Gateway  lipgloss.AdaptiveColor
	Cache    lipgloss.AdaptiveColor

	// Signals
	Danger  lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Draft   lipgloss.AdaptiveColor
	Accent  lipgloss.AdaptiveColor

	Base      lipgloss.Style
	Header    lipgloss.Style
	LayerTab  lipgloss.Style
	ActiveTab lipgloss.Style
	MutedText lipgloss.Style
	Faint     lipgloss.Style
	Ghost     lipgloss.Style
	Edge      lipgloss.Style
	EdgeHot   lipgloss.Style
	Dock      lipgloss.Style
	CardTitle lipgloss.Style
	Status    lipgloss.Style
	ErrorText lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},

		Service:  lipgloss.AdaptiveColor{Light: "#2684FF", Dark: "#4C9AFF"},
		Database: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Queue:    lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Gateway:  lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Cache:    lipgloss.AdaptiveColor{Light: "#C2185B", Dark: "#FF79C6"},

		Danger:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Warning: lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Success: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Draft:   lipgloss.AdaptiveColor{Light: "#8A6D00", Dark: "#F1FA8C"},
		Accent:  lipgloss.AdaptiveColor{Light: "#D35400", Dark: "#FFB86C"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.LayerTab = r.NewStyle().Foreground(t.Subtext).Padding(0, 1)
	t.ActiveTab = r.NewStyle().Foreground(t.Primary).Bold(true).Underline(true).Padding(0, 1)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.Faint = r.NewStyle().Foreground(t.Muted).Faint(true)
	t.Ghost = r.NewStyle().Foreground(t.Border).Faint(true)
	t.Edge = r.NewStyle().Foreground(t.Secondary)
	t.EdgeHot = r.NewStyle().Foreground(t.Accent).Bold(true)
	t.Dock = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.CardTitle = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Status = r.NewStyle().Foreground(t.Subtext).Italic(true)
	t.ErrorText = r.NewStyle().Foreground(t.Danger).Bold(true)
	return t
}

// KindColor returns the color of an entity kind.
func (t Theme) KindColor(k model.EntityKind) lipgloss.AdaptiveColor {
	switch k {
	case model.KindDatabase:
		return t.Database
	case model.KindQueue:
		return t.Queue
	case model.KindGateway:
		return t.Gateway
	case model.KindCache:
		return t.Cache
	default:
		return t.Service
	}
}

// EventGlyph returns the marker and color of a timeline event kind.
func (t Theme) EventGlyph(k model.EventKind) (string, lipgloss.AdaptiveColor) {
	switch k {
	case model.EventIncident:
		return "▲", t.Danger
	case model.EventProposal:
		return "◆", t.Primary
	default:
		return "●", t.Success
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
