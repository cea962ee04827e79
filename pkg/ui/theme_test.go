package ui

import (
	"testing"

	"github.com/vanderheijden86/archlens/pkg/model"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func isColorEmpty(c lipgloss.AdaptiveColor) bool {
	return c.Light == "" && c.Dark == ""
}

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer)

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	for name, c := range map[string]lipgloss.AdaptiveColor{
		"Primary": theme.Primary,
		"Danger":  theme.Danger,
		"Draft":   theme.Draft,
		"Service": theme.Service,
	} {
		if isColorEmpty(c) {
			t.Errorf("%s color is empty", name)
		}
	}
}

func TestKindColor(t *testing.T) {
	theme := DefaultTheme(lipgloss.NewRenderer(nil))
	tests := []struct {
		kind model.EntityKind
		want lipgloss.AdaptiveColor
	}{
		{model.KindDatabase, theme.Database},
		{model.KindQueue, theme.Queue},
		{model.KindGateway, theme.Gateway},
		{model.KindCache, theme.Cache},
		{model.KindService, theme.Service},
		{model.EntityKind("mystery"), theme.Service},
	}
	for _, tt := range tests {
		if got := theme.KindColor(tt.kind); got != tt.want {
			t.Errorf("KindColor(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestEventGlyph(t *testing.T) {
	theme := DefaultTheme(lipgloss.NewRenderer(nil))
	tests := []struct {
		kind  model.EventKind
		glyph string
		color lipgloss.AdaptiveColor
	}{
		{model.EventIncident, "▲", theme.Danger},
		{model.EventProposal, "◆", theme.Primary},
		{model.EventDeployment, "●", theme.Success},
	}
	for _, tt := range tests {
		g, c := theme.EventGlyph(tt.kind)
		if g != tt.glyph || c != tt.color {
			t.Errorf("EventGlyph(%s) = %q %v", tt.kind, g, c)
		}
	}
}

func TestThemeFgProfiles(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.ANSI
	if got := ThemeFg("#FF0000"); got != lipgloss.ANSIColor(7) {
		t.Errorf("16-color fallback = %v", got)
	}
	TermProfile = colorprofile.TrueColor
	if got := ThemeFg("#FF0000"); got != lipgloss.Color("#FF0000") {
		t.Errorf("truecolor = %v", got)
	}
}
