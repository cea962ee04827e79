package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/store"
	"github.com/vanderheijden86/archlens/pkg/timeline"
)

// Rows of the timeline section above the event list.
const timelineHeaderRows = 3

func timelineRows(pageSize int) int {
	return timelineHeaderRows + 1 + pageSize
}

// barColumn maps a window fraction to a bar column.
func barColumn(fraction float64, width int) int {
	if width <= 1 {
		return 0
	}
	c := int(math.Round(fraction * float64(width-1)))
	return min(max(c, 0), width-1)
}

// barFraction is the inverse of barColumn.
func barFraction(col, width int) float64 {
	if width <= 1 {
		return 0.5
	}
	return math.Max(0, math.Min(1, float64(col)/float64(width-1)))
}

// eventAtColumn returns the id of the event drawn at col, newest wins.
func eventAtColumn(tv *store.TimelineView, col, width int) string {
	id := ""
	for _, pe := range tv.Events {
		if barColumn(pe.Fraction, width) == col {
			id = pe.Event.ID
		}
	}
	return id
}

// renderTimeline draws the window header, the bar with event markers, the
// tick labels and the current event page.
func renderTimeline(tv *store.TimelineView, pinned string, theme Theme, width, pageSize int) string {
	if tv == nil || width <= 2 {
		return ""
	}
	lines := make([]string, 0, timelineRows(pageSize))

	state := "default"
	if tv.State == timeline.StateAdjusted {
		state = "adjusted"
	}
	title := fmt.Sprintf("Timeline  %s → %s  (%s, %s)",
		formatWhen(tv.Window.Start), formatWhen(tv.Window.End), formatSpan(tv.Window.Width()), state)
	lines = append(lines, theme.CardTitle.Render(fitWidth(title, width)))

	bar := newGrid(width, 1)
	rule := bar.style(theme.MutedText)
	for x := 0; x < width; x++ {
		bar.set(x, 0, '─', rule)
	}
	tick := bar.style(theme.Renderer.NewStyle().Foreground(theme.Subtext))
	for _, t := range tv.Ticks {
		bar.set(barColumn(t.Fraction, width), 0, '┼', tick)
	}
	for _, pe := range tv.Events {
		glyph, color := theme.EventGlyph(pe.Event.Kind)
		s := theme.Renderer.NewStyle().Foreground(color)
		if pe.Event.ID == pinned {
			s = s.Reverse(true).Bold(true)
		}
		bar.text(barColumn(pe.Fraction, width), 0, glyph, bar.style(s), width)
	}
	lines = append(lines, bar.String())

	labels := newGrid(width, 1)
	label := labels.style(theme.MutedText)
	next := 0
	for _, t := range tv.Ticks {
		x := barColumn(t.Fraction, width)
		if x < next {
			continue
		}
		next = labels.text(x, 0, t.Label, label, width) + 1
	}
	lines = append(lines, labels.String())

	nav := "Events"
	if tv.HasLater {
		nav += "  ‹ newer (.)"
	}
	if tv.HasEarlier {
		nav += "  older (,) ›"
	}
	lines = append(lines, theme.MutedText.Render(fitWidth(nav, width)))

	for i := 0; i < pageSize; i++ {
		if i >= len(tv.Page) {
			lines = append(lines, "")
			continue
		}
		ev := tv.Page[i]
		glyph, color := theme.EventGlyph(ev.Kind)
		mark := theme.Renderer.NewStyle().Foreground(color).Render(glyph)
		row := fmt.Sprintf(" %s  %s", padRight(formatWhen(ev.Timestamp), 12), ev.Title)
		if ev.Severity != model.SeverityNone {
			row += fmt.Sprintf("  [%s]", ev.Severity)
		}
		if ev.ID == pinned {
			row += "  (pinned)"
			lines = append(lines, mark+theme.EdgeHot.Render(fitWidth(row, width-2)))
			continue
		}
		lines = append(lines, mark+fitWidth(row, width-2))
	}
	return strings.Join(lines, "\n")
}
