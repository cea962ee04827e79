package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/archlens/pkg/debug"
	"github.com/vanderheijden86/archlens/pkg/model"

	"github.com/charmbracelet/glamour"
)

// cardRenderer renders the focal card body through glamour and caches the
// result per entity, layer and width.
type cardRenderer struct {
	renderers map[int]*glamour.TermRenderer
	cache     map[string][]string
}

func newCardRenderer() *cardRenderer {
	return &cardRenderer{
		renderers: make(map[int]*glamour.TermRenderer),
		cache:     make(map[string][]string),
	}
}

// reset drops cached bodies, e.g. after a reload.
func (c *cardRenderer) reset() {
	clear(c.cache)
}

func (c *cardRenderer) lines(e model.Entity, layer model.Layer, width int) []string {
	if width <= 0 {
		return nil
	}
	key := fmt.Sprintf("%s|%s|%d", e.ID, layer, width)
	if l, ok := c.cache[key]; ok {
		return l
	}
	md := cardMarkdown(e, layer)
	out := md
	if r := c.renderer(width); r != nil {
		if rendered, err := r.Render(md); err == nil {
			out = rendered
		} else {
			debug.Log("ui: card render %s: %v", e.ID, err)
		}
	}
	l := trimBlock(out)
	c.cache[key] = l
	return l
}

func (c *cardRenderer) renderer(width int) *glamour.TermRenderer {
	if r, ok := c.renderers[width]; ok {
		return r
	}
	// The card is painted into the canvas grid, so it must be plain text.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		debug.Log("ui: glamour: %v", err)
		r = nil
	}
	c.renderers[width] = r
	return r
}

// trimBlock splits rendered markdown into lines, dropping glamour's outer
// margin and blank lines at either end.
func trimBlock(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		lines = append(lines, strings.TrimPrefix(strings.TrimRight(l, " \t"), "  "))
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// cardMarkdown describes an entity for the given layer.
func cardMarkdown(e model.Entity, layer model.Layer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*", e.Kind)
	if e.Team != "" {
		fmt.Fprintf(&sb, " · %s", e.Team)
	}
	sb.WriteString("\n\n")
	if e.Description != "" {
		sb.WriteString(e.Description)
		sb.WriteString("\n\n")
	}

	switch layer {
	case model.LayerLive:
		t := e.Tracing
		if t == nil {
			sb.WriteString("Not on the active trace.\n")
			break
		}
		fmt.Fprintf(&sb, "- **status** %s\n", t.Status)
		fmt.Fprintf(&sb, "- **latency** %.0f ms\n", t.LatencyMs)
		if t.TraceID != "" {
			fmt.Fprintf(&sb, "- **trace** `%s`\n", t.TraceID)
		}
		if t.ErrorMessage != "" {
			fmt.Fprintf(&sb, "\n> %s\n", t.ErrorMessage)
		}
	case model.LayerBuilding:
		if e.Draft {
			sb.WriteString("**Draft** proposal\n\n")
		}
		if b := e.Building; b != nil {
			if b.TicketID != "" {
				fmt.Fprintf(&sb, "- **ticket** %s\n", b.TicketID)
			}
			if b.ProposedBy != "" {
				fmt.Fprintf(&sb, "- **proposed by** %s\n", b.ProposedBy)
			}
			if b.Description != "" {
				fmt.Fprintf(&sb, "\n%s\n", b.Description)
			}
		}
	case model.LayerPlatform:
		p := e.Platform
		if p == nil {
			sb.WriteString("No platform metrics.\n")
			break
		}
		fmt.Fprintf(&sb, "- **health** %s\n", p.Health)
		fmt.Fprintf(&sb, "- **cpu** %.0f%%  **mem** %.0f%%\n", p.CPU, p.Memory)
		if p.PodsTotal > 0 {
			fmt.Fprintf(&sb, "- **pods** %d/%d\n", p.PodsReady, p.PodsTotal)
		}
		if p.Version != "" {
			fmt.Fprintf(&sb, "- **version** %s\n", p.Version)
		}
		if p.LastDeploy != "" {
			fmt.Fprintf(&sb, "- **deployed** %s\n", p.LastDeploy)
		}
		if p.Uptime != "" {
			fmt.Fprintf(&sb, "- **uptime** %s\n", p.Uptime)
		}
	}
	return sb.String()
}
