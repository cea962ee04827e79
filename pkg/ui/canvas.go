package ui

import (
	"fmt"
	"math"
	"sort"

	"github.com/vanderheijden86/archlens/pkg/layout"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/store"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"
)

// A terminal cell covers cellWidth × cellHeight plane units at zoom 1.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

// projection maps plane coordinates to canvas cells.
type projection struct {
	center     r2.Vec
	zoom       float64
	cols, rows int
}

// ScreenSize is the plane extent of a cols × rows canvas at zoom 1.
func ScreenSize(cols, rows int) r2.Vec {
	return r2.Vec{X: float64(cols) * cellWidth, Y: float64(rows) * cellHeight}
}

func (p projection) toCell(v r2.Vec) (float64, float64) {
	x := ((v.X-p.center.X)*p.zoom + float64(p.cols)*cellWidth/2) / cellWidth
	y := ((v.Y-p.center.Y)*p.zoom + float64(p.rows)*cellHeight/2) / cellHeight
	return x, y
}

func (p projection) cellOf(v r2.Vec) (int, int) {
	x, y := p.toCell(v)
	return int(math.Floor(x)), int(math.Floor(y))
}

// rectCells returns the inclusive cell bounds of a plane rect.
func (p projection) rectCells(r layout.Rect) (x0, y0, x1, y1 int) {
	fx0, fy0 := p.toCell(r.Pos)
	fx1, fy1 := p.toCell(r2.Add(r.Pos, r.Size))
	x0, y0 = int(math.Round(fx0)), int(math.Round(fy0))
	x1, y1 = int(math.Round(fx1))-1, int(math.Round(fy1))-1
	return x0, y0, max(x1, x0), max(y1, y0)
}

var (
	roundBorder = [6]rune{'╭', '╮', '╰', '╯', '─', '│'}
	thickBorder = [6]rune{'┏', '┓', '┗', '┛', '━', '┃'}
	ghostBorder = [6]rune{'┌', '┐', '└', '┘', '┄', '┆'}
)

// canvas renders a View into a grid.
type canvas struct {
	g     *grid
	proj  projection
	theme Theme
	view  store.View
	card  func(e model.Entity, layer model.Layer, width int) []string
}

func newCanvas(v store.View, theme Theme, cols, rows int) *canvas {
	return &canvas{
		g:     newGrid(cols, rows),
		proj:  projection{center: v.Center, zoom: v.Zoom, cols: cols, rows: rows},
		theme: theme,
		view:  v,
	}
}

func (c *canvas) render() *grid {
	c.drawEdges()

	// Scattered entities first, focal card last so it sits on top.
	entities := append([]store.EntityView(nil), c.view.Entities...)
	sort.SliceStable(entities, func(i, j int) bool {
		return drawOrder(entities[i]) < drawOrder(entities[j])
	})
	for _, e := range entities {
		if e.Role == store.RoleFocal {
			c.drawCard(e)
		} else {
			c.drawEntity(e)
		}
	}
	return c.g
}

func drawOrder(e store.EntityView) int {
	switch e.Role {
	case store.RoleScattered:
		return 0
	case store.RoleFocal:
		return 3
	}
	if e.Hovered || e.Selected {
		return 2
	}
	return 1
}

func (c *canvas) fade(s lipgloss.Style, opacity float64) lipgloss.Style {
	switch {
	case opacity >= store.OpacityNeighbor:
		return s
	case opacity >= store.OpacitySnapshot:
		return s.Faint(true)
	default:
		return c.theme.Ghost
	}
}

func (c *canvas) drawEdges() {
	v := c.view
	rects := make(map[string]layout.Rect, len(v.Entities))
	for _, e := range v.Entities {
		rects[e.ID] = e.Rect
	}
	docks := make(map[string]r2.Vec, len(v.Docks))
	if focal, ok := rects[v.FocalID]; ok {
		for _, d := range v.Docks {
			docks[d.NeighborID] = r2.Add(focal.Pos, d.Point)
		}
	}

	for _, cv := range v.Connections {
		src, ok1 := rects[cv.Connection.Source]
		dst, ok2 := rects[cv.Connection.Target]
		if !ok1 || !ok2 || cv.Connection.Source == cv.Connection.Target {
			continue
		}
		a, b := src.Center(), dst.Center()
		if v.Focused() {
			switch v.FocalID {
			case cv.Connection.Source:
				if pt, ok := docks[cv.Connection.Target]; ok {
					a = pt
				}
			case cv.Connection.Target:
				if pt, ok := docks[cv.Connection.Source]; ok {
					b = pt
				}
			}
		}

		style := c.theme.Edge
		hot := cv.Highlighted || (v.Focused() && cv.Connection.Touches(v.FocalID))
		if hot {
			style = c.theme.EdgeHot
		}
		r := '·'
		if cv.Connection.Draft {
			r = '∙'
			style = style.Foreground(c.theme.Draft)
		}
		idx := c.g.style(c.fade(style, cv.Opacity))
		x0, y0 := c.proj.cellOf(a)
		x1, y1 := c.proj.cellOf(b)
		c.g.line(x0, y0, x1, y1, r, idx)
	}
}

func (c *canvas) boxStyle(e store.EntityView) (lipgloss.Style, [6]rune) {
	layer := c.view.Layer
	color := c.theme.KindColor(e.Entity.Kind)
	switch {
	case e.Entity.HasError(layer), e.Entity.IsCritical(layer):
		color = c.theme.Danger
	case e.Entity.Draft:
		color = c.theme.Draft
	}
	s := c.theme.Renderer.NewStyle().Foreground(color)
	border := roundBorder
	if e.Hovered || e.Selected || e.Highlighted {
		s = s.Bold(true)
		border = thickBorder
	}
	if e.Highlighted {
		s = s.Foreground(c.theme.Accent)
	}
	if e.Opacity < store.OpacitySnapshot {
		border = ghostBorder
	}
	return c.fade(s, e.Opacity), border
}

func (c *canvas) frame(x0, y0, x1, y1 int, border [6]rune, style int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r := ' '
			switch {
			case y == y0 && x == x0:
				r = border[0]
			case y == y0 && x == x1:
				r = border[1]
			case y == y1 && x == x0:
				r = border[2]
			case y == y1 && x == x1:
				r = border[3]
			case y == y0 || y == y1:
				r = border[4]
			case x == x0 || x == x1:
				r = border[5]
			}
			c.g.set(x, y, r, style)
		}
	}
}

func (c *canvas) drawEntity(e store.EntityView) {
	x0, y0, x1, y1 := c.proj.rectCells(e.Rect)
	s, border := c.boxStyle(e)
	idx := c.g.style(s)

	// Too small for a frame: a single glyph marks the entity.
	if x1-x0 < 3 || y1-y0 < 1 {
		cx, cy := c.proj.cellOf(e.Rect.Center())
		c.g.text(cx, cy, e.Entity.Kind.Glyph(), idx, c.g.w)
		return
	}
	c.frame(x0, y0, x1, y1, border, idx)
	if e.Opacity < store.OpacitySnapshot {
		return
	}
	// Two-row boxes carry the label on their top edge.
	row := y0 + 1
	if y1-y0 < 2 {
		row = y0
	}
	label := fitWidth(e.Entity.Kind.Glyph()+" "+e.Entity.Label, x1-x0-1)
	c.g.text(x0+1, row, label, idx, x1)
	if y1-y0 >= 3 {
		status := fitWidth(statusLine(e.Entity, c.view.Layer), x1-x0-1)
		c.g.text(x0+1, row+1, status, c.g.style(c.fade(c.theme.MutedText, e.Opacity)), x1)
	}
}

func (c *canvas) drawCard(e store.EntityView) {
	x0, y0, x1, y1 := c.proj.rectCells(e.Rect)
	if x1-x0 < 3 || y1-y0 < 1 {
		c.drawEntity(e)
		return
	}
	s, _ := c.boxStyle(e)
	idx := c.g.style(s.Bold(true).Foreground(c.theme.Primary))
	c.frame(x0, y0, x1, y1, thickBorder, idx)

	width := x1 - x0 - 1
	title := fitWidth(e.Entity.Kind.Glyph()+" "+e.Entity.Label, width)
	c.g.text(x0+1, y0+1, title, c.g.style(c.theme.CardTitle), x1)

	if c.card != nil {
		body := c.g.style(c.theme.Base)
		for i, line := range c.card(e.Entity, c.view.Layer, width) {
			y := y0 + 2 + i
			if y >= y1 {
				break
			}
			c.g.text(x0+1, y, fitWidth(line, width), body, x1)
		}
	}

	dock := c.g.style(c.theme.Dock)
	for _, d := range c.view.Docks {
		x, y := c.proj.cellOf(r2.Add(e.Rect.Pos, d.Point))
		x = min(max(x, x0), x1)
		y = min(max(y, y0), y1)
		c.g.set(x, y, '◉', dock)
	}
}

// statusLine is the one-line layer summary of an entity.
func statusLine(e model.Entity, layer model.Layer) string {
	switch layer {
	case model.LayerLive:
		if t := e.Tracing; t != nil {
			return fmt.Sprintf("%s %.0fms", t.Status, t.LatencyMs)
		}
		return "no trace"
	case model.LayerBuilding:
		if e.Draft {
			if e.Building != nil && e.Building.TicketID != "" {
				return "draft " + e.Building.TicketID
			}
			return "draft"
		}
		if e.Team != "" {
			return e.Team
		}
		return string(e.Kind)
	case model.LayerPlatform:
		if p := e.Platform; p != nil {
			return fmt.Sprintf("%s cpu %.0f%% mem %.0f%%", p.Health, p.CPU, p.Memory)
		}
		return "no metrics"
	}
	return ""
}
