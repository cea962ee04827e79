package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// cell is one terminal cell. r == 0 marks the right half of a wide rune.
type cell struct {
	r     rune
	style int
}

// grid is a fixed-size cell buffer with a per-cell style.
type grid struct {
	w, h   int
	cells  []cell
	styles []lipgloss.Style // index 0 is unstyled
}

func newGrid(w, h int) *grid {
	w, h = max(w, 0), max(h, 0)
	g := &grid{
		w:      w,
		h:      h,
		cells:  make([]cell, w*h),
		styles: []lipgloss.Style{lipgloss.NewStyle()},
	}
	for i := range g.cells {
		g.cells[i].r = ' '
	}
	return g
}

// style registers s and returns its index.
func (g *grid) style(s lipgloss.Style) int {
	g.styles = append(g.styles, s)
	return len(g.styles) - 1
}

func (g *grid) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

func (g *grid) set(x, y int, r rune, style int) {
	if !g.in(x, y) {
		return
	}
	i := y*g.w + x
	// Overwriting half of a wide rune blanks the other half.
	if g.cells[i].r == 0 && x > 0 {
		g.cells[i-1] = cell{r: ' '}
	}
	if x+1 < g.w && g.cells[i+1].r == 0 {
		g.cells[i+1] = cell{r: ' '}
	}
	g.cells[i] = cell{r: r, style: style}
}

func (g *grid) at(x, y int) rune {
	if !g.in(x, y) {
		return 0
	}
	return g.cells[y*g.w+x].r
}

// text writes s from (x, y) and stops before column limit. It returns the
// column after the last written cell.
func (g *grid) text(x, y int, s string, style, limit int) int {
	limit = min(limit, g.w)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > limit {
			break
		}
		g.set(x, y, r, style)
		if rw == 2 && g.in(x+1, y) {
			g.cells[y*g.w+x+1] = cell{r: 0, style: style}
		}
		x += rw
	}
	return x
}

// line draws a dotted line with Bresenham's algorithm. Only empty cells are
// painted so lines never cut through labels.
func (g *grid) line(x0, y0, x1, y1 int, r rune, style int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for steps := 0; steps < 4*(g.w+g.h)+dx-dy; steps++ {
		if g.at(x0, y0) == ' ' {
			g.set(x0, y0, r, style)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (g *grid) String() string {
	var sb strings.Builder
	var run strings.Builder
	for y := 0; y < g.h; y++ {
		cur := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur <= 0 {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(g.styles[cur].Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < g.w; x++ {
			c := g.cells[y*g.w+x]
			if c.r == 0 {
				continue
			}
			if c.style != cur {
				flush()
				cur = c.style
			}
			run.WriteRune(c.r)
		}
		flush()
		if y < g.h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
