package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/archlens/pkg/layout"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/store"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestProjectionCenter(t *testing.T) {
	p := projection{center: r2.Vec{X: 100, Y: 50}, zoom: 2, cols: 40, rows: 20}
	x, y := p.cellOf(r2.Vec{X: 100, Y: 50})
	if x != 20 || y != 10 {
		t.Fatalf("center cell = (%d,%d), want (20,10)", x, y)
	}
	// One cell to the right is cellWidth/zoom plane units away.
	x, _ = p.cellOf(r2.Vec{X: 100 + cellWidth/2, Y: 50})
	if x != 21 {
		t.Errorf("x = %d, want 21", x)
	}
}

func TestRectCells(t *testing.T) {
	p := projection{center: r2.Vec{X: 160, Y: 160}, zoom: 1, cols: 40, rows: 20}
	r := layout.Rect{Pos: r2.Vec{X: 0, Y: 0}, Size: r2.Vec{X: 80, Y: 64}}
	x0, y0, x1, y1 := p.rectCells(r)
	if x0 != 0 || y0 != 0 || x1 != 9 || y1 != 3 {
		t.Fatalf("cells = (%d,%d)-(%d,%d), want (0,0)-(9,3)", x0, y0, x1, y1)
	}

	// Degenerate rects still cover one cell.
	tiny := layout.Rect{Pos: r2.Vec{X: 0, Y: 0}, Size: r2.Vec{X: 1, Y: 1}}
	x0, y0, x1, y1 = p.rectCells(tiny)
	if x1 < x0 || y1 < y0 {
		t.Errorf("tiny rect cells = (%d,%d)-(%d,%d)", x0, y0, x1, y1)
	}
}

func TestScreenSize(t *testing.T) {
	got := ScreenSize(100, 30)
	if got.X != 800 || got.Y != 480 {
		t.Errorf("ScreenSize = %v", got)
	}
}

func TestGridText(t *testing.T) {
	g := newGrid(10, 1)
	end := g.text(1, 0, "ab世c", 0, g.w)
	if end != 6 {
		t.Fatalf("end = %d, want 6", end)
	}
	if got := g.String(); got != " ab世c    " {
		t.Errorf("grid = %q", got)
	}

	// Overwriting the right half of a wide rune blanks its left half.
	g.set(4, 0, 'x', 0)
	if got := g.String(); got != " ab xc    " {
		t.Errorf("grid = %q", got)
	}
}

func TestGridTextStopsAtLimit(t *testing.T) {
	g := newGrid(10, 1)
	end := g.text(0, 0, "abcdef", 0, 3)
	if end != 3 || g.at(3, 0) != ' ' {
		t.Errorf("end = %d, cell 3 = %q", end, g.at(3, 0))
	}
}

func TestGridLineSkipsOccupiedCells(t *testing.T) {
	g := newGrid(5, 5)
	g.set(2, 2, 'X', 0)
	g.line(0, 0, 4, 4, '.', 0)
	want := []string{
		".    ",
		" .   ",
		"  X  ",
		"   . ",
		"    .",
	}
	if got := g.String(); got != strings.Join(want, "\n") {
		t.Errorf("grid =\n%s", got)
	}
}

func viewForCanvas() store.View {
	s := store.New(testDiagram(), store.DefaultOptions())
	s.SetScreen(ScreenSize(120, 40))
	s.Fit()
	return s.View()
}

func TestCanvasDrawsEntitiesAndEdges(t *testing.T) {
	v := viewForCanvas()
	out := newCanvas(v, TestTheme(), 120, 40).render().String()
	for _, want := range []string{"Gateway", "Orders", "Orders DB", "╭", "·"} {
		if !strings.Contains(out, want) {
			t.Errorf("canvas missing %q", want)
		}
	}
	if got := strings.Count(out, "\n"); got != 39 {
		t.Errorf("rows = %d, want 40", got+1)
	}
}

func TestCanvasGlyphWhenTiny(t *testing.T) {
	v := viewForCanvas()
	v.Zoom = 0.02
	out := newCanvas(v, TestTheme(), 120, 40).render().String()
	if strings.Contains(out, "Gateway") {
		t.Error("tiny entities should not carry labels")
	}
	if !strings.Contains(out, model.KindDatabase.Glyph()) {
		t.Error("tiny entities should be drawn as glyphs")
	}
}

func TestCanvasFocusCard(t *testing.T) {
	s := store.New(testDiagram(), store.DefaultOptions())
	s.SetScreen(ScreenSize(120, 40))
	s.SetZoom(1)
	if !s.EnterFocus("orders") {
		t.Fatal("focus failed")
	}
	c := newCanvas(s.View(), TestTheme(), 120, 40)
	var asked string
	c.card = func(e model.Entity, _ model.Layer, width int) []string {
		asked = e.ID
		return []string{"card body line"}
	}
	out := c.render().String()
	if asked != "orders" {
		t.Errorf("card rendered for %q", asked)
	}
	for _, want := range []string{"┏", "card body line", "◉"} {
		if !strings.Contains(out, want) {
			t.Errorf("focus canvas missing %q", want)
		}
	}
}

func TestDrawOrder(t *testing.T) {
	tests := []struct {
		e    store.EntityView
		want int
	}{
		{store.EntityView{Role: store.RoleScattered}, 0},
		{store.EntityView{Role: store.RoleNormal}, 1},
		{store.EntityView{Role: store.RoleNormal, Hovered: true}, 2},
		{store.EntityView{Role: store.RoleFocal}, 3},
	}
	for _, tt := range tests {
		if got := drawOrder(tt.e); got != tt.want {
			t.Errorf("drawOrder(%v) = %d, want %d", tt.e.Role, got, tt.want)
		}
	}
}

func TestStatusLine(t *testing.T) {
	e := model.Entity{
		Kind:     model.KindService,
		Team:     "payments",
		Tracing:  &model.TracingData{Status: model.TraceError, LatencyMs: 812},
		Platform: &model.PlatformMetrics{Health: model.HealthDegraded, CPU: 91, Memory: 40},
	}
	tests := []struct {
		layer model.Layer
		want  string
	}{
		{model.LayerLive, "error 812ms"},
		{model.LayerBuilding, "payments"},
		{model.LayerPlatform, "degraded cpu 91% mem 40%"},
	}
	for _, tt := range tests {
		if got := statusLine(e, tt.layer); got != tt.want {
			t.Errorf("statusLine(%v) = %q, want %q", tt.layer, got, tt.want)
		}
	}

	draft := model.Entity{Draft: true, Building: &model.BuildingData{TicketID: "ARCH-7"}}
	if got := statusLine(draft, model.LayerBuilding); got != "draft ARCH-7" {
		t.Errorf("draft status = %q", got)
	}
	if got := statusLine(model.Entity{}, model.LayerLive); got != "no trace" {
		t.Errorf("untraced status = %q", got)
	}
}
