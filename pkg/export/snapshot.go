// Package export renders a store View to a static SVG or PNG image.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/archlens/pkg/debug"
	"github.com/vanderheijden86/archlens/pkg/layout"
	"github.com/vanderheijden86/archlens/pkg/metrics"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/store"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrEmptyView is returned when the view has no entities to draw.
	ErrEmptyView = errors.New("nothing to export")
	// ErrUnsupportedFormat is returned for formats other than svg and png.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// SnapshotOptions controls layout snapshot export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // Optional title rendered in the header
	View   store.View
}

// format resolves the output format, defaulting to svg.
func (o SnapshotOptions) format() (string, error) {
	format := strings.ToLower(strings.TrimPrefix(o.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(o.Path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return "", fmt.Errorf("%w %q (want svg or png)", ErrUnsupportedFormat, format)
	}
	return format, nil
}

// SaveLayoutSnapshot writes opts.View to opts.Path. A path without an
// extension gets one matching the format.
func SaveLayoutSnapshot(opts SnapshotOptions) (string, error) {
	defer metrics.Timer(metrics.Export)()

	if len(opts.View.Entities) == 0 {
		return "", ErrEmptyView
	}
	if opts.Path == "" {
		return "", fmt.Errorf("output path is required")
	}
	format, err := opts.format()
	if err != nil {
		return "", err
	}
	if filepath.Ext(opts.Path) == "" {
		opts.Path += "." + format
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}

	sc := buildScene(opts)
	switch format {
	case "png":
		err = renderPNG(opts.Path, sc)
	default:
		var f *os.File
		f, err = os.Create(opts.Path)
		if err == nil {
			err = renderSVG(f, sc)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", opts.Path, err)
	}
	debug.Log("export: wrote %s (%d entities, focal %q)", opts.Path, len(sc.nodes), opts.View.FocalID)
	return opts.Path, nil
}

// --- scene -----------------------------------------------------------------

const (
	padding      = 36.0
	headerHeight = 96.0
	minWidth     = 640
	minHeight    = 480
)

type sceneNode struct {
	ID      string
	Label   string
	Kind    model.EntityKind
	X, Y    float64
	W, H    float64
	Fill    color.RGBA
	Opacity float64
	Focal   bool
	Accent  bool // hovered, selected or snapshot-highlighted
}

type sceneEdge struct {
	X1, Y1, X2, Y2 float64
	Opacity        float64
	Highlighted    bool
	Draft          bool
}

type sceneDock struct {
	X, Y float64
}

type scene struct {
	Width, Height int
	Title         string
	Subtitle      string
	nodes         []sceneNode
	edges         []sceneEdge
	docks         []sceneDock
}

// buildScene translates plane coordinates so the view's bounds sit below
// the header. The focal entity is drawn as a card centred on its rect.
func buildScene(opts SnapshotOptions) scene {
	v := opts.View
	rects := make(layout.Placement, len(v.Entities))
	for _, e := range v.Entities {
		r := e.Rect
		if e.Role == store.RoleFocal {
			r = layout.Rect{Pos: r2.Sub(r.Center(), r2.Scale(0.5, v.Card)), Size: v.Card}
		}
		rects[e.ID] = r
	}
	box, _ := rects.Bounds()
	offset := r2.Vec{X: padding - box.Min.X, Y: padding + headerHeight - box.Min.Y}
	at := func(p r2.Vec) r2.Vec { return r2.Add(p, offset) }

	sc := scene{
		Width:  max(minWidth, int(math.Ceil(box.Max.X-box.Min.X+2*padding))),
		Height: max(minHeight, int(math.Ceil(box.Max.Y-box.Min.Y+2*padding+headerHeight))),
		Title:  opts.Title,
	}
	if strings.TrimSpace(sc.Title) == "" {
		sc.Title = "Architecture Snapshot"
	}
	info := v.Layer.Info()
	sc.Subtitle = fmt.Sprintf("layer: %s (%s)  entities: %d  connections: %d",
		info.Label, info.Persona, len(v.Entities), len(v.Connections))
	if v.Focused() {
		sc.Subtitle += "  focus: " + v.FocalID
	}
	if v.PinnedID != "" {
		sc.Subtitle += "  pinned: " + v.PinnedID
	}

	for _, e := range v.Entities {
		r := rects[e.ID]
		p := at(r.Pos)
		sc.nodes = append(sc.nodes, sceneNode{
			ID:      e.ID,
			Label:   e.Entity.Label,
			Kind:    e.Entity.Kind,
			X:       p.X,
			Y:       p.Y,
			W:       r.Size.X,
			H:       r.Size.Y,
			Fill:    entityColor(e.Entity, v.Layer),
			Opacity: e.Opacity,
			Focal:   e.Role == store.RoleFocal,
			Accent:  e.Hovered || e.Selected || e.Highlighted,
		})
	}

	var card layout.Rect
	if v.Focused() {
		card = rects[v.FocalID]
	}
	docks := make(map[string]r2.Vec, len(v.Docks))
	for _, d := range v.Docks {
		pt := at(r2.Add(card.Pos, d.Point))
		docks[d.NeighborID] = pt
		sc.docks = append(sc.docks, sceneDock{X: pt.X, Y: pt.Y})
	}

	for _, c := range v.Connections {
		src, ok1 := rects[c.Connection.Source]
		dst, ok2 := rects[c.Connection.Target]
		if !ok1 || !ok2 {
			continue
		}
		a, b := at(src.Center()), at(dst.Center())
		// Focal connections run from the docking point to the neighbor.
		if v.Focused() {
			if c.Connection.Source == v.FocalID {
				if pt, ok := docks[c.Connection.Target]; ok {
					a = pt
				}
			} else if c.Connection.Target == v.FocalID {
				if pt, ok := docks[c.Connection.Source]; ok {
					b = pt
				}
			}
		}
		sc.edges = append(sc.edges, sceneEdge{
			X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
			Opacity:     c.Opacity,
			Highlighted: c.Highlighted,
			Draft:       c.Connection.Draft,
		})
	}
	return sc
}

// --- rendering -------------------------------------------------------------

var (
	colorService   = color.RGBA{0xc5, 0xca, 0xe9, 0xff}
	colorDatabase  = color.RGBA{0xc8, 0xe6, 0xc9, 0xff}
	colorQueue     = color.RGBA{0xff, 0xf3, 0xe0, 0xff}
	colorGateway   = color.RGBA{0xb3, 0xe5, 0xfc, 0xff}
	colorCache     = color.RGBA{0xf8, 0xbb, 0xd0, 0xff}
	colorDraft     = color.RGBA{0xff, 0xf9, 0xc4, 0xff}
	colorAlert     = color.RGBA{0xff, 0xcd, 0xd2, 0xff}
	colorStroke    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorAccent    = color.RGBA{0xe6, 0x5c, 0x00, 0xff}
	colorEdge      = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorText      = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle    = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop  = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorCardBG    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorDockPoint = color.RGBA{0x3f, 0x51, 0xb5, 0xff}
)

func entityColor(e model.Entity, layer model.Layer) color.RGBA {
	switch {
	case e.HasError(layer), e.IsCritical(layer):
		return colorAlert
	case e.Draft:
		return colorDraft
	}
	switch e.Kind {
	case model.KindDatabase:
		return colorDatabase
	case model.KindQueue:
		return colorQueue
	case model.KindGateway:
		return colorGateway
	case model.KindCache:
		return colorCache
	default:
		return colorService
	}
}

func renderPNG(path string, sc scene) error {
	dc := gg.NewContext(sc.Width, sc.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(sc.Width)-32, headerHeight-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(sc.Title, 32, 40, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(sc.Subtitle, 32, 60, 0, 0.5)

	for _, e := range sc.edges {
		dc.SetColor(withAlpha(colorEdge, e.Opacity))
		dc.SetLineWidth(2)
		if e.Highlighted {
			dc.SetColor(withAlpha(colorAccent, e.Opacity))
			dc.SetLineWidth(3)
		}
		if e.Draft {
			dc.SetDash(6, 4)
		}
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
		dc.SetDash()
	}

	for _, n := range sc.nodes {
		fill := n.Fill
		if n.Focal {
			fill = colorCardBG
		}
		dc.SetColor(withAlpha(fill, n.Opacity))
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
		dc.Fill()
		stroke, width := colorStroke, 1.2
		if n.Accent || n.Focal {
			stroke, width = colorAccent, 2.5
		}
		dc.SetColor(withAlpha(stroke, n.Opacity))
		dc.SetLineWidth(width)
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
		dc.Stroke()

		dc.SetColor(withAlpha(colorText, n.Opacity))
		dc.DrawStringAnchored(truncate(n.Label, labelRunes(n.W)), n.X+10, n.Y+18, 0, 0.5)
		dc.SetColor(withAlpha(colorSubtle, n.Opacity))
		dc.DrawStringAnchored(truncate(n.ID, labelRunes(n.W)), n.X+10, n.Y+36, 0, 0.5)
	}

	dc.SetColor(colorDockPoint)
	for _, d := range sc.docks {
		dc.DrawCircle(d.X, d.Y, 4)
		dc.Fill()
	}
	return dc.SavePNG(path)
}

func renderSVG(w io.Writer, sc scene) error {
	canvas := svg.New(w)
	canvas.Start(sc.Width, sc.Height)
	canvas.Rect(0, 0, sc.Width, sc.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, sc.Width-32, int(headerHeight-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 44, sc.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, sc.Subtitle, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	for _, e := range sc.edges {
		stroke, width := colorEdge, 2
		if e.Highlighted {
			stroke, width = colorAccent, 3
		}
		style := fmt.Sprintf("stroke:%s;stroke-width:%d;stroke-opacity:%s", css(stroke), width, opacity(e.Opacity))
		if e.Draft {
			style += ";stroke-dasharray:6,4"
		}
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2), style)
	}

	for _, n := range sc.nodes {
		fill := n.Fill
		if n.Focal {
			fill = colorCardBG
		}
		stroke, width := colorStroke, "1.2"
		if n.Accent || n.Focal {
			stroke, width = colorAccent, "2.5"
		}
		x, y := int(n.X), int(n.Y)
		canvas.Group(fmt.Sprintf(`id="%s" opacity="%s"`, n.ID, opacity(n.Opacity)))
		canvas.Roundrect(x, y, int(n.W), int(n.H), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%s", css(fill), css(stroke), width))
		canvas.Text(x+10, y+22, n.Kind.Glyph()+" "+truncate(n.Label, labelRunes(n.W)),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		canvas.Text(x+10, y+40, truncate(n.ID, labelRunes(n.W)),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
		canvas.Gend()
	}

	for _, d := range sc.docks {
		canvas.Circle(int(d.X), int(d.Y), 4, fmt.Sprintf("fill:%s", css(colorDockPoint)))
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

// labelRunes is how many 7px glyphs fit inside a box of width w.
func labelRunes(w float64) int {
	return max(4, int((w-20)/7))
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func withAlpha(c color.RGBA, a float64) color.NRGBA {
	a = math.Max(0, math.Min(1, a))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}

func opacity(a float64) string {
	return fmt.Sprintf("%.2f", math.Max(0, math.Min(1, a)))
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
