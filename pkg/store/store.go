// Package store is the explicit state container behind the explorer. It is
// a thin imperative wrapper around the pure layout, timeline and dwell
// engines: read state, call the engine, write the result back.
//
// A Store is not safe for concurrent use. The UI owns one and calls it from
// its Update loop only.
package store

import (
	"errors"
	"math"
	"time"

	"github.com/vanderheijden86/archlens/pkg/config"
	"github.com/vanderheijden86/archlens/pkg/debug"
	"github.com/vanderheijden86/archlens/pkg/dwell"
	"github.com/vanderheijden86/archlens/pkg/layout"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/timeline"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrTimelineUnavailable is returned by timeline operations when the diagram
// has no events.
var ErrTimelineUnavailable = errors.New("timeline unavailable: diagram has no events")

// Options are the tuning values of a Store.
type Options struct {
	Layout        layout.Params
	Card          r2.Vec
	DwellDelay    time.Duration
	ZoomThreshold float64
	MinZoom       float64
	MaxZoom       float64
	FitPadding    float64

	Timeline timeline.Params
	PanRatio float64
	ZoomStep float64
	PageSize int

	Layer  model.Layer
	Screen r2.Vec // initial screen size in plane units at zoom 1
}

// OptionsFromConfig maps a loaded config onto store options.
func OptionsFromConfig(cfg config.Config) Options {
	f, t := cfg.Focus, cfg.Timeline
	layer, err := model.ParseLayer(cfg.UI.DefaultLayer)
	if err != nil {
		layer = model.LayerLive
	}
	tp := timeline.DefaultParams()
	tp.PaddingRatio = t.PaddingRatio
	tp.NavigateWidth = t.NavigateWidth()
	return Options{
		Layout:        layout.Params{Factor: f.ScatterFactor, MinExtent: layout.DefaultMinExtent},
		Card:          r2.Vec{X: f.CardWidth, Y: f.CardHeight},
		DwellDelay:    f.DwellDelay(),
		ZoomThreshold: f.ZoomThreshold,
		MinZoom:       f.MinZoom,
		MaxZoom:       f.MaxZoom,
		FitPadding:    f.FitPadding,
		Timeline:      tp,
		PanRatio:      t.PanRatio,
		ZoomStep:      t.ZoomStep,
		PageSize:      t.PageSize,
		Layer:         layer,
		Screen:        r2.Vec{X: 1280, Y: 800},
	}
}

// DefaultOptions returns the options of the default config.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

// Store holds all process-lifetime state of the explorer.
type Store struct {
	opts    Options
	diagram model.Diagram
	layer   model.Layer

	entities  []model.Entity
	conns     []model.Connection
	index     *layout.NeighborIndex
	placement layout.Placement
	engine    layout.Engine
	session   layout.Session

	dwell    *dwell.Timer
	hovered  string
	selected string

	zoom   float64
	center r2.Vec
	screen r2.Vec

	hasTimeline bool
	tlRange     timeline.Range
	window      timeline.Window
	pager       *timeline.Pager
	pinned      string
}

// New builds a store over d. The camera starts fitted to the diagram.
func New(d model.Diagram, opts Options) *Store {
	if !opts.Layer.Valid() {
		opts.Layer = model.LayerLive
	}
	if opts.Screen.X <= 0 || opts.Screen.Y <= 0 {
		opts.Screen = r2.Vec{X: 1280, Y: 800}
	}
	s := &Store{
		opts:    opts,
		diagram: d,
		layer:   opts.Layer,
		engine:  layout.NewEngine(opts.Layout),
		dwell:   dwell.New(opts.DwellDelay, opts.ZoomThreshold),
		zoom:    1,
		screen:  opts.Screen,
	}
	s.rebuild()
	s.initTimeline(false)
	s.Fit()
	return s
}

// Options returns the store's tuning values.
func (s *Store) Options() Options { return s.opts }

// Diagram returns the current diagram.
func (s *Store) Diagram() model.Diagram { return s.diagram }

// Layer returns the active layer.
func (s *Store) Layer() model.Layer { return s.layer }

// Placement returns a copy of the current entity geometry.
func (s *Store) Placement() layout.Placement { return s.placement.Clone() }

// Session returns the focus session.
func (s *Store) Session() layout.Session { return s.session }

// Focused reports whether focus mode is active.
func (s *Store) Focused() bool { return s.session.Active() }

// Hovered returns the hovered entity id.
func (s *Store) Hovered() string { return s.hovered }

// Selected returns the selected entity id.
func (s *Store) Selected() string { return s.selected }

// Dwell exposes the dwell timer so the UI can schedule its delivery.
func (s *Store) Dwell() *dwell.Timer { return s.dwell }

// EntityIDs returns the ids visible on the active layer, sorted.
func (s *Store) EntityIDs() []string { return s.placement.IDs() }

// Entity looks up a visible entity.
func (s *Store) Entity(id string) (model.Entity, bool) {
	for _, e := range s.entities {
		if e.ID == id {
			return e, true
		}
	}
	return model.Entity{}, false
}

func (s *Store) rebuild() {
	s.entities, s.conns = s.diagram.ForLayer(s.layer)
	s.index = layout.NewNeighborIndex(s.entities, s.conns)
	s.placement = layout.PlacementOf(s.entities)
}

// SetActiveLayer switches layers. Any pending dwell is cancelled, focus mode
// is exited and the selection is cleared. It returns false if l is already
// active or invalid.
func (s *Store) SetActiveLayer(l model.Layer) bool {
	if !l.Valid() || l == s.layer {
		return false
	}
	s.dwell.Unhover()
	s.exitFocus(false)
	s.hovered = ""
	s.selected = ""
	s.layer = l
	s.rebuild()
	debug.Log("store: layer -> %s", l)
	return true
}

// HoverStart marks id as hovered and arms the dwell timer when the zoom
// allows it. Unknown ids are ignored.
func (s *Store) HoverStart(id string) (dwell.Token, bool) {
	if _, ok := s.placement[id]; !ok {
		return dwell.Token{}, false
	}
	s.hovered = id
	return s.dwell.Hover(id, s.zoom)
}

// HoverEnd clears the hover and cancels a pending dwell.
func (s *Store) HoverEnd() {
	s.hovered = ""
	s.dwell.Unhover()
}

// Zoom returns the camera zoom.
func (s *Store) Zoom() float64 { return s.zoom }

// Center returns the camera center in plane units.
func (s *Store) Center() r2.Vec { return s.center }

// Screen returns the screen size in plane units at zoom 1.
func (s *Store) Screen() r2.Vec { return s.screen }

// SetZoom clamps and applies a camera zoom. The dwell timer is cancelled and
// re-armed if the hover is still valid. The camera is locked in focus mode,
// where SetZoom does nothing.
func (s *Store) SetZoom(z float64) (dwell.Token, bool) {
	if s.session.Active() {
		return dwell.Token{}, false
	}
	s.zoom = s.clampZoom(z)
	return s.dwell.SetZoom(s.zoom)
}

// PanCamera moves the camera center by delta plane units. It does nothing
// in focus mode.
func (s *Store) PanCamera(delta r2.Vec) {
	if s.session.Active() {
		return
	}
	s.center = r2.Add(s.center, delta)
}

// SetScreen records the visible area size. In focus mode the scatter is
// recomputed for the new viewport.
func (s *Store) SetScreen(size r2.Vec) {
	if size.X <= 0 || size.Y <= 0 || size == s.screen {
		return
	}
	s.screen = size
	debug.LogIf(s.session.Active(), "store: resized to %v in focus, recomputing scatter", size)
	if s.session.Active() {
		s.refocus()
	}
}

// refocus re-enters the current focal entity against the current viewport.
func (s *Store) refocus() {
	p, sess, ok := s.engine.Enter(s.session.FocalID, s.placement, s.index, s.viewport(), s.session)
	if !ok {
		return
	}
	s.placement, s.session = p, sess
	s.center = sess.Center
}

// Fit centers the camera on the whole placement. Like SetZoom it may re-arm
// the dwell timer, and like SetZoom it does nothing in focus mode.
func (s *Store) Fit() (dwell.Token, bool) {
	if s.session.Active() {
		return dwell.Token{}, false
	}
	c, z := layout.FitView(s.placement, s.screen, s.opts.FitPadding, s.opts.MinZoom, s.opts.MaxZoom)
	s.center = c
	return s.SetZoom(z)
}

func (s *Store) clampZoom(z float64) float64 {
	if math.IsNaN(z) || z <= 0 {
		z = 1
	}
	if s.opts.MinZoom > 0 && z < s.opts.MinZoom {
		z = s.opts.MinZoom
	}
	if s.opts.MaxZoom > 0 && z > s.opts.MaxZoom {
		z = s.opts.MaxZoom
	}
	return z
}

func (s *Store) viewport() layout.Viewport {
	return layout.Viewport{
		HalfExtents: r2.Scale(0.5/s.zoom, s.screen),
		Card:        s.opts.Card,
	}
}

// DwellExpired handles a dwell delivery. Stale tokens are ignored.
func (s *Store) DwellExpired(tok dwell.Token) bool {
	id, ok := s.dwell.Fire(tok)
	if !ok {
		return false
	}
	return s.EnterFocus(id)
}

// EnterFocus puts id in focus. It returns false when id is not visible.
func (s *Store) EnterFocus(id string) bool {
	p, sess, ok := s.engine.Enter(id, s.placement, s.index, s.viewport(), s.session)
	if !ok {
		debug.Log("store: focus %q not found", id)
		return false
	}
	s.placement, s.session = p, sess
	s.dwell.Suspend()
	s.selected = id
	s.center = sess.Center
	debug.Log("store: focus %s (%d neighbors)", id, len(sess.Neighbors))
	return true
}

// ExitFocus restores the pre-focus layout and refits the camera. It returns
// false when focus mode was not active.
func (s *Store) ExitFocus() bool {
	return s.exitFocus(true)
}

func (s *Store) exitFocus(refit bool) bool {
	p, sess, ok := s.engine.Exit(s.placement, s.session)
	if !ok {
		return false
	}
	s.placement, s.session = p, sess
	// The pointer is over a different layout now.
	s.hovered = ""
	s.dwell.Unhover()
	s.dwell.Resume()
	if refit {
		s.Fit()
	}
	debug.Log("store: focus exited")
	return true
}

// Cancel is the explicit cancel input: it cancels any pending dwell, then
// exits focus mode if active, otherwise clears the selection.
func (s *Store) Cancel() {
	s.dwell.Cancel()
	if s.ExitFocus() {
		return
	}
	s.selected = ""
}

// Select selects a visible entity. An empty id clears the selection.
func (s *Store) Select(id string) bool {
	if id == "" {
		s.selected = ""
		return true
	}
	if _, ok := s.placement[id]; !ok {
		return false
	}
	s.selected = id
	return true
}

// ReplaceDiagram swaps in a reloaded diagram. Focus mode is exited first;
// hover, selection and pin survive only if their ids still exist. An
// adjusted timeline window is kept, clamped to the new range.
func (s *Store) ReplaceDiagram(d model.Diagram) {
	s.dwell.Unhover()
	s.exitFocus(false)
	s.diagram = d
	s.rebuild()

	if _, ok := s.placement[s.hovered]; !ok {
		s.hovered = ""
	}
	if _, ok := s.placement[s.selected]; !ok {
		s.selected = ""
	}
	if _, ok := d.Event(s.pinned); !ok {
		s.pinned = ""
	}
	s.initTimeline(true)
	debug.Log("store: diagram replaced (%d entities, %d events)", len(s.entities), len(d.Events))
}
