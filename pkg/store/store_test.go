package store

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vanderheijden86/archlens/pkg/config"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/timeline"

	"gonum.org/v1/gonum/spatial/r2"
)

var t0 = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func testDiagram() model.Diagram {
	size := r2.Vec{X: 220, Y: 160}
	traced := &model.TracingData{Status: model.TraceOK}
	return model.Diagram{
		Entities: []model.Entity{
			{ID: "gateway", Kind: model.KindGateway, Position: r2.Vec{X: 0, Y: 0}, Size: size, Tracing: traced},
			{ID: "orders", Kind: model.KindService, Position: r2.Vec{X: 400, Y: 0}, Size: size, Tracing: traced},
			{ID: "billing", Kind: model.KindService, Position: r2.Vec{X: 800, Y: 0}, Size: size},
			{ID: "db", Kind: model.KindDatabase, Position: r2.Vec{X: 400, Y: 400}, Size: size},
		},
		Connections: []model.Connection{
			{ID: "c1", Source: "gateway", Target: "orders"},
			{ID: "c2", Source: "orders", Target: "db"},
			{ID: "c3", Source: "orders", Target: "billing"},
		},
		Drafts: []model.Entity{
			{ID: "fraud", Kind: model.KindService, Position: r2.Vec{X: 800, Y: 400}, Size: size, Draft: true},
		},
		DraftConnections: []model.Connection{
			{ID: "d1", Source: "billing", Target: "fraud", Draft: true},
		},
		Events: []model.TimelineEvent{
			{ID: "deploy-1", Kind: model.EventDeployment, Timestamp: t0, AffectedEntityIDs: []string{"orders"}},
			{ID: "inc-1", Kind: model.EventIncident, Timestamp: t0.Add(48 * time.Hour), AffectedEntityIDs: []string{"db"}, AffectedConnectionIDs: []string{"c2"}},
			{ID: "prop-1", Kind: model.EventProposal, Timestamp: t0.Add(96 * time.Hour)},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(testDiagram(), DefaultOptions())
	s.SetZoom(1)
	return s
}

func TestHoverDwellEntersFocus(t *testing.T) {
	s := newTestStore(t)

	tok, armed := s.HoverStart("orders")
	if !armed {
		t.Fatal("hover at zoom 1 should arm the dwell timer")
	}
	if s.Focused() {
		t.Fatal("focus must wait for the dwell to expire")
	}
	if !s.DwellExpired(tok) {
		t.Fatal("expected focus on dwell expiry")
	}

	v := s.View()
	if v.FocalID != "orders" || s.Selected() != "orders" {
		t.Fatalf("focal = %q, selected = %q", v.FocalID, s.Selected())
	}
	if len(v.Docks) != 3 {
		t.Errorf("expected 3 docks, got %d", len(v.Docks))
	}
	want := map[string]Role{"orders": RoleFocal, "gateway": RoleNeighbor, "db": RoleNeighbor, "billing": RoleNeighbor}
	for _, ev := range v.Entities {
		if ev.Role != want[ev.ID] {
			t.Errorf("%s role = %v, want %v", ev.ID, ev.Role, want[ev.ID])
		}
		if ev.Role == RoleNeighbor && ev.Opacity != OpacityNeighbor {
			t.Errorf("%s opacity = %v", ev.ID, ev.Opacity)
		}
	}
	if s.Center() != s.Session().Center {
		t.Error("camera should pan to the focal center")
	}

	// Hovering while focused does not arm another timer.
	if _, ok := s.HoverStart("db"); ok {
		t.Error("dwell should be suspended during focus mode")
	}
}

func TestHoverEndCancelsDwell(t *testing.T) {
	s := newTestStore(t)
	tok, _ := s.HoverStart("orders")
	s.HoverEnd()

	if s.DwellExpired(tok) {
		t.Fatal("focus entered after the hover ended")
	}
	if s.Focused() {
		t.Error("store should not be focused")
	}
}

func TestZoomOutCancelsDwell(t *testing.T) {
	s := newTestStore(t)
	tok, _ := s.HoverStart("orders")
	if _, ok := s.SetZoom(0.5); ok {
		t.Error("zoom below threshold should not re-arm")
	}
	if s.DwellExpired(tok) {
		t.Fatal("stale dwell fired after zoom dropped")
	}
}

func TestLayerSwitchCancelsDwellAndFocus(t *testing.T) {
	s := newTestStore(t)
	before := s.Placement()

	tok, _ := s.HoverStart("orders")
	if !s.SetActiveLayer(model.LayerBuilding) {
		t.Fatal("layer switch failed")
	}
	if s.DwellExpired(tok) {
		t.Fatal("dwell fired after layer switch")
	}

	s.EnterFocus("billing")
	s.Select("billing")
	if !s.SetActiveLayer(model.LayerLive) {
		t.Fatal("layer switch failed")
	}
	if s.Focused() || s.Selected() != "" {
		t.Error("layer switch should exit focus and clear selection")
	}
	after := s.Placement()
	for id, r := range before {
		if after[id] != r {
			t.Errorf("%s not restored after layer switch", id)
		}
	}
	if s.SetActiveLayer(model.LayerLive) {
		t.Error("switching to the active layer should report false")
	}
}

func TestBuildingLayerShowsDrafts(t *testing.T) {
	s := newTestStore(t)
	if _, ok := s.Entity("fraud"); ok {
		t.Fatal("drafts must not appear on the live layer")
	}
	s.SetActiveLayer(model.LayerBuilding)
	if _, ok := s.Entity("fraud"); !ok {
		t.Fatal("building layer should include drafts")
	}
	if !s.EnterFocus("fraud") {
		t.Fatal("drafts can be focused")
	}
	if !s.Session().IsNeighbor("billing") {
		t.Error("draft connection should make billing a neighbor")
	}
}

func TestCancel(t *testing.T) {
	s := newTestStore(t)
	before := s.Placement()

	s.EnterFocus("db")
	s.Cancel()
	if s.Focused() {
		t.Fatal("Cancel should exit focus")
	}
	if s.Selected() != "db" {
		t.Errorf("first Cancel only exits focus, selection = %q", s.Selected())
	}
	for id, r := range s.Placement() {
		if before[id] != r {
			t.Errorf("%s not restored", id)
		}
	}

	s.Cancel()
	if s.Selected() != "" {
		t.Error("second Cancel should clear the selection")
	}
}

func TestCameraLockedInFocus(t *testing.T) {
	s := newTestStore(t)
	before := s.Placement()
	s.EnterFocus("orders")

	zoom, center := s.Zoom(), s.Center()
	focused := s.Placement()
	if _, ok := s.SetZoom(zoom * 2); ok {
		t.Error("zoom in focus mode should not arm the dwell timer")
	}
	s.PanCamera(r2.Vec{X: 500, Y: 500})
	s.Fit()
	if s.Zoom() != zoom || s.Center() != center {
		t.Errorf("camera moved in focus mode: zoom %v center %v", s.Zoom(), s.Center())
	}
	for id, r := range s.Placement() {
		if focused[id] != r {
			t.Errorf("%s moved without a viewport change", id)
		}
	}

	inside := func(screen r2.Vec) {
		t.Helper()
		half := r2.Scale(0.5/s.Zoom(), screen)
		fc := s.Session().Center
		for _, id := range s.Session().Neighbors {
			d := r2.Sub(s.Placement()[id].Center(), fc)
			if math.Abs(d.X) >= half.X || math.Abs(d.Y) >= half.Y {
				t.Errorf("%s offset %v outside half extents %v", id, d, half)
			}
		}
	}
	inside(s.Screen())

	// A resize recomputes the scatter for the smaller viewport.
	small := r2.Vec{X: 640, Y: 400}
	s.SetScreen(small)
	if !s.Focused() {
		t.Fatal("resize should keep focus")
	}
	inside(small)

	s.ExitFocus()
	for id, r := range s.Placement() {
		if before[id] != r {
			t.Errorf("%s not restored after resize in focus: %v, want %v", id, r, before[id])
		}
	}
}

func TestEnterFocusUnknown(t *testing.T) {
	s := newTestStore(t)
	if s.EnterFocus("ghost") || s.Focused() {
		t.Error("unknown entity must not enter focus")
	}
	if s.ExitFocus() {
		t.Error("ExitFocus without focus should report false")
	}
}

func TestDimmingOnLiveLayer(t *testing.T) {
	s := newTestStore(t)
	v := s.View()

	tests := map[string]float64{
		"gateway": OpacityFull,
		"orders":  OpacityFull,
		"billing": OpacityDimmed, // no tracing data
		"db":      OpacityFull,   // storage is never dimmed
	}
	for id, want := range tests {
		ev, ok := v.EntityView(id)
		if !ok {
			t.Fatalf("%s missing from view", id)
		}
		if ev.Opacity != want {
			t.Errorf("%s opacity = %v, want %v", id, ev.Opacity, want)
		}
	}

	s.SetActiveLayer(model.LayerPlatform)
	for _, ev := range s.View().Entities {
		if ev.Opacity != OpacityFull {
			t.Errorf("%s should not be dimmed on the platform layer", ev.ID)
		}
	}
}

func TestPinSnapshot(t *testing.T) {
	s := newTestStore(t)
	if s.PinSnapshot("nope") {
		t.Fatal("unknown event pinned")
	}
	if !s.PinSnapshot("inc-1") {
		t.Fatal("pin failed")
	}

	v := s.View()
	if v.PinnedID != "inc-1" {
		t.Errorf("PinnedID = %q", v.PinnedID)
	}
	db, _ := v.EntityView("db")
	orders, _ := v.EntityView("orders")
	if !db.Highlighted || db.Opacity != OpacityFull {
		t.Errorf("affected entity should be highlighted: %+v", db)
	}
	if orders.Highlighted || orders.Opacity != OpacitySnapshot {
		t.Errorf("unaffected entity should be snapshot-dimmed: %+v", orders)
	}
	for _, c := range v.Connections {
		if (c.ID == "c2") != c.Highlighted {
			t.Errorf("connection %s highlighted = %v", c.ID, c.Highlighted)
		}
	}

	if !s.UnpinSnapshot() || s.UnpinSnapshot() {
		t.Error("unpin should succeed once")
	}
}

func TestTimelineOperations(t *testing.T) {
	s := newTestStore(t)

	st, err := s.TimelineState()
	if err != nil || st != timeline.StateDefault {
		t.Fatalf("expected default state, got %v %v", st, err)
	}
	if err := s.ZoomTimelineIn(0.5); err != nil {
		t.Fatal(err)
	}
	if st, _ := s.TimelineState(); st != timeline.StateAdjusted {
		t.Error("zoom should adjust the window")
	}
	if err := s.PanTimeline(timeline.Later); err != nil {
		t.Fatal(err)
	}
	if err := s.ResetTimeline(); err != nil {
		t.Fatal(err)
	}
	if st, _ := s.TimelineState(); st != timeline.StateDefault {
		t.Error("reset should restore the default state")
	}

	if err := s.NavigateTo(t0.Add(48 * time.Hour)); err != nil {
		t.Fatal(err)
	}
	w, _ := s.Window()
	if w.Width() != 72*time.Hour {
		t.Errorf("navigate window width = %v", w.Width())
	}
	ticks, err := s.Ticks()
	if err != nil || len(ticks) == 0 {
		t.Errorf("expected ticks, got %v %v", ticks, err)
	}

	page, _ := s.EventPage()
	if len(page) != 3 || page[0].ID != "prop-1" {
		t.Errorf("expected newest event first, got %+v", page)
	}
	if s.EarlierEvents() {
		t.Error("three events fit on one page")
	}
}

func TestTimelineUnavailableWithoutEvents(t *testing.T) {
	d := testDiagram()
	d.Events = nil
	s := New(d, DefaultOptions())

	if s.HasTimeline() {
		t.Fatal("timeline should be unavailable")
	}
	checks := []error{
		s.ZoomTimeline(0.5, 2),
		s.PanTimeline(timeline.Earlier),
		s.ResetTimeline(),
		s.NavigateTo(t0),
	}
	_, tickErr := s.Ticks()
	checks = append(checks, tickErr)
	for i, err := range checks {
		if !errors.Is(err, ErrTimelineUnavailable) {
			t.Errorf("check %d: expected ErrTimelineUnavailable, got %v", i, err)
		}
	}
	if s.View().Timeline != nil {
		t.Error("view should omit the timeline")
	}

	// The rest of the store keeps working.
	s.SetZoom(1)
	if !s.EnterFocus("orders") {
		t.Error("focus should work without events")
	}
}

func TestReplaceDiagram(t *testing.T) {
	s := newTestStore(t)
	s.EnterFocus("orders")
	s.PinSnapshot("deploy-1")
	if err := s.NavigateTo(t0); err != nil {
		t.Fatal(err)
	}
	oldWindow, _ := s.Window()

	d := testDiagram()
	d.Entities = d.Entities[:3] // drop db
	d.Events = append(d.Events[1:3:3], model.TimelineEvent{ID: "deploy-2", Kind: model.EventDeployment, Timestamp: t0.Add(240 * time.Hour)})
	s.ReplaceDiagram(d)

	if s.Focused() {
		t.Error("reload should exit focus")
	}
	if _, ok := s.Pinned(); ok {
		t.Error("pin of a removed event should be cleared")
	}
	if _, ok := s.Placement()["db"]; ok {
		t.Error("removed entity still placed")
	}
	if st, _ := s.TimelineState(); st != timeline.StateAdjusted {
		t.Error("adjusted window should survive a reload")
	}
	w, _ := s.Window()
	r, _ := s.TimelineRange()
	if w.Start.Before(r.Min) || w.End.After(r.Max) {
		t.Errorf("window %v not clamped into new range %v", w, r)
	}
	if w.Width() != oldWindow.Width() {
		t.Errorf("window width changed from %v to %v", oldWindow.Width(), w.Width())
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Focus.DwellMs = 100
	cfg.UI.DefaultLayer = "platform"
	cfg.Timeline.NavigateDays = 1

	opts := OptionsFromConfig(cfg)
	if opts.DwellDelay != 100*time.Millisecond || opts.Layer != model.LayerPlatform {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.Timeline.NavigateWidth != 24*time.Hour {
		t.Errorf("navigate width = %v", opts.Timeline.NavigateWidth)
	}
	if opts.Card != (r2.Vec{X: 300, Y: 280}) {
		t.Errorf("card = %v", opts.Card)
	}

	s := New(testDiagram(), opts)
	if s.Layer() != model.LayerPlatform || s.Dwell().Delay != 100*time.Millisecond {
		t.Error("options not applied to the store")
	}
}
