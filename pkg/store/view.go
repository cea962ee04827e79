package store

import (
	"github.com/vanderheijden86/archlens/pkg/layout"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/timeline"

	"gonum.org/v1/gonum/spatial/r2"
)

// Opacities of the visual roles.
const (
	OpacityFull      = 1.0
	OpacityNeighbor  = 0.65
	OpacityScattered = 0.06
	OpacityDimmed    = 0.3
	OpacitySnapshot  = 0.2
)

// Role is how an entity takes part in the current view.
type Role int

const (
	RoleNormal Role = iota
	RoleFocal
	RoleNeighbor
	RoleScattered
)

func (r Role) String() string {
	switch r {
	case RoleFocal:
		return "focal"
	case RoleNeighbor:
		return "neighbor"
	case RoleScattered:
		return "scattered"
	default:
		return "normal"
	}
}

// EntityView is one entity as it should be drawn.
type EntityView struct {
	Entity      model.Entity `json:"-"`
	ID          string       `json:"id"`
	Rect        layout.Rect  `json:"rect"`
	Role        Role         `json:"role"`
	Opacity     float64      `json:"opacity"`
	Hovered     bool         `json:"hovered,omitempty"`
	Selected    bool         `json:"selected,omitempty"`
	Highlighted bool         `json:"highlighted,omitempty"`
}

// ConnectionView is one connection as it should be drawn.
type ConnectionView struct {
	Connection  model.Connection `json:"-"`
	ID          string           `json:"id"`
	Opacity     float64          `json:"opacity"`
	Highlighted bool             `json:"highlighted,omitempty"`
}

// TimelineView is the timeline part of a View.
type TimelineView struct {
	Range      timeline.Range         `json:"range"`
	Window     timeline.Window        `json:"window"`
	State      timeline.State         `json:"state"`
	Ticks      []timeline.Tick        `json:"ticks"`
	Events     []timeline.PlacedEvent `json:"-"`
	Page       []model.TimelineEvent  `json:"-"`
	HasEarlier bool                   `json:"has_earlier"`
	HasLater   bool                   `json:"has_later"`
}

// View is the output snapshot handed to the renderer after every change.
type View struct {
	Layer       model.Layer        `json:"layer"`
	Entities    []EntityView       `json:"entities"`
	Connections []ConnectionView   `json:"connections"`
	FocalID     string             `json:"focal_id,omitempty"`
	Angles      map[string]float64 `json:"angles,omitempty"`
	Docks       []layout.Dock      `json:"docks,omitempty"`
	Card        r2.Vec             `json:"card"`
	Center      r2.Vec             `json:"center"`
	Zoom        float64            `json:"zoom"`
	Timeline    *TimelineView      `json:"timeline,omitempty"`
	PinnedID    string             `json:"pinned_id,omitempty"`
}

// Focused reports whether the view is in focus mode.
func (v View) Focused() bool { return v.FocalID != "" }

// EntityView looks up an entity of the view.
func (v View) EntityView(id string) (EntityView, bool) {
	for _, e := range v.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return EntityView{}, false
}

// View assembles the current output snapshot.
func (s *Store) View() View {
	v := View{
		Layer:  s.layer,
		Card:   s.opts.Card,
		Center: s.center,
		Zoom:   s.zoom,
	}
	pinned, hasPin := s.Pinned()

	rects := s.placement
	for _, id := range rects.IDs() {
		e, _ := s.Entity(id)
		ev := EntityView{
			Entity:   e,
			ID:       id,
			Rect:     rects[id],
			Role:     RoleNormal,
			Opacity:  OpacityFull,
			Hovered:  id == s.hovered,
			Selected: id == s.selected,
		}
		switch {
		case s.session.Active():
			switch {
			case id == s.session.FocalID:
				ev.Role = RoleFocal
			case s.session.IsNeighbor(id):
				ev.Role, ev.Opacity = RoleNeighbor, OpacityNeighbor
			default:
				ev.Role, ev.Opacity = RoleScattered, OpacityScattered
			}
		case hasPin:
			if pinned.AffectsEntity(id) {
				ev.Highlighted = true
			} else {
				ev.Opacity = OpacitySnapshot
			}
		case e.DimmedOn(s.layer):
			ev.Opacity = OpacityDimmed
		}
		v.Entities = append(v.Entities, ev)
	}

	for _, c := range s.conns {
		cv := ConnectionView{Connection: c, ID: c.ID, Opacity: OpacityFull}
		switch {
		case s.session.Active():
			if !c.Touches(s.session.FocalID) {
				cv.Opacity = OpacityScattered
			}
		case hasPin:
			if pinned.AffectsConnection(c.ID) {
				cv.Highlighted = true
			} else {
				cv.Opacity = OpacitySnapshot
			}
		default:
			src, _ := s.Entity(c.Source)
			dst, _ := s.Entity(c.Target)
			if src.DimmedOn(s.layer) || dst.DimmedOn(s.layer) {
				cv.Opacity = OpacityDimmed
			}
		}
		v.Connections = append(v.Connections, cv)
	}

	if s.session.Active() {
		v.FocalID = s.session.FocalID
		v.Angles = s.session.Angles
		v.Docks = layout.Docks(s.session, s.opts.Card)
	}
	if hasPin {
		v.PinnedID = pinned.ID
	}
	if s.hasTimeline {
		v.Timeline = &TimelineView{
			Range:      s.tlRange,
			Window:     s.window,
			State:      s.opts.Timeline.StateOf(s.window, s.tlRange),
			Ticks:      timeline.AxisTicks(s.window),
			Events:     timeline.Visible(s.diagram.Events, s.window),
			Page:       s.pager.Page(),
			HasEarlier: s.pager.HasEarlier(),
			HasLater:   s.pager.HasLater(),
		}
	}
	return v
}
