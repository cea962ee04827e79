package layout

import (
	"sort"

	"github.com/vanderheijden86/archlens/pkg/metrics"

	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport describes the visible area in plane units.
type Viewport struct {
	// HalfExtents is the visible width and height divided by the current
	// zoom, halved.
	HalfExtents r2.Vec
	// Card is the size of the enlarged focal card in plane units.
	Card r2.Vec
}

// FocalSnapshot is the focal entity's geometry from before the session
// started, used to restore it exactly.
type FocalSnapshot struct {
	ID   string
	Rect Rect
}

// Session is the focus-mode state. The zero value is "no focus".
type Session struct {
	FocalID string
	// Originals holds the pre-scatter position of every entity moved during
	// the session. An entry is never overwritten until the session ends.
	Originals map[string]r2.Vec
	Snapshot  *FocalSnapshot
	// Angles maps each neighbor of the focal entity to the angle from the
	// focal center to the neighbor's pre-scatter center.
	Angles    map[string]float64
	Neighbors []string
	// Center is the focal entity's center; the viewport should pan to it.
	Center r2.Vec
}

// Active reports whether a focal entity is set.
func (s Session) Active() bool {
	return s.FocalID != ""
}

// IsNeighbor reports whether id is directly connected to the focal entity.
func (s Session) IsNeighbor(id string) bool {
	i := sort.SearchStrings(s.Neighbors, id)
	return i < len(s.Neighbors) && s.Neighbors[i] == id
}

func (s Session) clone() Session {
	out := s
	out.Originals = make(map[string]r2.Vec, len(s.Originals))
	for id, p := range s.Originals {
		out.Originals[id] = p
	}
	if s.Snapshot != nil {
		snap := *s.Snapshot
		out.Snapshot = &snap
	}
	return out
}

// Engine applies and reverts the scatter layout.
type Engine struct {
	Params Params
}

// NewEngine returns an engine with the given parameters.
func NewEngine(p Params) Engine {
	return Engine{Params: p}
}

// Enter puts focalID in focus. It returns the new placement and session, or
// the inputs unchanged and false when focalID is not in the placement.
//
// If another entity is focal it is first restored to its snapshot. Scatter
// positions are computed from the pre-focus layout, so the result does not
// depend on which entity was focused before.
func (e Engine) Enter(focalID string, placement Placement, index *NeighborIndex, vp Viewport, s Session) (Placement, Session, bool) {
	if _, ok := placement[focalID]; !ok {
		return placement, s, false
	}
	defer metrics.Timer(metrics.Scatter)()

	out := placement.Clone()
	next := s.clone()

	if prev := next.Snapshot; prev != nil && prev.ID != focalID {
		if _, ok := out[prev.ID]; ok {
			out[prev.ID] = prev.Rect
		}
		if _, seen := next.Originals[prev.ID]; !seen {
			next.Originals[prev.ID] = prev.Rect.Pos
		}
		next.Snapshot = nil
	}

	if next.Snapshot == nil {
		r := out[focalID]
		if pos, ok := next.Originals[focalID]; ok {
			r.Pos = pos
		}
		next.Snapshot = &FocalSnapshot{ID: focalID, Rect: r}
	}
	focal := next.Snapshot.Rect
	fc := focal.Center()

	// Pre-focus geometry of everything, used for both scatter and angles.
	original := make(Placement, len(out))
	for id, r := range out {
		if id == focalID {
			original[id] = focal
			continue
		}
		if pos, ok := next.Originals[id]; ok {
			r.Pos = pos
		} else {
			next.Originals[id] = r.Pos
		}
		original[id] = r
	}

	half := e.Params.clamp(vp.HalfExtents)
	for id, r := range original {
		if id == focalID {
			continue
		}
		out[id] = Rect{
			Pos:  e.Params.ScatterPosition(r.Center(), fc, half, r.Size),
			Size: r.Size,
		}
	}

	card := e.Params.clamp(vp.Card)
	out[focalID] = Rect{Pos: r2.Sub(fc, r2.Scale(0.5, card)), Size: card}

	var neighbors []string
	for _, id := range index.Neighbors(focalID) {
		if _, ok := out[id]; ok {
			neighbors = append(neighbors, id)
		}
	}
	next.FocalID = focalID
	next.Neighbors = neighbors
	next.Angles = ComputeNeighborAngles(original, neighbors, fc)
	next.Center = fc

	return out, next, true
}

// Exit restores every recorded original position and the focal snapshot,
// and returns the empty session. Without an active session it returns the
// inputs unchanged and false. Ids no longer in the placement are skipped.
func (e Engine) Exit(placement Placement, s Session) (Placement, Session, bool) {
	if !s.Active() {
		return placement, s, false
	}
	defer metrics.Timer(metrics.Restore)()

	out := placement.Clone()
	for id, pos := range s.Originals {
		if r, ok := out[id]; ok {
			r.Pos = pos
			out[id] = r
		}
	}
	if snap := s.Snapshot; snap != nil {
		if _, ok := out[snap.ID]; ok {
			out[snap.ID] = snap.Rect
		}
	}
	return out, Session{}, true
}

// Dock is a connector docking point on the focal card's border.
type Dock struct {
	NeighborID string
	Angle      float64
	// Point is relative to the card's top-left corner.
	Point   r2.Vec
	LeftPct float64
	TopPct  float64
}

// Docks returns one docking point per neighbor, sorted by neighbor id.
func Docks(s Session, card r2.Vec) []Dock {
	if !s.Active() || len(s.Angles) == 0 {
		return nil
	}
	card = DefaultParams().clamp(card)
	docks := make([]Dock, 0, len(s.Angles))
	for id, a := range s.Angles {
		pt := CardBorderPoint(a, card)
		docks = append(docks, Dock{
			NeighborID: id,
			Angle:      a,
			Point:      pt,
			LeftPct:    pt.X / card.X * 100,
			TopPct:     pt.Y / card.Y * 100,
		})
	}
	sort.Slice(docks, func(i, j int) bool { return docks[i].NeighborID < docks[j].NeighborID })
	return docks
}
