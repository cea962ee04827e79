// Package layout implements the focus-mode scatter layout: peripheral
// placement of non-focal entities, per-neighbor docking angles for the
// enlarged focal card, and exact restoration of the pre-focus layout.
//
// Every function here is pure. Callers own the state (Placement, Session)
// and write the returned values back.
package layout

import (
	"math"
	"sort"

	"github.com/vanderheijden86/archlens/pkg/model"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultScatterFactor stops scattered entities short of the viewport
	// boundary so they stay partially visible.
	DefaultScatterFactor = 0.78

	// DefaultMinExtent is the clamp applied to non-positive sizes and
	// viewport extents.
	DefaultMinExtent = 1e-6
)

// Rect is the rendered geometry of one entity: top-left corner and size.
type Rect struct {
	Pos  r2.Vec
	Size r2.Vec
}

// Center returns Pos + Size/2.
func (r Rect) Center() r2.Vec {
	return r2.Add(r.Pos, r2.Scale(0.5, r.Size))
}

// Placement maps entity ids to their current rendered geometry. It is a copy
// of the entities' geometry; source entities are never modified.
type Placement map[string]Rect

// PlacementOf builds a placement from entity positions and sizes.
func PlacementOf(entities []model.Entity) Placement {
	p := make(Placement, len(entities))
	for _, e := range entities {
		p[e.ID] = Rect{Pos: e.Position, Size: e.Size}
	}
	return p
}

// Clone returns an independent copy.
func (p Placement) Clone() Placement {
	out := make(Placement, len(p))
	for id, r := range p {
		out[id] = r
	}
	return out
}

// IDs returns the placement's ids in sorted order.
func (p Placement) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Params holds the tuning values of the scatter algorithm.
type Params struct {
	// Factor scales the distance to the viewport boundary. Values outside
	// (0, 1) fall back to DefaultScatterFactor.
	Factor float64
	// MinExtent replaces non-positive widths and heights of sizes, viewport
	// half extents and the card, so no NaN or Inf reaches a position.
	MinExtent float64
}

// DefaultParams returns the stock tuning values.
func DefaultParams() Params {
	return Params{Factor: DefaultScatterFactor, MinExtent: DefaultMinExtent}
}

func (p Params) factor() float64 {
	if p.Factor <= 0 || p.Factor >= 1 || math.IsNaN(p.Factor) {
		return DefaultScatterFactor
	}
	return p.Factor
}

func (p Params) clamp(v r2.Vec) r2.Vec {
	lo := p.MinExtent
	if lo <= 0 {
		lo = DefaultMinExtent
	}
	// Written as negations so NaN is clamped too.
	if !(v.X >= lo) {
		v.X = lo
	}
	if !(v.Y >= lo) {
		v.Y = lo
	}
	return v
}

// Angle returns atan2(to.Y-from.Y, to.X-from.X) normalised to (-π, π].
func Angle(from, to r2.Vec) float64 {
	a := math.Atan2(to.Y-from.Y, to.X-from.X)
	if a == -math.Pi {
		return math.Pi
	}
	return a
}

// ComputeNeighborAngles returns, for every id in neighborIDs present in
// placement, the angle from focalCenter to that entity's center.
func ComputeNeighborAngles(placement Placement, neighborIDs []string, focalCenter r2.Vec) map[string]float64 {
	angles := make(map[string]float64, len(neighborIDs))
	for _, id := range neighborIDs {
		r, ok := placement[id]
		if !ok {
			continue
		}
		angles[id] = Angle(focalCenter, r.Center())
	}
	return angles
}

// rayToBox returns the distance along (cos, sin) from the center of a box
// with the given half extents to its border. A zero component leaves that
// axis unconstrained.
func rayToBox(cos, sin float64, half r2.Vec) float64 {
	tx, ty := math.Inf(1), math.Inf(1)
	if c := math.Abs(cos); c > 0 {
		tx = half.X / c
	}
	if s := math.Abs(sin); s > 0 {
		ty = half.Y / s
	}
	d := math.Min(tx, ty)
	if math.IsInf(d, 1) {
		return 0
	}
	return d
}

// ScatterPosition returns the new top-left corner for an entity whose center
// is at center, pushed along the ray from focal towards the boundary of the
// rectangle focal ± half, stopping at Factor of the boundary distance.
func (p Params) ScatterPosition(center, focal, half, size r2.Vec) r2.Vec {
	half = p.clamp(half)
	size = p.clamp(size)

	a := Angle(focal, center)
	cos, sin := math.Cos(a), math.Sin(a)
	dist := rayToBox(cos, sin, half) * p.factor()

	c := r2.Add(focal, r2.Scale(dist, r2.Vec{X: cos, Y: sin}))
	return r2.Sub(c, r2.Scale(0.5, size))
}

// ScatterPosition is Params.ScatterPosition with the default parameters.
func ScatterPosition(center, focal, half, size r2.Vec) r2.Vec {
	return DefaultParams().ScatterPosition(center, focal, half, size)
}

// CardBorderPoint returns where the ray at angle from the card's center
// crosses the card's border, relative to the card's top-left corner.
func CardBorderPoint(angle float64, card r2.Vec) r2.Vec {
	half := r2.Scale(0.5, card)
	cos, sin := math.Cos(angle), math.Sin(angle)
	d := rayToBox(cos, sin, half)
	return r2.Add(half, r2.Scale(d, r2.Vec{X: cos, Y: sin}))
}
