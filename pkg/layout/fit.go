package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Bounds returns the bounding box of every rect in the placement. ok is
// false for an empty placement.
func (p Placement) Bounds() (box r2.Box, ok bool) {
	first := true
	for _, r := range p {
		far := r2.Add(r.Pos, r.Size)
		if first {
			box = r2.Box{Min: r.Pos, Max: far}
			first = false
			continue
		}
		box.Min.X = math.Min(box.Min.X, r.Pos.X)
		box.Min.Y = math.Min(box.Min.Y, r.Pos.Y)
		box.Max.X = math.Max(box.Max.X, far.X)
		box.Max.Y = math.Max(box.Max.Y, far.Y)
	}
	return box, !first
}

// FitView returns the camera center and zoom that fit the whole placement
// into a screen of the given size, leaving padding (a fraction of the
// content size) on every side. Zoom is clamped to [minZoom, maxZoom].
func FitView(p Placement, screen r2.Vec, padding, minZoom, maxZoom float64) (r2.Vec, float64) {
	box, ok := p.Bounds()
	if !ok || screen.X <= 0 || screen.Y <= 0 {
		return r2.Vec{}, clampZoom(1, minZoom, maxZoom)
	}
	center := r2.Scale(0.5, r2.Add(box.Min, box.Max))
	size := r2.Sub(box.Max, box.Min)
	w := size.X * (1 + 2*padding)
	h := size.Y * (1 + 2*padding)

	zoom := math.Inf(1)
	if w > 0 {
		zoom = math.Min(zoom, screen.X/w)
	}
	if h > 0 {
		zoom = math.Min(zoom, screen.Y/h)
	}
	if math.IsInf(zoom, 1) {
		zoom = 1
	}
	return center, clampZoom(zoom, minZoom, maxZoom)
}

func clampZoom(z, lo, hi float64) float64 {
	if lo > 0 && z < lo {
		return lo
	}
	if hi > 0 && z > hi {
		return hi
	}
	return z
}
