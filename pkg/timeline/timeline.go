// Package timeline maintains a movable, zoomable window over the absolute
// time range of a set of events and derives axis ticks for it.
//
// Every operation is a pure function returning a new Window. For any
// non-empty Range r, each result w satisfies
//
//	r.Min <= w.Start < w.End <= r.Max
package timeline

import (
	"errors"
	"math"
	"time"

	"github.com/vanderheijden86/archlens/pkg/model"
)

// ErrEmptyDataset is returned by ComputeAbsoluteRange for zero events.
var ErrEmptyDataset = errors.New("timeline: no events")

const day = 24 * time.Hour

// Range is the padded absolute time range of the data set.
type Range struct {
	Min time.Time
	Max time.Time
}

// Width returns Max - Min.
func (r Range) Width() time.Duration {
	return r.Max.Sub(r.Min)
}

// Window is the visible part of a Range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Width returns End - Start.
func (w Window) Width() time.Duration {
	return w.End.Sub(w.Start)
}

// Fraction returns the position of t inside the window, 0 at Start and 1
// at End. Instants outside the window give values outside [0, 1].
func (w Window) Fraction(t time.Time) float64 {
	width := w.Width()
	if width <= 0 {
		return 0
	}
	return float64(t.Sub(w.Start)) / float64(width)
}

// At returns the instant at fraction f of the window.
func (w Window) At(f float64) time.Time {
	return w.Start.Add(time.Duration(f * float64(w.Width())))
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Direction is the pan direction.
type Direction int

const (
	Earlier Direction = iota
	Later
)

func (d Direction) String() string {
	if d == Earlier {
		return "earlier"
	}
	return "later"
}

// State is derived by comparing a window with its range; it is never stored.
type State int

const (
	// StateDefault means the window covers the whole range.
	StateDefault State = iota
	// StateAdjusted means the window was zoomed or panned.
	StateAdjusted
)

func (s State) String() string {
	if s == StateDefault {
		return "default"
	}
	return "adjusted"
}

// Params holds the windowing constants.
type Params struct {
	// PaddingRatio widens the raw event span on each side.
	PaddingRatio float64
	// MinWidth is the narrowest window zoom can produce. A raw event span
	// below it is widened symmetrically before padding.
	MinWidth time.Duration
	// NavigateWidth is the window width NavigateTo centers on a date.
	NavigateWidth time.Duration
	// StateEpsilon is the tolerance used by StateOf.
	StateEpsilon time.Duration
}

// DefaultParams returns the stock windowing constants.
func DefaultParams() Params {
	return Params{
		PaddingRatio:  0.12,
		MinWidth:      day,
		NavigateWidth: 3 * day,
		StateEpsilon:  time.Second,
	}
}

// ComputeAbsoluteRange returns the earliest and latest event timestamps,
// each pushed outward by PaddingRatio of the span.
func (p Params) ComputeAbsoluteRange(events []model.TimelineEvent) (Range, error) {
	if len(events) == 0 {
		return Range{}, ErrEmptyDataset
	}
	lo, hi := events[0].Timestamp, events[0].Timestamp
	for _, e := range events[1:] {
		if e.Timestamp.Before(lo) {
			lo = e.Timestamp
		}
		if e.Timestamp.After(hi) {
			hi = e.Timestamp
		}
	}
	if span := hi.Sub(lo); p.MinWidth > 0 && span < p.MinWidth {
		lo = lo.Add(-(p.MinWidth - span) / 2)
		hi = lo.Add(p.MinWidth)
	}
	ratio := p.PaddingRatio
	if ratio < 0 || math.IsNaN(ratio) {
		ratio = 0
	}
	pad := time.Duration(ratio * float64(hi.Sub(lo)))
	return Range{Min: lo.Add(-pad), Max: hi.Add(pad)}, nil
}

// DefaultWindow returns the window covering the whole range.
func DefaultWindow(r Range) Window {
	return Window{Start: r.Min, End: r.Max}
}

// Reset returns the default window.
func Reset(r Range) Window {
	return DefaultWindow(r)
}

// StateOf reports whether w equals the default window within StateEpsilon.
func (p Params) StateOf(w Window, r Range) State {
	if absDur(w.Start.Sub(r.Min)) <= p.StateEpsilon && absDur(w.End.Sub(r.Max)) <= p.StateEpsilon {
		return StateDefault
	}
	return StateAdjusted
}

// Zoom scales the window width by factor while holding the instant at
// pivotFraction of the window in place. The width is clamped to
// [MinWidth, r.Width()] and the window is then shifted, never shrunk, to fit
// inside r. A non-positive or non-finite factor returns w clamped to r.
func (p Params) Zoom(w Window, pivotFraction, factor float64, r Range) Window {
	if !(factor > 0) || math.IsInf(factor, 1) {
		return clampWindow(w, r)
	}
	pivotFraction = clampUnit(pivotFraction)

	cur := float64(w.Width())
	width := cur * factor
	if lo := float64(p.minWidth(r)); width < lo {
		width = lo
	}
	if hi := float64(r.Width()); width > hi {
		width = hi
	}

	pivot := w.Start.Add(time.Duration(pivotFraction * cur))
	start := pivot.Add(-time.Duration(pivotFraction * width))
	return clampWindow(Window{Start: start, End: start.Add(time.Duration(width))}, r)
}

// Pan shifts the window by ratio of its width towards dir. The width is
// kept; at the edges both bounds shift together.
func (p Params) Pan(w Window, dir Direction, ratio float64, r Range) Window {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return clampWindow(w, r)
	}
	shift := time.Duration(math.Abs(ratio) * float64(w.Width()))
	if dir == Earlier {
		shift = -shift
	}
	return clampWindow(Window{Start: w.Start.Add(shift), End: w.End.Add(shift)}, r)
}

// NavigateTo returns a NavigateWidth window centered on date, capped at the
// range width and clamped to the range.
func (p Params) NavigateTo(date time.Time, r Range) Window {
	width := p.NavigateWidth
	if width <= 0 {
		width = 3 * day
	}
	if rw := r.Width(); width > rw {
		width = rw
	}
	start := date.Add(-width / 2)
	return clampWindow(Window{Start: start, End: start.Add(width)}, r)
}

func (p Params) minWidth(r Range) time.Duration {
	lo := p.MinWidth
	if lo <= 0 {
		lo = time.Nanosecond
	}
	if rw := r.Width(); lo > rw {
		lo = rw
	}
	return lo
}

// clampWindow shifts w to lie inside r, keeping its width when it fits.
func clampWindow(w Window, r Range) Window {
	width := w.Width()
	if rw := r.Width(); width > rw || width <= 0 {
		width = rw
	}
	start := w.Start
	if start.Before(r.Min) {
		start = r.Min
	}
	end := start.Add(width)
	if end.After(r.Max) {
		end = r.Max
		start = end.Add(-width)
	}
	return Window{Start: start, End: end}
}

func clampUnit(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0.5
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func absDur(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Package-level shorthands using DefaultParams.

// ComputeAbsoluteRange is DefaultParams().ComputeAbsoluteRange.
func ComputeAbsoluteRange(events []model.TimelineEvent) (Range, error) {
	return DefaultParams().ComputeAbsoluteRange(events)
}

// Zoom is DefaultParams().Zoom.
func Zoom(w Window, pivotFraction, factor float64, r Range) Window {
	return DefaultParams().Zoom(w, pivotFraction, factor, r)
}

// Pan is DefaultParams().Pan.
func Pan(w Window, dir Direction, ratio float64, r Range) Window {
	return DefaultParams().Pan(w, dir, ratio, r)
}

// NavigateTo is DefaultParams().NavigateTo.
func NavigateTo(date time.Time, r Range) Window {
	return DefaultParams().NavigateTo(date, r)
}

// StateOf is DefaultParams().StateOf.
func StateOf(w Window, r Range) State {
	return DefaultParams().StateOf(w, r)
}
