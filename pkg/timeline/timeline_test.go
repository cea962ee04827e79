package timeline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vanderheijden86/archlens/pkg/model"

	"pgregory.net/rapid"
)

var base = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func dayN(n float64) time.Time {
	return base.Add(time.Duration(n * float64(day)))
}

func closeTo(t *testing.T, label string, got, want time.Time, tol time.Duration) {
	t.Helper()
	if d := absDur(got.Sub(want)); d > tol {
		t.Errorf("%s = %v, want %v (off by %v)", label, got, want, d)
	}
}

func events(days ...float64) []model.TimelineEvent {
	out := make([]model.TimelineEvent, len(days))
	for i, d := range days {
		out[i] = model.TimelineEvent{ID: fmt.Sprintf("ev-%d", i), Timestamp: dayN(d)}
	}
	return out
}

func TestZoomThenPanScenario(t *testing.T) {
	r := Range{Min: dayN(0), Max: dayN(10)}
	w := Window{Start: dayN(4), End: dayN(6)}

	w = Zoom(w, 0.5, 2, r)
	closeTo(t, "zoomed start", w.Start, dayN(3), 0)
	closeTo(t, "zoomed end", w.End, dayN(7), 0)

	w = Pan(w, Later, 0.65, r)
	closeTo(t, "panned start", w.Start, dayN(5.6), time.Millisecond)
	closeTo(t, "panned end", w.End, dayN(9.6), time.Millisecond)

	w = Pan(w, Later, 0.65, r)
	closeTo(t, "clamped start", w.Start, dayN(6), 0)
	closeTo(t, "clamped end", w.End, dayN(10), 0)
	if w.Width() != 4*day {
		t.Errorf("pan at the edge changed the width to %v", w.Width())
	}
}

func TestZoomInverse(t *testing.T) {
	r := Range{Min: dayN(0), Max: dayN(30)}
	orig := Window{Start: dayN(10), End: dayN(14)}

	tests := []struct {
		pivot, factor float64
	}{
		{0.3, 1.5},
		{0.5, 0.5},
		{0, 2},
		{1, 0.75},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("pivot=%v/factor=%v", tt.pivot, tt.factor), func(t *testing.T) {
			w := Zoom(orig, tt.pivot, tt.factor, r)
			w = Zoom(w, tt.pivot, 1/tt.factor, r)
			closeTo(t, "start", w.Start, orig.Start, time.Microsecond)
			closeTo(t, "end", w.End, orig.End, time.Microsecond)
		})
	}
}

func TestZoomClampsWidth(t *testing.T) {
	r := Range{Min: dayN(0), Max: dayN(10)}
	w := Window{Start: dayN(4), End: dayN(6)}

	in := Zoom(w, 0.5, 0.1, r)
	if in.Width() != day {
		t.Errorf("zoom in should stop at one day, got %v", in.Width())
	}
	closeTo(t, "pivot kept", in.At(0.5), dayN(5), 0)

	out := Zoom(w, 0.5, 100, r)
	if out != DefaultWindow(r) {
		t.Errorf("zoom out should cover the whole range, got %+v", out)
	}
	if StateOf(out, r) != StateDefault {
		t.Error("full-range window should be in the default state")
	}
}

func TestZoomIgnoresBadFactor(t *testing.T) {
	r := Range{Min: dayN(0), Max: dayN(10)}
	w := Window{Start: dayN(4), End: dayN(6)}
	for _, f := range []float64{0, -1} {
		if got := Zoom(w, 0.5, f, r); got != w {
			t.Errorf("factor %v changed the window to %+v", f, got)
		}
	}
}

func TestZoomAtEdgeShiftsInsteadOfShrinking(t *testing.T) {
	r := Range{Min: dayN(0), Max: dayN(10)}
	w := Window{Start: dayN(0), End: dayN(2)}

	got := Zoom(w, 0, 3, r)
	if got.Start != r.Min || got.Width() != 6*day {
		t.Errorf("expected [day 0, day 6], got %+v", got)
	}
	got = Zoom(Window{Start: dayN(8), End: dayN(10)}, 0.1, 3, r)
	if got.End != r.Max || got.Width() != 6*day {
		t.Errorf("expected [day 4, day 10], got %+v", got)
	}
}

func TestComputeAbsoluteRange(t *testing.T) {
	r, err := ComputeAbsoluteRange(events(3, 0, 10, 5))
	if err != nil {
		t.Fatal(err)
	}
	closeTo(t, "min", r.Min, dayN(-1.2), time.Microsecond)
	closeTo(t, "max", r.Max, dayN(11.2), time.Microsecond)

	_, err = ComputeAbsoluteRange(nil)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestComputeAbsoluteRangeSingleEvent(t *testing.T) {
	r, err := ComputeAbsoluteRange(events(5))
	if err != nil {
		t.Fatal(err)
	}
	if r.Width() <= day {
		t.Errorf("single event range should be wider than a day, got %v", r.Width())
	}
	mid := r.Min.Add(r.Width() / 2)
	closeTo(t, "midpoint", mid, dayN(5), time.Nanosecond)
}

func TestStateOf(t *testing.T) {
	r := Range{Min: dayN(0), Max: dayN(10)}
	tests := []struct {
		name string
		w    Window
		want State
	}{
		{"default", DefaultWindow(r), StateDefault},
		{"within epsilon", Window{Start: r.Min.Add(500 * time.Millisecond), End: r.Max}, StateDefault},
		{"panned", Window{Start: dayN(1), End: dayN(10)}, StateAdjusted},
		{"reset", Reset(r), StateDefault},
	}
	for _, tt := range tests {
		if got := StateOf(tt.w, r); got != tt.want {
			t.Errorf("%s: StateOf = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNavigateTo(t *testing.T) {
	r := Range{Min: dayN(0), Max: dayN(10)}

	w := NavigateTo(dayN(5), r)
	closeTo(t, "start", w.Start, dayN(3.5), 0)
	closeTo(t, "end", w.End, dayN(6.5), 0)

	w = NavigateTo(dayN(0.5), r)
	if w.Start != r.Min || w.Width() != 3*day {
		t.Errorf("navigation near the start should clamp, got %+v", w)
	}

	small := Range{Min: dayN(0), Max: dayN(2)}
	if w := NavigateTo(dayN(1), small); w != DefaultWindow(small) {
		t.Errorf("navigate width should be capped at the range width, got %+v", w)
	}
}

func TestWindowClampInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		span := rapid.Float64Range(1, 400).Draw(t, "span")
		r := Range{Min: dayN(0), Max: dayN(span)}
		w := DefaultWindow(r)

		ops := rapid.IntRange(1, 30).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				w = Zoom(w,
					rapid.Float64Range(-0.5, 1.5).Draw(t, "pivot"),
					rapid.Float64Range(0.01, 10).Draw(t, "factor"), r)
			case 1:
				dir := Direction(rapid.IntRange(0, 1).Draw(t, "dir"))
				w = Pan(w, dir, rapid.Float64Range(0, 3).Draw(t, "ratio"), r)
			case 2:
				w = NavigateTo(dayN(rapid.Float64Range(-50, span+50).Draw(t, "date")), r)
			}
			if w.Start.Before(r.Min) || w.End.After(r.Max) || !w.Start.Before(w.End) {
				t.Fatalf("window %v..%v escapes range %v..%v", w.Start, w.End, r.Min, r.Max)
			}
		}
	})
}

func TestStepFor(t *testing.T) {
	tests := []struct {
		width time.Duration
		want  Step
	}{
		{6 * time.Hour, Step{Duration: time.Hour}},
		{day, Step{Duration: 6 * time.Hour}},
		{2 * day, Step{Duration: day}},
		{15 * day, Step{Duration: 2 * day}},
		{60 * day, Step{Duration: 7 * day}},
		{365 * day, Step{Months: 1}},
		{4 * year, Step{Months: 3}},
		{10 * year, Step{Months: 12}},
		{100 * year, Step{Months: 60}},
	}
	for _, tt := range tests {
		if got := StepFor(tt.width); got != tt.want {
			t.Errorf("StepFor(%v) = %+v, want %+v", tt.width, got, tt.want)
		}
	}
}

func TestAxisTicksLongWindows(t *testing.T) {
	decade := Window{
		Start: time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	ticks := AxisTicks(decade)
	if len(ticks) != 9 {
		t.Fatalf("expected 9 yearly ticks, got %d", len(ticks))
	}
	if ticks[0].Label != "2016" || ticks[8].Label != "2024" {
		t.Errorf("labels %q .. %q", ticks[0].Label, ticks[8].Label)
	}
	if ticks[8].Fraction < 0.89 {
		t.Errorf("last tick at %f leaves the right of the axis bare", ticks[8].Fraction)
	}

	months := AxisTicks(Window{
		Start: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC),
	})
	if len(months) != 18 {
		t.Fatalf("expected 18 monthly ticks, got %d", len(months))
	}
	if months[0].Label != "Feb 2024" || months[17].Label != "Jul 2025" {
		t.Errorf("labels %q .. %q", months[0].Label, months[17].Label)
	}
}

func TestAxisTicksCoverWholeWindow(t *testing.T) {
	start := time.Date(2001, time.March, 7, 5, 30, 0, 0, time.UTC)
	for _, width := range []time.Duration{
		3 * time.Hour, 30 * time.Hour, 5 * day, 20 * day, 80 * day,
		400 * day, 3 * year, 10 * year, 39 * year, 41 * year, 150 * year,
	} {
		w := Window{Start: start, End: start.Add(width)}
		ticks := AxisTicks(w)
		if len(ticks) == 0 || len(ticks) > 64 {
			t.Fatalf("width %v: %d ticks", width, len(ticks))
		}
		step := StepFor(width)
		for i := 1; i < len(ticks); i++ {
			if !ticks[i].Time.Equal(step.next(ticks[i-1].Time)) {
				t.Errorf("width %v: tick %d at %v does not follow %v", width, i, ticks[i].Time, ticks[i-1].Time)
			}
		}
		// The boundary after the last tick must fall in the right margin.
		if f := w.Fraction(step.next(ticks[len(ticks)-1].Time)); f < 1-tickMargin {
			t.Errorf("width %v: boundary at fraction %f has no tick", width, f)
		}
		if f := w.Fraction(ticks[0].Time); f <= tickMargin {
			t.Errorf("width %v: first tick at %f inside the margin", width, f)
		}
	}
}

func TestAxisTicks(t *testing.T) {
	ticks := AxisTicks(Window{Start: dayN(4), End: dayN(6)})
	if len(ticks) != 1 {
		t.Fatalf("expected a single midnight tick, got %+v", ticks)
	}
	if ticks[0].Label != "Jan 6" || ticks[0].Fraction != 0.5 {
		t.Errorf("unexpected tick %+v", ticks[0])
	}

	hourly := AxisTicks(Window{Start: dayN(4), End: dayN(4).Add(6 * time.Hour)})
	if len(hourly) != 5 {
		t.Fatalf("expected 5 hourly ticks, got %d", len(hourly))
	}
	if hourly[0].Label != "Jan 5 01:00" {
		t.Errorf("sub-day ticks should carry a time, got %q", hourly[0].Label)
	}
	for i, tk := range hourly {
		if tk.Fraction <= 0.02 || tk.Fraction >= 0.98 {
			t.Errorf("tick %d at %f is too close to the edge", i, tk.Fraction)
		}
		if i > 0 && tk.Fraction <= hourly[i-1].Fraction {
			t.Error("ticks should be in ascending order")
		}
	}
}

func TestAxisTicksDeterministic(t *testing.T) {
	w := Window{Start: dayN(1.3), End: dayN(40.7)}
	a, b := AxisTicks(w), AxisTicks(w)
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("expected identical non-empty tick lists, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("tick %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
	if AxisTicks(Window{Start: dayN(1), End: dayN(1)}) != nil {
		t.Error("empty window should have no ticks")
	}
}

func TestVisible(t *testing.T) {
	evs := events(9, 1, 5, 3)
	got := Visible(evs, Window{Start: dayN(2), End: dayN(6)})
	if len(got) != 2 {
		t.Fatalf("expected 2 visible events, got %d", len(got))
	}
	if got[0].Event.ID != "ev-3" || got[1].Event.ID != "ev-2" {
		t.Errorf("expected oldest first, got %s then %s", got[0].Event.ID, got[1].Event.ID)
	}
	if got[0].Fraction != 0.25 || got[1].Fraction != 0.75 {
		t.Errorf("unexpected fractions %f, %f", got[0].Fraction, got[1].Fraction)
	}
}

func TestPager(t *testing.T) {
	days := make([]float64, 12)
	for i := range days {
		days[i] = float64(i)
	}
	p := NewPager(events(days...), 5)

	if p.Len() != 12 {
		t.Fatalf("Len = %d", p.Len())
	}
	page := p.Page()
	if len(page) != 5 || page[0].ID != "ev-11" {
		t.Fatalf("first page should start with the newest event, got %+v", page)
	}
	if p.HasLater() || !p.HasEarlier() {
		t.Error("first page flags wrong")
	}

	steps := []struct {
		move   func() bool
		moved  bool
		offset int
	}{
		{p.Earlier, true, 1},
		{p.Earlier, true, 2},
		{p.Later, true, 1},
		{p.Later, true, 0},
		{p.Later, false, 0},
	}
	for i, s := range steps {
		if got := s.move(); got != s.moved {
			t.Errorf("step %d: moved = %v, want %v", i, got, s.moved)
		}
		if p.Offset() != s.offset {
			t.Errorf("step %d: offset = %d, want %d", i, p.Offset(), s.offset)
		}
	}

	for p.Earlier() {
	}
	if p.Offset() != 7 || p.Page()[4].ID != "ev-0" || p.HasEarlier() {
		t.Errorf("oldest page: offset %d, page %+v", p.Offset(), p.Page())
	}

	short := NewPager(events(1, 2), 0)
	if len(short.Page()) != 2 || short.Earlier() {
		t.Error("a pager smaller than one page should not move")
	}
}
