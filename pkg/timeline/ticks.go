package timeline

import (
	"math"
	"time"

	"github.com/vanderheijden86/archlens/pkg/metrics"
	"github.com/vanderheijden86/archlens/pkg/model"
)

// Tick is one axis label at a fractional position of the window.
type Tick struct {
	Label    string
	Fraction float64
	Time     time.Time
}

const tickMargin = 0.02

const year = 365 * day

// Step is a tick spacing. Steps under a month are fixed durations; longer
// steps are whole calendar months so boundaries land on the 1st.
type Step struct {
	Duration time.Duration
	Months   int
}

var tickSteps = []struct {
	below time.Duration
	step  Step
}{
	{12 * time.Hour, Step{Duration: time.Hour}},
	{2 * day, Step{Duration: 6 * time.Hour}},
	{10 * day, Step{Duration: day}},
	{21 * day, Step{Duration: 2 * day}},
	{90 * day, Step{Duration: 7 * day}},
	{2 * year, Step{Months: 1}},
	{6 * year, Step{Months: 3}},
	{40 * year, Step{Months: 12}},
}

// StepFor returns the tick spacing used for a window of the given width.
// Past the table, the step is a whole number of years giving at most about
// twenty ticks.
func StepFor(width time.Duration) Step {
	for _, s := range tickSteps {
		if width < s.below {
			return s.step
		}
	}
	years := int(math.Ceil(float64(width) / float64(20*year)))
	return Step{Months: 12 * years}
}

// first returns the first step boundary at or before t.
func (s Step) first(t time.Time) time.Time {
	t = t.UTC()
	if s.Months == 0 {
		return t.Truncate(s.Duration)
	}
	months := int(t.Month()) - 1 + 12*t.Year()
	months -= months % s.Months
	return time.Date(months/12, time.Month(months%12+1), 1, 0, 0, 0, 0, time.UTC)
}

func (s Step) next(t time.Time) time.Time {
	if s.Months == 0 {
		return t.Add(s.Duration)
	}
	return t.AddDate(0, s.Months, 0)
}

func (s Step) layout() string {
	switch {
	case s.Months >= 12:
		return "2006"
	case s.Months > 0:
		return "Jan 2006"
	case s.Duration < day:
		return "Jan 2 15:04"
	default:
		return "Jan 2"
	}
}

// AxisTicks returns one tick per UTC step boundary strictly inside the
// window, keeping fractions within (0.02, 0.98). Labels carry a time of day
// for sub-day steps and a year for calendar steps. The result depends only
// on w.
func AxisTicks(w Window) []Tick {
	defer metrics.Timer(metrics.AxisTicks)()

	width := w.Width()
	if width <= 0 {
		return nil
	}
	step := StepFor(width)
	layout := step.layout()

	var ticks []Tick
	for t := step.first(w.Start); !t.After(w.End); t = step.next(t) {
		f := w.Fraction(t)
		if f <= tickMargin || f >= 1-tickMargin {
			continue
		}
		ticks = append(ticks, Tick{Label: t.Format(layout), Fraction: f, Time: t})
	}
	return ticks
}

// PlacedEvent is an event with its position inside a window.
type PlacedEvent struct {
	Event    model.TimelineEvent
	Fraction float64
}

// Visible returns the events inside w, oldest first, with their fractions.
func Visible(events []model.TimelineEvent, w Window) []PlacedEvent {
	var out []PlacedEvent
	for _, e := range events {
		if w.Contains(e.Timestamp) {
			out = append(out, PlacedEvent{Event: e, Fraction: w.Fraction(e.Timestamp)})
		}
	}
	sortPlaced(out)
	return out
}
