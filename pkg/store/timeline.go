package store

import (
	"time"

	"github.com/vanderheijden86/archlens/pkg/debug"
	"github.com/vanderheijden86/archlens/pkg/model"
	"github.com/vanderheijden86/archlens/pkg/timeline"
)

// initTimeline derives the range from the diagram's events. With keep set
// and the window adjusted, the old window is clamped into the new range
// instead of being reset.
func (s *Store) initTimeline(keep bool) {
	r, err := s.opts.Timeline.ComputeAbsoluteRange(s.diagram.Events)
	if err != nil {
		debug.Log("store: %v", err)
		s.hasTimeline = false
		s.tlRange, s.window, s.pager = timeline.Range{}, timeline.Window{}, nil
		return
	}
	adjusted := keep && s.hasTimeline && s.opts.Timeline.StateOf(s.window, s.tlRange) == timeline.StateAdjusted
	old := s.window
	s.hasTimeline = true
	s.tlRange = r
	if adjusted {
		s.window = s.opts.Timeline.Zoom(old, 0.5, 1, r)
	} else {
		s.window = timeline.DefaultWindow(r)
	}
	s.pager = timeline.NewPager(s.diagram.Events, s.opts.PageSize)
}

// HasTimeline reports whether the diagram has events.
func (s *Store) HasTimeline() bool { return s.hasTimeline }

// TimelineRange returns the padded absolute range.
func (s *Store) TimelineRange() (timeline.Range, error) {
	if !s.hasTimeline {
		return timeline.Range{}, ErrTimelineUnavailable
	}
	return s.tlRange, nil
}

// Window returns the visible timeline window.
func (s *Store) Window() (timeline.Window, error) {
	if !s.hasTimeline {
		return timeline.Window{}, ErrTimelineUnavailable
	}
	return s.window, nil
}

// TimelineState reports whether the window is the default one.
func (s *Store) TimelineState() (timeline.State, error) {
	if !s.hasTimeline {
		return timeline.StateDefault, ErrTimelineUnavailable
	}
	return s.opts.Timeline.StateOf(s.window, s.tlRange), nil
}

// Ticks returns the axis ticks of the current window.
func (s *Store) Ticks() ([]timeline.Tick, error) {
	if !s.hasTimeline {
		return nil, ErrTimelineUnavailable
	}
	return timeline.AxisTicks(s.window), nil
}

// ZoomTimeline zooms the window by factor around pivotFraction.
func (s *Store) ZoomTimeline(pivotFraction, factor float64) error {
	if !s.hasTimeline {
		return ErrTimelineUnavailable
	}
	s.window = s.opts.Timeline.Zoom(s.window, pivotFraction, factor, s.tlRange)
	return nil
}

// ZoomTimelineIn narrows the window by the configured step.
func (s *Store) ZoomTimelineIn(pivotFraction float64) error {
	return s.ZoomTimeline(pivotFraction, 1/s.zoomStep())
}

// ZoomTimelineOut widens the window by the configured step.
func (s *Store) ZoomTimelineOut(pivotFraction float64) error {
	return s.ZoomTimeline(pivotFraction, s.zoomStep())
}

func (s *Store) zoomStep() float64 {
	if s.opts.ZoomStep > 1 {
		return s.opts.ZoomStep
	}
	return 1.5
}

// PanTimeline shifts the window by the configured pan ratio.
func (s *Store) PanTimeline(dir timeline.Direction) error {
	if !s.hasTimeline {
		return ErrTimelineUnavailable
	}
	ratio := s.opts.PanRatio
	if ratio <= 0 {
		ratio = 0.25
	}
	s.window = s.opts.Timeline.Pan(s.window, dir, ratio, s.tlRange)
	return nil
}

// ResetTimeline restores the default window.
func (s *Store) ResetTimeline() error {
	if !s.hasTimeline {
		return ErrTimelineUnavailable
	}
	s.window = timeline.Reset(s.tlRange)
	return nil
}

// NavigateTo centers the window on date.
func (s *Store) NavigateTo(date time.Time) error {
	if !s.hasTimeline {
		return ErrTimelineUnavailable
	}
	s.window = s.opts.Timeline.NavigateTo(date, s.tlRange)
	return nil
}

// EventPage returns the events on the current page, newest first.
func (s *Store) EventPage() ([]model.TimelineEvent, error) {
	if !s.hasTimeline {
		return nil, ErrTimelineUnavailable
	}
	return s.pager.Page(), nil
}

// EarlierEvents slides the event list one event towards older events.
func (s *Store) EarlierEvents() bool {
	return s.hasTimeline && s.pager.Earlier()
}

// LaterEvents slides the event list one event towards newer events.
func (s *Store) LaterEvents() bool {
	return s.hasTimeline && s.pager.Later()
}

// PinSnapshot highlights the entities and connections affected by an event.
func (s *Store) PinSnapshot(eventID string) bool {
	if _, ok := s.diagram.Event(eventID); !ok {
		return false
	}
	s.pinned = eventID
	debug.Log("store: pinned event %s", eventID)
	return true
}

// UnpinSnapshot clears the pinned event.
func (s *Store) UnpinSnapshot() bool {
	if s.pinned == "" {
		return false
	}
	s.pinned = ""
	return true
}

// Pinned returns the pinned event.
func (s *Store) Pinned() (model.TimelineEvent, bool) {
	if s.pinned == "" {
		return model.TimelineEvent{}, false
	}
	return s.diagram.Event(s.pinned)
}
