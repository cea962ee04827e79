package timeline

import (
	"sort"

	"github.com/vanderheijden86/archlens/pkg/model"
)

// DefaultPageSize is the number of events shown per page.
const DefaultPageSize = 5

// Pager is a sliding page over events sorted newest first.
type Pager struct {
	events []model.TimelineEvent
	size   int
	offset int
}

// NewPager copies and sorts events newest first. A size below 1 uses
// DefaultPageSize.
func NewPager(events []model.TimelineEvent, size int) *Pager {
	if size < 1 {
		size = DefaultPageSize
	}
	sorted := make([]model.TimelineEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return &Pager{events: sorted, size: size}
}

// Len returns the total number of events.
func (p *Pager) Len() int { return len(p.events) }

// Offset returns the index of the first event on the current page.
func (p *Pager) Offset() int { return p.offset }

// Page returns the events on the current page.
func (p *Pager) Page() []model.TimelineEvent {
	end := p.offset + p.size
	if end > len(p.events) {
		end = len(p.events)
	}
	return p.events[p.offset:end]
}

// Earlier shifts the page by one event towards older events.
func (p *Pager) Earlier() bool { return p.move(1) }

// Later shifts the page by one event towards newer events.
func (p *Pager) Later() bool { return p.move(-1) }

// HasEarlier reports whether older events exist beyond the current page.
func (p *Pager) HasEarlier() bool { return p.offset < p.maxOffset() }

// HasLater reports whether newer events exist before the current page.
func (p *Pager) HasLater() bool { return p.offset > 0 }

func (p *Pager) maxOffset() int {
	if m := len(p.events) - p.size; m > 0 {
		return m
	}
	return 0
}

func (p *Pager) move(delta int) bool {
	next := p.offset + delta
	if next > p.maxOffset() {
		next = p.maxOffset()
	}
	if next < 0 {
		next = 0
	}
	moved := next != p.offset
	p.offset = next
	return moved
}

func sortPlaced(events []PlacedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Event.Timestamp.Before(events[j].Event.Timestamp)
	})
}
