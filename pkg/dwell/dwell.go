// Package dwell gates hover-to-focus behind a delay during which the hovered
// entity and the zoom level must stay stable.
//
// The timer is an explicit state machine:
//
//	Idle -> Pending(token) -> Fired
//	Idle -> Pending(token) -> Cancelled
//
// It never sleeps. Arming hands out a Token; the caller schedules delivery
// (Cmd does it with tea.Tick) and passes the token back to Fire. Every
// transition out of Pending bumps the generation, so a late delivery of an
// old token is ignored.
package dwell

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	// DefaultDelay is the hover time before focus mode is entered.
	DefaultDelay = 600 * time.Millisecond
	// DefaultThreshold is the minimum zoom at which hovering arms the timer.
	DefaultThreshold = 0.9
)

// Phase is the timer state.
type Phase int

const (
	Idle Phase = iota
	Pending
	Fired
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Fired:
		return "fired"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Token identifies one armed timer.
type Token struct {
	Gen uint64
	ID  string
}

// ExpiredMsg is delivered by Cmd when the delay elapses.
type ExpiredMsg struct {
	Token Token
}

// Timer tracks the hovered entity, the zoom and at most one pending dwell.
type Timer struct {
	Delay     time.Duration
	Threshold float64

	phase     Phase
	gen       uint64
	hovered   string
	zoom      float64
	suspended bool
}

// New returns an idle timer. Non-positive arguments use the defaults.
func New(delay time.Duration, threshold float64) *Timer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Timer{Delay: delay, Threshold: threshold, zoom: 1}
}

// Phase returns the current state.
func (t *Timer) Phase() Phase { return t.phase }

// Hovered returns the entity under the pointer, if any.
func (t *Timer) Hovered() string { return t.hovered }

// Pending returns the token of the pending timer.
func (t *Timer) Pending() (Token, bool) {
	if t.phase != Pending {
		return Token{}, false
	}
	return Token{Gen: t.gen, ID: t.hovered}, true
}

// Hover records id as hovered at the given zoom. Any pending timer is
// cancelled; a new one is armed when zoom is at or above the threshold and
// the timer is not suspended.
func (t *Timer) Hover(id string, zoom float64) (Token, bool) {
	t.cancel()
	t.hovered = id
	t.zoom = zoom
	return t.arm()
}

// Unhover clears the hovered entity and cancels any pending timer.
func (t *Timer) Unhover() {
	t.cancel()
	t.hovered = ""
}

// SetZoom cancels any pending timer. If an entity is still hovered and the
// new zoom is at or above the threshold, a fresh timer is armed.
func (t *Timer) SetZoom(zoom float64) (Token, bool) {
	t.cancel()
	t.zoom = zoom
	return t.arm()
}

// Cancel cancels any pending timer and keeps the hover.
func (t *Timer) Cancel() {
	t.cancel()
}

// Suspend cancels any pending timer and stops arming new ones, e.g. while
// focus mode is active.
func (t *Timer) Suspend() {
	t.cancel()
	t.suspended = true
}

// Resume re-enables arming. It does not arm by itself.
func (t *Timer) Resume() {
	t.suspended = false
}

// Suspended reports whether arming is disabled.
func (t *Timer) Suspended() bool { return t.suspended }

// Fire completes the pending timer if tok is its token and the hover and
// zoom conditions still hold. It returns the entity id to focus.
func (t *Timer) Fire(tok Token) (string, bool) {
	if t.phase != Pending || tok.Gen != t.gen || tok.ID != t.hovered {
		return "", false
	}
	if t.suspended || t.zoom < t.Threshold {
		t.cancel()
		return "", false
	}
	t.phase = Fired
	t.gen++
	return tok.ID, true
}

func (t *Timer) arm() (Token, bool) {
	if t.hovered == "" || t.suspended || t.zoom < t.Threshold {
		return Token{}, false
	}
	t.gen++
	t.phase = Pending
	return Token{Gen: t.gen, ID: t.hovered}, true
}

func (t *Timer) cancel() {
	if t.phase == Pending {
		t.phase = Cancelled
		t.gen++
	}
}

// Cmd returns a command that delivers ExpiredMsg for tok after Delay.
func (t *Timer) Cmd(tok Token) tea.Cmd {
	return tea.Tick(t.Delay, func(time.Time) tea.Msg {
		return ExpiredMsg{Token: tok}
	})
}
