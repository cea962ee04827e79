package model

import (
	"strings"
	"time"
)

// EventKind classifies timeline events.
type EventKind string

const (
	EventDeployment EventKind = "deployment"
	EventIncident   EventKind = "incident"
	EventProposal   EventKind = "proposal"
)

// ParseEventKind resolves an event kind. "bug" is accepted as incident.
func ParseEventKind(s string) (EventKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deployment", "deploy":
		return EventDeployment, true
	case "incident", "bug":
		return EventIncident, true
	case "proposal":
		return EventProposal, true
	}
	return "", false
}

// Severity ranks an event's impact.
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity resolves a severity name; unknown values map to none.
func ParseSeverity(s string) Severity {
	switch sv := Severity(strings.ToLower(strings.TrimSpace(s))); sv {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return sv
	}
	return SeverityNone
}

// TimelineEvent is a time-stamped occurrence that may be pinned to highlight
// the entities and connections it affected.
type TimelineEvent struct {
	ID                    string
	Kind                  EventKind
	Title                 string
	Description           string
	Timestamp             time.Time
	Severity              Severity
	AffectedEntityIDs     []string
	AffectedConnectionIDs []string
}

// AffectsEntity reports whether id is listed as affected.
func (e TimelineEvent) AffectsEntity(id string) bool {
	for _, a := range e.AffectedEntityIDs {
		if a == id {
			return true
		}
	}
	return false
}

// AffectsConnection reports whether id is listed as affected.
func (e TimelineEvent) AffectsConnection(id string) bool {
	for _, a := range e.AffectedConnectionIDs {
		if a == id {
			return true
		}
	}
	return false
}
