package loader

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vanderheijden86/archlens/pkg/model"

	"gonum.org/v1/gonum/spatial/r2"
)

// The wire structs mirror the on-disk diagram format. YAML and JSON share
// the same field names.

type diagramFile struct {
	Entities         []entityWire     `yaml:"entities" json:"entities"`
	Connections      []connectionWire `yaml:"connections" json:"connections"`
	Drafts           []entityWire     `yaml:"drafts,omitempty" json:"drafts,omitempty"`
	DraftConnections []connectionWire `yaml:"draft_connections,omitempty" json:"draft_connections,omitempty"`
	Events           []eventWire      `yaml:"events,omitempty" json:"events,omitempty"`
}

type eventsFile struct {
	Events []eventWire `yaml:"events" json:"events"`
}

type entityWire struct {
	ID          string        `yaml:"id" json:"id"`
	Kind        string        `yaml:"kind" json:"kind"`
	Label       string        `yaml:"label" json:"label"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Team        string        `yaml:"team,omitempty" json:"team,omitempty"`
	X           float64       `yaml:"x" json:"x"`
	Y           float64       `yaml:"y" json:"y"`
	Width       float64       `yaml:"width,omitempty" json:"width,omitempty"`
	Height      float64       `yaml:"height,omitempty" json:"height,omitempty"`
	Tracing     *tracingWire  `yaml:"tracing,omitempty" json:"tracing,omitempty"`
	Building    *buildingWire `yaml:"building,omitempty" json:"building,omitempty"`
	Platform    *platformWire `yaml:"platform,omitempty" json:"platform,omitempty"`
}

type tracingWire struct {
	TraceID      string  `yaml:"trace_id" json:"trace_id"`
	SpanID       string  `yaml:"span_id" json:"span_id"`
	LatencyMs    float64 `yaml:"latency_ms" json:"latency_ms"`
	Status       string  `yaml:"status" json:"status"`
	ErrorMessage string  `yaml:"error_message,omitempty" json:"error_message,omitempty"`
}

type buildingWire struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	ProposedBy  string `yaml:"proposed_by,omitempty" json:"proposed_by,omitempty"`
	TicketID    string `yaml:"ticket_id,omitempty" json:"ticket_id,omitempty"`
}

type platformWire struct {
	CPU        float64 `yaml:"cpu" json:"cpu"`
	Memory     float64 `yaml:"memory" json:"memory"`
	Health     string  `yaml:"health" json:"health"`
	Version    string  `yaml:"version,omitempty" json:"version,omitempty"`
	LastDeploy string  `yaml:"last_deploy,omitempty" json:"last_deploy,omitempty"`
	Uptime     string  `yaml:"uptime,omitempty" json:"uptime,omitempty"`
	PodsReady  int     `yaml:"pods_ready" json:"pods_ready"`
	PodsTotal  int     `yaml:"pods_total" json:"pods_total"`
}

type connectionWire struct {
	ID           string   `yaml:"id" json:"id"`
	Source       string   `yaml:"source" json:"source"`
	Target       string   `yaml:"target" json:"target"`
	Label        string   `yaml:"label,omitempty" json:"label,omitempty"`
	Protocol     string   `yaml:"protocol,omitempty" json:"protocol,omitempty"`
	Topics       []string `yaml:"topics,omitempty" json:"topics,omitempty"`
	TraceStatus  string   `yaml:"trace_status,omitempty" json:"trace_status,omitempty"`
	LatencyMs    float64  `yaml:"latency_ms,omitempty" json:"latency_ms,omitempty"`
	RequestsPerS float64  `yaml:"requests_per_s,omitempty" json:"requests_per_s,omitempty"`
	ErrorRate    float64  `yaml:"error_rate,omitempty" json:"error_rate,omitempty"`
}

type eventWire struct {
	ID                  string   `yaml:"id" json:"id"`
	Kind                string   `yaml:"kind" json:"kind"`
	Title               string   `yaml:"title" json:"title"`
	Description         string   `yaml:"description,omitempty" json:"description,omitempty"`
	Timestamp           string   `yaml:"timestamp" json:"timestamp"`
	Severity            string   `yaml:"severity,omitempty" json:"severity,omitempty"`
	AffectedEntities    []string `yaml:"affected_entities,omitempty" json:"affected_entities,omitempty"`
	AffectedConnections []string `yaml:"affected_connections,omitempty" json:"affected_connections,omitempty"`
}

// checkGeometry rejects positions and sizes that are NaN or infinite.
func (w entityWire) checkGeometry() error {
	for _, v := range []float64{w.X, w.Y, w.Width, w.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("entity %q: %w: x=%v y=%v width=%v height=%v",
				w.ID, ErrInvalidGeometry, w.X, w.Y, w.Width, w.Height)
		}
	}
	return nil
}

func (w entityWire) toModel(defaultSize r2.Vec, draft bool) model.Entity {
	size := r2.Vec{X: w.Width, Y: w.Height}
	if size.X <= 0 {
		size.X = defaultSize.X
	}
	if size.Y <= 0 {
		size.Y = defaultSize.Y
	}
	label := w.Label
	if label == "" {
		label = w.ID
	}
	e := model.Entity{
		ID:          w.ID,
		Kind:        model.ParseEntityKind(w.Kind),
		Label:       label,
		Description: w.Description,
		Team:        w.Team,
		Position:    r2.Vec{X: w.X, Y: w.Y},
		Size:        size,
		Draft:       draft,
	}
	if t := w.Tracing; t != nil {
		e.Tracing = &model.TracingData{
			TraceID:      t.TraceID,
			SpanID:       t.SpanID,
			LatencyMs:    t.LatencyMs,
			Status:       model.TraceStatus(strings.ToLower(t.Status)),
			ErrorMessage: t.ErrorMessage,
		}
	}
	if b := w.Building; b != nil {
		e.Building = &model.BuildingData{Description: b.Description, ProposedBy: b.ProposedBy, TicketID: b.TicketID}
	}
	if p := w.Platform; p != nil {
		e.Platform = &model.PlatformMetrics{
			CPU:        p.CPU,
			Memory:     p.Memory,
			Health:     model.HealthStatus(strings.ToLower(p.Health)),
			Version:    p.Version,
			LastDeploy: p.LastDeploy,
			Uptime:     p.Uptime,
			PodsReady:  p.PodsReady,
			PodsTotal:  p.PodsTotal,
		}
	}
	return e
}

func (w connectionWire) toModel(draft bool) model.Connection {
	return model.Connection{
		ID:           w.ID,
		Source:       w.Source,
		Target:       w.Target,
		Label:        w.Label,
		Protocol:     w.Protocol,
		Topics:       w.Topics,
		Draft:        draft,
		TraceStatus:  model.TraceStatus(strings.ToLower(w.TraceStatus)),
		LatencyMs:    w.LatencyMs,
		RequestsPerS: w.RequestsPerS,
		ErrorRate:    w.ErrorRate,
	}
}

func (w eventWire) toModel() (model.TimelineEvent, error) {
	if w.ID == "" {
		return model.TimelineEvent{}, fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	kind, ok := model.ParseEventKind(w.Kind)
	if !ok {
		return model.TimelineEvent{}, fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidEvent, w.ID, w.Kind)
	}
	ts, err := time.Parse(time.RFC3339, w.Timestamp)
	if err != nil {
		return model.TimelineEvent{}, fmt.Errorf("%w: %s: timestamp: %v", ErrInvalidEvent, w.ID, err)
	}
	return model.TimelineEvent{
		ID:                    w.ID,
		Kind:                  kind,
		Title:                 w.Title,
		Description:           w.Description,
		Timestamp:             ts.UTC(),
		Severity:              model.ParseSeverity(w.Severity),
		AffectedEntityIDs:     w.AffectedEntities,
		AffectedConnectionIDs: w.AffectedConnections,
	}, nil
}
