package model

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// EntityKind is the architectural role of an entity.
type EntityKind string

const (
	KindService  EntityKind = "service"
	KindDatabase EntityKind = "database"
	KindQueue    EntityKind = "queue"
	KindGateway  EntityKind = "gateway"
	KindCache    EntityKind = "cache"
)

// ParseEntityKind resolves a kind name, falling back to service.
func ParseEntityKind(s string) EntityKind {
	switch k := EntityKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindService, KindDatabase, KindQueue, KindGateway, KindCache:
		return k
	}
	return KindService
}

// Glyph returns a single-cell symbol for the kind.
func (k EntityKind) Glyph() string {
	switch k {
	case KindDatabase:
		return "⛁"
	case KindQueue:
		return "≋"
	case KindGateway:
		return "◈"
	case KindCache:
		return "⚡"
	default:
		return "▣"
	}
}

// HealthStatus is a platform health reading.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
	HealthUnknown  HealthStatus = "unknown"
)

// TraceStatus is the status of a traced span or flow.
type TraceStatus string

const (
	TraceOK       TraceStatus = "ok"
	TraceWarning  TraceStatus = "warning"
	TraceError    TraceStatus = "error"
	TraceInactive TraceStatus = "inactive"
)

// TracingData is the live-layer payload of an entity.
type TracingData struct {
	TraceID      string
	SpanID       string
	LatencyMs    float64
	Status       TraceStatus
	ErrorMessage string
}

// BuildingData is the building-layer payload of an entity.
type BuildingData struct {
	Description string
	ProposedBy  string
	TicketID    string
}

// PlatformMetrics is the platform-layer payload of an entity.
type PlatformMetrics struct {
	CPU        float64
	Memory     float64
	Health     HealthStatus
	Version    string
	LastDeploy string
	Uptime     string
	PodsReady  int
	PodsTotal  int
}

// Entity is a node of the architecture diagram.
//
// Position is the top-left corner in an unbounded plane and Size is always
// positive. The layout engines never modify an Entity; they work on copies
// of its geometry.
type Entity struct {
	ID          string
	Kind        EntityKind
	Label       string
	Description string
	Team        string
	Position    r2.Vec
	Size        r2.Vec
	Draft       bool

	Tracing  *TracingData
	Building *BuildingData
	Platform *PlatformMetrics
}

// Center returns Position + Size/2.
func (e Entity) Center() r2.Vec {
	return r2.Add(e.Position, r2.Scale(0.5, e.Size))
}

// DimmedOn reports whether the entity is visually de-emphasised on a layer.
// On the live layer, entities off the trace path are dimmed unless they are
// storage or messaging infrastructure.
func (e Entity) DimmedOn(layer Layer) bool {
	if layer != LayerLive || e.Tracing != nil {
		return false
	}
	switch e.Kind {
	case KindDatabase, KindCache, KindQueue:
		return false
	}
	return true
}

// HasError reports whether the entity shows a tracing error on the live layer.
func (e Entity) HasError(layer Layer) bool {
	return layer == LayerLive && e.Tracing != nil && e.Tracing.Status == TraceError
}

// IsCritical reports whether the entity is critical on the platform layer.
func (e Entity) IsCritical(layer Layer) bool {
	return layer == LayerPlatform && e.Platform != nil && e.Platform.Health == HealthCritical
}

// Connection is a directed edge between two entities. For neighbor
// computation it is treated as undirected.
type Connection struct {
	ID       string
	Source   string
	Target   string
	Label    string
	Protocol string
	Topics   []string
	Draft    bool

	TraceStatus  TraceStatus
	LatencyMs    float64
	RequestsPerS float64
	ErrorRate    float64
}

// Touches reports whether id is either endpoint of the connection.
func (c Connection) Touches(id string) bool {
	return c.Source == id || c.Target == id
}

// Other returns the endpoint opposite to id.
func (c Connection) Other(id string) string {
	if c.Source == id {
		return c.Target
	}
	return c.Source
}
