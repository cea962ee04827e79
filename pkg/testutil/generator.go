// Package testutil provides diagram fixture generators for tests and
// benchmarks. All generators produce deterministic output for reproducible
// tests.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vanderheijden86/archlens/pkg/model"

	"gonum.org/v1/gonum/spatial/r2"
)

// GraphFixture is an abstract topology: node names plus [from, to] edges
// between node indices.
type GraphFixture struct {
	Description string
	Nodes       []string
	Edges       [][2]int
}

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed     int64     // Random seed for determinism (0 = use current time)
	IDPrefix string    // Prefix for entity ids (default: "svc")
	BaseTime time.Time // First event time (default: fixed time)
	NodeSize r2.Vec    // Entity size (default 220x160)
	Spacing  float64   // Gap between grid cells (default 120)
	Traced   float64   // Fraction of entities on the live trace (0..1)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42, // Deterministic
		IDPrefix: "svc",
		BaseTime: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		NodeSize: r2.Vec{X: 220, Y: 160},
		Spacing:  120,
		Traced:   0.5,
	}
}

// Generator creates fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = def.BaseTime
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = def.IDPrefix
	}
	if cfg.NodeSize.X <= 0 || cfg.NodeSize.Y <= 0 {
		cfg.NodeSize = def.NodeSize
	}
	if cfg.Spacing <= 0 {
		cfg.Spacing = def.Spacing
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Chain creates n0 -> n1 -> ... -> n{size-1}.
func (g *Generator) Chain(size int) GraphFixture {
	nodes := g.names(size)
	edges := make([][2]int, 0, max(size-1, 0))
	for i := 1; i < size; i++ {
		edges = append(edges, [2]int{i - 1, i})
	}
	return GraphFixture{
		Description: fmt.Sprintf("chain of %d entities", size),
		Nodes:       nodes,
		Edges:       edges,
	}
}

// Star creates a hub connected to every spoke. The hub is node 0.
func (g *Generator) Star(spokes int) GraphFixture {
	nodes := append([]string{"hub"}, g.names(spokes)...)
	edges := make([][2]int, spokes)
	for i := 1; i <= spokes; i++ {
		edges[i-1] = [2]int{0, i}
	}
	return GraphFixture{
		Description: fmt.Sprintf("hub with %d spokes", spokes),
		Nodes:       nodes,
		Edges:       edges,
	}
}

// Random creates size nodes with each forward pair connected with
// probability density.
func (g *Generator) Random(size int, density float64) GraphFixture {
	nodes := g.names(size)
	var edges [][2]int
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if g.rng.Float64() < density {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("random graph of %d entities (density %.2f)", size, density),
		Nodes:       nodes,
		Edges:       edges,
	}
}

func (g *Generator) names(n int) []string {
	out := make([]string, max(n, 0))
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", g.cfg.IDPrefix, i+1)
	}
	return out
}

var kinds = []model.EntityKind{
	model.KindService, model.KindService, model.KindService,
	model.KindDatabase, model.KindQueue, model.KindCache, model.KindGateway,
}

// ToDiagram lays the fixture out on a square grid and fills in layer data.
func (g *Generator) ToDiagram(gf GraphFixture) model.Diagram {
	cols := int(math.Ceil(math.Sqrt(float64(len(gf.Nodes)))))
	step := r2.Add(g.cfg.NodeSize, r2.Vec{X: g.cfg.Spacing, Y: g.cfg.Spacing})

	var d model.Diagram
	for i, id := range gf.Nodes {
		e := model.Entity{
			ID:       id,
			Kind:     kinds[g.rng.Intn(len(kinds))],
			Label:    id,
			Position: r2.Vec{X: float64(i%cols) * step.X, Y: float64(i/cols) * step.Y},
			Size:     g.cfg.NodeSize,
			Platform: &model.PlatformMetrics{
				CPU:       math.Round(g.rng.Float64() * 100),
				Memory:    math.Round(g.rng.Float64() * 100),
				Health:    model.HealthHealthy,
				PodsReady: 2,
				PodsTotal: 2,
			},
		}
		if g.rng.Float64() < g.cfg.Traced {
			e.Tracing = &model.TracingData{
				TraceID:   "trace-1",
				SpanID:    fmt.Sprintf("span-%d", i),
				LatencyMs: math.Round(g.rng.Float64() * 500),
				Status:    model.TraceOK,
			}
		}
		d.Entities = append(d.Entities, e)
	}
	for i, edge := range gf.Edges {
		d.Connections = append(d.Connections, model.Connection{
			ID:     fmt.Sprintf("c%d", i+1),
			Source: gf.Nodes[edge[0]],
			Target: gf.Nodes[edge[1]],
		})
	}
	return d
}

var eventKinds = []model.EventKind{model.EventDeployment, model.EventIncident, model.EventProposal}

// Events returns n events a day apart, starting at BaseTime, each
// affecting one random entity of d.
func (g *Generator) Events(d model.Diagram, n int) []model.TimelineEvent {
	out := make([]model.TimelineEvent, 0, n)
	for i := 0; i < n; i++ {
		ev := model.TimelineEvent{
			ID:        fmt.Sprintf("ev-%d", i+1),
			Kind:      eventKinds[g.rng.Intn(len(eventKinds))],
			Title:     fmt.Sprintf("Event %d", i+1),
			Timestamp: g.cfg.BaseTime.Add(time.Duration(i) * 24 * time.Hour),
		}
		if ev.Kind == model.EventIncident {
			ev.Severity = model.SeverityMedium
		}
		if len(d.Entities) > 0 {
			ev.AffectedEntityIDs = []string{d.Entities[g.rng.Intn(len(d.Entities))].ID}
		}
		out = append(out, ev)
	}
	return out
}

// QuickStar returns a laid out star diagram without events.
func QuickStar(spokes int) model.Diagram {
	g := NewDefault()
	return g.ToDiagram(g.Star(spokes))
}

// QuickRandom returns a laid out random diagram with one event per ten
// entities.
func QuickRandom(size int, density float64) model.Diagram {
	g := NewDefault()
	d := g.ToDiagram(g.Random(size, density))
	d.Events = g.Events(d, max(size/10, 1))
	return d
}
