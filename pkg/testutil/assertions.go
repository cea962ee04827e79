package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/archlens/pkg/layout"
	"github.com/vanderheijden86/archlens/pkg/model"

	"gopkg.in/yaml.v3"
)

// AssertNoDuplicateIDs fails if any entity, connection or event id repeats.
func AssertNoDuplicateIDs(t *testing.T, d model.Diagram) {
	t.Helper()
	seen := make(map[string]bool)
	check := func(kind, id string) {
		if seen[kind+":"+id] {
			t.Errorf("duplicate %s id %q", kind, id)
		}
		seen[kind+":"+id] = true
	}
	for _, e := range d.Entities {
		check("entity", e.ID)
	}
	for _, e := range d.Drafts {
		check("entity", e.ID)
	}
	for _, c := range d.Connections {
		check("connection", c.ID)
	}
	for _, e := range d.Events {
		check("event", e.ID)
	}
}

// AssertConnectionsResolve fails if a connection names an unknown entity.
func AssertConnectionsResolve(t *testing.T, d model.Diagram) {
	t.Helper()
	ids := make(map[string]bool, len(d.Entities))
	for _, e := range d.Entities {
		ids[e.ID] = true
	}
	for _, c := range d.Connections {
		if !ids[c.Source] || !ids[c.Target] {
			t.Errorf("connection %s: %s -> %s does not resolve", c.ID, c.Source, c.Target)
		}
	}
}

// AssertOutside fails if any of ids has a rect overlapping r.
func AssertOutside(t *testing.T, p layout.Placement, r layout.Rect, ids ...string) {
	t.Helper()
	for _, id := range ids {
		got, ok := p[id]
		if !ok {
			t.Errorf("%s missing from placement", id)
			continue
		}
		if overlaps(got, r) {
			t.Errorf("%s at %+v overlaps %+v", id, got, r)
		}
	}
}

func overlaps(a, b layout.Rect) bool {
	const eps = 1e-9
	return a.Pos.X < b.Pos.X+b.Size.X-eps && b.Pos.X < a.Pos.X+a.Size.X-eps &&
		a.Pos.Y < b.Pos.Y+b.Size.Y-eps && b.Pos.Y < a.Pos.Y+a.Size.Y-eps
}

// WriteDiagramFile writes d in the on-disk YAML format and returns the path.
func WriteDiagramFile(t testing.TB, dir, name string, d model.Diagram) string {
	t.Helper()
	data, err := MarshalDiagram(d)
	if err != nil {
		t.Fatalf("marshal diagram: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write diagram: %v", err)
	}
	return path
}

// MarshalDiagram encodes d in the on-disk YAML format.
func MarshalDiagram(d model.Diagram) ([]byte, error) {
	doc := map[string]any{
		"entities":    entitiesDoc(d.Entities),
		"connections": connectionsDoc(d.Connections),
	}
	if len(d.Drafts) > 0 {
		doc["drafts"] = entitiesDoc(d.Drafts)
	}
	if len(d.DraftConnections) > 0 {
		doc["draft_connections"] = connectionsDoc(d.DraftConnections)
	}
	if len(d.Events) > 0 {
		doc["events"] = eventsDoc(d.Events)
	}
	return yaml.Marshal(doc)
}

func entitiesDoc(es []model.Entity) []map[string]any {
	out := make([]map[string]any, 0, len(es))
	for _, e := range es {
		m := map[string]any{
			"id":     e.ID,
			"kind":   string(e.Kind),
			"label":  e.Label,
			"x":      e.Position.X,
			"y":      e.Position.Y,
			"width":  e.Size.X,
			"height": e.Size.Y,
		}
		if e.Team != "" {
			m["team"] = e.Team
		}
		if tr := e.Tracing; tr != nil {
			m["tracing"] = map[string]any{
				"trace_id":   tr.TraceID,
				"span_id":    tr.SpanID,
				"latency_ms": tr.LatencyMs,
				"status":     string(tr.Status),
			}
		}
		if p := e.Platform; p != nil {
			m["platform"] = map[string]any{
				"cpu":        p.CPU,
				"memory":     p.Memory,
				"health":     string(p.Health),
				"pods_ready": p.PodsReady,
				"pods_total": p.PodsTotal,
			}
		}
		out = append(out, m)
	}
	return out
}

func connectionsDoc(cs []model.Connection) []map[string]any {
	out := make([]map[string]any, 0, len(cs))
	for _, c := range cs {
		out = append(out, map[string]any{"id": c.ID, "source": c.Source, "target": c.Target})
	}
	return out
}

func eventsDoc(evs []model.TimelineEvent) []map[string]any {
	out := make([]map[string]any, 0, len(evs))
	for _, ev := range evs {
		m := map[string]any{
			"id":        ev.ID,
			"kind":      string(ev.Kind),
			"title":     ev.Title,
			"timestamp": ev.Timestamp.UTC().Format(time.RFC3339),
		}
		if ev.Severity != model.SeverityNone {
			m["severity"] = string(ev.Severity)
		}
		if len(ev.AffectedEntityIDs) > 0 {
			m["affected_entities"] = ev.AffectedEntityIDs
		}
		out = append(out, m)
	}
	return out
}
