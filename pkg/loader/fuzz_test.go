package loader_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/archlens/pkg/loader"
)

// FuzzLoadDiagram feeds arbitrary bytes through both decoders. Loading must
// never panic, and a successful load must yield a self-consistent diagram.
//
// Run with: go test -fuzz=FuzzLoadDiagram -fuzztime=1m ./pkg/loader/...
func FuzzLoadDiagram(f *testing.F) {
	seeds := []string{
		"",
		"entities: []\n",
		"entities:\n  - id: a\n    x: 1\n    y: 2\n",
		"entities:\n  - id: a\n  - id: a\n",
		"entities:\n  - id: a\nconnections:\n  - source: a\n    target: b\n",
		"events:\n  - id: e\n    kind: deployment\n    timestamp: \"2025-01-01T00:00:00Z\"\n",
		"events:\n  - id: e\n    kind: meeting\n",
		`{"entities":[{"id":"a","width":-5,"height":1e308}]}`,
		`{"entities":[{"id":"a"}],"connections":[{"source":"a","target":"a"}]}`,
		`{"entities":`,
		"entities:\n  - {id: a, width: .nan, y: -.inf}\n",
		"\x00\xff",
	}
	for _, s := range seeds {
		f.Add([]byte(s), false)
		f.Add([]byte(s), true)
	}

	f.Fuzz(func(t *testing.T, data []byte, asJSON bool) {
		name := "diagram.yaml"
		if asJSON {
			name = "diagram.json"
		}
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}

		d, err := loader.LoadDiagram(path, loader.Options{})
		if err != nil {
			if errors.Is(err, loader.ErrUnsupportedFormat) {
				t.Fatalf("supported extension rejected: %v", err)
			}
			return
		}
		ids := make(map[string]bool)
		for _, e := range d.Entities {
			if e.ID == "" || ids[e.ID] {
				t.Fatalf("bad entity id %q", e.ID)
			}
			for _, v := range []float64{e.Position.X, e.Position.Y, e.Size.X, e.Size.Y} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("entity %s has non-finite geometry %v %v", e.ID, e.Position, e.Size)
				}
			}
			if e.Size.X <= 0 || e.Size.Y <= 0 {
				t.Fatalf("entity %s has size %v", e.ID, e.Size)
			}
			ids[e.ID] = true
		}
		for _, c := range d.Connections {
			if !ids[c.Source] || !ids[c.Target] {
				t.Fatalf("connection %s does not resolve", c.ID)
			}
		}
	})
}
