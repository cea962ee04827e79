package loader

import (
	"context"
	"fmt"
	"testing"

	"github.com/vanderheijden86/archlens/pkg/testutil"
)

func BenchmarkLoadDiagram(b *testing.B) {
	for _, size := range []int{50, 200, 1000} {
		b.Run(fmt.Sprintf("entities=%d", size), func(b *testing.B) {
			d := testutil.QuickRandom(size, 0.01)
			path := testutil.WriteDiagramFile(b, b.TempDir(), "diagram.yaml", d)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				loaded, err := Load(context.Background(), path, "", Options{})
				if err != nil {
					b.Fatalf("load diagram: %v", err)
				}
				if len(loaded.Entities) != len(d.Entities) {
					b.Fatalf("unexpected entity count: got=%d want=%d", len(loaded.Entities), len(d.Entities))
				}
			}
		})
	}
}
