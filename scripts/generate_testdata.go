//go:build ignore

// generate_testdata.go creates standard diagrams for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/benchmark/small.yaml   (50 entities)
//	testdata/benchmark/medium.yaml  (500 entities)
//	testdata/benchmark/large.yaml   (2000 entities)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/archlens/pkg/testutil"
)

type datasetSpec struct {
	name    string
	size    int
	density float64
	events  int
}

var datasets = []datasetSpec{
	{"small", 50, 0.08, 10},
	{"medium", 500, 0.01, 60},
	{"large", 2000, 0.002, 200},
}

func main() {
	outputDir := "testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s diagram (%d entities)...\n", ds.name, ds.size)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.size) // Reproducible per-size
		cfg.IDPrefix = "bench"

		gen := testutil.New(cfg)
		gf := gen.Random(ds.size, ds.density)
		d := gen.ToDiagram(gf)
		d.Events = gen.Events(d, ds.events)

		data, err := testutil.MarshalDiagram(d)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		outputPath := filepath.Join(outputDir, ds.name+".yaml")
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %d connections)\n", outputPath, len(data), len(gf.Edges))
	}

	fmt.Println("\nDone! Diagrams created in", outputDir)
}
