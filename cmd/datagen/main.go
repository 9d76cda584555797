package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/graphbatch/internal/generator"
	"github.com/vanshika/graphbatch/internal/schema"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		schemaPath  = flag.String("schema", "schema.yaml", "catalog file describing tags and edge types")
		vertices    = flag.Int("vertices", cfg.VerticesPerTag, "number of vertices to generate per tag")
		edges       = flag.Int("edges", cfg.EdgesPerType, "number of edges to generate per edge type")
		nullChance  = flag.Float64("null-chance", cfg.NullChance, "probability of leaving a property unset")
		shareChance = flag.Float64("share-chance", cfg.ShareChance, "probability of reusing an existing string value")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "data", "directory to write dataset.json")
		writeStdout = flag.Bool("stdout", false, "write dataset to stdout instead of a file")
	)
	flag.Parse()

	cat, err := schema.LoadCatalog(*schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load schema: %v\n", err)
		os.Exit(1)
	}

	genCfg := generator.Config{
		VerticesPerTag: *vertices,
		EdgesPerType:   *edges,
		NullChance:     clampProbability(*nullChance),
		ShareChance:    clampProbability(*shareChance),
		Seed:           *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx, cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, err := generator.WriteDataset(dataset, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d vertices and %d edges into %s\n", len(dataset.Vertices), len(dataset.Edges), path)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
