// Command score runs the aggregation engine offline against a resolved
// payload file and prints the frontend payload as JSON. It is useful for
// inspecting scores and narratives without standing up Kafka.
//
// Usage:
//
//	go run ./cmd/score -in payload.json
//	go run ./cmd/score -in payload.json -top 5 -pretty
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/exposure-engine/internal/baseline"
	"github.com/couchcryptid/exposure-engine/internal/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "score:", err)
		os.Exit(1)
	}
}

func run() error {
	inPath := flag.String("in", "", "path to a resolved payload JSON file (required)")
	topN := flag.Int("top", 3, "number of ranked narratives per period")
	pretty := flag.Bool("pretty", false, "indent the JSON output")
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		return fmt.Errorf("-in is required")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		return err
	}

	var payload domain.ResolvedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	readings, err := domain.NormalizeReadings(payload)
	if err != nil {
		return err
	}

	aggregator, err := domain.NewAggregator(domain.DefaultGuidelines(), domain.DefaultWeights(), 5)
	if err != nil {
		return err
	}

	// A throwaway registry: daily buckets earlier in the file become the
	// baseline for later ones, mirroring service behavior within one run.
	registry := baseline.NewRegistry(1)
	daily := aggregator.Run(payload.UserID, readings, domain.PeriodDaily, registry)
	weekly := aggregator.Run(payload.UserID, readings, domain.PeriodWeekly, registry)

	out := domain.BuildFrontendPayload(payload.UserID, readings, daily, weekly, *topN)

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
