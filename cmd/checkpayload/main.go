// Command checkpayload runs normalization checks against one or more
// resolved payload files and reports what the engine would reject. It
// catches malformed fixtures and resolver regressions before they reach
// the pipeline as poison pills.
//
// Usage:
//
//	go run ./cmd/checkpayload payload1.json payload2.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/exposure-engine/internal/domain"
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: checkpayload <payload.json> [...]")
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := check(path); err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
			continue
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func check(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var payload domain.ResolvedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if payload.UserID == "" {
		return fmt.Errorf("missing user_id")
	}

	readings, err := domain.NormalizeReadings(payload)
	if err != nil {
		return err
	}

	hourly := 0
	for _, r := range readings {
		if r.PollutantSource == domain.ProvenanceHourly {
			hourly++
		}
	}
	buckets := domain.BucketReadings(readings, domain.PeriodDaily)

	fmt.Printf("OK   %s: user=%s hours=%d days=%d hourly_pollutants=%d\n",
		path, payload.UserID, len(readings), len(buckets), hourly)
	return nil
}
