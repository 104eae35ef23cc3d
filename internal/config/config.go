package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/exposure-engine/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Scoring configuration. Weights default to the standard composite
	// weighting and may be overridden wholesale via SCORE_WEIGHTS.
	Weights            domain.Weights
	BaselineMinSamples int
	BaselineMaxUsers   int
}

// Load reads configuration from environment variables, applying defaults
// where unset. Weight misconfiguration surfaces as a domain.ConfigError so
// it fails at startup, never per bucket.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	batchSize, err := parseBoundedInt("BATCH_SIZE", 50, 1, 1000)
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}
	minSamples, err := parseBoundedInt("BASELINE_MIN_SAMPLES", 5, 1, 1000)
	if err != nil {
		return nil, err
	}
	maxUsers, err := parseBoundedInt("BASELINE_MAX_USERS", 10000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}
	weights, err := parseWeights()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "resolved-env-payloads"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "exposure-aggregates"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "exposure-engine"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		Weights:            weights,
		BaselineMinSamples: minSamples,
		BaselineMaxUsers:   maxUsers,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

// parseWeights reads SCORE_WEIGHTS as a comma-separated factor=weight list,
// e.g. "pm25=0.3,o3=0.15,...". All ten factors must be present and sum to
// 1.0; a partial list is rejected rather than silently mixed with defaults.
func parseWeights() (domain.Weights, error) {
	raw := os.Getenv("SCORE_WEIGHTS")
	if raw == "" {
		return domain.DefaultWeights(), nil
	}

	seen := make(map[domain.Factor]float64, len(domain.Factors))
	for _, pair := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return domain.Weights{}, fmt.Errorf("invalid SCORE_WEIGHTS entry %q: want factor=weight", pair)
		}
		w, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return domain.Weights{}, fmt.Errorf("invalid SCORE_WEIGHTS weight %q: %w", val, err)
		}
		seen[domain.Factor(key)] = w
	}

	var weights domain.Weights
	for _, f := range domain.Factors {
		w, ok := seen[f]
		if !ok {
			return domain.Weights{}, fmt.Errorf("SCORE_WEIGHTS missing factor %q", f)
		}
		setWeight(&weights, f, w)
		delete(seen, f)
	}
	for f := range seen {
		return domain.Weights{}, fmt.Errorf("SCORE_WEIGHTS has unknown factor %q", f)
	}

	if err := weights.Validate(); err != nil {
		return domain.Weights{}, err
	}
	return weights, nil
}

func setWeight(w *domain.Weights, f domain.Factor, v float64) {
	switch f {
	case domain.FactorPM25:
		w.PM25 = v
	case domain.FactorO3:
		w.O3 = v
	case domain.FactorNO2:
		w.NO2 = v
	case domain.FactorSO2:
		w.SO2 = v
	case domain.FactorCO:
		w.CO = v
	case domain.FactorUV:
		w.UV = v
	case domain.FactorTemp:
		w.Temp = v
	case domain.FactorHumidityDew:
		w.HumidityDew = v
	case domain.FactorWind:
		w.Wind = v
	case domain.FactorPrecip:
		w.Precip = v
	}
}
