package domain

import (
	"sort"
	"time"
)

// ConfidenceBadge buckets a confidence value for display.
type ConfidenceBadge string

const (
	BadgeHigh   ConfidenceBadge = "high"   // ≥ 0.8
	BadgeMedium ConfidenceBadge = "medium" // ≥ 0.5
	BadgeLow    ConfidenceBadge = "low"
)

func badgeFor(confidence float64) ConfidenceBadge {
	switch {
	case confidence >= 0.8:
		return BadgeHigh
	case confidence >= 0.5:
		return BadgeMedium
	default:
		return BadgeLow
	}
}

// Meta describes the projected dataset.
type Meta struct {
	UserID      string    `json:"user_id"`
	Lat         float64   `json:"lat,omitempty"`
	Lon         float64   `json:"lon,omitempty"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Hours       int       `json:"hours"`
	GeneratedAt time.Time `json:"generated_at"`
}

// HourlySeries is chart-ready: a shared time axis plus one nullable value
// array per field, aligned by index.
type HourlySeries struct {
	Time          []string   `json:"time"`
	PM25          []*float64 `json:"pm25"`
	O3            []*float64 `json:"o3"`
	UVIndex       []*float64 `json:"uv_index"`
	Temperature   []*float64 `json:"temperature_c"`
	Humidity      []*float64 `json:"relative_humidity"`
	DewPoint      []*float64 `json:"dew_point_c"`
	WindSpeed     []*float64 `json:"wind_speed_kmh"`
	Precipitation []*float64 `json:"precipitation_mm"`
	CloudCover    []*float64 `json:"cloud_cover_pct"`
}

// Card is one period's dashboard summary.
type Card struct {
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Composite  int             `json:"composite"`
	Confidence float64         `json:"confidence"`
	Badge      ConfidenceBadge `json:"badge"`
	TopFactor  Factor          `json:"top_factor,omitempty"`
	TopScore   int             `json:"top_score"`
	Narratives []string        `json:"narratives"`
}

// RankedNarrative is a factor narrative paired with the sub-score that
// emitted it, for severity-ordered display.
type RankedNarrative struct {
	Text       string     `json:"text"`
	Severity   int        `json:"severity"`
	PeriodKind PeriodKind `json:"period_kind"`
	Start      time.Time  `json:"start"`
}

// FlaggedAnomaly is an anomaly lifted out of its aggregate with enough
// context to render standalone.
type FlaggedAnomaly struct {
	PeriodKind PeriodKind `json:"period_kind"`
	Start      time.Time  `json:"start"`
	Anomaly    Anomaly    `json:"anomaly"`
}

// FrontendPayload is the documented output contract for rendering code: a
// pure re-shaping of the reading sequence and the two aggregate lists,
// carrying no additional computation.
type FrontendPayload struct {
	Meta          Meta              `json:"meta"`
	Hourly        HourlySeries      `json:"hourly"`
	DailyCards    []Card            `json:"daily_cards"`
	WeeklyCards   []Card            `json:"weekly_cards"`
	TopNarratives []RankedNarrative `json:"top_narratives"`
	Anomalies     []FlaggedAnomaly  `json:"anomalies"`
}

// BuildFrontendPayload projects readings and aggregates into the
// dashboard shape. topN caps the severity-ranked narrative list; the
// ranking is a stable sort so equal severities keep engine order.
func BuildFrontendPayload(userID string, readings []EnvironmentalReading, daily, weekly []PeriodAggregate, topN int) FrontendPayload {
	p := FrontendPayload{
		Meta: Meta{
			UserID:      userID,
			Hours:       len(readings),
			GeneratedAt: clock.Now(),
		},
		Hourly:      buildHourlySeries(readings),
		DailyCards:  buildCards(daily),
		WeeklyCards: buildCards(weekly),
	}
	if len(readings) > 0 {
		p.Meta.Lat = readings[0].Lat
		p.Meta.Lon = readings[0].Lon
		p.Meta.From = readings[0].Timestamp
		p.Meta.To = readings[len(readings)-1].Timestamp
	}

	for _, set := range [][]PeriodAggregate{daily, weekly} {
		for _, agg := range set {
			p.TopNarratives = append(p.TopNarratives, rankedNarratives(agg)...)
			for _, a := range agg.Anomalies {
				p.Anomalies = append(p.Anomalies, FlaggedAnomaly{
					PeriodKind: agg.Kind,
					Start:      agg.Start,
					Anomaly:    a,
				})
			}
		}
	}

	sort.SliceStable(p.TopNarratives, func(i, j int) bool {
		return p.TopNarratives[i].Severity > p.TopNarratives[j].Severity
	})
	if topN > 0 && len(p.TopNarratives) > topN {
		p.TopNarratives = p.TopNarratives[:topN]
	}
	return p
}

func buildHourlySeries(readings []EnvironmentalReading) HourlySeries {
	s := HourlySeries{
		Time:          make([]string, len(readings)),
		PM25:          make([]*float64, len(readings)),
		O3:            make([]*float64, len(readings)),
		UVIndex:       make([]*float64, len(readings)),
		Temperature:   make([]*float64, len(readings)),
		Humidity:      make([]*float64, len(readings)),
		DewPoint:      make([]*float64, len(readings)),
		WindSpeed:     make([]*float64, len(readings)),
		Precipitation: make([]*float64, len(readings)),
		CloudCover:    make([]*float64, len(readings)),
	}
	for i, r := range readings {
		s.Time[i] = r.Timestamp.Format(time.RFC3339)
		s.PM25[i] = r.PM25
		s.O3[i] = r.O3
		s.UVIndex[i] = r.UVIndex
		s.Temperature[i] = r.TemperatureC
		s.Humidity[i] = r.RelativeHumidity
		s.DewPoint[i] = r.DewPointC
		s.WindSpeed[i] = r.WindSpeedKmh
		s.Precipitation[i] = r.PrecipitationMm
		s.CloudCover[i] = r.CloudCoverPct
	}
	return s
}

func buildCards(aggregates []PeriodAggregate) []Card {
	cards := make([]Card, 0, len(aggregates))
	for _, agg := range aggregates {
		top, topScore := topFactor(agg.Subscores)
		cards = append(cards, Card{
			Start:      agg.Start,
			End:        agg.End,
			Composite:  agg.Composite,
			Confidence: agg.Confidence,
			Badge:      badgeFor(agg.Confidence),
			TopFactor:  top,
			TopScore:   topScore,
			Narratives: agg.Narratives,
		})
	}
	return cards
}

// topFactor returns the worst-scoring factor; ties go to the earlier
// factor in declaration order.
func topFactor(s Subscores) (Factor, int) {
	var top Factor
	best := -1
	for _, f := range Factors {
		if v := s.Get(f); v > best {
			top = f
			best = v
		}
	}
	return top, best
}

// rankedNarratives pairs each factor narrative with its sub-score. The
// trailing overall sentence is a card-level summary, not a ranked entry.
func rankedNarratives(agg PeriodAggregate) []RankedNarrative {
	var out []RankedNarrative
	i := 0
	for _, f := range Factors {
		if agg.Subscores.Get(f) < narrativeThreshold {
			continue
		}
		if i >= len(agg.Narratives)-1 {
			break
		}
		out = append(out, RankedNarrative{
			Text:       agg.Narratives[i],
			Severity:   agg.Subscores.Get(f),
			PeriodKind: agg.Kind,
			Start:      agg.Start,
		})
		i++
	}
	return out
}
