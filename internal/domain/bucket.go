package domain

import "time"

// PeriodKind selects the bucketing granularity.
type PeriodKind string

const (
	PeriodDaily  PeriodKind = "daily"
	PeriodWeekly PeriodKind = "weekly"
)

// PeriodBucket is a contiguous half-open span [Start, End) of one calendar
// day or one ISO week, holding the ordered readings whose timestamps fall
// inside it. Daily and weekly buckets are computed independently from the
// same reading sequence; weekly is never a roll-up of daily aggregates.
type PeriodBucket struct {
	Kind     PeriodKind
	Start    time.Time
	End      time.Time
	Readings []EnvironmentalReading
}

// BucketReadings splits a time-ordered reading sequence into period
// buckets of the given kind. Each reading lands in exactly the bucket its
// own timestamp selects; a reading near a week boundary never straddles
// two buckets. Buckets are returned in chronological order and only spans
// that contain at least one reading are emitted.
func BucketReadings(readings []EnvironmentalReading, kind PeriodKind) []PeriodBucket {
	var buckets []PeriodBucket
	for _, r := range readings {
		start := periodStart(r.Timestamp, kind)
		if n := len(buckets); n > 0 && buckets[n-1].Start.Equal(start) {
			buckets[n-1].Readings = append(buckets[n-1].Readings, r)
			continue
		}
		buckets = append(buckets, PeriodBucket{
			Kind:     kind,
			Start:    start,
			End:      periodEnd(start, kind),
			Readings: []EnvironmentalReading{r},
		})
	}
	return buckets
}

// periodStart truncates a local timestamp to its calendar day or to the
// Monday of its ISO week, in the timestamp's own timezone.
func periodStart(ts time.Time, kind PeriodKind) time.Time {
	y, m, d := ts.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
	if kind == PeriodDaily {
		return day
	}
	// Monday of the ISO week. Go's Weekday has Sunday == 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func periodEnd(start time.Time, kind PeriodKind) time.Time {
	if kind == PeriodDaily {
		return start.AddDate(0, 0, 1)
	}
	return start.AddDate(0, 0, 7)
}
