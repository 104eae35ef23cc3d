// Package baseline owns the rolling per-user score history the engine
// tests anomalies against. The engine only ever reads snapshots; this
// package is the externally owned mutable side of that contract.
package baseline

import (
	"math"
	"sync"

	"github.com/couchcryptid/exposure-engine/internal/domain"
)

// Window sizes per period kind: 30 trailing daily aggregates, 12 trailing
// weekly aggregates.
const (
	DailyWindow  = 30
	WeeklyWindow = 12
)

// sample is the score vector one aggregate contributes to the rolling
// window. The composite is kept unrounded so window statistics don't
// accumulate per-period rounding error.
type sample struct {
	subscores domain.Subscores
	composite float64
}

// track is one user's rolling window for one period kind.
type track struct {
	samples []sample
	window  int
}

func (t *track) append(s sample) {
	t.samples = append(t.samples, s)
	if len(t.samples) > t.window {
		t.samples = t.samples[len(t.samples)-t.window:]
	}
}

func (t *track) snapshot() *domain.Baseline {
	if len(t.samples) == 0 {
		return nil
	}
	b := &domain.Baseline{Samples: len(t.samples)}
	for _, f := range domain.Factors {
		vals := make([]float64, len(t.samples))
		for i, s := range t.samples {
			vals[i] = float64(s.subscores.Get(f))
		}
		b.SetFactor(f, meanStd(vals))
	}
	composites := make([]float64, len(t.samples))
	for i, s := range t.samples {
		composites[i] = s.composite
	}
	b.Composite = meanStd(composites)
	return b
}

// meanStd returns mean and population standard deviation.
func meanStd(vals []float64) domain.FactorStats {
	n := float64(len(vals))
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	m := sum / n
	variance := 0.0
	for _, v := range vals {
		d := v - m
		variance += d * d
	}
	return domain.FactorStats{Mean: m, StdDev: math.Sqrt(variance / n)}
}

// Registry is an in-memory domain.BaselineStore keeping per-user daily and
// weekly tracks, with LRU eviction once maxUsers is exceeded so a
// long-running service doesn't grow without bound. Safe for concurrent use.
type Registry struct {
	maxUsers int

	mu    sync.Mutex
	users map[string]*userEntry
	head  *userEntry // most recently used
	tail  *userEntry // least recently used
}

type userEntry struct {
	userID string
	daily  track
	weekly track
	prev   *userEntry
	next   *userEntry
}

// NewRegistry creates a registry bounded to maxUsers tracked users.
func NewRegistry(maxUsers int) *Registry {
	return &Registry{
		maxUsers: maxUsers,
		users:    make(map[string]*userEntry),
	}
}

// Snapshot returns the user's current rolling statistics for the period
// kind, or nil when the user has no history yet.
func (r *Registry) Snapshot(userID string, kind domain.PeriodKind) *domain.Baseline {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.users[userID]
	if !ok {
		return nil
	}
	r.moveToFront(e)
	return e.track(kind).snapshot()
}

// Append adds a freshly produced aggregate to the user's rolling window.
// Callers must append only after anomaly detection for that aggregate.
func (r *Registry) Append(userID string, kind domain.PeriodKind, agg domain.PeriodAggregate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.users[userID]
	if !ok {
		e = &userEntry{
			userID: userID,
			daily:  track{window: DailyWindow},
			weekly: track{window: WeeklyWindow},
		}
		r.users[userID] = e
		r.addToFront(e)
		if r.maxUsers > 0 && len(r.users) > r.maxUsers {
			r.evictTail()
		}
	} else {
		r.moveToFront(e)
	}

	e.track(kind).append(sample{
		subscores: agg.Subscores,
		composite: agg.CompositeRaw,
	})
}

// Users reports how many users are currently tracked.
func (r *Registry) Users() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (e *userEntry) track(kind domain.PeriodKind) *track {
	if kind == domain.PeriodWeekly {
		return &e.weekly
	}
	return &e.daily
}

func (r *Registry) moveToFront(e *userEntry) {
	if e == r.head {
		return
	}
	r.remove(e)
	r.addToFront(e)
}

func (r *Registry) addToFront(e *userEntry) {
	e.next = r.head
	e.prev = nil
	if r.head != nil {
		r.head.prev = e
	}
	r.head = e
	if r.tail == nil {
		r.tail = e
	}
}

func (r *Registry) remove(e *userEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		r.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		r.tail = e.prev
	}
}

func (r *Registry) evictTail() {
	if r.tail == nil {
		return
	}
	delete(r.users, r.tail.userID)
	r.remove(r.tail)
}
