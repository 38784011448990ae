package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives dispatch and negotiation events. Implementations must be
// safe for concurrent use.
type Recorder interface {
	AssignmentDecided(outcome string)
	QuoteTransition(action string)
	NotificationFailed(sink string)
	RankingObserved(d time.Duration, candidates int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) AssignmentDecided(string) {}
func (Nop) QuoteTransition(string) {}
func (Nop) NotificationFailed(string) {}
func (Nop) RankingObserved(time.Duration, int) {}

// PromRecorder records events in Prometheus metrics.
type PromRecorder struct {
	assignments   *prometheus.CounterVec
	quotes        *prometheus.CounterVec
	notifyFailed  *prometheus.CounterVec
	rankLatency   prometheus.Histogram
	rankPoolSizes prometheus.Histogram
}

// NewPromRecorder registers metrics on reg. A nil registerer defaults to the
// global Prometheus registerer. Registering twice reuses the existing collectors.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PromRecorder{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "propcare_assignments_total",
			Help: "Contractor assignments by outcome",
		}, []string{"outcome"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "propcare_quote_transitions_total",
			Help: "Quote negotiation transitions by action",
		}, []string{"action"}),
		notifyFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "propcare_notification_failures_total",
			Help: "Contractor notifications that could not be delivered",
		}, []string{"sink"}),
		rankLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "propcare_ranking_duration_seconds",
			Help:    "Time spent ranking candidates for a case",
			Buckets: prometheus.DefBuckets,
		}),
		rankPoolSizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "propcare_ranking_pool_size",
			Help:    "Number of candidates considered per ranking",
			Buckets: []float64{0, 1, 3, 5, 10, 25, 50, 100},
		}),
	}

	var err error
	if r.assignments, err = register(reg, r.assignments); err != nil {
		return nil, err
	}
	if r.quotes, err = register(reg, r.quotes); err != nil {
		return nil, err
	}
	if r.notifyFailed, err = register(reg, r.notifyFailed); err != nil {
		return nil, err
	}
	if r.rankLatency, err = register(reg, r.rankLatency); err != nil {
		return nil, err
	}
	if r.rankPoolSizes, err = register(reg, r.rankPoolSizes); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (r *PromRecorder) AssignmentDecided(outcome string) {
	r.assignments.WithLabelValues(outcome).Inc()
}

func (r *PromRecorder) QuoteTransition(action string) {
	r.quotes.WithLabelValues(action).Inc()
}

func (r *PromRecorder) NotificationFailed(sink string) {
	r.notifyFailed.WithLabelValues(sink).Inc()
}

func (r *PromRecorder) RankingObserved(d time.Duration, candidates int) {
	r.rankLatency.Observe(d.Seconds())
	r.rankPoolSizes.Observe(float64(candidates))
}
