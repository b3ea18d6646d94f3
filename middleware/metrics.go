package middleware

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	ps "github.com/reoring/paramshape"
)

// Outcome labels.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// Metrics counts checked requests per shape and issues per code.
type Metrics struct {
	Requests *prometheus.CounterVec
	Issues   *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg; a nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "paramshape",
				Name:      "requests_total",
				Help:      "Requests checked, by shape and outcome",
			},
			[]string{"shape", "outcome"},
		),
		Issues: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "paramshape",
				Name:      "issues_total",
				Help:      "Validation issues reported, by shape and code",
			},
			[]string{"shape", "code"},
		),
	}
}

// Observe records the result of one Check. A nil receiver does nothing.
func (m *Metrics) Observe(shape string, err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.Requests.WithLabelValues(shape, OutcomeAccepted).Inc()
		return
	}
	if iss, ok := ps.AsIssues(err); ok {
		m.Requests.WithLabelValues(shape, OutcomeRejected).Inc()
		for _, it := range iss {
			m.Issues.WithLabelValues(shape, it.Code).Inc()
		}
		return
	}
	if errors.Is(err, ErrMalformed) {
		m.Requests.WithLabelValues(shape, OutcomeMalformed).Inc()
		return
	}
	m.Requests.WithLabelValues(shape, OutcomeError).Inc()
}
