// Package metrics holds the process-local prometheus collectors for login,
// callback and session activity.
//
// The collectors live in a private registry: telescope is a CLI and exports
// nothing over HTTP, so the values are summarized in debug logs on exit.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "telescope"

// Login outcomes.
const (
	OutcomeSuccess       = "success"
	OutcomeTimeout       = "timeout"
	OutcomeStateMismatch = "state_mismatch"
	OutcomeExchange      = "exchange_failed"
	OutcomeError         = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	loginAttempts     *prometheus.CounterVec
	loginDuration     prometheus.Histogram
	callbacksRejected prometheus.Counter
	callbacksIgnored  prometheus.Counter
	refreshes         *prometheus.CounterVec
	lookupFailures    *prometheus.CounterVec
}

// New creates the collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		loginDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "login_duration_seconds",
			Help:      "Time from listener start to a cached character.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		callbacksRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_rejected_total",
			Help:      "Redirect requests answered with 422 for missing parameters.",
		}),
		callbacksIgnored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_ignored_total",
			Help:      "Valid redirect requests that arrived after the first delivery.",
		}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_refreshes_total",
			Help:      "Token refreshes by result.",
		}, []string{"result"}),
		lookupFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failures_total",
			Help:      "Failed character lookups by kind.",
		}, []string{"lookup"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveLogin records a finished login attempt.
func (m *Metrics) ObserveLogin(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.loginDuration.Observe(elapsed.Seconds())
	}
}

// CallbackRejected counts a malformed redirect.
func (m *Metrics) CallbackRejected() {
	if m == nil {
		return
	}
	m.callbacksRejected.Inc()
}

// CallbackIgnored counts a duplicate redirect.
func (m *Metrics) CallbackIgnored() {
	if m == nil {
		return
	}
	m.callbacksIgnored.Inc()
}

// ObserveRefresh records a refresh result.
func (m *Metrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// LookupFailed counts a failed remote lookup.
func (m *Metrics) LookupFailed(lookup string) {
	if m == nil {
		return
	}
	m.lookupFailures.WithLabelValues(lookup).Inc()
}

// Sample is one flattened counter or histogram value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot flattens the registry into samples sorted by name. Histograms
// report their observation count.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			s := Sample{Name: family.GetName()}
			if pairs := metric.GetLabel(); len(pairs) > 0 {
				s.Labels = make(map[string]string, len(pairs))
				for _, pair := range pairs {
					s.Labels[pair.GetName()] = pair.GetValue()
				}
			}
			switch {
			case metric.GetCounter() != nil:
				s.Value = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				s.Value = float64(metric.GetHistogram().GetSampleCount())
			case metric.GetGauge() != nil:
				s.Value = metric.GetGauge().GetValue()
			}
			samples = append(samples, s)
		}
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}
