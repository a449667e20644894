package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLogin(t *testing.T) {
	m := New()

	m.ObserveLogin(OutcomeSuccess, 3*time.Second)
	m.ObserveLogin(OutcomeTimeout, 300*time.Second)
	m.ObserveLogin(OutcomeTimeout, 300*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues(OutcomeTimeout)))
	// Only successful logins are timed.
	assert.Equal(t, 1, testutil.CollectAndCount(m.loginDuration))
}

func TestCounters(t *testing.T) {
	m := New()

	m.CallbackRejected()
	m.CallbackIgnored()
	m.CallbackIgnored()
	m.ObserveRefresh(nil)
	m.ObserveRefresh(errors.New("boom"))
	m.LookupFailed("portrait")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.callbacksRejected))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.callbacksIgnored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookupFailures.WithLabelValues("portrait")))
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.CallbackRejected()
	m.ObserveLogin(OutcomeSuccess, time.Second)

	samples, err := m.Snapshot()
	require.NoError(t, err)

	byName := map[string]Sample{}
	for _, s := range samples {
		byName[s.Name] = s
	}
	assert.Equal(t, 1.0, byName["telescope_callbacks_rejected_total"].Value)
	assert.Equal(t, 1.0, byName["telescope_login_duration_seconds"].Value)
	assert.Equal(t, "success", byName["telescope_login_attempts_total"].Labels["outcome"])
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveLogin(OutcomeError, time.Second)
	m.CallbackRejected()
	m.ObserveRefresh(nil)

	samples, err := m.Snapshot()
	assert.NoError(t, err)
	assert.Empty(t, samples)
	assert.Nil(t, m.Registry())
}
