package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.ObserveTransition("begin", "ok")
	m.ObserveTransition("begin", "ok")
	m.ObserveTransition("begin", "conflict")
	m.ObserveDBQuery("select", time.Millisecond, errors.New("boom"))
	m.ObserveIntentsExpired(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingTransitions.WithLabelValues("test", "begin", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingTransitions.WithLabelValues("test", "begin", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("test", "select")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IntentsExpired.WithLabelValues("test")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveTransition("begin", "ok")
		m.ObserveAvailability("available")
		m.ObservePaymentConsumption("consumed")
		m.ObserveIntentsExpired(1)
		m.SetDBPool(1, 1, 0)
	})
}
