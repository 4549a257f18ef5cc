package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-коллекторов сервиса.
// Все методы Observe* безопасны для nil-получателя: при выключенных метриках ничего не пишется.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec

	BookingTransitions   *prometheus.CounterVec
	AvailabilityVerdicts *prometheus.CounterVec
	PaymentConsumptions  *prometheus.CounterVec
	IntentsExpired       *prometheus.CounterVec

	service string
}

// New регистрирует коллекторы в глобальном реестре prometheus
func New(service string) *Metrics {
	return NewWithRegistry(service, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует коллекторы в указанном реестре
func NewWithRegistry(service string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		service: service,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Open connections in the pool",
		}, []string{"service"}),
		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Connections currently in use",
		}, []string{"service"}),
		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Idle connections in the pool",
		}, []string{"service"}),
		BookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking lifecycle transitions by outcome",
		}, []string{"service", "transition", "outcome"}),
		AvailabilityVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_verdicts_total",
			Help: "Per-candidate availability verdicts",
		}, []string{"service", "verdict"}),
		PaymentConsumptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_consumptions_total",
			Help: "Payment confirmation consumptions by outcome",
		}, []string{"service", "outcome"}),
		IntentsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_intents_expired_total",
			Help: "Payment intents discarded by the expiry sweeper",
		}, []string{"service"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.BookingTransitions,
		m.AvailabilityVerdicts,
		m.PaymentConsumptions,
		m.IntentsExpired,
	)

	return m
}

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.service, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.service, method, path).Observe(d.Seconds())
}

func (m *Metrics) ObserveDBQuery(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(m.service, operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(m.service, operation).Inc()
	}
}

func (m *Metrics) SetDBPool(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(m.service).Set(float64(open))
	m.DBInUseConnections.WithLabelValues(m.service).Set(float64(inUse))
	m.DBIdleConnections.WithLabelValues(m.service).Set(float64(idle))
}

// ObserveTransition outcome: ok, conflict, validation, not_found, error
func (m *Metrics) ObserveTransition(transition, outcome string) {
	if m == nil {
		return
	}
	m.BookingTransitions.WithLabelValues(m.service, transition, outcome).Inc()
}

func (m *Metrics) ObserveAvailability(verdict string) {
	if m == nil {
		return
	}
	m.AvailabilityVerdicts.WithLabelValues(m.service, verdict).Inc()
}

func (m *Metrics) ObservePaymentConsumption(outcome string) {
	if m == nil {
		return
	}
	m.PaymentConsumptions.WithLabelValues(m.service, outcome).Inc()
}

func (m *Metrics) ObserveIntentsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.IntentsExpired.WithLabelValues(m.service).Add(float64(n))
}
