package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "smc"

// Booking creation outcomes
const (
	OutcomeCreated    = "created"
	OutcomeConflict   = "conflict"
	OutcomeValidation = "validation"
	OutcomeTransient  = "transient"
	OutcomeError      = "error"
)

// Metrics набор prometheus-коллекторов сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках
// в зависимости передаётся nil.
type Metrics struct {
	serviceName string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal       *prometheus.CounterVec
	DBQueryDuration      *prometheus.HistogramVec
	DBOpenConnections    *prometheus.GaugeVec
	DBInUseConnections   *prometheus.GaugeVec
	DBIdleConnections    *prometheus.GaugeVec
	DBWaitCount          *prometheus.GaugeVec
	TxRetriesTotal       *prometheus.CounterVec
	TxFailuresTotal      *prometheus.CounterVec
	BookingOutcomesTotal *prometheus.CounterVec
	StatusTransitions    *prometheus.CounterVec
	CacheRequestsTotal   *prometheus.CounterVec
	EventsPublishedTotal *prometheus.CounterVec
}

// New создаёт и регистрирует метрики в глобальном registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создаёт метрики в указанном registry (используется в тестах)
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Total number of database queries.",
		}, []string{"service", "operation", "status"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query latency.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),

		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_open_connections",
			Help:      "Number of established connections.",
		}, []string{"service"}),

		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_in_use_connections",
			Help:      "Number of connections currently in use.",
		}, []string{"service"}),

		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_idle_connections",
			Help:      "Number of idle connections.",
		}, []string{"service"}),

		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_wait_count",
			Help:      "Total number of connections waited for.",
		}, []string{"service"}),

		TxRetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_retries_total",
			Help:      "Transactions retried after serialization failure or deadlock.",
		}, []string{"service", "isolation"}),

		TxFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_retries_exhausted_total",
			Help:      "Transactions that failed after all retry attempts.",
		}, []string{"service", "isolation"}),

		BookingOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_create_total",
			Help:      "Booking creation attempts by outcome.",
		}, []string{"service", "outcome"}),

		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_transitions_total",
			Help:      "Applied booking status transitions.",
		}, []string{"service", "from", "to"}),

		CacheRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"service", "cache", "result"}),

		EventsPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Booking events handed to the broker.",
		}, []string{"service", "type", "status"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.TxRetriesTotal,
		m.TxFailuresTotal,
		m.BookingOutcomesTotal,
		m.StatusTransitions,
		m.CacheRequestsTotal,
		m.EventsPublishedTotal,
	)

	return m
}

// ServiceName имя сервиса, используемое как label
func (m *Metrics) ServiceName() string {
	if m == nil {
		return ""
	}
	return m.serviceName
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(seconds)
}

func (m *Metrics) ObserveDBQuery(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueriesTotal.WithLabelValues(m.serviceName, operation, status).Inc()
	m.DBQueryDuration.WithLabelValues(m.serviceName, operation).Observe(seconds)
}

func (m *Metrics) IncTxRetry(isolation string) {
	if m == nil {
		return
	}
	m.TxRetriesTotal.WithLabelValues(m.serviceName, isolation).Inc()
}

func (m *Metrics) IncTxExhausted(isolation string) {
	if m == nil {
		return
	}
	m.TxFailuresTotal.WithLabelValues(m.serviceName, isolation).Inc()
}

func (m *Metrics) IncBookingOutcome(outcome string) {
	if m == nil {
		return
	}
	m.BookingOutcomesTotal.WithLabelValues(m.serviceName, outcome).Inc()
}

func (m *Metrics) IncStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(m.serviceName, from, to).Inc()
}

func (m *Metrics) IncCacheRequest(cache, result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(m.serviceName, cache, result).Inc()
}

func (m *Metrics) IncEventPublished(eventType, status string) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(m.serviceName, eventType, status).Inc()
}
