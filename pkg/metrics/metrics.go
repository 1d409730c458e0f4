package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса.
// Все методы безопасны для nil-получателя: выключенные метрики просто ничего не делают.
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	dbOpen        prometheus.Gauge
	dbInUse       prometheus.Gauge
	dbIdle        prometheus.Gauge
	dbWaitCount   prometheus.Gauge
	slotConflicts prometheus.Counter
	transitions   *prometheus.CounterVec
	cacheRequests *prometheus.CounterVec
}

// New регистрирует метрики в reg. Если reg == nil, используется prometheus.DefaultRegisterer.
func New(serviceName string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
		dbOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}),
		dbInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),
		dbIdle: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}),
		dbWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),
		slotConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name:        "reservation_slot_conflicts_total",
			Help:        "Reservation attempts rejected because the slot was taken",
			ConstLabels: constLabels,
		}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservation_transitions_total",
			Help:        "Reservation status transitions",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),
		cacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_cache_requests_total",
			Help:        "Availability cache lookups by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}
}

// ObserveHTTP учитывает обработанный HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetDBStats обновляет метрики пула соединений
func (m *Metrics) SetDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbOpen.Set(float64(stats.OpenConnections))
	m.dbInUse.Set(float64(stats.InUse))
	m.dbIdle.Set(float64(stats.Idle))
	m.dbWaitCount.Set(float64(stats.WaitCount))
}

// SlotConflict учитывает отказ из-за занятого слота
func (m *Metrics) SlotConflict() {
	if m == nil {
		return
	}
	m.slotConflicts.Inc()
}

// Transition учитывает смену статуса бронирования
func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues("miss").Inc()
}
