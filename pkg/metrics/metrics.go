package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections prometheus.Gauge
	DBInUse           prometheus.Gauge
	DBIdle            prometheus.Gauge
	DBWaitCount       prometheus.Gauge

	// Генерация бронирований
	BookingsGenerated        prometheus.Counter
	ScheduleGenerationFailed *prometheus.CounterVec
	ScheduleSkipped          *prometheus.CounterVec
	InvalidSchedules         prometheus.Counter
	GenerationRunDuration    *prometheus.HistogramVec
}

// New регистрирует метрики в глобальном registry
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном registry (в тестах prometheus.NewRegistry())
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established database connections",
			ConstLabels: constLabels,
		}),

		DBInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of database connections currently in use",
			ConstLabels: constLabels,
		}),

		DBIdle: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}),

		DBWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),

		BookingsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name:        "recurring_bookings_generated_total",
			Help:        "Total number of bookings materialized from recurring schedules",
			ConstLabels: constLabels,
		}),

		ScheduleGenerationFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "recurring_schedule_generation_failures_total",
			Help:        "Total number of per-schedule generation failures",
			ConstLabels: constLabels,
		}, []string{"reason"}),

		ScheduleSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "recurring_schedule_generation_skipped_total",
			Help:        "Total number of schedules skipped by the eligibility gate",
			ConstLabels: constLabels,
		}, []string{"reason"}),

		InvalidSchedules: factory.NewCounter(prometheus.CounterOpts{
			Name:        "recurring_invalid_schedules_total",
			Help:        "Total number of schedules whose pattern is missing required fields",
			ConstLabels: constLabels,
		}),

		GenerationRunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "recurring_generation_run_duration_seconds",
			Help:        "Duration of a generation run",
			ConstLabels: constLabels,
			Buckets:     []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"trigger"}),
	}
}
