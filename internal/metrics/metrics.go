// Package metrics exposes Prometheus collectors for the agenda and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"planeat-api/internal/agenda"
)

const namespace = "planeat"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Orphans        *prometheus.CounterVec
	DaysCreated    prometheus.Counter
	EntriesCreated *prometheus.CounterVec
	AuditFindings  *prometheus.GaugeVec
	AuditDuration  prometheus.Histogram
	AuditLastRun   prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Orphans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "agenda", Name: "orphan_entries_total",
			Help: "Schedule entries dropped by a join, by reason.",
		}, []string{"reason"}),
		DaysCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "agenda", Name: "calendar_days_created_total",
			Help: "Calendar days created lazily on first schedule.",
		}),
		EntriesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "agenda", Name: "schedule_entries_created_total",
			Help: "Schedule entries created, by meal type.",
		}, []string{"meal_type"}),
		AuditFindings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "audit", Name: "findings",
			Help: "Problems found by the last integrity audit, by kind.",
		}, []string{"kind"}),
		AuditDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "audit", Name: "duration_seconds",
			Help: "Integrity audit run time.", Buckets: prometheus.DefBuckets,
		}),
		AuditLastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "audit", Name: "last_run_timestamp_seconds",
			Help: "Unix time of the last finished audit.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Orphans, m.DaysCreated, m.EntriesCreated,
		m.AuditFindings, m.AuditDuration, m.AuditLastRun,
		m.HTTPRequests, m.HTTPDuration,
	)
	m.Orphans.WithLabelValues(agenda.ReasonMissingRecipe)
	return m
}

// ObserveOrphan implements agenda.Observer.
func (m *Metrics) ObserveOrphan(o agenda.Orphan) {
	m.Orphans.WithLabelValues(o.Reason).Inc()
}

// ObserveAudit records the outcome of an integrity audit.
func (m *Metrics) ObserveAudit(rep agenda.Report, took time.Duration) {
	m.AuditFindings.WithLabelValues("orphan_recipe_refs").Set(float64(len(rep.OrphanRecipeRefs)))
	m.AuditFindings.WithLabelValues("orphan_day_refs").Set(float64(len(rep.OrphanDayRefs)))
	m.AuditFindings.WithLabelValues("duplicate_days").Set(float64(len(rep.DuplicateDays)))
	m.AuditDuration.Observe(took.Seconds())
	m.AuditLastRun.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware counts requests by matched route so path parameters do not
// explode label cardinality.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			// resolve the error here so the recorded status is the one sent
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(http.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		route := c.Route().Path
		m.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return nil
	}
}
