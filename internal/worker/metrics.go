package worker

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry             *prometheus.Registry
	jobsTotal            *prometheus.CounterVec
	jobDuration          *prometheus.HistogramVec
	activeJobs           prometheus.Gauge
	operationsTotal      prometheus.Counter
	webhookFailures      *prometheus.CounterVec
	pixelsProcessedTotal prometheus.Counter
	bytesSavedTotal      prometheus.Counter
	computeTimeMSTotal   prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &metrics{
		registry: registry,
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pixeledit",
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Render jobs by source type and final status.",
		}, []string{"source_type", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pixeledit",
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Wall time spent on each render job.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source_type", "status"}),
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pixeledit",
			Subsystem: "worker",
			Name:      "active_jobs",
			Help:      "Render jobs holding a worker slot.",
		}),
		operationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pixeledit",
			Subsystem: "worker",
			Name:      "operations_applied_total",
			Help:      "Edit operations applied across successful jobs.",
		}),
		webhookFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pixeledit",
			Subsystem: "worker",
			Name:      "webhook_failures_total",
			Help:      "Webhook deliveries that exhausted their retries.",
		}, []string{"event"}),
		pixelsProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pixeledit",
			Subsystem: "usage",
			Name:      "pixels_processed_total",
			Help:      "Source pixels decoded across successful jobs.",
		}),
		bytesSavedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pixeledit",
			Subsystem: "usage",
			Name:      "bytes_saved_total",
			Help:      "Bytes saved between source and output across successful jobs.",
		}),
		computeTimeMSTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pixeledit",
			Subsystem: "usage",
			Name:      "compute_time_ms_total",
			Help:      "Compute time in milliseconds across successful jobs.",
		}),
	}

	registry.MustRegister(
		m.jobsTotal,
		m.jobDuration,
		m.activeJobs,
		m.operationsTotal,
		m.webhookFailures,
		m.pixelsProcessedTotal,
		m.bytesSavedTotal,
		m.computeTimeMSTotal,
	)
	return m
}

func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
