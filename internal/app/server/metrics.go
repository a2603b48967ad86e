package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"allowhost/internal/app/version"
	"allowhost/internal/domain"
)

const (
	metricsLabelMode    = "mode"
	metricsLabelAllowed = "allowed"
)

type metrics struct {
	checks   *prometheus.CounterVec
	failures prometheus.Counter
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "allowhost_checks_total",
			Help: "Completed hostname checks by mode and decision.",
		}, []string{metricsLabelMode, metricsLabelAllowed}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "allowhost_check_failures_total",
			Help: "Hostname checks aborted by a storage failure.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "allowhost_check_duration_seconds",
			Help:    "Time spent evaluating a hostname check, store lookup included.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "allowhost_build_info",
		Help: "Version of the running allowhost binary.",
	}, []string{"version", "goversion"})
	info := version.GetInfo()
	buildInfo.WithLabelValues(info.Version, info.GoVersion).Set(1)

	for _, c := range []prometheus.Collector{m.checks, m.failures, m.duration, buildInfo} {
		if err := reg.Register(c); err != nil {
			log.Warn("metrics: register collector", "error", err)
		}
	}

	return m
}

func (m *metrics) observe(result domain.CheckResult, err error, took time.Duration) {
	m.duration.Observe(took.Seconds())
	if err != nil {
		m.failures.Inc()
		return
	}
	m.checks.WithLabelValues(result.Mode.String(), strconv.FormatBool(result.Allowed)).Inc()
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Timeout:           10 * time.Second,
	})
}
