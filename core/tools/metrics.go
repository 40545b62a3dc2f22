package tools

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_lookups_total",
			Help: "Weather API lookups by tool and result status",
		},
		[]string{"tool", "status"},
	)

	lookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_lookup_duration_seconds",
			Help:    "Latency of weather API lookups",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
)

func observe(ctx context.Context, tool string, res Result, start time.Time) {
	lookupCounter.WithLabelValues(tool, res.Status).Inc()
	lookupDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	if res.Status == StatusError {
		clog.FromContext(ctx).With("tool", tool).Warn(res.ErrorMessage)
	}
}
