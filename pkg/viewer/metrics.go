package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	componentsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bim_viewer_components_total",
			Help: "Components processed by the model loader, by outcome.",
		},
		[]string{"outcome"},
	)

	loadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bim_viewer_load_duration_seconds",
			Help:    "Model load duration, by result.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"result"},
	)
)
