package trends

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeEmpty = "empty"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trendboard",
		Name:      "fetch_total",
		Help:      "Trend API fetches by outcome (ok, empty, rejected, transport, malformed).",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trendboard",
		Name:      "fetch_duration_seconds",
		Help:      "Wall time of a single trend API fetch.",
		Buckets:   prometheus.DefBuckets,
	})
)
