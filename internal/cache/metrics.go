package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymtracker_cache_requests_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	evictionMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymtracker_cache_evictions_total",
		Help: "Cache evictions by reason",
	}, []string{"reason"})

	hitMetric  = requestMetric.WithLabelValues("hit")
	missMetric = requestMetric.WithLabelValues("miss")
)
