package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slasklist_transport_requests_total",
		Help: "The total number of list requests by response code",
	}, []string{"code"})
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slasklist_transport_request_seconds",
		Help:    "Duration of list requests",
		Buckets: prometheus.DefBuckets,
	})
)
