package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clientsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zendesk_clients_created_total",
		Help: "Total Zendesk clients constructed.",
	})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zendesk_client_requests_total",
		Help: "Total API requests by method and response status.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zendesk_client_request_duration_seconds",
		Help:    "API request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zendesk_client_retries_total",
		Help: "Total API requests retried after a retryable failure.",
	})
)
