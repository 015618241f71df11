package zendesk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var defaultClientBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "zendesk_default_client_constructions_total",
	Help: "Lazy default client constructions by result.",
}, []string{"result"})
