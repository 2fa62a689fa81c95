package tenancy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intellisales",
		Subsystem: "tenancy",
		Name:      "resolutions_total",
		Help:      "Resoluciones de tenant por estrategia ganadora (o not_found).",
	}, []string{"source"})

	provisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intellisales",
		Subsystem: "tenancy",
		Name:      "provisions_total",
		Help:      "Aprovisionamientos de tenant por resultado.",
	}, []string{"result"})
)
