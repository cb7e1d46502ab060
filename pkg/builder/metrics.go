package builder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	choicesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskbuilder_choices_total",
		Help: "The total number of accepted step choices",
	})
	togglesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskbuilder_toggles_total",
		Help: "The total number of accepted product toggles",
	})
	resetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskbuilder_resets_total",
		Help: "The total number of builder resets",
	})
)
