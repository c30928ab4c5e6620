package lighting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settingsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptive_lighting_settings_applied_total",
		Help: "The total number of lighting settings applied per entity",
	}, []string{"entity_id", "trigger"})

	applyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptive_lighting_apply_failures_total",
		Help: "The total number of failed apply attempts per entity",
	}, []string{"entity_id"})

	cyclesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adaptive_lighting_cycles_skipped_total",
		Help: "The total number of adjustment cycles skipped, by reason",
	}, []string{"reason"})
)
