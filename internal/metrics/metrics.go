// Package metrics holds the domain counters exported next to the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	calculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "macrosdb",
			Subsystem: "nutrition",
			Name:      "calculations_total",
			Help:      "Nutrition calculations served, by kind.",
		},
		[]string{"kind"},
	)

	plansSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "macrosdb",
			Subsystem: "diet_plans",
			Name:      "saved_total",
			Help:      "Diet plans written, by target mode.",
		},
		[]string{"mode"},
	)

	persistenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "macrosdb",
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Storage operations that failed and were rolled back.",
		},
		[]string{"op"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "macrosdb",
			Subsystem: "food_cache",
			Name:      "lookups_total",
			Help:      "Food cache lookups, by result.",
		},
		[]string{"result"},
	)
)

// Register adds the collectors to reg. Registering twice is not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{calculations, plansSaved, persistenceErrors, cacheLookups} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// Calculation counts a served nutrition calculation.
func Calculation(kind string) {
	calculations.WithLabelValues(kind).Inc()
}

// PlanSaved counts a diet plan write in derived or manual mode.
func PlanSaved(auto bool) {
	mode := "manual"
	if auto {
		mode = "derived"
	}
	plansSaved.WithLabelValues(mode).Inc()
}

// PersistenceError counts a failed storage operation.
func PersistenceError(op string) {
	persistenceErrors.WithLabelValues(op).Inc()
}

// CacheLookup counts a food cache hit or miss.
func CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}
