// Package observability registers the tracker's Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "logged_total",
		Help:      "Number of workouts accepted from the entry form, labeled by kind.",
	}, []string{"kind"})

	submissionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "submissions_rejected_total",
		Help:      "Number of form submissions rejected by validation.",
	})

	lastWorkoutGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "last_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recently logged workout.",
	})

	persistenceWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "persistence",
		Name:      "writes_total",
		Help:      "Full-collection writes to the blob store, labeled by result.",
	}, []string{"result"})

	geolocationResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "map",
		Name:      "geolocation_results_total",
		Help:      "Geolocation outcomes, labeled by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(workoutsLogged, submissionsRejected, lastWorkoutGauge, persistenceWrites, geolocationResults)
}

// RecordWorkoutLogged counts an accepted workout and moves the watermark.
func RecordWorkoutLogged(kind string, ts time.Time) {
	workoutsLogged.WithLabelValues(kind).Inc()
	if !ts.IsZero() {
		lastWorkoutGauge.Set(float64(ts.Unix()))
	}
}

// RecordSubmissionRejected counts a failed validation.
func RecordSubmissionRejected() {
	submissionsRejected.Inc()
}

// RecordPersisted counts a collection write.
func RecordPersisted(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	persistenceWrites.WithLabelValues(result).Inc()
}

// RecordGeolocation counts a geolocation outcome.
func RecordGeolocation(ok bool) {
	result := "granted"
	if !ok {
		result = "denied"
	}
	geolocationResults.WithLabelValues(result).Inc()
}
