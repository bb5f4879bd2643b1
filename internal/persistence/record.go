package persistence

import (
	"time"

	"example.com/mapty/internal/domain"
)

// Record is the plain persisted form of a workout.
type Record struct {
	ID            string     `json:"id"`
	Coordinates   [2]float64 `json:"coordinates"`
	Distance      float64    `json:"distance"`
	Duration      float64    `json:"duration"`
	CreatedAt     time.Time  `json:"createdAt"`
	Kind          string     `json:"kind"`
	Cadence       *float64   `json:"cadence,omitempty"`
	Pace          *float64   `json:"pace,omitempty"`
	ElevationGain *float64   `json:"elevationGain,omitempty"`
	Speed         *float64   `json:"speed,omitempty"`
	Description   string     `json:"description"`
	ClickCount    int        `json:"clickCount"`
}

func toRecord(w domain.Workout) Record {
	rec := Record{
		ID:          w.ID,
		Coordinates: [2]float64{w.Coordinates.Lat, w.Coordinates.Lng},
		Distance:    w.Distance,
		Duration:    w.Duration,
		CreatedAt:   w.CreatedAt,
		Kind:        string(w.Kind()),
		Description: w.Description,
		ClickCount:  w.ClickCount,
	}
	switch {
	case w.Running != nil:
		cadence, pace := w.Running.Cadence, w.Running.Pace
		rec.Cadence, rec.Pace = &cadence, &pace
	case w.Cycling != nil:
		elevation, speed := w.Cycling.ElevationGain, w.Cycling.Speed
		rec.ElevationGain, rec.Speed = &elevation, &speed
	}
	return rec
}

func (r Record) toWorkout() (domain.Workout, bool) {
	w := domain.Workout{
		ID:          r.ID,
		Coordinates: domain.Coordinates{Lat: r.Coordinates[0], Lng: r.Coordinates[1]},
		Distance:    r.Distance,
		Duration:    r.Duration,
		CreatedAt:   r.CreatedAt,
		Description: r.Description,
		ClickCount:  r.ClickCount,
	}
	var metric float64
	switch domain.Kind(r.Kind) {
	case domain.KindRunning:
		metric = deref(r.Cadence)
		w.Running = &domain.Running{Cadence: metric}
	case domain.KindCycling:
		metric = deref(r.ElevationGain)
		w.Cycling = &domain.Cycling{ElevationGain: metric}
	default:
		return domain.Workout{}, false
	}
	if domain.ValidateInputs(w.Kind(), w.Distance, w.Duration, metric) != nil {
		return domain.Workout{}, false
	}
	if w.Description == "" {
		w.Description = domain.Describe(w.Kind(), w.CreatedAt)
	}
	w.Recompute()
	return w, true
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
