package api

import (
	"errors"
	"time"

	"example.com/mapty/internal/app"
	"example.com/mapty/internal/domain"
	"example.com/mapty/internal/form"
	"example.com/mapty/internal/mapview/leaflet"
	"example.com/mapty/internal/view"
)

// PositionRequest is the payload for POST /v1/geolocation and POST /v1/map/clicks.
type PositionRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Validate ensures request correctness.
func (r PositionRequest) Validate() error {
	if r.Lat == nil || r.Lng == nil {
		return errors.New("lat and lng are required")
	}
	if *r.Lat < -90 || *r.Lat > 90 {
		return errors.New("lat must be within [-90, 90]")
	}
	if *r.Lng < -180 || *r.Lng > 180 {
		return errors.New("lng must be within [-180, 180]")
	}
	return nil
}

// Coordinates converts a validated request.
func (r PositionRequest) Coordinates() domain.Coordinates {
	return domain.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
}

// WorkoutView exposes a logged workout.
type WorkoutView struct {
	WorkoutID     string     `json:"workout_id"`
	Kind          string     `json:"kind"`
	Coordinates   [2]float64 `json:"coordinates"`
	Distance      float64    `json:"distance"`
	Duration      float64    `json:"duration"`
	Cadence       *float64   `json:"cadence,omitempty"`
	Pace          *float64   `json:"pace,omitempty"`
	ElevationGain *float64   `json:"elevation_gain,omitempty"`
	Speed         *float64   `json:"speed,omitempty"`
	Description   string     `json:"description"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ListWorkoutsResponse packages the workouts, most recent first.
type ListWorkoutsResponse struct {
	Items []WorkoutView `json:"items"`
}

// FormView describes how the entry form should be drawn.
type FormView struct {
	Hidden      bool        `json:"hidden"`
	Display     string      `json:"display"`
	Kind        string      `json:"kind"`
	Focus       string      `json:"focus,omitempty"`
	MetricField string      `json:"metric_field"`
	Values      form.Values `json:"values"`
	ReenableAt  *time.Time  `json:"reenable_at,omitempty"`
}

// PageState is everything the page script needs to redraw.
type PageState struct {
	Phase            string           `json:"phase"`
	Form             FormView         `json:"form"`
	Workouts         []view.Row       `json:"workouts"`
	Map              leaflet.Snapshot `json:"map"`
	AwaitingPosition bool             `json:"awaiting_position"`
	Notices          []string         `json:"notices,omitempty"`
}

func toFormView(s form.State) FormView {
	fv := FormView{
		Hidden:      s.Hidden,
		Display:     s.Display,
		Kind:        string(s.Kind),
		Focus:       string(s.Focus),
		MetricField: string(s.MetricField),
		Values:      s.Values,
	}
	if !s.Interactive {
		at := s.ReenableAt
		fv.ReenableAt = &at
	}
	return fv
}

func toWorkoutView(w domain.Workout) WorkoutView {
	v := WorkoutView{
		WorkoutID:   w.ID,
		Kind:        string(w.Kind()),
		Coordinates: [2]float64{w.Coordinates.Lat, w.Coordinates.Lng},
		Distance:    w.Distance,
		Duration:    w.Duration,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
	}
	domain.Match(w,
		func(r domain.Running) struct{} {
			v.Cadence, v.Pace = &r.Cadence, &r.Pace
			return struct{}{}
		},
		func(c domain.Cycling) struct{} {
			v.ElevationGain, v.Speed = &c.ElevationGain, &c.Speed
			return struct{}{}
		},
	)
	return v
}

// toWorkoutViews lists workouts in display order.
func toWorkoutViews(snap app.Snapshot) []WorkoutView {
	items := make([]WorkoutView, 0, len(snap.Workouts))
	for i := len(snap.Workouts) - 1; i >= 0; i-- {
		items = append(items, toWorkoutView(snap.Workouts[i]))
	}
	return items
}
