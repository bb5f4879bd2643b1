// Package domain defines the workout model logged by the map tracker.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind discriminates the workout variants.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ParseKind maps a form value onto a Kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindRunning, KindCycling:
		return Kind(value), nil
	default:
		return "", fmt.Errorf("%w: unknown workout kind %q", ErrInvalidInput, value)
	}
}

// Icon returns the glyph shown next to workouts of this kind.
func (k Kind) Icon() string {
	if k == KindRunning {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Running carries the running-only inputs and the derived pace.
type Running struct {
	Cadence float64
	Pace    float64 // min per distance unit
}

// Cycling carries the cycling-only inputs and the derived speed.
type Cycling struct {
	ElevationGain float64
	Speed         float64 // distance units per hour
}

// Workout is a single logged activity. Exactly one of Running or Cycling is set.
type Workout struct {
	ID          string
	Coordinates Coordinates
	Distance    float64
	Duration    float64 // minutes
	CreatedAt   time.Time
	Description string
	ClickCount  int

	Running *Running
	Cycling *Cycling
}

// NewRunning builds a running workout. Inputs are trusted; validate them first.
func NewRunning(coords Coordinates, distance, duration, cadence float64, at time.Time) Workout {
	return Workout{
		ID:          uuid.NewString(),
		Coordinates: coords,
		Distance:    distance,
		Duration:    duration,
		CreatedAt:   at,
		Description: Describe(KindRunning, at),
		Running:     &Running{Cadence: cadence, Pace: Pace(distance, duration)},
	}
}

// NewCycling builds a cycling workout. Inputs are trusted; validate them first.
func NewCycling(coords Coordinates, distance, duration, elevationGain float64, at time.Time) Workout {
	return Workout{
		ID:          uuid.NewString(),
		Coordinates: coords,
		Distance:    distance,
		Duration:    duration,
		CreatedAt:   at,
		Description: Describe(KindCycling, at),
		Cycling:     &Cycling{ElevationGain: elevationGain, Speed: Speed(distance, duration)},
	}
}

// Pace is minutes per distance unit.
func Pace(distance, duration float64) float64 {
	return duration / distance
}

// Speed is distance units per hour.
func Speed(distance, duration float64) float64 {
	return distance / (duration / 60)
}

// Describe renders the human readable label, e.g. "Running on January 15".
func Describe(kind Kind, at time.Time) string {
	title := cases.Title(language.English).String(string(kind))
	return fmt.Sprintf("%s on %s %d", title, at.Month(), at.Day())
}

// Kind reports the variant of the workout.
func (w Workout) Kind() Kind {
	if w.Running != nil {
		return KindRunning
	}
	return KindCycling
}

// Match dispatches on the workout variant.
func Match[T any](w Workout, onRunning func(Running) T, onCycling func(Cycling) T) T {
	if w.Running != nil {
		return onRunning(*w.Running)
	}
	return onCycling(*w.Cycling)
}

// RegisterInteraction counts a click on the workout's list entry.
func (w *Workout) RegisterInteraction() {
	w.ClickCount++
}

// Recompute refreshes the derived metric from the raw inputs.
func (w *Workout) Recompute() {
	switch {
	case w.Running != nil:
		w.Running.Pace = Pace(w.Distance, w.Duration)
	case w.Cycling != nil:
		w.Cycling.Speed = Speed(w.Distance, w.Duration)
	}
}
