// Package events publishes workout lifecycle events to Kafka.
package events

import (
	"context"
	"time"
)

const (
	TypeWorkoutLogged = "workout.logged"
	TypeWorkoutsReset = "workouts.reset"
)

// WorkoutLogged is emitted when a form submission creates a workout.
type WorkoutLogged struct {
	WorkoutID   string     `json:"workout_id"`
	Kind        string     `json:"kind"`
	Coordinates [2]float64 `json:"coordinates"`
	Distance    float64    `json:"distance"`
	Duration    float64    `json:"duration"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// WorkoutsReset is emitted when the persisted collection is wiped.
type WorkoutsReset struct {
	OccurredAt time.Time `json:"occurred_at"`
}

// Event is a typed payload with a partition key.
type Event struct {
	Type    string
	Key     string
	Payload any
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NoopPublisher discards events.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }
