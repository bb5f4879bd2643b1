// Package persistence reads and writes the workout collection as a single blob.
package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"example.com/mapty/internal/domain"
)

// ErrNotFound is returned by a Store when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Store is a string-keyed blob store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Repository persists the whole workout collection under one key.
type Repository struct {
	store Store
	key   string
}

// NewRepository constructs a Repository.
func NewRepository(store Store, key string) *Repository {
	return &Repository{store: store, key: key}
}

// Load returns the persisted workouts. Absent or malformed data yields an empty collection.
func (r *Repository) Load(ctx context.Context) []domain.Workout {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("key", r.key).Msg("read persisted workouts")
		}
		return nil
	}
	workouts, err := Decode(raw)
	if err != nil {
		log.Debug().Err(err).Str("key", r.key).Msg("discarding malformed workouts")
		return nil
	}
	return workouts
}

// Save overwrites the persisted collection.
func (r *Repository) Save(ctx context.Context, workouts []domain.Workout) error {
	raw, err := Encode(workouts)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key, raw)
}

// Clear removes the persisted collection.
func (r *Repository) Clear(ctx context.Context) error {
	err := r.store.Remove(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Encode serialises workouts to the persisted JSON layout.
func Encode(workouts []domain.Workout) (string, error) {
	records := make([]Record, 0, len(workouts))
	for _, w := range workouts {
		records = append(records, toRecord(w))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses the persisted JSON layout. Derived metrics are recomputed from
// the raw inputs rather than trusted; records of an unknown kind or with
// out-of-range inputs are skipped.
func Decode(raw string) ([]domain.Workout, error) {
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	workouts := make([]domain.Workout, 0, len(records))
	for _, rec := range records {
		w, ok := rec.toWorkout()
		if !ok {
			log.Debug().Str("id", rec.ID).Str("kind", rec.Kind).Msg("skipping workout record")
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}
