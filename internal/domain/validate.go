package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when submitted workout values are rejected.
var ErrInvalidInput = errors.New("inputs have to be positive numbers")

// ValidateMetrics ensures every value is a finite number greater than zero.
func ValidateMetrics(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return ErrInvalidInput
		}
	}
	return nil
}

// ValidateInputs checks the raw values of a workout and the pace or speed
// derived from them. Extreme but positive inputs can overflow the derived
// metric, which then cannot be persisted.
func ValidateInputs(kind Kind, distance, duration, metric float64) error {
	if err := ValidateMetrics(distance, duration, metric); err != nil {
		return err
	}
	derived := Speed(distance, duration)
	if kind == KindRunning {
		derived = Pace(distance, duration)
	}
	if ValidateMetrics(derived) != nil {
		return fmt.Errorf("%w: %s metric out of range", ErrInvalidInput, kind)
	}
	return nil
}
