// Package view renders workouts as list rows and map markers.
package view

import (
	"fmt"
	"strconv"

	"example.com/mapty/internal/domain"
)

// Detail is one icon/value/unit cell of a row.
type Detail struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Row is a rendered workout list entry.
type Row struct {
	ID      string      `json:"id"`
	Kind    domain.Kind `json:"kind"`
	Title   string      `json:"title"`
	Details []Detail    `json:"details"`
}

// NewRow builds the list entry for a workout. Derived metrics are rounded to one decimal.
func NewRow(w domain.Workout) Row {
	details := []Detail{
		{Icon: w.Kind().Icon(), Value: plain(w.Distance), Unit: "m"},
		{Icon: "⏱", Value: plain(w.Duration), Unit: "min"},
	}
	details = append(details, domain.Match(w,
		func(r domain.Running) []Detail {
			return []Detail{
				{Icon: "⚡️", Value: oneDecimal(r.Pace), Unit: "min/m"},
				{Icon: "🦶🏼", Value: plain(r.Cadence), Unit: "spm"},
			}
		},
		func(c domain.Cycling) []Detail {
			return []Detail{
				{Icon: "⚡️", Value: oneDecimal(c.Speed), Unit: "km/h"},
				{Icon: "⛰", Value: plain(c.ElevationGain), Unit: "ft"},
			}
		},
	)...)
	return Row{ID: w.ID, Kind: w.Kind(), Title: w.Description, Details: details}
}

func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func oneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
