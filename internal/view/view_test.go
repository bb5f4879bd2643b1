package view

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/mapty/internal/domain"
)

var day = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestNewRowRunning(t *testing.T) {
	w := domain.NewRunning(domain.Coordinates{}, 5.2, 24, 178, day)
	row := NewRow(w)

	require.Equal(t, w.ID, row.ID)
	require.Equal(t, "Running on January 15", row.Title)
	require.Equal(t, []Detail{
		{Icon: "🏃‍♂️", Value: "5.2", Unit: "m"},
		{Icon: "⏱", Value: "24", Unit: "min"},
		{Icon: "⚡️", Value: "4.6", Unit: "min/m"},
		{Icon: "🦶🏼", Value: "178", Unit: "spm"},
	}, row.Details)
}

func TestNewRowCycling(t *testing.T) {
	w := domain.NewCycling(domain.Coordinates{}, 27, 95, 523, day)
	row := NewRow(w)

	require.Equal(t, domain.KindCycling, row.Kind)
	require.Equal(t, Detail{Icon: "⚡️", Value: "17.1", Unit: "km/h"}, row.Details[2])
	require.Equal(t, Detail{Icon: "⛰", Value: "523", Unit: "ft"}, row.Details[3])
}

func TestListPrependsNewestFirst(t *testing.T) {
	var l List
	a := domain.NewRunning(domain.Coordinates{}, 1, 1, 1, day)
	b := domain.NewCycling(domain.Coordinates{}, 1, 1, 1, day)

	r := NewRenderer(&l, nil)
	r.RenderWorkout(a)
	r.RenderWorkout(b)

	rows := l.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, b.ID, rows[0].ID)
	require.Equal(t, a.ID, rows[1].ID)
}

type placer struct {
	placed []string
	err    error
}

func (p *placer) PlaceMarker(w domain.Workout) error {
	if p.err != nil {
		return p.err
	}
	p.placed = append(p.placed, w.ID)
	return nil
}

func TestRenderMarkerDelegates(t *testing.T) {
	p := &placer{}
	r := NewRenderer(&List{}, p)
	w := domain.NewRunning(domain.Coordinates{}, 1, 1, 1, day)

	require.NoError(t, r.RenderMarker(w))
	require.Equal(t, []string{w.ID}, p.placed)

	p.err = errors.New("no map")
	require.Error(t, r.RenderMarker(w))
}

func TestWriteHTML(t *testing.T) {
	w := domain.NewCycling(domain.Coordinates{}, 27, 95, 523, day)
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []Row{NewRow(w)}))

	out := buf.String()
	require.Contains(t, out, `class="workout workout--cycling"`)
	require.Contains(t, out, `data-id="`+w.ID+`"`)
	require.Contains(t, out, "Cycling on January 15")
	require.Contains(t, out, "17.1")
	require.Contains(t, out, "km/h")
}
