package view

import (
	"embed"
	"html/template"
	"io"

	"example.com/mapty/internal/domain"
)

//go:embed templates/*.html
var templates embed.FS

var rowTemplate = template.Must(template.ParseFS(templates, "templates/rows.html"))

// List holds rendered rows in display order, newest first.
type List struct {
	rows []Row
}

// Prepend inserts a row directly after the form, ahead of every existing row.
func (l *List) Prepend(r Row) {
	l.rows = append([]Row{r}, l.rows...)
}

// Rows returns a copy of the rows in display order.
func (l *List) Rows() []Row {
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// WriteHTML renders the rows as list items.
func WriteHTML(w io.Writer, rows []Row) error {
	return rowTemplate.ExecuteTemplate(w, "rows.html", rows)
}

// MarkerPlacer places a workout marker on the map.
type MarkerPlacer interface {
	PlaceMarker(w domain.Workout) error
}

// Renderer draws workouts into the list and onto the map.
type Renderer struct {
	list    *List
	markers MarkerPlacer
}

// NewRenderer constructs a Renderer.
func NewRenderer(list *List, markers MarkerPlacer) *Renderer {
	return &Renderer{list: list, markers: markers}
}

// RenderWorkout adds the workout's row to the top of the list.
func (r *Renderer) RenderWorkout(w domain.Workout) {
	r.list.Prepend(NewRow(w))
}

// RenderMarker delegates to the map.
func (r *Renderer) RenderMarker(w domain.Workout) error {
	return r.markers.PlaceMarker(w)
}
