// Package form tracks the workout entry form.
package form

import (
	"math"
	"strconv"
	"strings"
	"time"

	"example.com/mapty/internal/domain"
)

// Field names an input of the form.
type Field string

const (
	FieldDistance  Field = "distance"
	FieldDuration  Field = "duration"
	FieldCadence   Field = "cadence"
	FieldElevation Field = "elevation"
)

// Values are the raw field contents as typed by the user.
type Values struct {
	Kind      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

// Submission is a validated form.
type Submission struct {
	Kind     domain.Kind
	Distance float64
	Duration float64
	// Metric is the cadence for running and the elevation gain for cycling.
	Metric float64
}

// State is what the page needs to draw the form.
type State struct {
	Hidden bool
	// Display is "none" while the form is settling after a hide, "grid" otherwise.
	Display     string
	Kind        domain.Kind
	Focus       Field
	MetricField Field
	Values      Values
	Interactive bool
	ReenableAt  time.Time
}

// Controller shows, hides and validates the form.
type Controller struct {
	delay time.Duration
	now   func() time.Time

	hidden     bool
	kind       domain.Kind
	values     Values
	focus      Field
	reenableAt time.Time
}

// NewController returns a hidden form with running selected.
func NewController(delay time.Duration, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{delay: delay, now: now, hidden: true, kind: domain.KindRunning}
}

// Show reveals the form and focuses the distance field.
func (c *Controller) Show() {
	c.hidden = false
	c.focus = FieldDistance
}

// ChangeKind selects the workout kind, swapping the cadence and elevation rows.
func (c *Controller) ChangeKind(kind domain.Kind) {
	c.kind = kind
	c.values.Kind = string(kind)
}

// MetricField is the kind-specific field currently visible.
func (c *Controller) MetricField() Field {
	if c.kind == domain.KindCycling {
		return FieldElevation
	}
	return FieldCadence
}

// Submit converts and validates the raw values. On success the fields are
// cleared and the form hidden; on failure the form keeps the typed values.
func (c *Controller) Submit(v Values) (Submission, error) {
	kind := c.kind
	if v.Kind != "" {
		parsed, err := domain.ParseKind(v.Kind)
		if err != nil {
			c.values = v
			return Submission{}, err
		}
		kind = parsed
	}

	sub := Submission{
		Kind:     kind,
		Distance: number(v.Distance),
		Duration: number(v.Duration),
	}
	if kind == domain.KindRunning {
		sub.Metric = number(v.Cadence)
	} else {
		sub.Metric = number(v.Elevation)
	}

	if err := domain.ValidateInputs(kind, sub.Distance, sub.Duration, sub.Metric); err != nil {
		c.kind = kind
		c.values = v
		return Submission{}, err
	}

	c.kind = kind
	c.hide()
	return sub, nil
}

func (c *Controller) hide() {
	c.values = Values{Kind: string(c.kind)}
	c.hidden = true
	c.focus = ""
	c.reenableAt = c.now().Add(c.delay)
}

// State reports the form as it should currently be drawn.
func (c *Controller) State() State {
	now := c.now()
	interactive := !now.Before(c.reenableAt)
	display := "grid"
	if !interactive {
		display = "none"
	}
	values := c.values
	values.Kind = string(c.kind)
	return State{
		Hidden:      c.hidden,
		Display:     display,
		Kind:        c.kind,
		Focus:       c.focus,
		MetricField: c.MetricField(),
		Values:      values,
		Interactive: interactive,
		ReenableAt:  c.reenableAt,
	}
}

// number converts like a unary plus on a text field: blank is zero, garbage is NaN.
func number(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
