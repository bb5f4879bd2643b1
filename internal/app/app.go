// Package app coordinates the map, the entry form, the workout list and
// persistence. Every event handler runs under a single lock, so handlers
// observe one logical thread of control.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/mapty/internal/domain"
	"example.com/mapty/internal/events"
	"example.com/mapty/internal/form"
	"example.com/mapty/internal/mapview"
	"example.com/mapty/internal/observability"
	"example.com/mapty/internal/persistence"
	"example.com/mapty/internal/view"
)

var (
	// ErrWorkoutNotFound is returned when a list entry refers to no known workout.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrNoPendingLocation is returned when the form is submitted before a map click.
	ErrNoPendingLocation = errors.New("no map location chosen")
	// ErrUnsupported is returned when a collaborator cannot accept client events.
	ErrUnsupported = errors.New("collaborator does not accept client events")
)

const (
	// InvalidInputNotice is shown when the form is rejected.
	InvalidInputNotice = "Inputs have to be positive numbers!"
	// NoLocationNotice is shown when the form is submitted without a map click.
	NoLocationNotice = "Click on the map to choose where the workout happened"
)

// Phase is the controller's position in the session state machine.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseAwaitingClick
	PhaseFormOpen
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingClick:
		return "awaiting_click"
	case PhaseFormOpen:
		return "form_open"
	default:
		return "init"
	}
}

// Deps are the collaborators an App is built from.
type Deps struct {
	Repository *persistence.Repository
	Map        mapview.Map
	Geolocator mapview.Geolocator
	Publisher  events.Publisher
	Notifier   mapview.Notifier
	MapConfig  mapview.Config
	FormDelay  time.Duration
	Now        func() time.Time
}

// State is the session's application state.
type State struct {
	Workouts []domain.Workout
	Pending  *domain.Coordinates
	Phase    Phase
}

// App is the application controller.
type App struct {
	mu sync.Mutex

	deps     Deps
	maps     *mapview.Adapter
	form     *form.Controller
	list     *view.List
	renderer *view.Renderer
	state    State
}

// New builds the controller and renders the persisted workouts into the list.
// The map is not requested until Start.
func New(ctx context.Context, deps Deps) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}
	if deps.Notifier == nil {
		deps.Notifier = &NoticeBoard{}
	}

	a := &App{deps: deps}
	a.maps = mapview.NewAdapter(deps.Map, deps.MapConfig, deps.Notifier)
	a.maps.OnLocationChosen(a.locationChosen)
	a.boot(ctx)
	return a
}

func (a *App) boot(ctx context.Context) {
	a.state = State{Phase: PhaseInit}
	a.form = form.NewController(a.deps.FormDelay, a.deps.Now)
	a.list = &view.List{}
	a.renderer = view.NewRenderer(a.list, a.maps)

	a.state.Workouts = a.deps.Repository.Load(ctx)
	for _, w := range a.state.Workouts {
		a.renderer.RenderWorkout(w)
	}
	log.Info().Int("workouts", len(a.state.Workouts)).Msg("loaded persisted workouts")
}

// Start requests the user's position. Once the map exists every loaded
// workout gets its marker.
func (a *App) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.start()
}

func (a *App) start() {
	a.maps.Load(observedGeolocator{a.deps.Geolocator}, a.mapReady)
}

func (a *App) mapReady() {
	a.state.Phase = PhaseAwaitingClick
	for _, w := range a.state.Workouts {
		if err := a.renderer.RenderMarker(w); err != nil {
			log.Warn().Err(err).Str("workout_id", w.ID).Msg("render marker")
		}
	}
}

func (a *App) locationChosen(at domain.Coordinates) {
	a.state.Pending = &at
	a.state.Phase = PhaseFormOpen
	a.form.Show()
}

type clickable interface {
	Click(at domain.Coordinates) error
}

// ClickMap forwards a click on the map surface.
func (a *App) ClickMap(at domain.Coordinates) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.deps.Map.(clickable)
	if !ok {
		return ErrUnsupported
	}
	return c.Click(at)
}

type positionReceiver interface {
	Resolve(pos domain.Coordinates) error
	Reject() error
}

// ReportPosition delivers the client's position to the pending geolocation request.
func (a *App) ReportPosition(pos domain.Coordinates) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.deps.Geolocator.(positionReceiver)
	if !ok {
		return ErrUnsupported
	}
	return r.Resolve(pos)
}

// ReportPositionDenied fails the pending geolocation request.
func (a *App) ReportPositionDenied() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.deps.Geolocator.(positionReceiver)
	if !ok {
		return ErrUnsupported
	}
	return r.Reject()
}

type pendingRequester interface {
	Pending() bool
}

// AwaitingPosition reports whether a geolocation request is waiting for the client.
func (a *App) AwaitingPosition() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.deps.Geolocator.(pendingRequester)
	return ok && p.Pending()
}

// ChangeKind switches the form between running and cycling.
func (a *App) ChangeKind(value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	kind, err := domain.ParseKind(value)
	if err != nil {
		return err
	}
	a.form.ChangeKind(kind)
	return nil
}

// Submit validates the form and logs the workout at the chosen location.
func (a *App) Submit(ctx context.Context, values form.Values) (domain.Workout, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Pending == nil {
		a.deps.Notifier.Notify(NoLocationNotice)
		return domain.Workout{}, ErrNoPendingLocation
	}

	sub, err := a.form.Submit(values)
	if err != nil {
		observability.RecordSubmissionRejected()
		a.deps.Notifier.Notify(InvalidInputNotice)
		return domain.Workout{}, err
	}

	at := *a.state.Pending
	now := a.deps.Now()
	var w domain.Workout
	switch sub.Kind {
	case domain.KindRunning:
		w = domain.NewRunning(at, sub.Distance, sub.Duration, sub.Metric, now)
	case domain.KindCycling:
		w = domain.NewCycling(at, sub.Distance, sub.Duration, sub.Metric, now)
	}

	a.state.Workouts = append(a.state.Workouts, w)
	if err := a.renderer.RenderMarker(w); err != nil {
		log.Warn().Err(err).Str("workout_id", w.ID).Msg("render marker")
	}
	a.renderer.RenderWorkout(w)
	a.state.Pending = nil
	a.state.Phase = PhaseAwaitingClick

	a.persist(ctx)
	a.publish(ctx, events.Event{
		Type: events.TypeWorkoutLogged,
		Key:  w.ID,
		Payload: events.WorkoutLogged{
			WorkoutID:   w.ID,
			Kind:        string(w.Kind()),
			Coordinates: [2]float64{w.Coordinates.Lat, w.Coordinates.Lng},
			Distance:    w.Distance,
			Duration:    w.Duration,
			Description: w.Description,
			CreatedAt:   w.CreatedAt,
		},
	})
	observability.RecordWorkoutLogged(string(w.Kind()), now)
	log.Info().Str("workout_id", w.ID).Str("kind", string(w.Kind())).Str("description", w.Description).Msg("workout logged")
	return w, nil
}

func (a *App) persist(ctx context.Context) {
	err := a.deps.Repository.Save(ctx, a.state.Workouts)
	observability.RecordPersisted(err)
	if err != nil {
		log.Error().Err(err).Int("workouts", len(a.state.Workouts)).Msg("persist workouts")
	}
}

func (a *App) publish(ctx context.Context, evt events.Event) {
	if err := a.deps.Publisher.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("event_type", evt.Type).Msg("publish event")
	}
}

// SelectWorkout recenters the map on the workout behind a list entry.
func (a *App) SelectWorkout(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var target *domain.Workout
	for i := range a.state.Workouts {
		if a.state.Workouts[i].ID == id {
			target = &a.state.Workouts[i]
			break
		}
	}
	if target == nil {
		log.Debug().Str("workout_id", id).Msg("select: unknown workout")
		return ErrWorkoutNotFound
	}

	err := a.maps.Recenter(target.Coordinates, a.maps.Zoom(), true)
	if errors.Is(err, mapview.ErrMapUnavailable) {
		log.Debug().Str("workout_id", id).Msg("select: map not initialized")
		return nil
	}
	return err
}

type clearer interface {
	Clear()
}

// Reset wipes the persisted workouts and starts the session over.
func (a *App) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.deps.Repository.Clear(ctx); err != nil {
		return err
	}
	a.publish(ctx, events.Event{
		Type:    events.TypeWorkoutsReset,
		Payload: events.WorkoutsReset{OccurredAt: a.deps.Now().UTC()},
	})
	log.Info().Msg("workouts reset")

	a.maps.Detach()
	if c, ok := a.deps.Map.(clearer); ok {
		c.Clear()
	}
	a.boot(ctx)
	a.start()
	return nil
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	Phase    Phase
	Rows     []view.Row
	Form     form.State
	MapReady bool
	Pending  *domain.Coordinates
	Workouts []domain.Workout
}

// Snapshot copies the current session state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	workouts := make([]domain.Workout, len(a.state.Workouts))
	copy(workouts, a.state.Workouts)
	var pending *domain.Coordinates
	if a.state.Pending != nil {
		p := *a.state.Pending
		pending = &p
	}
	return Snapshot{
		Phase:    a.state.Phase,
		Rows:     a.list.Rows(),
		Form:     a.form.State(),
		MapReady: a.maps.Ready(),
		Pending:  pending,
		Workouts: workouts,
	}
}

// Close releases the collaborators owned by the App.
func (a *App) Close() error {
	return a.deps.Publisher.Close()
}

type observedGeolocator struct {
	mapview.Geolocator
}

func (g observedGeolocator) RequestPosition(onSuccess func(domain.Coordinates), onFailure func()) {
	g.Geolocator.RequestPosition(func(pos domain.Coordinates) {
		observability.RecordGeolocation(true)
		onSuccess(pos)
	}, func() {
		observability.RecordGeolocation(false)
		onFailure()
	})
}
