package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/mapty/internal/domain"
	"example.com/mapty/internal/events"
	"example.com/mapty/internal/form"
	"example.com/mapty/internal/mapview"
	"example.com/mapty/internal/mapview/leaflet"
	"example.com/mapty/internal/persistence"
	"example.com/mapty/internal/persistence/memory"
)

var home = domain.Coordinates{Lat: 38.7223, Lng: -9.1393}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

type harness struct {
	app       *App
	store     *memory.Store
	scene     *leaflet.Scene
	notices   *NoticeBoard
	publisher *recordingPublisher
	now       time.Time
}

type harnessOption func(*Deps)

func withGeolocator(g mapview.Geolocator) harnessOption {
	return func(d *Deps) { d.Geolocator = g }
}

func withPublisher(p events.Publisher) harnessOption {
	return func(d *Deps) { d.Publisher = p }
}

func newHarness(t *testing.T, store *memory.Store, opts ...harnessOption) *harness {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	h := &harness{
		store:     store,
		scene:     leaflet.NewScene(""),
		notices:   &NoticeBoard{},
		publisher: &recordingPublisher{},
		now:       time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC),
	}
	pos := home
	deps := Deps{
		Repository: persistence.NewRepository(store, "workouts"),
		Map:        h.scene,
		Geolocator: mapview.StaticGeolocator{Position: &pos},
		Publisher:  h.publisher,
		Notifier:   h.notices,
		MapConfig:  mapview.Config{Zoom: 13, PanDuration: time.Second},
		FormDelay:  time.Second,
		Now:        func() time.Time { return h.now },
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h.app = New(context.Background(), deps)
	t.Cleanup(func() { require.NoError(t, h.app.Close()) })
	return h
}

func (h *harness) logRun(t *testing.T, at domain.Coordinates, distance, duration, cadence string) domain.Workout {
	t.Helper()
	require.NoError(t, h.app.ClickMap(at))
	w, err := h.app.Submit(context.Background(), form.Values{Kind: "running", Distance: distance, Duration: duration, Cadence: cadence})
	require.NoError(t, err)
	return w
}

func TestStartInitializesMap(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, PhaseInit, h.app.Snapshot().Phase)

	h.app.Start()
	snap := h.app.Snapshot()
	require.Equal(t, PhaseAwaitingClick, snap.Phase)
	require.True(t, snap.MapReady)

	scene := h.scene.Snapshot()
	require.Equal(t, &[2]float64{home.Lat, home.Lng}, scene.Center)
	require.Equal(t, 13, scene.Zoom)
}

func TestMapClickOpensForm(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Start()

	click := domain.Coordinates{Lat: 38.73, Lng: -9.15}
	require.NoError(t, h.app.ClickMap(click))

	snap := h.app.Snapshot()
	require.Equal(t, PhaseFormOpen, snap.Phase)
	require.Equal(t, &click, snap.Pending)
	require.False(t, snap.Form.Hidden)
	require.Equal(t, form.FieldDistance, snap.Form.Focus)
}

func TestSubmitRunningScenario(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Start()

	click := domain.Coordinates{Lat: 38.73, Lng: -9.15}
	w := h.logRun(t, click, "5.2", "24", "178")

	require.Equal(t, domain.KindRunning, w.Kind())
	require.Equal(t, click, w.Coordinates)
	require.InDelta(t, 4.615, w.Running.Pace, 0.001)
	require.Equal(t, "Running on January 15", w.Description)

	snap := h.app.Snapshot()
	require.Equal(t, PhaseAwaitingClick, snap.Phase)
	require.Nil(t, snap.Pending)
	require.True(t, snap.Form.Hidden)
	require.Len(t, snap.Workouts, 1)
	require.Len(t, snap.Rows, 1)
	require.Equal(t, "4.6", snap.Rows[0].Details[2].Value)

	markers := h.scene.Snapshot().Markers
	require.Len(t, markers, 1)
	require.Equal(t, "🏃‍♂️ Running on January 15", markers[0].Content)

	require.Equal(t, 1, h.store.Writes())
	require.Len(t, h.publisher.events, 1)
	require.Equal(t, events.TypeWorkoutLogged, h.publisher.events[0].Type)
	require.Equal(t, w.ID, h.publisher.events[0].Key)
	require.Empty(t, h.notices.Drain())
}

func TestSubmitCyclingScenario(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Start()
	require.NoError(t, h.app.ClickMap(home))
	require.NoError(t, h.app.ChangeKind("cycling"))
	require.Equal(t, form.FieldElevation, h.app.Snapshot().Form.MetricField)

	w, err := h.app.Submit(context.Background(), form.Values{Kind: "cycling", Distance: "27", Duration: "95", Elevation: "523"})
	require.NoError(t, err)
	require.InDelta(t, 17.05, w.Cycling.Speed, 0.01)
	require.Equal(t, "17.1", h.app.Snapshot().Rows[0].Details[2].Value)
}

func TestInvalidSubmissionChangesNothing(t *testing.T) {
	invalid := []form.Values{
		{Kind: "running", Distance: "0", Duration: "24", Cadence: "178"},
		{Kind: "running", Distance: "5", Duration: "-1", Cadence: "178"},
		{Kind: "running", Distance: "5", Duration: "24", Cadence: "x"},
		{Kind: "cycling", Distance: "Inf", Duration: "24", Elevation: "1"},
		{Kind: "cycling", Distance: "5", Duration: "24", Elevation: ""},
	}
	for _, values := range invalid {
		h := newHarness(t, nil)
		h.app.Start()
		require.NoError(t, h.app.ClickMap(home))

		_, err := h.app.Submit(context.Background(), values)
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		snap := h.app.Snapshot()
		require.Empty(t, snap.Workouts)
		require.Empty(t, snap.Rows)
		require.Equal(t, PhaseFormOpen, snap.Phase, "form stays open")
		require.False(t, snap.Form.Hidden)
		require.Equal(t, 0, h.store.Writes())
		require.Empty(t, h.publisher.events)
		require.Equal(t, []string{InvalidInputNotice}, h.notices.Drain())
	}
}

func TestOverflowingMetricIsRejectedAndSavingContinues(t *testing.T) {
	store := memory.NewStore()
	h := newHarness(t, store)
	h.app.Start()
	h.logRun(t, home, "5", "25", "170")

	require.NoError(t, h.app.ClickMap(home))
	_, err := h.app.Submit(context.Background(), form.Values{Kind: "cycling", Distance: "1e308", Duration: "1e-300", Elevation: "10"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Equal(t, []string{InvalidInputNotice}, h.notices.Drain())
	require.Equal(t, PhaseFormOpen, h.app.Snapshot().Phase)
	require.Len(t, h.app.Snapshot().Workouts, 1)

	_, err = h.app.Submit(context.Background(), form.Values{Kind: "running", Distance: "1e-300", Duration: "1e300", Cadence: "170"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Equal(t, []string{InvalidInputNotice}, h.notices.Drain())

	_, err = h.app.Submit(context.Background(), form.Values{Kind: "running", Distance: "3", Duration: "18", Cadence: "165"})
	require.NoError(t, err)
	require.Equal(t, 2, h.store.Writes())

	reloaded := newHarness(t, store)
	require.Len(t, reloaded.app.Snapshot().Workouts, 2)
}

func TestSubmitWithoutLocation(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Start()

	_, err := h.app.Submit(context.Background(), form.Values{Kind: "running", Distance: "1", Duration: "1", Cadence: "1"})
	require.ErrorIs(t, err, ErrNoPendingLocation)
	require.Equal(t, []string{NoLocationNotice}, h.notices.Drain())
	require.Equal(t, 0, h.store.Writes())
}

func TestDisplayOrderIsMostRecentFirst(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Start()

	a := h.logRun(t, home, "3", "18", "170")
	b := h.logRun(t, home, "10", "55", "165")

	snap := h.app.Snapshot()
	require.Equal(t, []string{b.ID, a.ID}, []string{snap.Rows[0].ID, snap.Rows[1].ID})
	require.Equal(t, []string{a.ID, b.ID}, []string{snap.Workouts[0].ID, snap.Workouts[1].ID})
}

func TestSelectWorkoutRecenters(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Start()

	target := domain.Coordinates{Lat: 40.1, Lng: -8.2}
	w := h.logRun(t, target, "5", "25", "170")

	require.NoError(t, h.app.SelectWorkout(w.ID))
	scene := h.scene.Snapshot()
	require.Equal(t, &[2]float64{target.Lat, target.Lng}, scene.Center)
	require.True(t, scene.Animate)
	require.Equal(t, 1.0, scene.PanSeconds)
	require.Equal(t, 0, h.app.Snapshot().Workouts[0].ClickCount)
}

func TestSelectUnknownWorkoutIsNotFound(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Start()

	require.NotPanics(t, func() {
		err := h.app.SelectWorkout("stale-id")
		require.ErrorIs(t, err, ErrWorkoutNotFound)
	})
}

func TestPersistedWorkoutsRenderOnLoad(t *testing.T) {
	store := memory.NewStore()
	first := newHarness(t, store)
	first.app.Start()
	w := first.logRun(t, domain.Coordinates{Lat: 41.1, Lng: -8.6}, "5.2", "24", "178")

	second := newHarness(t, store)
	snap := second.app.Snapshot()
	require.Len(t, snap.Rows, 1, "list renders before the map exists")
	require.False(t, snap.MapReady)
	require.Empty(t, second.scene.Snapshot().Markers)

	second.app.Start()
	require.Len(t, second.scene.Snapshot().Markers, 1, "markers render once the map is ready")

	require.NoError(t, second.app.SelectWorkout(w.ID))
	require.Equal(t, &[2]float64{41.1, -8.6}, second.scene.Snapshot().Center)
	require.InDelta(t, 24/5.2, second.app.Snapshot().Workouts[0].Running.Pace, 1e-9)
}

func TestGeolocationFailureKeepsListWorking(t *testing.T) {
	store := memory.NewStore()
	seed := newHarness(t, store)
	seed.app.Start()
	w := seed.logRun(t, home, "5", "25", "170")

	h := newHarness(t, store, withGeolocator(mapview.StaticGeolocator{}))
	h.app.Start()

	snap := h.app.Snapshot()
	require.False(t, snap.MapReady)
	require.Equal(t, PhaseInit, snap.Phase)
	require.Len(t, snap.Rows, 1)
	require.Equal(t, []string{mapview.PositionUnavailableNotice}, h.notices.Drain())

	require.ErrorIs(t, h.app.ClickMap(home), mapview.ErrMapUnavailable)
	require.NoError(t, h.app.SelectWorkout(w.ID), "recenter is a no-op without a map")
}

func TestBrowserGeolocation(t *testing.T) {
	g := mapview.NewBrowserGeolocator()
	h := newHarness(t, nil, withGeolocator(g))
	h.app.Start()
	require.False(t, h.app.Snapshot().MapReady)
	require.True(t, g.Pending())

	require.NoError(t, h.app.ReportPosition(domain.Coordinates{Lat: 1, Lng: 2}))
	require.True(t, h.app.Snapshot().MapReady)
	require.ErrorIs(t, h.app.ReportPositionDenied(), mapview.ErrNoPendingRequest)
}

func TestReportPositionUnsupported(t *testing.T) {
	h := newHarness(t, nil)
	require.ErrorIs(t, h.app.ReportPosition(home), ErrUnsupported)
	require.ErrorIs(t, h.app.ReportPositionDenied(), ErrUnsupported)
}

func TestResetClearsEverything(t *testing.T) {
	h := newHarness(t, nil)
	h.app.Start()
	w := h.logRun(t, home, "5", "25", "170")

	require.NoError(t, h.app.Reset(context.Background()))

	snap := h.app.Snapshot()
	require.Empty(t, snap.Workouts)
	require.Empty(t, snap.Rows)
	require.True(t, snap.MapReady, "static geolocation re-initializes the map")
	require.Empty(t, h.scene.Snapshot().Markers)

	_, err := h.store.Get(context.Background(), "workouts")
	require.ErrorIs(t, err, persistence.ErrNotFound)

	require.ErrorIs(t, h.app.SelectWorkout(w.ID), ErrWorkoutNotFound)

	last := h.publisher.events[len(h.publisher.events)-1]
	require.Equal(t, events.TypeWorkoutsReset, last.Type)
}

func TestPublishFailureDoesNotRejectWorkout(t *testing.T) {
	h := newHarness(t, nil)
	h.publisher.err = errors.New("broker down")
	h.app.Start()

	h.logRun(t, home, "5", "25", "170")
	require.Len(t, h.app.Snapshot().Workouts, 1)
	require.Equal(t, 1, h.store.Writes())
}

func TestChangeKindRejectsUnknown(t *testing.T) {
	h := newHarness(t, nil)
	require.ErrorIs(t, h.app.ChangeKind("rowing"), domain.ErrInvalidInput)
}

func TestNoticeBoardDrain(t *testing.T) {
	var b NoticeBoard
	b.Notify("one")
	b.Notify("two")
	require.Equal(t, []string{"one", "two"}, b.Drain())
	require.Empty(t, b.Drain())
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "init", PhaseInit.String())
	require.Equal(t, "awaiting_click", PhaseAwaitingClick.String())
	require.Equal(t, "form_open", PhaseFormOpen.String())
}

func TestAwaitingPosition(t *testing.T) {
	g := mapview.NewBrowserGeolocator()
	h := newHarness(t, nil, withGeolocator(g))
	require.False(t, h.app.AwaitingPosition())

	h.app.Start()
	require.True(t, h.app.AwaitingPosition())

	require.NoError(t, h.app.ReportPositionDenied())
	require.False(t, h.app.AwaitingPosition())
	require.Equal(t, []string{mapview.PositionUnavailableNotice}, h.notices.Drain())

	static := newHarness(t, nil)
	static.app.Start()
	require.False(t, static.app.AwaitingPosition())
}

// stalledPublisher blocks every publish until release is closed.
type stalledPublisher struct {
	release   chan struct{}
	delivered chan events.Event
}

func (p *stalledPublisher) Publish(ctx context.Context, evt events.Event) error {
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.delivered <- evt
	return nil
}

func (p *stalledPublisher) Close() error { return nil }

func TestSlowBrokerDoesNotBlockController(t *testing.T) {
	stalled := &stalledPublisher{release: make(chan struct{}), delivered: make(chan events.Event, 4)}
	h := newHarness(t, nil, withPublisher(events.NewQueue(stalled, 8, time.Minute)))
	h.app.Start()

	require.NoError(t, h.app.ClickMap(home))
	type result struct {
		snap Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		_, err := h.app.Submit(context.Background(), form.Values{Kind: "running", Distance: "5", Duration: "25", Cadence: "170"})
		done <- result{snap: h.app.Snapshot(), err: err}
	}()
	select {
	case res := <-done:
		require.NoError(t, res.err)
		snap := res.snap
		require.Len(t, snap.Workouts, 1)
		require.Equal(t, PhaseAwaitingClick, snap.Phase)
	case <-time.After(time.Second):
		t.Fatal("submit waited on the publisher")
	}

	close(stalled.release)
	select {
	case evt := <-stalled.delivered:
		require.Equal(t, events.TypeWorkoutLogged, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}
