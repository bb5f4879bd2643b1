package mapview

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/mapty/internal/domain"
)

// ErrMapUnavailable is returned by operations that need an initialized map.
var ErrMapUnavailable = errors.New("map is not initialized")

// PositionUnavailableNotice is shown when geolocation fails.
const PositionUnavailableNotice = "Could not get your position"

// Config holds the map defaults.
type Config struct {
	Zoom        int
	PanDuration time.Duration
}

// Adapter turns map clicks into location-chosen events and renders workouts on the map.
type Adapter struct {
	m        Map
	cfg      Config
	notifier Notifier
	view     ViewHandle
	onChosen func(domain.Coordinates)
}

// NewAdapter constructs an Adapter around a map collaborator.
func NewAdapter(m Map, cfg Config, notifier Notifier) *Adapter {
	return &Adapter{m: m, cfg: cfg, notifier: notifier}
}

// OnLocationChosen registers the handler invoked with each clicked location.
func (a *Adapter) OnLocationChosen(fn func(domain.Coordinates)) {
	a.onChosen = fn
}

// Load requests the current position and initializes the view around it.
// onReady runs after a successful initialization only.
func (a *Adapter) Load(g Geolocator, onReady func()) {
	g.RequestPosition(func(pos domain.Coordinates) {
		a.view = a.m.CreateView(pos, a.cfg.Zoom)
		a.m.OnClick(a.view, a.chosen)
		log.Info().Float64("lat", pos.Lat).Float64("lng", pos.Lng).Int("zoom", a.cfg.Zoom).Msg("map initialized")
		if onReady != nil {
			onReady()
		}
	}, func() {
		log.Warn().Msg("geolocation unavailable; map disabled")
		a.notifier.Notify(PositionUnavailableNotice)
	})
}

func (a *Adapter) chosen(at domain.Coordinates) {
	if a.onChosen != nil {
		a.onChosen(at)
	}
}

// Ready reports whether the view has been created.
func (a *Adapter) Ready() bool {
	return a.view != nil
}

// Zoom is the default zoom level.
func (a *Adapter) Zoom() int {
	return a.cfg.Zoom
}

// PopupFor returns the popup settings for workouts of the given kind.
func PopupFor(kind domain.Kind) PopupOptions {
	return PopupOptions{
		MaxWidth:     250,
		MinWidth:     100,
		AutoClose:    false,
		CloseOnClick: false,
		ClassName:    string(kind) + "-popup",
	}
}

// PopupContent is the icon followed by the workout description.
func PopupContent(w domain.Workout) string {
	return w.Kind().Icon() + " " + w.Description
}

// PlaceMarker shows a workout's marker with its popup open.
func (a *Adapter) PlaceMarker(w domain.Workout) error {
	if a.view == nil {
		return ErrMapUnavailable
	}
	a.m.PlaceMarker(a.view, w.Coordinates).
		BindPopup(PopupFor(w.Kind())).
		SetPopupContent(PopupContent(w)).
		OpenPopup()
	return nil
}

// Recenter moves the view to the target coordinates.
func (a *Adapter) Recenter(target domain.Coordinates, zoom int, animate bool) error {
	if a.view == nil {
		return ErrMapUnavailable
	}
	opts := ViewOptions{Animate: animate}
	if animate {
		opts.PanDuration = a.cfg.PanDuration
	}
	a.m.SetView(a.view, target, zoom, opts)
	return nil
}

// Detach forgets the current view. A subsequent Load starts over.
func (a *Adapter) Detach() {
	a.view = nil
}
