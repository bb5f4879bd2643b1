// Package mapview wraps the interactive map and the geolocation source.
package mapview

import (
	"time"

	"example.com/mapty/internal/domain"
)

// ViewHandle identifies a map view created by a Map.
type ViewHandle interface{}

// PopupOptions configures a marker popup.
type PopupOptions struct {
	MaxWidth     int    `json:"maxWidth"`
	MinWidth     int    `json:"minWidth"`
	AutoClose    bool   `json:"autoClose"`
	CloseOnClick bool   `json:"closeOnClick"`
	ClassName    string `json:"className"`
}

// ViewOptions controls how a view moves to new coordinates.
type ViewOptions struct {
	Animate     bool
	PanDuration time.Duration
}

// Marker is a point annotation with chainable popup configuration.
type Marker interface {
	BindPopup(opts PopupOptions) Marker
	SetPopupContent(content string) Marker
	OpenPopup() Marker
}

// Map is the mapping widget collaborator.
type Map interface {
	CreateView(center domain.Coordinates, zoom int) ViewHandle
	OnClick(view ViewHandle, handler func(domain.Coordinates))
	PlaceMarker(view ViewHandle, at domain.Coordinates) Marker
	SetView(view ViewHandle, center domain.Coordinates, zoom int, opts ViewOptions)
}

// Geolocator resolves the user's current position exactly once per request.
type Geolocator interface {
	RequestPosition(onSuccess func(domain.Coordinates), onFailure func())
}

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notify(message string)
}
