// Package leaflet models a Leaflet map on the server. The page script renders
// the Snapshot and forwards clicks back through Click.
package leaflet

import (
	"sync"

	"example.com/mapty/internal/domain"
	"example.com/mapty/internal/mapview"
)

const (
	// DefaultTileURL is the OpenStreetMap France humanitarian layer.
	DefaultTileURL = "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png"
	// DefaultAttribution credits OpenStreetMap contributors.
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

type view struct {
	center   domain.Coordinates
	zoom     int
	opts     mapview.ViewOptions
	handlers []func(domain.Coordinates)
}

// Scene implements mapview.Map.
type Scene struct {
	tileURL     string
	attribution string

	mu      sync.Mutex
	view    *view
	markers []*Marker
}

// NewScene constructs a Scene with the given tile layer URL.
func NewScene(tileURL string) *Scene {
	if tileURL == "" {
		tileURL = DefaultTileURL
	}
	return &Scene{tileURL: tileURL, attribution: DefaultAttribution}
}

// CreateView implements mapview.Map. Creating a view replaces any previous one.
func (s *Scene) CreateView(center domain.Coordinates, zoom int) mapview.ViewHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = &view{center: center, zoom: zoom}
	s.markers = nil
	return s.view
}

// OnClick implements mapview.Map.
func (s *Scene) OnClick(handle mapview.ViewHandle, handler func(domain.Coordinates)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := handle.(*view); ok && v == s.view {
		v.handlers = append(v.handlers, handler)
	}
}

// PlaceMarker implements mapview.Map.
func (s *Scene) PlaceMarker(handle mapview.ViewHandle, at domain.Coordinates) mapview.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &Marker{scene: s, At: at}
	if v, ok := handle.(*view); ok && v == s.view {
		s.markers = append(s.markers, m)
	}
	return m
}

// SetView implements mapview.Map.
func (s *Scene) SetView(handle mapview.ViewHandle, center domain.Coordinates, zoom int, opts mapview.ViewOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := handle.(*view); ok && v == s.view {
		v.center, v.zoom, v.opts = center, zoom, opts
	}
}

// Click delivers a click on the map surface to the registered handlers.
func (s *Scene) Click(at domain.Coordinates) error {
	s.mu.Lock()
	if s.view == nil {
		s.mu.Unlock()
		return mapview.ErrMapUnavailable
	}
	handlers := append([]func(domain.Coordinates){}, s.view.handlers...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(at)
	}
	return nil
}

// Clear drops the view and its markers, as a page reload would.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = nil
	s.markers = nil
}

// Marker is a placed marker. Its methods chain like Leaflet's.
type Marker struct {
	scene   *Scene
	At      domain.Coordinates
	Popup   *mapview.PopupOptions
	Content string
	Open    bool
}

// BindPopup implements mapview.Marker.
func (m *Marker) BindPopup(opts mapview.PopupOptions) mapview.Marker {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()
	m.Popup = &opts
	return m
}

// SetPopupContent implements mapview.Marker.
func (m *Marker) SetPopupContent(content string) mapview.Marker {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()
	m.Content = content
	return m
}

// OpenPopup implements mapview.Marker.
func (m *Marker) OpenPopup() mapview.Marker {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()
	m.Open = true
	return m
}
