package leaflet

import "example.com/mapty/internal/mapview"

// Snapshot is the JSON document consumed by the page script.
type Snapshot struct {
	Ready       bool             `json:"ready"`
	TileURL     string           `json:"tileUrl"`
	Attribution string           `json:"attribution"`
	Center      *[2]float64      `json:"center,omitempty"`
	Zoom        int              `json:"zoom,omitempty"`
	Animate     bool             `json:"animate"`
	PanSeconds  float64          `json:"panSeconds,omitempty"`
	Markers     []MarkerSnapshot `json:"markers"`
}

// MarkerSnapshot is a placed marker with its popup.
type MarkerSnapshot struct {
	At      [2]float64            `json:"at"`
	Popup   *mapview.PopupOptions `json:"popup,omitempty"`
	Content string                `json:"content,omitempty"`
	Open    bool                  `json:"open"`
}

// Snapshot copies the current scene.
func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		TileURL:     s.tileURL,
		Attribution: s.attribution,
		Markers:     make([]MarkerSnapshot, 0, len(s.markers)),
	}
	if s.view == nil {
		return snap
	}
	snap.Ready = true
	snap.Center = &[2]float64{s.view.center.Lat, s.view.center.Lng}
	snap.Zoom = s.view.zoom
	snap.Animate = s.view.opts.Animate
	snap.PanSeconds = s.view.opts.PanDuration.Seconds()
	for _, m := range s.markers {
		snap.Markers = append(snap.Markers, MarkerSnapshot{
			At:      [2]float64{m.At.Lat, m.At.Lng},
			Popup:   m.Popup,
			Content: m.Content,
			Open:    m.Open,
		})
	}
	return snap
}
