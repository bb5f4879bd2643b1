package mapview

import (
	"errors"
	"sync"

	"example.com/mapty/internal/domain"
)

// ErrNoPendingRequest is returned when a position arrives nobody asked for.
var ErrNoPendingRequest = errors.New("no pending geolocation request")

// StaticGeolocator answers immediately from a configured position.
// A nil Position behaves like a denied request.
type StaticGeolocator struct {
	Position *domain.Coordinates
}

// RequestPosition implements Geolocator.
func (g StaticGeolocator) RequestPosition(onSuccess func(domain.Coordinates), onFailure func()) {
	if g.Position == nil {
		onFailure()
		return
	}
	onSuccess(*g.Position)
}

// BrowserGeolocator parks the request until the client reports its position.
type BrowserGeolocator struct {
	mu        sync.Mutex
	onSuccess func(domain.Coordinates)
	onFailure func()
}

// NewBrowserGeolocator constructs a BrowserGeolocator.
func NewBrowserGeolocator() *BrowserGeolocator {
	return &BrowserGeolocator{}
}

// RequestPosition implements Geolocator. A newer request replaces an unanswered one.
func (g *BrowserGeolocator) RequestPosition(onSuccess func(domain.Coordinates), onFailure func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onSuccess, g.onFailure = onSuccess, onFailure
}

// Pending reports whether a request is waiting for the client.
func (g *BrowserGeolocator) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.onSuccess != nil
}

// Resolve delivers the client's position to the pending request.
func (g *BrowserGeolocator) Resolve(pos domain.Coordinates) error {
	onSuccess, _, err := g.take()
	if err != nil {
		return err
	}
	onSuccess(pos)
	return nil
}

// Reject reports that the client could not or would not share its position.
func (g *BrowserGeolocator) Reject() error {
	_, onFailure, err := g.take()
	if err != nil {
		return err
	}
	onFailure()
	return nil
}

func (g *BrowserGeolocator) take() (func(domain.Coordinates), func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.onSuccess == nil {
		return nil, nil, ErrNoPendingRequest
	}
	onSuccess, onFailure := g.onSuccess, g.onFailure
	g.onSuccess, g.onFailure = nil, nil
	return onSuccess, onFailure, nil
}
