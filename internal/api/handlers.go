// Package api exposes the tracker's page and the endpoints the page script calls.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"example.com/mapty/internal/app"
	"example.com/mapty/internal/auth"
	"example.com/mapty/internal/domain"
	"example.com/mapty/internal/form"
	"example.com/mapty/internal/mapview"
	"example.com/mapty/internal/mapview/leaflet"
)

const (
	sessionName = "mapty"
	homePath    = "/"
)

// Scene exposes the map as the page script draws it.
type Scene interface {
	Snapshot() leaflet.Snapshot
}

// Handler coordinates HTTP requests with the application controller.
type Handler struct {
	app      *app.App
	scene    Scene
	notices  *app.NoticeBoard
	sessions sessions.Store
}

// NewHandler builds a Handler.
func NewHandler(a *app.App, scene Scene, notices *app.NoticeBoard, store sessions.Store) *Handler {
	return &Handler{app: a, scene: scene, notices: notices, sessions: store}
}

// RegisterRoutes wires endpoints to the router. The reset route requires the reset scope.
func (h *Handler) RegisterRoutes(r chi.Router, authMiddleware auth.Middleware) {
	r.Get("/", h.index)
	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/geolocation", h.reportPosition)
		r.Post("/geolocation/denied", h.positionDenied)
		r.Post("/map/clicks", h.clickMap)
		r.Get("/map", h.mapScene)
		r.Post("/form/kind", h.changeKind)
		r.Get("/workouts", h.listWorkouts)
		r.Post("/workouts", h.submitWorkout)
		r.Post("/workouts/{id}/select", h.selectWorkout)
		r.With(authMiddleware.Require(auth.ScopeWorkoutsReset).Wrap).Post("/reset", h.reset)
	})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) reportPosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	err := h.app.ReportPosition(req.Coordinates())
	switch {
	case errors.Is(err, mapview.ErrNoPendingRequest):
		writeError(w, http.StatusConflict, "conflict", "no geolocation request is pending")
	case errors.Is(err, app.ErrUnsupported):
		writeError(w, http.StatusConflict, "conflict", "position is configured on the server")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	default:
		h.respond(w, r)
	}
}

func (h *Handler) positionDenied(w http.ResponseWriter, r *http.Request) {
	err := h.app.ReportPositionDenied()
	switch {
	case errors.Is(err, mapview.ErrNoPendingRequest), errors.Is(err, app.ErrUnsupported):
		writeError(w, http.StatusConflict, "conflict", "no geolocation request is pending")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	default:
		h.respond(w, r)
	}
}

func (h *Handler) clickMap(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	err := h.app.ClickMap(req.Coordinates())
	switch {
	case errors.Is(err, mapview.ErrMapUnavailable):
		writeError(w, http.StatusConflict, "map_unavailable", "map is not initialized")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	default:
		h.respond(w, r)
	}
}

func (h *Handler) mapScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scene.Snapshot())
}

func (h *Handler) changeKind(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
		return
	}
	if err := h.app.ChangeKind(r.PostFormValue("type")); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	h.respond(w, r)
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	snap := h.app.Snapshot()
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{Items: toWorkoutViews(snap)})
}

func (h *Handler) submitWorkout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
		return
	}
	values := form.Values{
		Kind:      r.PostFormValue("type"),
		Distance:  r.PostFormValue("distance"),
		Duration:  r.PostFormValue("duration"),
		Cadence:   r.PostFormValue("cadence"),
		Elevation: r.PostFormValue("elevation"),
	}

	workout, err := h.app.Submit(r.Context(), values)
	if err != nil && wantsJSON(r) {
		notices := h.notices.Drain()
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", strings.Join(notices, " "))
		case errors.Is(err, app.ErrNoPendingLocation):
			writeError(w, http.StatusConflict, "no_location", strings.Join(notices, " "))
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}
	if err == nil && wantsJSON(r) {
		writeJSON(w, http.StatusCreated, toWorkoutView(workout))
		return
	}
	h.redirectHome(w, r)
}

func (h *Handler) selectWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.app.SelectWorkout(id)
	if errors.Is(err, app.ErrWorkoutNotFound) {
		if wantsJSON(r) {
			writeError(w, http.StatusNotFound, "not_found", "workout not found")
			return
		}
		h.redirectHome(w, r)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	h.respond(w, r)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.ClaimsFrom(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if err := h.app.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	log.Info().Str("subject", auth.Subject(r.Context())).Msg("reset requested")
	h.respond(w, r)
}

// respond returns the page state to script callers and sends browsers back to the page.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, h.pageState(h.notices.Drain()))
		return
	}
	h.redirectHome(w, r)
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	h.flash(w, r, h.notices.Drain())
	http.Redirect(w, r, homePath, http.StatusSeeOther)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, notices []string) {
	if len(notices) == 0 {
		return
	}
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		log.Debug().Err(err).Msg("replacing unreadable session")
	}
	for _, n := range notices {
		session.AddFlash(n)
	}
	if err := session.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("save session flashes")
	}
}

func (h *Handler) pageState(notices []string) PageState {
	snap := h.app.Snapshot()
	return PageState{
		Phase:            snap.Phase.String(),
		Form:             toFormView(snap.Form),
		Workouts:         snap.Rows,
		Map:              h.scene.Snapshot(),
		AwaitingPosition: h.app.AwaitingPosition(),
		Notices:          notices,
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

// writeJSON encodes before writing headers so an unencodable payload still
// yields a well-formed error response.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{
			"type":   "server_error",
			"detail": "unable to encode response",
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
