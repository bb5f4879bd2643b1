package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"example.com/mapty/internal/view"
)

//go:embed templates/index.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type pageData struct {
	State PageState
	Rows  template.HTML
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	notices := h.takeFlashes(w, r)
	notices = append(notices, h.notices.Drain()...)
	state := h.pageState(notices)

	var rows bytes.Buffer
	if err := view.WriteHTML(&rows, state.Workouts); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	var page bytes.Buffer
	data := pageData{State: state, Rows: template.HTML(rows.String())}
	if err := pageTemplate.ExecuteTemplate(&page, "index.html", data); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page.Bytes())
}

func (h *Handler) takeFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring unreadable session")
		return nil
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		log.Warn().Err(err).Msg("save session")
	}
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
