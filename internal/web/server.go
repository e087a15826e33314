// Package web serves the resume form over HTTP, one session per browser.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/amishk599/smartresume/internal/ai"
	"github.com/amishk599/smartresume/internal/form"
	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/session"
)

// SessionCookie holds the caller's session id.
const SessionCookie = "smartresume_session"

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server routes form interactions to the session they belong to.
type Server struct {
	sessions *session.Manager
	ctrl     *form.Controller
	logger   *slog.Logger
}

// NewServer returns a Server handling requests with ctrl against sessions.
func NewServer(sessions *session.Manager, ctrl *form.Controller, logger *slog.Logger) *Server {
	return &Server{sessions: sessions, ctrl: ctrl, logger: logger}
}

// Router builds the chi router with all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthz)

	r.Get("/", s.page)
	r.Post("/job", s.postJob)
	r.Post("/skills", s.postForm(form.EventAddSkill, "skill"))
	r.Post("/skills/remove", s.postForm(form.EventRemoveSkill, "remove_skill"))
	r.Post("/format", s.postForm(form.EventSetResumeFormat, "resume_format"))
	r.Post("/submit", s.postForm(form.EventSubmit, ""))
	r.Post("/reset", s.postReset)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
		r.Get("/session", s.getSession)
		r.Delete("/session", s.deleteSession)
		r.Post("/events", s.postEvent)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionID returns the caller's session id, issuing a new cookie when the
// request carries none or a malformed one.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// apply runs events in order against the caller's session and returns the
// resulting form. Processing stops at the first error.
func (s *Server) apply(r *http.Request, id string, events ...form.Event) (model.FormState, error) {
	// A submission runs to completion even if the browser goes away, so the
	// result is there on the next page load.
	ctx := context.WithoutCancel(r.Context())

	var snapshot model.FormState
	err := s.sessions.Do(ctx, id, func(st *session.State) error {
		defer func() { snapshot = st.Form() }()
		for _, ev := range events {
			if err := s.ctrl.Handle(ctx, st, ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !model.IsValidation(err) {
		s.logger.Error("handling form event", "session", id, "error", err)
	}
	return snapshot, err
}

type pageData struct {
	Form    model.FormState
	Warning string
	Levels  []model.ExperienceLevel
	Formats []model.ResumeFormat
}

func (s *Server) render(w http.ResponseWriter, f model.FormState, err error) {
	data := pageData{
		Form:    f,
		Levels:  model.ExperienceLevels,
		Formats: model.ResumeFormats,
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		data.Warning = ve.Message
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("rendering page", "error", err)
	}
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	f, err := s.apply(r, id)
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	s.render(w, f, nil)
}

// detailEvents turns the job details posted alongside every button of the
// details form into events, so an unsaved title is committed by whichever
// button the user presses.
func detailEvents(r *http.Request) []form.Event {
	var events []form.Event
	if _, ok := r.PostForm["job_title"]; ok {
		events = append(events, form.Event{Type: form.EventSetJobTitle, Value: r.PostForm.Get("job_title")})
	}
	if level := r.PostForm.Get("experience_level"); level != "" {
		events = append(events, form.Event{Type: form.EventSetExperienceLevel, Value: level})
	}
	return events
}

func (s *Server) postJob(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	f, err := s.apply(r, id, detailEvents(r)...)
	s.render(w, f, err)
}

// postForm commits the posted job details, then maps field onto one event.
func (s *Server) postForm(typ form.EventType, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		ev := form.Event{Type: typ}
		if field != "" {
			ev.Value = r.PostForm.Get(field)
		}
		f, err := s.apply(r, id, append(detailEvents(r), ev)...)
		s.render(w, f, err)
	}
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	if err := s.sessions.Reset(r.Context(), id); err != nil {
		s.logger.Error("resetting session", "session", id, "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type sessionResponse struct {
	Session string          `json:"session"`
	Form    model.FormState `json:"form"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	f, err := s.apply(r, id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, sessionResponse{Session: id, Error: "session unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: id, Form: f})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	if err := s.sessions.Reset(r.Context(), id); err != nil {
		s.logger.Error("resetting session", "session", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, sessionResponse{Session: id, Error: "session unavailable"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)

	var ev form.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, sessionResponse{Session: id, Error: "invalid JSON: " + err.Error()})
		return
	}

	f, err := s.apply(r, id, ev)
	resp := sessionResponse{Session: id, Form: f}
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case model.IsValidation(err):
		var ve *model.ValidationError
		errors.As(err, &ve)
		resp.Error = ve.Message
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.As(err, new(*ai.InferenceError)):
		resp.Error = f.LastError
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		resp.Error = "session unavailable"
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
