// Package web serves forms over HTTP. Each request loads the form definition and
// the visitor's session, runs the journey state machine, and saves the session
// back after a successful answer or submission. Responses are JSON.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
	"github.com/felixgeelhaar/formrunner/internal/events"
	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/i18n"
	"github.com/felixgeelhaar/formrunner/internal/journey"
	"github.com/felixgeelhaar/formrunner/internal/log"
	"github.com/felixgeelhaar/formrunner/internal/metrics"
	"github.com/felixgeelhaar/formrunner/internal/reporting"
	"github.com/felixgeelhaar/formrunner/internal/session"
)

// DefaultCookieName is used when Options.CookieName is empty
const DefaultCookieName = "formrunner_session"

// Options wires a Handler to its collaborators. Forms, Sessions and Translations
// are required.
type Options struct {
	Forms        form.Repository
	Sessions     session.Store
	Translations *i18n.Translations

	// Signer signs session cookies. A signer with a random key is used when nil,
	// so sessions do not survive a restart.
	Signer       *session.CookieSigner
	CookieName   string
	SecureCookie bool
	SessionTTL   time.Duration

	Events   events.Sink
	Reporter reporting.Reporter
	Logger   *log.Logger
	Metrics  *metrics.Metrics

	// Now is used for form liveness checks
	Now func() time.Time
}

// Handler serves the form routes
type Handler struct {
	forms        form.Repository
	sessions     session.Store
	translations *i18n.Translations
	signer       *session.CookieSigner
	cookieName   string
	secureCookie bool
	sessionTTL   time.Duration
	events       events.Sink
	reporter     reporting.Reporter
	logger       *log.Logger
	metrics      *metrics.Metrics
	now          func() time.Time

	handler http.Handler
}

// New creates a Handler
func New(opts Options) *Handler {
	h := &Handler{
		forms:        opts.Forms,
		sessions:     opts.Sessions,
		translations: opts.Translations,
		signer:       opts.Signer,
		cookieName:   opts.CookieName,
		secureCookie: opts.SecureCookie,
		sessionTTL:   opts.SessionTTL,
		events:       opts.Events,
		reporter:     opts.Reporter,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		now:          opts.Now,
	}
	if h.signer == nil {
		h.signer = session.NewCookieSigner(session.NewID())
	}
	if h.cookieName == "" {
		h.cookieName = DefaultCookieName
	}
	if h.events == nil {
		h.events = events.Discard{}
	}
	if h.reporter == nil {
		h.reporter = reporting.Noop{}
	}
	if h.logger == nil {
		h.logger = log.DefaultLogger()
	}
	if h.now == nil {
		h.now = time.Now
	}

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	h.handler = requestID(accessLog(h.logger, h.metrics.Middleware(noRobots(h.recoverPanics(mux)))))
	return h
}

// RegisterRoutes registers the form routes on mux.
//
// Routes:
//   - GET  /form/{mode}/{form_id}                                  - redirect to the start page
//   - GET  /form/{mode}/{form_id}/{form_slug}                      - redirect to the start page
//   - GET  /form/{mode}/{form_id}/{form_slug}/{page_slug}          - show a step
//   - GET  /form/{mode}/{form_id}/{form_slug}/{page_slug}/change   - show a step from the review
//   - POST /form/{mode}/{form_id}/{form_slug}/{page_slug}          - save a step
//   - POST /form/{mode}/{form_id}/{form_slug}/submit_answers       - submit the form
//   - GET  /form/{mode}/{form_id}/{form_slug}/submitted
//   - GET  /form/{mode}/{form_id}/{form_slug}/repeat_submission
//   - GET  /form/{mode}/{form_id}/{form_slug}/privacy
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	const base = "/form/{mode}/{form_id}/{form_slug}"

	mux.HandleFunc("GET /form/{mode}/{form_id}", h.handleStart)
	mux.HandleFunc("GET "+base, h.handleStart)
	mux.HandleFunc("GET "+base+"/{page_slug}", h.handleShowPage)
	mux.HandleFunc("GET "+base+"/{page_slug}/change", h.handleChangePage)
	mux.HandleFunc("POST "+base+"/{page_slug}", h.handleSavePage)
	mux.HandleFunc("POST "+base+"/submit_answers", h.handleSubmit)
	mux.HandleFunc("GET "+base+"/submitted", h.handleSubmitted)
	mux.HandleFunc("GET "+base+"/repeat_submission", h.handleRepeatSubmission)
	mux.HandleFunc("GET "+base+"/privacy", h.handlePrivacy)
	mux.HandleFunc("/", h.handleNotFound)
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// request is the state shared by every form route
type request struct {
	mode      form.Mode
	form      *form.Form
	journey   *journey.Context
	sessionID string
	data      *session.Data
	localizer *i18n.Localizer
}

// load resolves the form and the visitor's journey. It writes the error
// response itself and returns false when the request cannot proceed.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*request, bool) {
	mode, ok := form.ParseMode(r.PathValue("mode"))
	if !ok {
		h.handleNotFound(w, r)
		return nil, false
	}
	id, err := strconv.ParseInt(r.PathValue("form_id"), 10, 64)
	if err != nil || id <= 0 {
		h.handleNotFound(w, r)
		return nil, false
	}

	f, err := h.forms.Get(r.Context(), id, mode)
	if errors.Is(err, form.ErrFormNotFound) {
		h.handleNotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.internalError(w, r, err)
		return nil, false
	}
	if mode == form.ModeForm && !f.IsLive(h.now()) {
		h.handleNotFound(w, r)
		return nil, false
	}

	sessionID, data, err := h.loadSession(r)
	if err != nil {
		h.internalError(w, r, err)
		return nil, false
	}

	c, err := journey.NewContext(f, data)
	if err != nil {
		h.internalError(w, r, err)
		return nil, false
	}

	return &request{
		mode:      mode,
		form:      f,
		journey:   c,
		sessionID: sessionID,
		data:      data,
		localizer: h.translations.Localizer(r.URL.Query().Get("locale"), r.Header.Get("Accept-Language")),
	}, true
}

// loadSession reads the signed session cookie. A missing or tampered cookie
// starts a new session.
func (h *Handler) loadSession(r *http.Request) (string, *session.Data, error) {
	if c, err := r.Cookie(h.cookieName); err == nil {
		if id, ok := h.signer.Verify(c.Value); ok {
			data, err := h.sessions.Load(r.Context(), id)
			if err != nil {
				return "", nil, err
			}
			return id, data, nil
		}
	}
	return session.NewID(), session.NewData(), nil
}

// saveSession persists the session and refreshes the cookie
func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, req *request) error {
	if err := h.sessions.Save(r.Context(), req.sessionID, req.data); err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    h.signer.Sign(req.sessionID),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if h.sessionTTL > 0 {
		cookie.MaxAge = int(h.sessionTTL.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// logEvent sends an analytics event unless the form is being previewed
func (h *Handler) logEvent(req *request, name string, attrs map[string]any) {
	if req.mode.IsPreview() {
		return
	}
	h.events.Log(name, attrs)
}

func eventRequest(r *http.Request) events.Request {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return events.Request{
		Method: r.Method,
		URL:    scheme + "://" + r.Host + r.URL.RequestURI(),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data) //nolint:errcheck,gosec // headers already sent
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "Page not found")
}

// reportedNotFound is a 404 that is also sent to the error reporter
func (h *Handler) reportedNotFound(w http.ResponseWriter, r *http.Request, err error) {
	h.reporter.CaptureException(err)
	h.logger.WithContext(r.Context()).WithError(err).Warn("page not found", "path", r.URL.Path)
	h.handleNotFound(w, r)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.reporter.CaptureException(err)
	h.metrics.RecordError(string(apperrors.CodeOf(err)))
	h.logger.LogErrorContext(r.Context(), err)
	writeError(w, http.StatusInternalServerError, "internal_server_error", "Sorry, there is a problem with the service")
}
