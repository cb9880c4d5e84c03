package handlers

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/swelljoe/skycast/internal/messages"
	"github.com/swelljoe/skycast/internal/session"
	"github.com/swelljoe/skycast/internal/views"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// SessionCookie names the cookie carrying the visitor's session ID.
const SessionCookie = "skycast_session"

// Pinger is implemented by session stores backed by a database
type Pinger interface {
	Ping() error
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	sessions  session.Store
	results   *views.Results
	texts     views.Catalog
	templates *template.Template
	logger    *slog.Logger
}

// New creates a new Handlers instance
func New(sessions session.Store, results *views.Results, texts views.Catalog, logger *slog.Logger) (*Handlers, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("").
		Funcs(template.FuncMap{"t": texts.Text}).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handlers{
		sessions:  sessions,
		results:   results,
		texts:     texts,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Routes maps the two views, the data fragment, health and static assets.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /", h.HandleIndex)
	mux.HandleFunc("POST /{$}", h.HandleSubmit)
	mux.HandleFunc("GET /weather", h.HandleWeather)
	mux.HandleFunc("GET /weather/data", h.HandleWeatherData)
	mux.HandleFunc("GET /health", h.HandleHealth)
	return mux
}

type searchPage struct {
	Input string
	Error string
}

type weatherPage struct {
	Title  string
	Result *views.View
}

// HandleIndex renders the search view, pre-filled with the last city
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	_, state, ok := h.session(w, r)
	if !ok {
		return
	}

	search := views.NewSearch(state, h.texts)
	h.render(w, http.StatusOK, "index.html", searchPage{Input: search.Input})
}

// HandleSubmit validates the form and moves on to the results view
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	id, state, ok := h.session(w, r)
	if !ok {
		return
	}

	search := views.NewSearch(state, h.texts)
	if !search.Submit(r.FormValue("city")) {
		h.render(w, http.StatusUnprocessableEntity, "index.html", searchPage{Input: search.Input, Error: search.Error})
		return
	}

	if err := h.sessions.Save(r.Context(), id, state); err != nil {
		h.logger.Error("session save failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/weather", http.StatusSeeOther)
}

// HandleWeather renders the results view in its loading state. The page
// pulls /weather/data to finish.
func (h *Handlers) HandleWeather(w http.ResponseWriter, r *http.Request) {
	_, state, ok := h.session(w, r)
	if !ok {
		return
	}

	city := state.City()
	if strings.TrimSpace(city) == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, "weather.html", weatherPage{
		Title: h.texts.Format(messages.ResultsTitle, map[string]any{"City": city}),
	})
}

// HandleWeatherData activates the results view for the request's lifetime
// and renders the outcome: the bare fragment for HTMX, the whole page otherwise.
func (h *Handlers) HandleWeatherData(w http.ResponseWriter, r *http.Request) {
	_, state, ok := h.session(w, r)
	if !ok {
		return
	}

	partial := r.Header.Get("HX-Request") != ""

	activation := h.results.Activate(r.Context(), state)
	if activation.Redirect() {
		if !partial {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	activation.Run()
	if activation.Status() == views.StatusCancelled {
		h.logger.Debug("weather request abandoned", "city", activation.City())
		return
	}

	// The fragment is swapped in place, so errors are 200 as well.
	view := activation.View()
	if partial {
		h.render(w, http.StatusOK, "weather_fragment", view)
		return
	}
	h.render(w, http.StatusOK, "weather.html", weatherPage{
		Title:  h.texts.Format(messages.ResultsTitle, map[string]any{"City": view.City}),
		Result: &view,
	})
}

// HandleHealth handles health check endpoint
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	if p, ok := h.sessions.(Pinger); ok {
		if err := p.Ping(); err != nil {
			h.logger.Warn("health check failed", "err", err)
			status = "degraded"
		}
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		h.logger.Error("response write error", "err", err)
	}
}

func (h *Handlers) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template error", "template", name, "err", err)
	}
}

// session loads the visitor's State, issuing a cookie on first visit.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (string, *session.State, bool) {
	id := sessionID(w, r)
	state, err := h.sessions.Load(r.Context(), id)
	if err != nil {
		h.logger.Error("session load failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return "", nil, false
	}
	return id, state, true
}

// sessionID returns the request's session ID, minting one and setting the
// cookie when it is missing or not a UUID.
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
