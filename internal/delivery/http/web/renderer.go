package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages are the known page templates; each is parsed together with the
// shared layout so the site keeps one header and footer.
var pages = []string{
	"events", "event_detail", "login", "register",
	"dashboard", "event_form", "participants", "error",
}

// Renderer renders the server-side HTML pages from embedded templates.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// funcMap holds formatting helpers shared by all pages.
var funcMap = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("02.01.2006 15:04")
	},
	"inputDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02T15:04")
	},
}

// NewRenderer parses all embedded page templates. Parsing happens once at
// startup so template errors surface immediately.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS,
			"templates/layout.html",
			fmt.Sprintf("templates/%s.html", name),
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return &Renderer{templates: templates, logger: logger}, nil
}

// Render writes the named page with the given status. A render failure after
// headers are written can only be logged.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("unknown page template", "name", name)
		http.Error(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		r.logger.Error("render page failed", "name", name, "err", err)
	}
}

// RenderError writes the shared error page.
func (r *Renderer) RenderError(w http.ResponseWriter, status int, message string) {
	r.Render(w, status, "error", map[string]any{
		"Title":   "Fehler",
		"Status":  status,
		"Message": message,
	})
}
