package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"parkdesk/internal/entities"
	"strings"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"dashboard.html", "slots.html", "slot_edit.html", "sessions.html", "entry.html"}

// Page carries what every page shows around its own content.
type Page struct {
	Title  string
	Nav    string
	Notice string
	Error  string
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t entities.Timestamp) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006 15:04")
	},
	"amount": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f", *v)
	},
	"inc":   func(i int) int { return i + 1 },
	"lower": strings.ToLower,
}

func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), logger: logger}
	for _, page := range pages {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render writes the page with the given status. Execution happens into a
// buffer first so a template error never leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := r.pages[page]
	if !ok {
		r.logger.Error("Unknown page template", zap.String("page", page))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("Rendering page failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
