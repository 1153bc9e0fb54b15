package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/liftlog/liftlog/internal/authz"
	"github.com/liftlog/liftlog/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Principal   *authz.Principal
	CurrentPath string
	Error       string
	Success     string
	Data        any
}

// NewEngine parses the embedded templates. The func map exposes the
// authorization predicates so templates can make per-row UI decisions
// (e.g. only show a delete button when the caller may delete).
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(v any) string {
			var t time.Time
			switch d := v.(type) {
			case time.Time:
				t = d
			case *time.Time:
				if d == nil {
					return ""
				}
				t = *d
			default:
				return ""
			}
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"derefID": func(p *int64) int64 {
			if p == nil {
				return 0
			}
			return *p
		},
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"isAdmin":      authz.IsAdmin,
		"isSupervisor": authz.IsSupervisor,
		"isAssignedTo": authz.IsAssignedTo,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates,
		"templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
