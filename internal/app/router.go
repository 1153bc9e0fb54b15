package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/liftlog/liftlog/internal/auth"
	"github.com/liftlog/liftlog/internal/authz"
	"github.com/liftlog/liftlog/internal/forklifts"
	"github.com/liftlog/liftlog/internal/pmjobs"
	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/shared"
	"github.com/liftlog/liftlog/internal/users"
	"github.com/liftlog/liftlog/internal/view"
	"github.com/liftlog/liftlog/internal/workshopjobs"
	"github.com/liftlog/liftlog/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Templates       *view.Engine
	Gate            *Gate
	CSRFManager     *shared.CSRFManager
	AuthHandler     *auth.Handler
	ForkliftHandler *forklifts.Handler
	PMJobHandler    *pmjobs.Handler
	WorkshopHandler *workshopjobs.Handler
	UsersHandler    *users.Handler
}

// NewRouter constructs the chi.Router with LiftLog defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		Gate:        params.Gate,
		CSRFManager: params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		principal := authz.PrincipalFromContext(r.Context())
		data := view.TemplateData{
			Title:       "LiftLog",
			CSRFToken:   params.CSRFManager.TokenFor(session.TokenFromContext(r.Context())),
			Principal:   principal,
			CurrentPath: r.URL.Path,
		}
		if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/forklifts", params.ForkliftHandler.MountRoutes)
	r.Route("/pm", params.PMJobHandler.MountRoutes)
	r.Route("/workshop", params.WorkshopHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps the file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=604800, immutable")
		next.ServeHTTP(w, r)
	})
}
