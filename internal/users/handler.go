package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/liftlog/liftlog/internal/authz"
	"github.com/liftlog/liftlog/internal/platform/httpx"
	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/shared"
	"github.com/liftlog/liftlog/internal/view"
)

// Handler manages user management endpoints. The whole mount sits
// behind the gate's admin prefix; the in-handler check is the second
// line in case these routes ever get mounted elsewhere.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.requireAdmin)
	r.Get("/", h.list)
	r.Get("/new", h.createForm)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.delete)
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authz.IsAdmin(authz.PrincipalFromContext(r.Context())) {
			httpx.Forbidden(w, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		h.render(w, r, "pages/users_list.html", nil, "Gagal memuat data user", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/users_list.html", list, "", http.StatusOK)
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/users_form.html", User{Role: "teknisi"}, "", http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	u := userFromForm(r)
	if _, err := h.service.Create(r.Context(), u, r.PostFormValue("password")); err != nil {
		h.logger.Warn("create user", slog.Any("error", err))
		h.render(w, r, "pages/users_form.html", u, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/users_form.html", u, "", http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	u := userFromForm(r)
	if err := h.service.Update(r.Context(), id, u, r.PostFormValue("password")); err != nil {
		h.logger.Warn("update user", slog.Any("error", err))
		u.ID = id
		h.render(w, r, "pages/users_form.html", u, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	// An admin cannot delete their own account mid-session.
	if p := authz.PrincipalFromContext(r.Context()); p != nil && p.ID == id {
		httpx.Forbidden(w, "cannot delete own account")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete user", slog.Any("error", err))
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func userFromForm(r *http.Request) User {
	return User{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Role:  r.PostFormValue("role"),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string, status int) {
	viewData := view.TemplateData{
		Title:       "Users",
		CSRFToken:   h.csrf.TokenFor(session.TokenFromContext(r.Context())),
		Principal:   authz.PrincipalFromContext(r.Context()),
		CurrentPath: r.URL.Path,
		Error:       errMsg,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
