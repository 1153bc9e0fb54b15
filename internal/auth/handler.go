package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	templates    *view.Engine
	sessions     *session.Store
	validator    *validator.Validate
	secureCookie bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *session.Store, secureCookie bool) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		templates:    templates,
		sessions:     sessions,
		validator:    validator.New(),
		secureCookie: secureCookie,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)
	r.Get("/forgot-password", h.showForgotPassword)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Get("/reset-password/{token}", h.showResetPassword)
	r.Post("/reset-password/{token}", h.handleResetPassword)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, "pages/login.html", view.TemplateData{Title: "Masuk", CurrentPath: r.URL.Path})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(form); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "pages/login.html", view.TemplateData{
			Title: "Masuk", CurrentPath: r.URL.Path,
			Error: "Email dan password wajib diisi",
		})
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "pages/login.html", view.TemplateData{
			Title: "Masuk", CurrentPath: r.URL.Path,
			Error: "Email atau password tidak valid",
		})
		return
	}

	token, err := h.sessions.Create(user.ID, user.Role, user.Name, user.Email)
	if err != nil {
		h.logger.Error("create session", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	session.WriteCookie(w, token, h.sessions.TTL(), h.secureCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		h.sessions.Invalidate(cookie.Value)
	}
	session.ClearCookie(w, h.secureCookie)
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) showForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, "pages/forgot_password.html", view.TemplateData{Title: "Lupa Password", CurrentPath: r.URL.Path})
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	if _, err := h.service.IssueResetToken(r.Context(), email); err != nil {
		// Unknown accounts get the same response as known ones.
		h.logger.Debug("reset token not issued", slog.String("email", email))
	}
	h.render(w, "pages/forgot_password.html", view.TemplateData{
		Title: "Lupa Password", CurrentPath: r.URL.Path,
		Success: "Jika email terdaftar, tautan reset password akan dikirim.",
	})
}

func (h *Handler) showResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	data := view.TemplateData{Title: "Reset Password", CurrentPath: r.URL.Path, Data: token}
	if !h.service.ValidResetToken(token) {
		data.Error = "Tautan reset tidak valid atau sudah kedaluwarsa."
	}
	h.render(w, "pages/reset_password.html", data)
}

type resetForm struct {
	Password string `validate:"required,min=8"`
	Confirm  string `validate:"required,eqfield=Password"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	token := chi.URLParam(r, "token")
	form := resetForm{
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm_password"),
	}
	if err := h.validator.Struct(form); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "pages/reset_password.html", view.TemplateData{
			Title: "Reset Password", CurrentPath: r.URL.Path, Data: token,
			Error: "Password minimal 8 karakter dan harus sama dengan konfirmasi.",
		})
		return
	}
	if err := h.service.ResetPassword(r.Context(), token, form.Password); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "pages/reset_password.html", view.TemplateData{
			Title: "Reset Password", CurrentPath: r.URL.Path, Data: token,
			Error: "Tautan reset tidak valid atau sudah kedaluwarsa.",
		})
		return
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, name string, data view.TemplateData) {
	if err := h.templates.Render(w, name, data); err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}
