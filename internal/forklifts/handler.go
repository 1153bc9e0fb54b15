package forklifts

import (
	"errors"
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

// Handler manages the equipment registry endpoints.
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

// MountRoutes registers forklift routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.deleteOne)
	r.Post("/delete", h.deleteBulk)
}

type listPage struct {
	Forklifts []Forklift
	Total     int
	Page      int
	Pages     int
	Search    string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r, 20)
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list forklifts", slog.Any("error", err))
		h.render(w, r, listPage{}, "Gagal memuat data forklift", http.StatusInternalServerError)
		return
	}
	h.renderOK(w, r, listPage{
		Forklifts: items,
		Total:     total,
		Page:      filters.Page,
		Pages:     filters.Pages(total),
		Search:    filters.Search,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(r)
	if err != nil {
		h.render(w, r, listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.service.Create(r.Context(), f); err != nil {
		h.logger.Warn("create forklift", slog.Any("error", err))
		h.render(w, r, listPage{}, createErrorMessage(err), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/forklifts", http.StatusSeeOther)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/forklifts", http.StatusSeeOther)
		return
	}
	f, err := parseForm(r)
	if err != nil {
		h.render(w, r, listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.Update(r.Context(), id, f); err != nil {
		h.logger.Warn("update forklift", slog.Any("error", err))
		h.render(w, r, listPage{}, createErrorMessage(err), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/forklifts", http.StatusSeeOther)
}

// Deleting equipment takes every attached job log with it, so only
// admins may do it. API-style refusal, not a redirect.
func (h *Handler) deleteOne(w http.ResponseWriter, r *http.Request) {
	if !authz.IsAdmin(authz.PrincipalFromContext(r.Context())) {
		httpx.Forbidden(w, "admin only")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/forklifts", http.StatusSeeOther)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete forklift", slog.Any("error", err))
	}
	http.Redirect(w, r, "/forklifts", http.StatusSeeOther)
}

func (h *Handler) deleteBulk(w http.ResponseWriter, r *http.Request) {
	if !authz.IsAdmin(authz.PrincipalFromContext(r.Context())) {
		httpx.Forbidden(w, "admin only")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/forklifts", http.StatusSeeOther)
		return
	}
	var ids []int64
	for _, raw := range r.PostForm["ids"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	if err := h.service.DeleteMany(r.Context(), ids); err != nil {
		h.logger.Error("bulk delete forklifts", slog.Any("error", err))
	}
	http.Redirect(w, r, "/forklifts", http.StatusSeeOther)
}

func parseForm(r *http.Request) (Forklift, error) {
	if err := r.ParseForm(); err != nil {
		return Forklift{}, errors.New("form tidak valid")
	}
	year, _ := strconv.Atoi(r.PostFormValue("mfg_year"))
	return Forklift{
		Brand:        r.PostFormValue("brand"),
		Type:         r.PostFormValue("type"),
		EqNo:         r.PostFormValue("eq_no"),
		SerialNumber: r.PostFormValue("serial_number"),
		Location:     r.PostFormValue("location"),
		Powertrain:   r.PostFormValue("powertrain"),
		Owner:        r.PostFormValue("owner"),
		MfgYear:      year,
		Status:       r.PostFormValue("status"),
	}, nil
}

func createErrorMessage(err error) string {
	if errors.Is(err, shared.ErrDuplicate) {
		return "Nomor equipment atau serial number sudah terdaftar"
	}
	return err.Error()
}

func (h *Handler) renderOK(w http.ResponseWriter, r *http.Request, data listPage) {
	h.render(w, r, data, "", http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data listPage, errMsg string, status int) {
	viewData := view.TemplateData{
		Title:       "Forklift",
		CSRFToken:   h.csrf.TokenFor(session.TokenFromContext(r.Context())),
		Principal:   authz.PrincipalFromContext(r.Context()),
		CurrentPath: r.URL.Path,
		Error:       errMsg,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/forklifts_list.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
