package workshopjobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/liftlog/liftlog/internal/authz"
	"github.com/liftlog/liftlog/internal/forklifts"
	"github.com/liftlog/liftlog/internal/platform/httpx"
	"github.com/liftlog/liftlog/internal/session"
	"github.com/liftlog/liftlog/internal/shared"
	"github.com/liftlog/liftlog/internal/view"
)

var errInvalidDate = errors.New("tanggal tidak valid")

// ForkliftLister supplies the equipment options for the job form.
type ForkliftLister interface {
	ListAll(ctx context.Context) ([]forklifts.Forklift, error)
}

// Handler manages workshop job endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	forklifts ForkliftLister
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, fl ForkliftLister, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, forklifts: fl, templates: templates, csrf: csrf}
}

// MountRoutes registers workshop job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.delete)
}

type listPage struct {
	Jobs        []WorkshopJob
	Forklifts   []forklifts.Forklift
	Technicians []Technician
	Total       int
	Page        int
	Pages       int
	Today       string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r, 20)
	jobs, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list workshop jobs", slog.Any("error", err))
		h.render(w, r, "pages/workshop_list.html", listPage{}, "Gagal memuat data workshop", http.StatusInternalServerError)
		return
	}
	fleet, err := h.forklifts.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list forklifts for workshop form", slog.Any("error", err))
	}
	techs, err := h.service.ListTechnicians(r.Context())
	if err != nil {
		h.logger.Error("list technicians", slog.Any("error", err))
	}
	h.render(w, r, "pages/workshop_list.html", listPage{
		Jobs:        jobs,
		Forklifts:   fleet,
		Technicians: techs,
		Total:       total,
		Page:        filters.Page,
		Pages:       filters.Pages(total),
		Today:       time.Now().Format("2006-01-02"),
	}, "", http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/workshop", http.StatusSeeOther)
		return
	}
	job, techIDs, items, err := jobFromForm(r)
	if err != nil {
		h.render(w, r, "pages/workshop_list.html", listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.service.Create(r.Context(), job, techIDs, items); err != nil {
		h.logger.Warn("create workshop job", slog.Any("error", err))
		h.render(w, r, "pages/workshop_list.html", listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/workshop", http.StatusSeeOther)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	fleet, err := h.forklifts.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list forklifts for workshop edit", slog.Any("error", err))
	}
	techs, err := h.service.ListTechnicians(r.Context())
	if err != nil {
		h.logger.Error("list technicians", slog.Any("error", err))
	}
	h.render(w, r, "pages/workshop_edit.html", struct {
		Job         *WorkshopJob
		Forklifts   []forklifts.Forklift
		Technicians []Technician
	}{job, fleet, techs}, "", http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/workshop", http.StatusSeeOther)
		return
	}
	updated, techIDs, items, err := jobFromForm(r)
	if err != nil {
		h.render(w, r, "pages/workshop_list.html", listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	updated.ID = job.ID
	if err := h.service.Update(r.Context(), updated, techIDs, items); err != nil {
		h.logger.Warn("update workshop job", slog.Any("error", err))
		h.render(w, r, "pages/workshop_list.html", listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/workshop", http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), job.ID); err != nil {
		h.logger.Error("delete workshop job", slog.Any("error", err))
	}
	http.Redirect(w, r, "/workshop", http.StatusSeeOther)
}

// loadAuthorized applies the resource-level check beneath the coarse
// path gate: mutations on a specific job require admin or membership
// in the job's assignment set.
func (h *Handler) loadAuthorized(w http.ResponseWriter, r *http.Request) (*WorkshopJob, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/workshop", http.StatusSeeOther)
		return nil, false
	}
	job, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/workshop", http.StatusSeeOther)
		return nil, false
	}
	principal := authz.PrincipalFromContext(r.Context())
	if !(authz.IsAdmin(principal) || authz.IsAssignedTo(principal, job)) {
		httpx.Forbidden(w, "not assigned to this job")
		return nil, false
	}
	return job, true
}

func jobFromForm(r *http.Request) (WorkshopJob, []int64, []Item, error) {
	forkliftID, _ := strconv.ParseInt(r.PostFormValue("forklift_id"), 10, 64)
	date, err := time.Parse("2006-01-02", r.PostFormValue("date"))
	if err != nil {
		return WorkshopJob{}, nil, nil, errInvalidDate
	}
	job := WorkshopJob{
		ForkliftID: forkliftID,
		Date:       date,
		ReportNo:   r.PostFormValue("report_no"),
		JobDesc:    r.PostFormValue("job_desc"),
		Notes:      r.PostFormValue("notes"),
	}
	techIDs := ParseTechnicianIDs(r.PostForm["technicians"])
	items := ParseItems(r.PostForm["item_name"], r.PostForm["qty"])
	return job, techIDs, items, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string, status int) {
	viewData := view.TemplateData{
		Title:       "Workshop Jobs",
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
