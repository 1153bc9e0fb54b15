package pmjobs

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

// Handler manages PM job endpoints.
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

// MountRoutes registers PM job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.delete)
}

type listPage struct {
	Jobs        []PMJob
	Forklifts   []forklifts.Forklift
	Technicians []Technician
	Today       string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list pm jobs", slog.Any("error", err))
		h.render(w, r, "pages/pm_list.html", listPage{}, "Gagal memuat data PM", http.StatusInternalServerError)
		return
	}
	fleet, err := h.forklifts.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list forklifts for pm form", slog.Any("error", err))
	}
	techs, err := h.service.ListTechnicians(r.Context())
	if err != nil {
		h.logger.Error("list technicians", slog.Any("error", err))
	}
	h.render(w, r, "pages/pm_list.html", listPage{
		Jobs:        jobs,
		Forklifts:   fleet,
		Technicians: techs,
		Today:       time.Now().Format("2006-01-02"),
	}, "", http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/pm", http.StatusSeeOther)
		return
	}
	principal := authz.PrincipalFromContext(r.Context())
	job, techIDs, err := jobFromForm(r)
	if err != nil {
		h.render(w, r, "pages/pm_list.html", listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	job.CreatedBy = principal.ID
	if _, err := h.service.Create(r.Context(), job, techIDs); err != nil {
		h.logger.Warn("create pm job", slog.Any("error", err))
		h.render(w, r, "pages/pm_list.html", listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/pm", http.StatusSeeOther)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	fleet, err := h.forklifts.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list forklifts for pm edit", slog.Any("error", err))
	}
	techs, err := h.service.ListTechnicians(r.Context())
	if err != nil {
		h.logger.Error("list technicians", slog.Any("error", err))
	}
	h.render(w, r, "pages/pm_edit.html", struct {
		Job         *PMJob
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
		http.Redirect(w, r, "/pm", http.StatusSeeOther)
		return
	}
	updated, techIDs, err := jobFromForm(r)
	if err != nil {
		h.render(w, r, "pages/pm_list.html", listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	updated.ID = job.ID
	updated.CreatedBy = job.CreatedBy
	if err := h.service.Update(r.Context(), updated, techIDs); err != nil {
		h.logger.Warn("update pm job", slog.Any("error", err))
		h.render(w, r, "pages/pm_list.html", listPage{}, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/pm", http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), job.ID); err != nil {
		h.logger.Error("delete pm job", slog.Any("error", err))
	}
	http.Redirect(w, r, "/pm", http.StatusSeeOther)
}

// loadAuthorized fetches the job and applies the resource-level check:
// the request already passed the coarse gate, but mutations on a
// specific job still require admin or membership in the job's
// assignment set. This layer must not be skipped.
func (h *Handler) loadAuthorized(w http.ResponseWriter, r *http.Request) (*PMJob, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/pm", http.StatusSeeOther)
		return nil, false
	}
	job, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/pm", http.StatusSeeOther)
		return nil, false
	}
	principal := authz.PrincipalFromContext(r.Context())
	if !(authz.IsAdmin(principal) || authz.IsAssignedTo(principal, job)) {
		httpx.Forbidden(w, "not assigned to this job")
		return nil, false
	}
	return job, true
}

func jobFromForm(r *http.Request) (PMJob, []int64, error) {
	forkliftID, _ := strconv.ParseInt(r.PostFormValue("forklift_id"), 10, 64)
	date, err := time.Parse("2006-01-02", r.PostFormValue("date"))
	if err != nil {
		return PMJob{}, nil, errInvalidDate
	}
	job := PMJob{
		ForkliftID:     forkliftID,
		Date:           date,
		ReportNo:       r.PostFormValue("report_no"),
		JobDesc:        r.PostFormValue("job_desc"),
		Recommendation: r.PostFormValue("recommendation"),
		NextPMDate:     NextPMDate(date, r.PostFormValue("next_pm_option"), r.PostFormValue("next_pm_date")),
	}
	techIDs := ParseTechnicianIDs(r.PostForm["technicians"])
	return job, techIDs, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string, status int) {
	viewData := view.TemplateData{
		Title:       "PM Jobs",
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
