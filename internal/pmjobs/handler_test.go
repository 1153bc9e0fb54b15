package pmjobs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlog/liftlog/internal/authz"
	"github.com/liftlog/liftlog/internal/forklifts"
	"github.com/liftlog/liftlog/internal/shared"
	"github.com/liftlog/liftlog/internal/view"
)

type stubForklifts struct{}

func (stubForklifts) ListAll(context.Context) ([]forklifts.Forklift, error) {
	return []forklifts.Forklift{{ID: 1, EqNo: "FL-01", Brand: "Toyota", Type: "8FD25"}}, nil
}

func newTestHandler(t *testing.T, repo Repository) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo), stubForklifts{}, templates, shared.NewCSRFManager("test"))
	r := chi.NewRouter()
	r.Route("/pm", h.MountRoutes)
	return r
}

func asPrincipal(r *http.Request, p *authz.Principal) *http.Request {
	return r.WithContext(authz.WithPrincipal(r.Context(), p))
}

func seededJob() *PMJob {
	userID := int64(5)
	return &PMJob{
		ID:         10,
		ForkliftID: 1,
		Date:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ReportNo:   "PM-010",
		JobDesc:    "ganti oli",
		CreatedBy:  1,
		Assignments: []Assignment{
			{ID: 100, JobID: 10, UserID: &userID, User: &AssignedUser{ID: 5, Name: "Budi"}},
		},
	}
}

func TestDeleteRequiresAssignment(t *testing.T) {
	tests := []struct {
		name       string
		principal  *authz.Principal
		wantStatus int
	}{
		{"assigned technician", &authz.Principal{ID: 5, Role: "teknisi"}, http.StatusSeeOther},
		{"unassigned technician", &authz.Principal{ID: 6, Role: "teknisi"}, http.StatusForbidden},
		{"admin", &authz.Principal{ID: 1, Role: "admin"}, http.StatusSeeOther},
		{"supervisor", &authz.Principal{ID: 2, Role: "supervisor"}, http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRepo(seededJob())
			router := newTestHandler(t, repo)

			req := asPrincipal(httptest.NewRequest("POST", "/pm/10/delete", nil), tt.principal)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/pm", rec.Header().Get("Location"))
				assert.Equal(t, []int64{10}, repo.deleted)
			} else {
				assert.Contains(t, rec.Body.String(), "not assigned")
				assert.Empty(t, repo.deleted)
			}
		})
	}
}

func TestUpdateRequiresAssignment(t *testing.T) {
	repo := newStubRepo(seededJob())
	router := newTestHandler(t, repo)

	form := url.Values{
		"forklift_id": {"1"},
		"date":        {"2025-06-02"},
		"report_no":   {"PM-010"},
		"job_desc":    {"ganti filter"},
		"technicians": {"5"},
	}
	req := httptest.NewRequest("POST", "/pm/10", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asPrincipal(req, &authz.Principal{ID: 6, Role: "teknisi"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdatePreservesCreator(t *testing.T) {
	repo := newStubRepo(seededJob())
	router := newTestHandler(t, repo)

	form := url.Values{
		"forklift_id": {"1"},
		"date":        {"2025-06-02"},
		"report_no":   {"PM-010R"},
		"job_desc":    {"ganti filter"},
		"technicians": {"5", "9"},
	}
	req := httptest.NewRequest("POST", "/pm/10", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asPrincipal(req, &authz.Principal{ID: 5, Role: "teknisi"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	updated := repo.jobs[10]
	require.NotNil(t, updated)
	assert.Equal(t, "PM-010R", updated.ReportNo)
	assert.Equal(t, int64(1), updated.CreatedBy)
}

func TestCreateStampsCreator(t *testing.T) {
	repo := newStubRepo()
	router := newTestHandler(t, repo)

	form := url.Values{
		"forklift_id":    {"1"},
		"date":           {"2025-06-02"},
		"report_no":      {"PM-011"},
		"job_desc":       {"service rutin"},
		"next_pm_option": {"1bulan"},
		"technicians":    {"5"},
	}
	req := httptest.NewRequest("POST", "/pm", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asPrincipal(req, &authz.Principal{ID: 2, Role: "supervisor"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, int64(2), created.CreatedBy)
	require.NotNil(t, created.NextPMDate)
	assert.Equal(t, created.Date.AddDate(0, 0, 30), *created.NextPMDate)
}

func TestCreateRejectsBadDate(t *testing.T) {
	repo := newStubRepo()
	router := newTestHandler(t, repo)

	form := url.Values{
		"forklift_id": {"1"},
		"date":        {"01-06-2025"},
		"report_no":   {"PM-012"},
		"job_desc":    {"service"},
		"technicians": {"5"},
	}
	req := httptest.NewRequest("POST", "/pm", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = asPrincipal(req, &authz.Principal{ID: 1, Role: "admin"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.created)
}
