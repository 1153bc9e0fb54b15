package pmjobs

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Service wraps PM job business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]PMJob, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*PMJob, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListTechnicians(ctx context.Context) ([]Technician, error) {
	return s.repo.ListTechnicians(ctx)
}

func (s *Service) Create(ctx context.Context, job PMJob, technicianIDs []int64) (int64, error) {
	if err := validate(job, technicianIDs); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, job, technicianIDs)
}

func (s *Service) Update(ctx context.Context, job PMJob, technicianIDs []int64) error {
	if err := validate(job, technicianIDs); err != nil {
		return err
	}
	return s.repo.Update(ctx, job, technicianIDs)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(job PMJob, technicianIDs []int64) error {
	if job.ForkliftID <= 0 {
		return errors.New("forklift wajib dipilih")
	}
	if job.ReportNo == "" || job.JobDesc == "" {
		return errors.New("report_no dan job_desc wajib diisi")
	}
	if len(technicianIDs) == 0 {
		return errors.New("minimal satu teknisi harus ditugaskan")
	}
	return nil
}

// NextPMDate resolves the scheduled next service from either a shortcut
// option (1/2/3 months from the job date) or an explicit date. Both
// absent means no next service is planned.
func NextPMDate(jobDate time.Time, option, explicit string) *time.Time {
	switch option {
	case "1bulan":
		d := jobDate.AddDate(0, 0, 30)
		return &d
	case "2bulan":
		d := jobDate.AddDate(0, 0, 60)
		return &d
	case "3bulan":
		d := jobDate.AddDate(0, 0, 90)
		return &d
	}
	if explicit != "" {
		if d, err := time.Parse("2006-01-02", explicit); err == nil {
			return &d
		}
	}
	return nil
}

// ParseTechnicianIDs converts the multi-select form values into ids.
// A malformed value drops that single entry, never the whole submit.
func ParseTechnicianIDs(values []string) []int64 {
	var ids []int64
	for _, raw := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
