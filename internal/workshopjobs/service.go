package workshopjobs

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/liftlog/liftlog/internal/shared"
)

// Service wraps workshop job business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]WorkshopJob, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*WorkshopJob, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListTechnicians(ctx context.Context) ([]Technician, error) {
	return s.repo.ListTechnicians(ctx)
}

func (s *Service) Create(ctx context.Context, job WorkshopJob, technicianIDs []int64, items []Item) (int64, error) {
	if err := validate(job, technicianIDs); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, job, technicianIDs, items)
}

func (s *Service) Update(ctx context.Context, job WorkshopJob, technicianIDs []int64, items []Item) error {
	if err := validate(job, technicianIDs); err != nil {
		return err
	}
	return s.repo.Update(ctx, job, technicianIDs, items)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(job WorkshopJob, technicianIDs []int64) error {
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

// ParseItems pairs the item_name/qty form arrays. Rows with an empty
// name or a malformed quantity are dropped individually.
func ParseItems(names, quantities []string) []Item {
	var items []Item
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || i >= len(quantities) {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(quantities[i]))
		if err != nil || qty <= 0 {
			continue
		}
		items = append(items, Item{Name: name, Qty: qty})
	}
	return items
}
