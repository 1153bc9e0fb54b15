package forklifts

import (
	"context"
	"errors"

	"github.com/liftlog/liftlog/internal/shared"
)

// Service wraps registry business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Forklift, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Forklift, error) {
	if id <= 0 {
		return Forklift{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, f Forklift) (Forklift, error) {
	if err := validate(f); err != nil {
		return Forklift{}, err
	}
	return s.repo.Create(ctx, f)
}

func (s *Service) Update(ctx context.Context, id int64, f Forklift) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := validate(f); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, f)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) DeleteMany(ctx context.Context, ids []int64) error {
	return s.repo.DeleteMany(ctx, ids)
}

func validate(f Forklift) error {
	if f.Brand == "" || f.Type == "" || f.EqNo == "" || f.SerialNumber == "" {
		return errors.New("brand, type, eq_no and serial_number are required")
	}
	if f.MfgYear < 1950 || f.MfgYear > 2100 {
		return errors.New("mfg_year out of range")
	}
	return nil
}
