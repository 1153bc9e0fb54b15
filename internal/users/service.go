package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/liftlog/liftlog/internal/shared"
)

var validRoles = map[string]struct{}{
	"admin":      {},
	"supervisor": {},
	"teknisi":    {},
}

// Service wraps user management business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, u User, password string) (User, error) {
	if err := validate(u); err != nil {
		return User{}, err
	}
	if len(password) < 8 {
		return User{}, errors.New("password minimal 8 karakter")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, u, string(hash))
}

// Update changes profile fields; an empty password leaves the stored
// hash untouched.
func (s *Service) Update(ctx context.Context, id int64, u User, password string) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := validate(u); err != nil {
		return err
	}
	hash := ""
	if password != "" {
		if len(password) < 8 {
			return errors.New("password minimal 8 karakter")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = string(hashed)
	}
	return s.repo.Update(ctx, id, u, hash)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func validate(u User) error {
	if u.Name == "" {
		return errors.New("nama wajib diisi")
	}
	if _, ok := validRoles[u.Role]; !ok {
		return errors.New("role tidak dikenal")
	}
	return nil
}
