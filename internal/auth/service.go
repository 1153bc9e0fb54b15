package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/liftlog/liftlog/internal/shared"
)

const resetTokenTTL = time.Hour

type resetEntry struct {
	userID    int64
	expiresAt time.Time
}

// Service wraps authentication business rules. Password-reset tokens
// live in memory with the same locking discipline as the session store;
// they are single-use and expire after an hour.
type Service struct {
	repo Repository

	mu          sync.Mutex
	now         func() time.Time
	resetTokens map[string]resetEntry
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:        repo,
		now:         time.Now,
		resetTokens: make(map[string]resetEntry),
	}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// IssueResetToken creates a password-reset token for the account, if it
// exists. Callers must not reveal whether the email was known.
func (s *Service) IssueResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	s.mu.Lock()
	s.resetTokens[token] = resetEntry{userID: user.ID, expiresAt: s.now().Add(resetTokenTTL)}
	s.mu.Unlock()
	return token, nil
}

// ValidResetToken reports whether the token is known and unexpired.
// Expired tokens are purged on lookup.
func (s *Service) ValidResetToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.resetTokens[token]
	if !ok {
		return false
	}
	if !entry.expiresAt.After(s.now()) {
		delete(s.resetTokens, token)
		return false
	}
	return true
}

// ResetPassword consumes the token and replaces the account password.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	s.mu.Lock()
	entry, ok := s.resetTokens[token]
	if ok && entry.expiresAt.After(s.now()) {
		delete(s.resetTokens, token)
	} else {
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return shared.ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, entry.userID, string(hash))
}
