package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"clubsite/internal/domain"
	"clubsite/internal/lifecycle"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo       domain.AdminUserRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	tokenExpiry    time.Duration
	contextTimeout time.Duration

	dummyOnce sync.Once
	dummySalt string
	dummyHash string
}

// NewAuthService creates an AuthService for admin accounts.
func NewAuthService(userRepo domain.AdminUserRepository, hasher domain.PasswordHasher, issuer domain.TokenIssuer, tokenExpiry, timeout time.Duration) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		issuer:         issuer,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown emails pay for a hash comparison too.
			salt, hash := s.dummyCredentials()
			_ = s.hasher.Compare(hash, salt, password)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, upstream("login", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	return token, user, nil
}

func (s *authService) dummyCredentials() (string, string) {
	s.dummyOnce.Do(func() {
		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			return
		}
		hash, err := s.hasher.Hash(salt, "unknown-account-placeholder")
		if err != nil {
			return
		}
		s.dummySalt, s.dummyHash = salt, hash
	})
	return s.dummySalt, s.dummyHash
}

func (s *authService) Me(ctx context.Context, session domain.SessionContext) (*domain.AdminUser, error) {
	actor, err := lifecycle.RequireActor(session)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, upstream("get admin", err)
	}
	return user, nil
}

// ProvisionAdmin creates the admin account for email, or rotates its
// password if the account already exists.
func (s *authService) ProvisionAdmin(ctx context.Context, email, name, password string) (*domain.AdminUser, bool, error) {
	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, false, domain.NewValidationError("email", "invalid email format")
	}
	if len(password) < minPasswordLen {
		return nil, false, domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, false, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.userRepo.UpdatePassword(ctx, existing.ID, hash, salt); err != nil {
			return nil, false, upstream("rotate admin password", err)
		}
		existing.PasswordHash, existing.Salt = hash, salt
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, upstream("get admin", err)
	}

	if name = strings.TrimSpace(name); name == "" {
		name = email
	}
	now := time.Now()
	user := domain.NewAdminUser(email, name, hash, salt, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, upstream("create admin", err)
	}
	return user, true, nil
}
