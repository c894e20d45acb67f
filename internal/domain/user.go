package domain

import (
	"context"
	"time"
)

// AdminUser is an account allowed to manage site content.
// swagger:model AdminUser
type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAdminUser returns a new AdminUser with the given fields. ID is typically set by the repository on create.
func NewAdminUser(email, name, passwordHash, salt string, createdAt, updatedAt time.Time) *AdminUser {
	return &AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Actor is the authenticated principal behind a mutating call.
type Actor struct {
	UserID string
	Email  string
}

// SessionContext carries the authentication state of one request.
// The zero value is an anonymous session.
type SessionContext struct {
	Actor *Actor
}

// Authenticated reports whether the session carries an actor.
func (s SessionContext) Authenticated() bool {
	return s.Actor != nil
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues signed session tokens for an authenticated admin.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the actor it was issued to.
type TokenVerifier interface {
	Verify(token string) (*Actor, error)
}

// AdminUserRepository defines the interface for admin account storage.
type AdminUserRepository interface {
	Create(ctx context.Context, user *AdminUser) error
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	GetByID(ctx context.Context, id string) (*AdminUser, error)
	UpdatePassword(ctx context.Context, id, passwordHash, salt string) error
}

// AuthService defines admin login and provisioning.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *AdminUser, err error)
	Me(ctx context.Context, session SessionContext) (*AdminUser, error)
	ProvisionAdmin(ctx context.Context, email, name, password string) (user *AdminUser, created bool, err error)
}
