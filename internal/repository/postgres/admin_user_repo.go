package postgres

import (
	"context"
	"database/sql"
	"time"

	"clubsite/internal/domain"
)

const adminUserColumns = `id, email, name, password_hash, salt, created_at, updated_at`

type adminUserRepository struct {
	DB *sql.DB
}

func NewAdminUserRepository(db *sql.DB) domain.AdminUserRepository {
	return &adminUserRepository{DB: db}
}

func scanAdminUser(s scanner) (*domain.AdminUser, error) {
	u := &domain.AdminUser{}
	if err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Salt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *adminUserRepository) Create(ctx context.Context, u *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, name, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return mapError(r.DB.QueryRowContext(ctx, query, u.Email, u.Name, u.PasswordHash, u.Salt, u.CreatedAt, u.UpdatedAt).Scan(&u.ID))
}

func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	return scanAdminUser(r.DB.QueryRowContext(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE email = $1`, email))
}

func (r *adminUserRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	return scanAdminUser(r.DB.QueryRowContext(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE id = $1`, id))
}

func (r *adminUserRepository) UpdatePassword(ctx context.Context, id, passwordHash, salt string) error {
	query := `UPDATE admin_users SET password_hash = $1, salt = $2, updated_at = $3 WHERE id = $4`
	result, err := r.DB.ExecContext(ctx, query, passwordHash, salt, time.Now().UTC(), id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}
