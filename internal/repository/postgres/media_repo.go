package postgres

import (
	"context"
	"database/sql"

	"clubsite/internal/domain"
)

const mediaColumns = `id, key, url, filename, content_type, size_bytes, created_at`

type mediaRepository struct {
	DB *sql.DB
}

func NewMediaRepository(db *sql.DB) domain.MediaRepository {
	return &mediaRepository{DB: db}
}

func scanMedia(s scanner) (*domain.Media, error) {
	m := &domain.Media{}
	if err := s.Scan(&m.ID, &m.Key, &m.URL, &m.Filename, &m.ContentType, &m.SizeBytes, &m.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return m, nil
}

func (r *mediaRepository) Create(ctx context.Context, m *domain.Media) error {
	query := `
		INSERT INTO media (key, url, filename, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return mapError(r.DB.QueryRowContext(ctx, query, m.Key, m.URL, m.Filename, m.ContentType, m.SizeBytes, m.CreatedAt).Scan(&m.ID))
}

func (r *mediaRepository) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	return scanMedia(r.DB.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
}

func (r *mediaRepository) GetByKey(ctx context.Context, key string) (*domain.Media, error) {
	return scanMedia(r.DB.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE key = $1`, key))
}

func (r *mediaRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "media", id)
}

// List returns media newest first.
func (r *mediaRepository) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Media, error) {
	query, args := paginate(`SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, id`, nil, p)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]*domain.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *mediaRepository) Count(ctx context.Context) (int, error) {
	return countWhere(ctx, r.DB, "media", &whereClause{})
}
