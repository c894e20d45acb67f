package postgres

import (
	"context"
	"database/sql"

	"clubsite/internal/domain"
)

const pageColumns = `id, slug, title, status, image_url, content, nav_order, created_at, updated_at`

type pageRepository struct {
	DB *sql.DB
}

func NewPageRepository(db *sql.DB) domain.ResourceRepository[*domain.Page] {
	return &pageRepository{DB: db}
}

func scanPage(s scanner) (*domain.Page, error) {
	p := &domain.Page{}
	var image sql.NullString
	err := s.Scan(&p.ID, &p.Slug, &p.Title, &p.Status, &image, &p.Content, &p.NavOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	p.ImageURL = stringPtr(image)
	return p, nil
}

func (r *pageRepository) Create(ctx context.Context, p *domain.Page) error {
	query := `
		INSERT INTO pages (slug, title, status, image_url, content, nav_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		p.Slug, p.Title, string(p.Status), nullString(p.ImageURL), p.Content, p.NavOrder, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapError(err)
}

func (r *pageRepository) GetByID(ctx context.Context, id string) (*domain.Page, error) {
	return scanPage(r.DB.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id))
}

func (r *pageRepository) GetBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	return scanPage(r.DB.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = $1`, slug))
}

func (r *pageRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.DB, "pages", slug, excludeID)
}

func (r *pageRepository) Update(ctx context.Context, p *domain.Page) error {
	query := `
		UPDATE pages
		SET slug = $1, title = $2, status = $3, image_url = $4, content = $5, nav_order = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.DB.ExecContext(ctx, query,
		p.Slug, p.Title, string(p.Status), nullString(p.ImageURL), p.Content, p.NavOrder, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *pageRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "pages", id)
}

// List orders pages by menu position, then title.
func (r *pageRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Page, error) {
	w := filterWhere(filter, "")
	query, args := paginate(`SELECT `+pageColumns+` FROM pages`+w.String()+` ORDER BY nav_order ASC, title ASC`, w.args, filter.Pagination)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pages := make([]*domain.Page, 0)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r *pageRepository) Count(ctx context.Context, filter domain.ListFilter) (int, error) {
	return countWhere(ctx, r.DB, "pages", filterWhere(filter, ""))
}
