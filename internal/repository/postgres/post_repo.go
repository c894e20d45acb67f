package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"clubsite/internal/domain"
)

const postColumns = `id, slug, title, status, image_url, excerpt, content, tags, published_at, created_at, updated_at`

type postRepository struct {
	DB *sql.DB
}

func NewPostRepository(db *sql.DB) domain.ResourceRepository[*domain.Post] {
	return &postRepository{DB: db}
}

func scanPost(s scanner) (*domain.Post, error) {
	p := &domain.Post{}
	var image sql.NullString
	var published sql.NullTime
	err := s.Scan(&p.ID, &p.Slug, &p.Title, &p.Status, &image, &p.Excerpt, &p.Content,
		pq.Array(&p.Tags), &published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.ImageURL = stringPtr(image)
	p.PublishedAt = timePtr(published)
	return p, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *postRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (slug, title, status, image_url, excerpt, content, tags, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		p.Slug, p.Title, string(p.Status), nullString(p.ImageURL), p.Excerpt, p.Content,
		pq.Array(tagsOrEmpty(p.Tags)), nullTime(p.PublishedAt), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapError(err)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return scanPost(r.DB.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return scanPost(r.DB.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug))
}

func (r *postRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.DB, "posts", slug, excludeID)
}

func (r *postRepository) Update(ctx context.Context, p *domain.Post) error {
	query := `
		UPDATE posts
		SET slug = $1, title = $2, status = $3, image_url = $4, excerpt = $5, content = $6,
		    tags = $7, published_at = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.DB.ExecContext(ctx, query,
		p.Slug, p.Title, string(p.Status), nullString(p.ImageURL), p.Excerpt, p.Content,
		pq.Array(tagsOrEmpty(p.Tags)), nullTime(p.PublishedAt), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "posts", id)
}

func (r *postRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Post, error) {
	w := filterWhere(filter, "")
	query, args := paginate(
		`SELECT `+postColumns+` FROM posts`+w.String()+` ORDER BY published_at DESC NULLS LAST, created_at DESC, id`,
		w.args, filter.Pagination,
	)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	posts := make([]*domain.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepository) Count(ctx context.Context, filter domain.ListFilter) (int, error) {
	return countWhere(ctx, r.DB, "posts", filterWhere(filter, ""))
}
