package postgres

import (
	"context"
	"database/sql"

	"clubsite/internal/domain"
)

const eventColumns = `id, slug, title, status, image_url, description, location, start_date, end_date, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.ResourceRepository[*domain.Event] {
	return &eventRepository{DB: db}
}

func scanEvent(s scanner) (*domain.Event, error) {
	e := &domain.Event{}
	var image sql.NullString
	var end sql.NullTime
	err := s.Scan(&e.ID, &e.Slug, &e.Title, &e.Status, &image, &e.Description, &e.Location,
		&e.StartDate, &end, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	e.ImageURL = stringPtr(image)
	e.EndDate = timePtr(end)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (slug, title, status, image_url, description, location, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Slug, e.Title, string(e.Status), nullString(e.ImageURL), e.Description, e.Location,
		e.StartDate, nullTime(e.EndDate), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return mapError(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug))
}

func (r *eventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, r.DB, "events", slug, excludeID)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET slug = $1, title = $2, status = $3, image_url = $4, description = $5, location = $6,
		    start_date = $7, end_date = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Slug, e.Title, string(e.Status), nullString(e.ImageURL), e.Description, e.Location,
		e.StartDate, nullTime(e.EndDate), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "events", id)
}

// List orders upcoming listings soonest first and every other listing
// most recent first.
func (r *eventRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Event, error) {
	w := filterWhere(filter, "start_date")
	order := " ORDER BY start_date DESC, id"
	if filter.Upcoming {
		order = " ORDER BY start_date ASC, id"
	}
	query, args := paginate(`SELECT `+eventColumns+` FROM events`+w.String()+order, w.args, filter.Pagination)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Count(ctx context.Context, filter domain.ListFilter) (int, error) {
	return countWhere(ctx, r.DB, "events", filterWhere(filter, "start_date"))
}
