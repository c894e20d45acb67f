package services

import (
	"context"
	"errors"
	"time"

	"clubsite/internal/domain"
	"clubsite/internal/lifecycle"
	"clubsite/internal/metrics"
)

// A write rejected by the store's unique constraint is retried this many
// times with a freshly disambiguated slug.
const maxConflictRetries = 1

type resourceService[T domain.Publishable] struct {
	spec           domain.KindSpec
	repo           domain.ResourceRepository[T]
	contextTimeout time.Duration
}

// NewResourceService returns the lifecycle service for one kind.
func NewResourceService[T domain.Publishable](spec domain.KindSpec, repo domain.ResourceRepository[T], timeout time.Duration) domain.ResourceService[T] {
	return &resourceService[T]{
		spec:           spec,
		repo:           repo,
		contextTimeout: timeout,
	}
}

func (s *resourceService[T]) op(name string) string {
	return name + " " + string(s.spec.Kind)
}

func (s *resourceService[T]) Create(ctx context.Context, session domain.SessionContext, r T) error {
	if _, err := lifecycle.RequireActor(session); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := r.Validate(); err != nil {
		return err
	}
	base := r.Base()
	candidate, err := slugFor(base.Title)
	if err != nil {
		return err
	}

	now := time.Now()
	base.ID = ""
	base.CreatedAt = now
	base.UpdatedAt = now
	s.stampPublished(r, now)

	if err := s.commit(ctx, r, candidate, "", s.repo.Create); err != nil {
		return upstream(s.op("create"), err)
	}
	return nil
}

func (s *resourceService[T]) Update(ctx context.Context, session domain.SessionContext, id string, mutate func(T) error) (T, error) {
	var zero T
	if _, err := lifecycle.RequireActor(session); err != nil {
		return zero, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, upstream(s.op("get"), err)
	}
	base := r.Base()
	oldTitle, oldSlug, createdAt := base.Title, base.Slug, base.CreatedAt

	if err := mutate(r); err != nil {
		return zero, err
	}
	base = r.Base()
	base.ID, base.Slug, base.CreatedAt = id, oldSlug, createdAt
	if err := r.Validate(); err != nil {
		return zero, err
	}

	now := time.Now()
	base.UpdatedAt = now
	s.stampPublished(r, now)

	if base.Title == oldTitle {
		err = s.repo.Update(ctx, r)
	} else {
		candidate, verr := slugFor(base.Title)
		if verr != nil {
			return zero, verr
		}
		if candidate == oldSlug {
			err = s.repo.Update(ctx, r)
		} else {
			err = s.commit(ctx, r, candidate, id, s.repo.Update)
		}
	}
	if err != nil {
		return zero, upstream(s.op("update"), err)
	}
	return r, nil
}

func (s *resourceService[T]) Delete(ctx context.Context, session domain.SessionContext, id string) error {
	if _, err := lifecycle.RequireActor(session); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		return upstream(s.op("delete"), err)
	}
	return nil
}

func (s *resourceService[T]) Get(ctx context.Context, session domain.SessionContext, id string) (T, error) {
	var zero T
	if _, err := lifecycle.RequireActor(session); err != nil {
		return zero, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, upstream(s.op("get"), err)
	}
	return r, nil
}

// GetBySlug serves the public detail view. Drafts are reported as not found
// unless the session is authenticated.
func (s *resourceService[T]) GetBySlug(ctx context.Context, session domain.SessionContext, slug string) (T, error) {
	var zero T
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return zero, upstream(s.op("get"), err)
	}
	if !session.Authenticated() && !lifecycle.IsPubliclyVisible(r, time.Now(), false) {
		return zero, domain.ErrNotFound
	}
	return r, nil
}

// List returns one page of resources and the total matching count. Listings
// that may include drafts require an authenticated session.
func (s *resourceService[T]) List(ctx context.Context, session domain.SessionContext, filter domain.ListFilter) ([]T, int, error) {
	if !filter.PublishedOnly() {
		if _, err := lifecycle.RequireActor(session); err != nil {
			return nil, 0, err
		}
	}
	if !s.spec.HasDateRange {
		filter.Upcoming = false
	}
	if filter.Now.IsZero() {
		filter.Now = time.Now()
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, upstream(s.op("list"), err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, upstream(s.op("count"), err)
	}

	if filter.PublishedOnly() {
		visible := items[:0]
		for _, item := range items {
			if lifecycle.IsPubliclyVisible(item, filter.Now, filter.Upcoming) {
				visible = append(visible, item)
			}
		}
		items = visible
	}
	if items == nil {
		items = []T{}
	}
	return items, total, nil
}

// commit resolves a free slug for r from candidate and writes it. A store
// conflict marks the attempted slug as taken and retries.
func (s *resourceService[T]) commit(ctx context.Context, r T, candidate, excludeID string, write func(context.Context, T) error) error {
	rejected := make(map[string]bool)
	for attempt := 0; ; attempt++ {
		slug, err := s.resolve(ctx, candidate, excludeID, rejected)
		if err != nil {
			return err
		}
		r.Base().Slug = slug

		err = write(ctx, r)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
		rejected[slug] = true
		metrics.SlugConflictRetriesTotal.WithLabelValues(string(s.spec.Kind)).Inc()
	}
}

func (s *resourceService[T]) resolve(ctx context.Context, candidate, excludeID string, rejected map[string]bool) (string, error) {
	slug, err := lifecycle.ResolveUniqueSlug(candidate, func(slug string) (bool, error) {
		if rejected[slug] {
			return true, nil
		}
		return s.repo.SlugExists(ctx, slug, excludeID)
	})
	if err != nil {
		return "", err
	}
	if slug != candidate {
		metrics.SlugCollisionsTotal.WithLabelValues(string(s.spec.Kind)).Inc()
	}
	return slug, nil
}

type publishStamper interface {
	MarkPublished(now time.Time)
}

func (s *resourceService[T]) stampPublished(r T, now time.Time) {
	if !s.spec.HasPublishedAt {
		return
	}
	if p, ok := any(r).(publishStamper); ok {
		p.MarkPublished(now)
	}
}

func slugFor(title string) (string, error) {
	slug := lifecycle.GenerateSlug(title)
	if slug == "" {
		return "", domain.NewValidationError("title", "title must contain at least one letter or digit")
	}
	return slug, nil
}
