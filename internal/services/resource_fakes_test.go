package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"clubsite/internal/domain"
)

// fakeResourceRepo is an in-memory ResourceRepository for tests. With
// enforceUnique set it rejects duplicate slugs like the Postgres UNIQUE index.
type fakeResourceRepo[T domain.Publishable] struct {
	mu            sync.Mutex
	rows          map[string]T
	nextID        int
	clone         func(T) T
	order         func(items []T, f domain.ListFilter)
	enforceUnique bool

	slugExistsCalls int
	creates         int
	updates         int
	// staleExists makes SlugExists report these slugs as free once, as if
	// another writer committed between the check and the insert.
	staleExists map[string]bool

	getErr    error
	createErr error
	listErr   error
}

func newFakeResourceRepo[T domain.Publishable](clone func(T) T, order func([]T, domain.ListFilter)) *fakeResourceRepo[T] {
	return &fakeResourceRepo[T]{
		rows:          make(map[string]T),
		nextID:        1,
		clone:         clone,
		order:         order,
		enforceUnique: true,
	}
}

func (f *fakeResourceRepo[T]) slugTaken(slug, excludeID string) bool {
	for id, r := range f.rows {
		if id != excludeID && r.Base().Slug == slug {
			return true
		}
	}
	return false
}

func (f *fakeResourceRepo[T]) Create(ctx context.Context, r T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if f.enforceUnique && f.slugTaken(r.Base().Slug, "") {
		return fmt.Errorf("insert: %w", domain.ErrConflict)
	}
	r.Base().ID = fmt.Sprintf("id-%d", f.nextID)
	f.nextID++
	f.rows[r.Base().ID] = f.clone(r)
	return nil
}

func (f *fakeResourceRepo[T]) GetByID(ctx context.Context, id string) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero T
	if f.getErr != nil {
		return zero, f.getErr
	}
	r, ok := f.rows[id]
	if !ok {
		return zero, domain.ErrNotFound
	}
	return f.clone(r), nil
}

func (f *fakeResourceRepo[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero T
	for _, r := range f.rows {
		if r.Base().Slug == slug {
			return f.clone(r), nil
		}
	}
	return zero, domain.ErrNotFound
}

func (f *fakeResourceRepo[T]) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slugExistsCalls++
	if f.staleExists[slug] {
		delete(f.staleExists, slug)
		return false, nil
	}
	return f.slugTaken(slug, excludeID), nil
}

func (f *fakeResourceRepo[T]) Update(ctx context.Context, r T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	id := r.Base().ID
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	if f.enforceUnique && f.slugTaken(r.Base().Slug, id) {
		return fmt.Errorf("update: %w", domain.ErrConflict)
	}
	f.rows[id] = f.clone(r)
	return nil
}

func (f *fakeResourceRepo[T]) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeResourceRepo[T]) matching(filter domain.ListFilter) []T {
	var out []T
	for _, r := range f.rows {
		if filter.Status != nil && r.Base().Status != *filter.Status {
			continue
		}
		if filter.Upcoming {
			if d, ok := any(r).(domain.DateRanged); ok && d.StartsAt().Before(filter.Now) {
				continue
			}
		}
		out = append(out, f.clone(r))
	}
	return out
}

func (f *fakeResourceRepo[T]) List(ctx context.Context, filter domain.ListFilter) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := f.matching(filter)
	if f.order != nil {
		f.order(out, filter)
	}
	p := filter.Pagination
	if p.PageSize > 0 {
		start := p.Offset()
		if start > len(out) {
			start = len(out)
		}
		end := start + p.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (f *fakeResourceRepo[T]) Count(ctx context.Context, filter domain.ListFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matching(filter)), nil
}

func (f *fakeResourceRepo[T]) slugs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r.Base().Slug)
	}
	sort.Strings(out)
	return out
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

func clonePost(p *domain.Post) *domain.Post {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

func clonePage(p *domain.Page) *domain.Page {
	c := *p
	return &c
}

func orderEvents(items []*domain.Event, f domain.ListFilter) {
	sort.SliceStable(items, func(i, j int) bool {
		if f.Upcoming {
			return items[i].StartDate.Before(items[j].StartDate)
		}
		return items[i].StartDate.After(items[j].StartDate)
	})
}

func newFakeEventRepo() *fakeResourceRepo[*domain.Event] {
	return newFakeResourceRepo(cloneEvent, orderEvents)
}

func newFakePostRepo() *fakeResourceRepo[*domain.Post] {
	return newFakeResourceRepo[*domain.Post](clonePost, nil)
}

func newFakePageRepo() *fakeResourceRepo[*domain.Page] {
	return newFakeResourceRepo[*domain.Page](clonePage, nil)
}
