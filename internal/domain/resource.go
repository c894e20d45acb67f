package domain

import (
	"context"
	"time"
)

// Kind names one instantiation of the publishable resource lifecycle.
type Kind string

const (
	KindEvent Kind = "event"
	KindPost  Kind = "post"
	KindPage  Kind = "page"
)

// Status controls public visibility of a resource.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// KindSpec is the capability set a kind plugs into the shared lifecycle.
type KindSpec struct {
	Kind           Kind
	HasDateRange   bool
	HasPublishedAt bool
}

var (
	EventSpec = KindSpec{Kind: KindEvent, HasDateRange: true}
	PostSpec  = KindSpec{Kind: KindPost, HasPublishedAt: true}
	PageSpec  = KindSpec{Kind: KindPage}
)

// Resource holds the fields every publishable kind shares.
type Resource struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublished returns true if the resource is published.
func (r *Resource) IsPublished() bool {
	return r.Status == StatusPublished
}

// validate checks the shared required fields.
func (r *Resource) validate() error {
	if r.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if !r.Status.Valid() {
		return NewValidationError("status", `status must be "draft" or "published"`)
	}
	return nil
}

// Publishable is implemented by Event, Post and Page.
type Publishable interface {
	Base() *Resource
	Spec() KindSpec
	Validate() error
}

// DateRanged is implemented by kinds whose visibility depends on a start date.
type DateRanged interface {
	StartsAt() time.Time
}

// ListFilter narrows a resource listing. A nil Status means every status.
type ListFilter struct {
	Status     *Status
	Upcoming   bool
	Now        time.Time
	Pagination PaginationParams
}

// PublishedOnly reports whether the filter excludes drafts.
func (f ListFilter) PublishedOnly() bool {
	return f.Status != nil && *f.Status == StatusPublished
}

// ResourceRepository is the store contract for one kind. Implementations must
// enforce slug uniqueness themselves and report violations as ErrConflict.
type ResourceRepository[T Publishable] interface {
	Create(ctx context.Context, r T) error
	GetByID(ctx context.Context, id string) (T, error)
	GetBySlug(ctx context.Context, slug string) (T, error)
	// SlugExists reports whether another resource holds slug. excludeID may be empty.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Update(ctx context.Context, r T) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]T, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ResourceService defines the lifecycle operations for one kind.
type ResourceService[T Publishable] interface {
	Create(ctx context.Context, session SessionContext, r T) error
	Update(ctx context.Context, session SessionContext, id string, mutate func(T) error) (T, error)
	Delete(ctx context.Context, session SessionContext, id string) error
	Get(ctx context.Context, session SessionContext, id string) (T, error)
	GetBySlug(ctx context.Context, session SessionContext, slug string) (T, error)
	List(ctx context.Context, session SessionContext, filter ListFilter) (items []T, total int, err error)
}
