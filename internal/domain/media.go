package domain

import (
	"context"
	"io"
	"time"
)

// Media is an uploaded image held in object storage.
// swagger:model Media
type Media struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// MediaUpload is an incoming file. Body is read once.
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStorage stores opaque blobs and returns their public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// ObjectSource is a bucket that objects can be read from, used for imports.
type ObjectSource interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
}

// MediaRepository defines the interface for media row storage.
type MediaRepository interface {
	Create(ctx context.Context, m *Media) error
	GetByID(ctx context.Context, id string) (*Media, error)
	GetByKey(ctx context.Context, key string) (*Media, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p PaginationParams) ([]*Media, error)
	Count(ctx context.Context) (int, error)
}

// MediaService defines the business logic for the media library.
type MediaService interface {
	Upload(ctx context.Context, session SessionContext, upload MediaUpload) (*Media, error)
	Delete(ctx context.Context, session SessionContext, id string) error
	List(ctx context.Context, session SessionContext, p PaginationParams) (items []*Media, total int, err error)
}

// MigrationReport summarises one media import run.
type MigrationReport struct {
	Imported int
	Skipped  int
	Failed   int
}
