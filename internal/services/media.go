package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"clubsite/internal/domain"
	"clubsite/internal/lifecycle"
	"clubsite/internal/metrics"
)

type mediaService struct {
	repo           domain.MediaRepository
	storage        domain.ObjectStorage
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewMediaService creates the media library service.
func NewMediaService(repo domain.MediaRepository, storage domain.ObjectStorage, logger *slog.Logger, timeout time.Duration) domain.MediaService {
	return &mediaService{
		repo:           repo,
		storage:        storage,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// Upload validates the file, stores the object and records a row for it.
// A rejected upload touches neither the storage nor the store.
func (s *mediaService) Upload(ctx context.Context, session domain.SessionContext, upload domain.MediaUpload) (*domain.Media, error) {
	if _, err := lifecycle.RequireActor(session); err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateUpload(upload.ContentType, upload.Size); err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	contentType := lifecycle.NormalizeContentType(upload.ContentType)
	now := s.now().UTC()
	key := mediaKey(now, contentType)

	url, err := s.storage.Put(ctx, key, upload.Body, upload.Size, contentType)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("store object: %w: %w", domain.ErrUpstream, err)
	}

	m := &domain.Media{
		Key:         key,
		URL:         url,
		Filename:    cleanFilename(upload.Filename, key),
		ContentType: contentType,
		SizeBytes:   upload.Size,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.discardObject(ctx, key)
		metrics.MediaUploadsTotal.WithLabelValues("failed").Inc()
		return nil, upstream("create media", err)
	}
	metrics.MediaUploadsTotal.WithLabelValues("stored").Inc()
	return m, nil
}

// Delete removes the row first, then the object. An object that cannot be
// removed is logged as an orphan and the call still succeeds.
func (s *mediaService) Delete(ctx context.Context, session domain.SessionContext, id string) error {
	if _, err := lifecycle.RequireActor(session); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return upstream("get media", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return upstream("delete media", err)
	}
	if err := s.storage.Delete(ctx, m.Key); err != nil {
		s.logger.ErrorContext(ctx, "orphaned media object", "key", m.Key, "media_id", id, "err", err)
	}
	return nil
}

func (s *mediaService) List(ctx context.Context, session domain.SessionContext, p domain.PaginationParams) ([]*domain.Media, int, error) {
	if _, err := lifecycle.RequireActor(session); err != nil {
		return nil, 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, 0, upstream("list media", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, upstream("count media", err)
	}
	if items == nil {
		items = []*domain.Media{}
	}
	return items, total, nil
}

func (s *mediaService) discardObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "orphaned media object", "key", key, "err", err)
	}
}

// mediaKey returns media/<yyyy>/<mm>/<uuid><ext>.
func mediaKey(now time.Time, contentType string) string {
	ext := ""
	if m := mimetype.Lookup(contentType); m != nil {
		ext = m.Extension()
	}
	return fmt.Sprintf("media/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
}

func cleanFilename(name, key string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	if name == "." || name == "/" || name == "" {
		return path.Base(key)
	}
	return name
}
