package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"clubsite/internal/domain"
	"clubsite/internal/lifecycle"
)

// MigratedPrefix is where imported legacy objects are stored.
const MigratedPrefix = "media/migrated/"

// MediaMigrator imports objects from a legacy bucket prefix into the media
// library. Runs are idempotent: objects whose derived key already has a row
// are skipped.
type MediaMigrator struct {
	repo    domain.MediaRepository
	storage domain.ObjectStorage
	logger  *slog.Logger
}

// NewMediaMigrator returns a MediaMigrator writing to repo and storage.
func NewMediaMigrator(repo domain.MediaRepository, storage domain.ObjectStorage, logger *slog.Logger) *MediaMigrator {
	return &MediaMigrator{repo: repo, storage: storage, logger: logger}
}

// MigratedKey returns the media library key for a legacy object key.
func MigratedKey(legacyKey string) string {
	return MigratedPrefix + strings.TrimLeft(legacyKey, "/")
}

// Migrate imports every object under prefix in source. Per-object failures
// are counted and logged; only listing failures and cancellation abort the run.
func (m *MediaMigrator) Migrate(ctx context.Context, source domain.ObjectSource, prefix string) (domain.MigrationReport, error) {
	var report domain.MigrationReport

	objects, err := source.List(ctx, prefix)
	if err != nil {
		return report, fmt.Errorf("list %q: %w", prefix, err)
	}
	m.logger.InfoContext(ctx, "media migration started", "prefix", prefix, "objects", len(objects))

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		imported, err := m.migrateOne(ctx, source, obj)
		switch {
		case err != nil:
			report.Failed++
			m.logger.ErrorContext(ctx, "media migration failed", "key", obj.Key, "err", err)
		case imported:
			report.Imported++
		default:
			report.Skipped++
		}
	}

	m.logger.InfoContext(ctx, "media migration finished",
		"imported", report.Imported, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

func (m *MediaMigrator) migrateOne(ctx context.Context, source domain.ObjectSource, obj domain.ObjectInfo) (bool, error) {
	key := MigratedKey(obj.Key)
	if _, err := m.repo.GetByKey(ctx, key); err == nil {
		m.logger.DebugContext(ctx, "media already migrated", "key", obj.Key)
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	if obj.Size > lifecycle.MaxUploadBytes {
		m.logger.InfoContext(ctx, "skipping oversize object", "key", obj.Key, "size", obj.Size)
		return false, nil
	}

	body, info, err := source.Open(ctx, obj.Key)
	if err != nil {
		return false, err
	}
	data, err := io.ReadAll(io.LimitReader(body, lifecycle.MaxUploadBytes+1))
	body.Close()
	if err != nil {
		return false, err
	}

	contentType := lifecycle.NormalizeContentType(info.ContentType)
	if contentType == "" || contentType == "application/octet-stream" || contentType == "binary/octet-stream" {
		contentType = lifecycle.NormalizeContentType(mimetype.Detect(data).String())
	}
	if err := lifecycle.ValidateUpload(contentType, int64(len(data))); err != nil {
		m.logger.InfoContext(ctx, "skipping object", "key", obj.Key, "reason", err.Error())
		return false, nil
	}

	url, err := m.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return false, err
	}
	row := &domain.Media{
		Key:         key,
		URL:         url,
		Filename:    path.Base(obj.Key),
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.repo.Create(ctx, row); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return false, nil
		}
		if derr := m.storage.Delete(ctx, key); derr != nil {
			m.logger.ErrorContext(ctx, "orphaned media object", "key", key, "err", derr)
		}
		return false, err
	}
	return true, nil
}
