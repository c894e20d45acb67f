// Command migrate-media imports images from a legacy bucket prefix into the
// media library. Objects already imported are skipped, so it can be rerun.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"clubsite/config"
	"clubsite/internal/adapters/storage"
	"clubsite/internal/repository/postgres"
	"clubsite/internal/services"
)

func main() {
	sourceBucket := flag.String("source-bucket", "", "bucket holding the legacy objects (defaults to S3_BUCKET)")
	prefix := flag.String("prefix", "", "key prefix to import, e.g. uploads/")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()

	if cfg.S3Bucket == "" {
		log.Fatal("S3_BUCKET is required")
	}
	if *sourceBucket == "" {
		*sourceBucket = cfg.S3Bucket
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	target, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.MediaPublicBaseURL,
	})
	if err != nil {
		log.Fatalf("target storage: %v", err)
	}
	source := target
	if *sourceBucket != cfg.S3Bucket {
		source, err = storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          *sourceBucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			log.Fatalf("source storage: %v", err)
		}
	}

	migrator := services.NewMediaMigrator(postgres.NewMediaRepository(db), target, logger)
	report, err := migrator.Migrate(ctx, source, *prefix)
	logger.Info("media migration finished",
		"source_bucket", *sourceBucket,
		"prefix", *prefix,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	if err != nil {
		logger.Error("media migration aborted", "err", err)
		os.Exit(1)
	}
	if report.Failed > 0 {
		os.Exit(1)
	}
}
