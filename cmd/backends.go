package cmd

import (
	"context"

	"challan-reconciler/core/config"
	"challan-reconciler/core/database"
	"challan-reconciler/core/extractor"
	"challan-reconciler/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// openDatabase connects when the database is enabled. Failures are logged
// and leave the archive without a database.
func openDatabase(cfg *config.Config, logg *zap.Logger) *gorm.DB {
	if !cfg.Database.Enabled {
		return nil
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Warn("Optional database connection failed", zap.String("target", cfg.Database.Describe()), zap.Error(err))
		return nil
	}
	logg.Info("Connected to archive database", zap.String("target", cfg.Database.Describe()))
	return db
}

// openStorage creates the storage client when storage is enabled and makes
// sure the bucket exists.
func openStorage(ctx context.Context, cfg *config.Config, logg *zap.Logger) storage.Client {
	if !cfg.Storage.Enabled {
		return nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Warn("Optional storage client failed", zap.Error(err))
		return nil
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		logg.Warn("Storage bucket unavailable", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		return nil
	}
	logg.Info("Connected to archive storage", zap.String("bucket", cfg.Storage.Bucket))
	return client
}

// openExtractor returns nil when no model project is configured.
func openExtractor(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*extractor.Gemini, error) {
	if !cfg.Extractor.Enabled() {
		logg.Warn("Extractor disabled: EXTRACTOR_PROJECT_ID is not set; image uploads will be rejected")
		return nil, nil
	}
	return extractor.NewGemini(ctx, cfg.Extractor, logg)
}
