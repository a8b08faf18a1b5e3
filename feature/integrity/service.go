package integrity

import (
	"context"

	"challan-reconciler/core/storage"
	"challan-reconciler/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks. Either backend may be nil.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		db:     db,
	}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.bucket)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckDatabase compares the archive tables against their models.
func (s *Service) CheckDatabase() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// FixDatabase migrates the archive tables.
func (s *Service) FixDatabase() error {
	return checks.FixSchema(s.db)
}
