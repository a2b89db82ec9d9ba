package integrity

import (
	"context"

	"attendance-reconciler/core/storage"
	"attendance-reconciler/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client     storage.Client
	storageCfg storage.Config
	db         *gorm.DB
	logger     *zap.Logger
}

// NewService creates a new integrity service. db may be nil when run history is disabled.
func NewService(client storage.Client, storageCfg storage.Config, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client:     client,
		storageCfg: storageCfg,
		db:         db,
		logger:     logger,
	}
}

// CheckStorage inspects the attendance bucket and its prefixes.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	return checks.CheckStorage(ctx, s.client, s.storageCfg)
}

// FixStorage creates the bucket and the missing prefixes.
func (s *Service) FixStorage(ctx context.Context, missing []string) error {
	return checks.FixStorage(ctx, s.client, s.storageCfg, s.logger, missing)
}

// CheckDatabase compares the run history tables with their models.
func (s *Service) CheckDatabase() (*checks.DatabaseReport, error) {
	return checks.CheckDatabase(s.db)
}
