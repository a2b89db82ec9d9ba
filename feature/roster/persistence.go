package roster

import (
	"context"

	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/feature/roster/models"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const appearanceBatchSize = 500

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunStore persists reconciliation runs and their ranked rosters.
type RunStore struct {
	db *gorm.DB
}

// NewRunStore creates a store backed by db.
func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

// Migrate creates or updates the run-history tables.
func (s *RunStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "migrate run history")
	}
	return nil
}

// Save stores run and its ranked entries in one transaction.
func (s *RunStore) Save(ctx context.Context, run *reconcile.Run, source string, entries []Entry) (*models.Run, error) {
	summary := run.Summary()
	rec := &models.Run{
		ID:             run.ID,
		Source:         source,
		StartedAt:      run.StartedAt,
		DurationMillis: run.Duration.Milliseconds(),
		Files:          summary.Files,
		FilesProcessed: summary.FilesProcessed,
		RowsProcessed:  summary.RowsProcessed,
		Failures:       summary.Failures,
		Identities:     summary.Identities,
		Bindings:       summary.Bindings,
	}

	appearances := make([]models.Appearance, len(entries))
	for i, e := range entries {
		appearances[i] = models.Appearance{
			RunID:    run.ID,
			Position: e.Rank,
			Name:     e.Name,
			Email:    e.Email,
			Count:    e.Count,
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return errors.Wrap(err, "insert run")
		}
		if len(appearances) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&appearances, appearanceBatchSize).Error; err != nil {
			return errors.Wrap(err, "insert appearances")
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "save run %s", run.ID)
	}

	rec.Appearances = appearances
	return rec, nil
}

// List returns the most recent runs without their rosters.
func (s *RunStore) List(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.Run
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	return runs, nil
}

// Get returns one run with its roster in rank order.
func (s *RunStore) Get(ctx context.Context, id string) (*models.Run, error) {
	var run models.Run
	err := s.db.WithContext(ctx).
		Preload("Appearances", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrRunNotFound, "%s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get run %s", id)
	}
	return &run, nil
}
