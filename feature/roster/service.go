package roster

import (
	"bytes"
	"context"
	"fmt"

	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/core/storage"
	"attendance-reconciler/feature/roster/models"

	"github.com/cockroachdb/errors"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportContentType is the MIME type of generated reports.
const ReportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrHistoryDisabled is returned by run-history operations when no database is
// configured.
var ErrHistoryDisabled = errors.New("run history requires a database connection")

// Result is a finished reconciliation with its ranked roster.
type Result struct {
	Run     *reconcile.Run    `json:"run"`
	Entries []Entry           `json:"entries"`
	Summary reconcile.Summary `json:"summary"`
}

// Service runs reconciliations and manages their reports and history.
type Service struct {
	client     storage.Client
	storageCfg storage.Config
	cfg        reconcile.Config
	store      *RunStore
	cache      *RunCache
	logger     *zap.Logger
	progress   func(reconcile.PhaseReport)
}

// NewService creates a roster service. client and db may be nil; operations
// needing them then fail.
func NewService(client storage.Client, storageCfg storage.Config, cfg reconcile.Config, db *gorm.DB, logger *zap.Logger) *Service {
	s := &Service{
		client:     client,
		storageCfg: storageCfg,
		cfg:        cfg,
		logger:     logger,
	}
	if db != nil {
		s.store = NewRunStore(db)
		s.cache = NewRunCache(s.store, defaultRunCacheTTL)
	}
	return s
}

// OnPhase registers a callback invoked after each pass of every run.
func (s *Service) OnPhase(fn func(reconcile.PhaseReport)) {
	s.progress = fn
}

// HistoryEnabled reports whether runs can be persisted.
func (s *Service) HistoryEnabled() bool {
	return s.store != nil
}

// Reconcile runs both passes over inputs and ranks the result.
func (s *Service) Reconcile(ctx context.Context, inputs []reconcile.Input) (*Result, error) {
	engine := reconcile.NewEngine(NewProcessor(s.logger), s.cfg, s.logger)
	if s.progress != nil {
		engine.OnPhase(s.progress)
	}

	run, err := engine.ProcessFiles(ctx, inputs)
	if err != nil {
		return nil, errors.Wrap(err, "reconcile")
	}

	return &Result{
		Run:     run,
		Entries: Rank(run.Records),
		Summary: run.Summary(),
	}, nil
}

// ReconcileDirectory reconciles the workbooks in dir.
func (s *Service) ReconcileDirectory(ctx context.Context, dir string) (*Result, error) {
	inputs, err := ListDirectory(dir)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, inputs)
}

// ReconcileBucket reconciles the workbooks stored under prefix. An empty prefix
// falls back to the configured input prefix.
func (s *Service) ReconcileBucket(ctx context.Context, prefix string) (*Result, error) {
	if s.client == nil {
		return nil, errors.New("object storage is not configured")
	}
	if prefix == "" {
		prefix = s.storageCfg.InputPrefix
	}
	inputs, err := ListBucket(ctx, s.client, s.storageCfg.Bucket, prefix)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, inputs)
}

// PublishReport uploads the report of res under the report prefix and returns
// its object key.
func (s *Service) PublishReport(ctx context.Context, res *Result) (string, error) {
	if s.client == nil {
		return "", errors.New("object storage is not configured")
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, res.Entries); err != nil {
		return "", err
	}

	if err := storage.EnsureBucket(ctx, s.client, s.storageCfg.Bucket, s.storageCfg.Region); err != nil {
		return "", errors.Wrap(err, "publish report")
	}

	key := storage.ObjectKey(s.storageCfg.ReportPrefix, fmt.Sprintf("attendance-%s.xlsx", res.Run.ID))
	_, err := s.client.PutObject(ctx, s.storageCfg.Bucket, key, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: ReportContentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "upload report %s", key)
	}

	s.logger.Info("Report published",
		zap.String("run_id", res.Run.ID),
		zap.String("bucket", s.storageCfg.Bucket),
		zap.String("key", key),
	)
	return key, nil
}

// Persist stores res in the run history.
func (s *Service) Persist(ctx context.Context, res *Result, source string) (*models.Run, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	rec, err := s.store.Save(ctx, res.Run, source, res.Entries)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return rec, nil
}

// ListRuns returns the most recent persisted runs.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.cache.List(ctx, limit)
}

// GetRun returns a persisted run with its roster.
func (s *Service) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.cache.Get(ctx, id)
}

// MigrateHistory creates the run-history tables.
func (s *Service) MigrateHistory(ctx context.Context) error {
	if s.store == nil {
		return ErrHistoryDisabled
	}
	return s.store.Migrate(ctx)
}
