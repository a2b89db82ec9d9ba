package roster

import (
	"bytes"
	"context"
	"io"
	"testing"

	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_ReconcileBucket(t *testing.T) {
	ctx := context.Background()
	data := buildXLSX(t, testSheet{name: "Day 1", rows: [][]any{
		{"Name", "Email"},
		{"Alice Smith", "alice@x.com"},
	}})

	client := new(mocks.Client)
	client.On("ListObjects", ctx, "attendance", minio.ListObjectsOptions{Prefix: "inputs/", Recursive: true}).
		Return(mocks.Objects(minio.ObjectInfo{Key: "inputs/day1.xlsx"}))
	client.On("GetObject", mock.Anything, "attendance", "inputs/day1.xlsx", minio.GetObjectOptions{}).
		Return(io.NopCloser(bytes.NewReader(data)), nil).Once()
	client.On("GetObject", mock.Anything, "attendance", "inputs/day1.xlsx", minio.GetObjectOptions{}).
		Return(io.NopCloser(bytes.NewReader(data)), nil).Once()

	svc := NewService(client, defaultStorageConfig(), reconcile.Config{Workers: 1}, nil, zap.NewNop())
	res, err := svc.ReconcileBucket(ctx, "")
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "alice@x.com", res.Entries[0].Email)
	assert.Equal(t, 1, res.Entries[0].Count)
	client.AssertExpectations(t)
}

func TestService_PublishReport(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", ctx, "attendance").Return(true, nil)
	client.On("PutObject", ctx, "attendance", "reports/attendance-run-1.xlsx", mock.Anything, mock.AnythingOfType("int64"),
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool { return opts.ContentType == ReportContentType })).
		Return(minio.UploadInfo{Key: "reports/attendance-run-1.xlsx"}, nil)

	svc := NewService(client, defaultStorageConfig(), reconcile.Config{}, nil, zap.NewNop())
	res := &Result{
		Run:     &reconcile.Run{ID: "run-1"},
		Entries: []Entry{{Rank: 1, Name: "Alice", Email: "alice@x.com", Count: 1}},
	}

	key, err := svc.PublishReport(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, "reports/attendance-run-1.xlsx", key)
	client.AssertExpectations(t)
}

func TestService_WithoutBackends(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, defaultStorageConfig(), reconcile.Config{}, nil, zap.NewNop())
	res := &Result{Run: &reconcile.Run{ID: "run-1"}}

	assert.False(t, svc.HistoryEnabled())

	_, err := svc.ReconcileBucket(ctx, "")
	assert.Error(t, err)
	_, err = svc.PublishReport(ctx, res)
	assert.Error(t, err)
	_, err = svc.Persist(ctx, res, "cli")
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	_, err = svc.ListRuns(ctx, 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	_, err = svc.GetRun(ctx, "run-1")
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	assert.ErrorIs(t, svc.MigrateHistory(ctx), ErrHistoryDisabled)
}

func TestService_Persist(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(nil, defaultStorageConfig(), reconcile.Config{}, db, zap.NewNop())
	run := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `attendance_runs`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `attendance_appearances`").WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	rec, err := svc.Persist(context.Background(), &Result{Run: run, Entries: Rank(run.Records)}, "cli")
	require.NoError(t, err)
	assert.Equal(t, "cli", rec.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}
