package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"attendance-reconciler/core/storage"
	"attendance-reconciler/feature/roster"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport describes the state of the attendance bucket.
type StorageReport struct {
	Bucket          string   `json:"bucket"`
	BucketExists    bool     `json:"bucket_exists"`
	InputPrefix     string   `json:"input_prefix"`
	Workbooks       int      `json:"workbooks"`
	Ignored         int      `json:"ignored"`
	MissingPrefixes []string `json:"missing_prefixes"`
	Status          string   `json:"status"` // "ok", "warning", "error"
}

// CheckStorage verifies that the bucket exists, that both prefixes are present
// and counts the workbooks waiting under the input prefix.
func CheckStorage(ctx context.Context, client storage.Client, cfg storage.Config) (*StorageReport, error) {
	report := &StorageReport{
		Bucket:          cfg.Bucket,
		InputPrefix:     folder(cfg.InputPrefix),
		MissingPrefixes: []string{},
		Status:          "ok",
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		report.Status = "error"
		report.MissingPrefixes = append(report.MissingPrefixes, folder(cfg.InputPrefix), folder(cfg.ReportPrefix))
		return report, nil
	}

	for _, prefix := range []string{cfg.InputPrefix, cfg.ReportPrefix} {
		if prefix == "" {
			continue
		}
		opts := minio.ListObjectsOptions{
			Prefix:    folder(prefix),
			Recursive: false,
			MaxKeys:   1,
		}
		found := false
		for obj := range client.ListObjects(ctx, cfg.Bucket, opts) {
			if obj.Err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
			}
			found = true
			break
		}
		if !found {
			report.MissingPrefixes = append(report.MissingPrefixes, folder(prefix))
		}
	}

	opts := minio.ListObjectsOptions{Prefix: folder(cfg.InputPrefix), Recursive: true}
	for obj := range client.ListObjects(ctx, cfg.Bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", cfg.InputPrefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if roster.IsWorkbookName(obj.Key) {
			report.Workbooks++
		} else {
			report.Ignored++
		}
	}

	if len(report.MissingPrefixes) > 0 || report.Workbooks == 0 {
		report.Status = "warning"
	}
	return report, nil
}

// FixStorage creates the bucket if needed and a placeholder object for each missing prefix.
func FixStorage(ctx context.Context, client storage.Client, cfg storage.Config, logger *zap.Logger, missing []string) error {
	if err := storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		return err
	}
	for _, prefix := range missing {
		_, err := client.PutObject(ctx, cfg.Bucket, folder(prefix), bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create prefix", zap.String("prefix", prefix), zap.Error(err))
			return err
		}
		logger.Info("Created missing prefix", zap.String("prefix", prefix))
	}
	return nil
}

func folder(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
