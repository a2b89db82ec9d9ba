package roster

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/core/storage"

	"github.com/cockroachdb/errors"
	"github.com/minio/minio-go/v7"
)

const workbookExt = ".xlsx"

// ErrNoWorkbooks is returned when a location holds no .xlsx files.
var ErrNoWorkbooks = errors.New("no .xlsx files found")

// IsWorkbookName reports whether name looks like an xlsx workbook. Office lock
// files ("~$Book.xlsx") are excluded.
func IsWorkbookName(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	return strings.EqualFold(path.Ext(base), workbookExt) && !strings.HasPrefix(base, "~$")
}

// FileInput is a workbook on the local filesystem.
type FileInput struct {
	Path string
}

func (f FileInput) Name() string { return filepath.Base(f.Path) }

func (f FileInput) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// ListDirectory returns the workbooks directly inside dir, sorted by name.
func ListDirectory(dir string) ([]reconcile.Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "read input folder %s", dir),
			"create the folder and place the attendance .xlsx files in it",
		)
	}

	var inputs []reconcile.Input
	for _, e := range entries {
		if e.IsDir() || !IsWorkbookName(e.Name()) {
			continue
		}
		inputs = append(inputs, FileInput{Path: filepath.Join(dir, e.Name())})
	}
	if len(inputs) == 0 {
		return nil, errors.WithHint(
			errors.Wrapf(ErrNoWorkbooks, "in %s", dir),
			"place the attendance .xlsx files in the folder and run again",
		)
	}
	return inputs, nil
}

// ObjectInput is a workbook stored in an object storage bucket.
type ObjectInput struct {
	Client storage.Client
	Bucket string
	Key    string
}

func (o ObjectInput) Name() string { return path.Base(o.Key) }

func (o ObjectInput) Open(ctx context.Context) (io.ReadCloser, error) {
	return o.Client.GetObject(ctx, o.Bucket, o.Key, minio.GetObjectOptions{})
}

// ListBucket returns the workbooks stored under prefix, sorted by key.
func ListBucket(ctx context.Context, client storage.Client, bucket, prefix string) ([]reconcile.Input, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	var keys []string
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, errors.Wrapf(obj.Err, "list %s/%s", bucket, prefix)
		}
		if strings.HasSuffix(obj.Key, "/") || !IsWorkbookName(obj.Key) {
			continue
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) == 0 {
		return nil, errors.Wrapf(ErrNoWorkbooks, "under %s/%s", bucket, prefix)
	}
	sort.Strings(keys)

	inputs := make([]reconcile.Input, len(keys))
	for i, key := range keys {
		inputs[i] = ObjectInput{Client: client, Bucket: bucket, Key: key}
	}
	return inputs, nil
}

// MemoryInput is a workbook held in memory, such as an uploaded file.
type MemoryInput struct {
	Filename string
	Data     []byte
}

func (m MemoryInput) Name() string { return m.Filename }

func (m MemoryInput) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.Data)), nil
}
