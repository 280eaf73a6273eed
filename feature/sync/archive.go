package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"stock-sync/core/storage"
	"stock-sync/feature/catalog/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver uploads a JSON report of every finished run to object storage so
// run history survives database resets.
type Archiver struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchiver creates an archiver writing into the given bucket.
func NewArchiver(client storage.Client, bucket string, logger *zap.Logger) *Archiver {
	return &Archiver{client: client, bucket: bucket, logger: logger}
}

// Archive serializes the finalized run and uploads it as
// runs/run-<id>.json, creating the bucket on first use.
func (a *Archiver) Archive(ctx context.Context, run *models.SyncRun) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check archive bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create archive bucket: %w", err)
		}
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}

	objName := fmt.Sprintf("runs/run-%06d.json", run.ID)
	_, err = a.client.PutObject(ctx, a.bucket, objName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload run report: %w", err)
	}

	a.logger.Info("Run report archived", zap.String("object", objName))
	return nil
}

// List returns the object names of all archived run reports.
func (a *Archiver) List(ctx context.Context) ([]string, error) {
	names := []string{}
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    "runs/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list run reports: %w", obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// Read streams one archived run report.
func (a *Archiver) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	if !strings.HasPrefix(name, "runs/") {
		return nil, fmt.Errorf("invalid report name %q", name)
	}
	return a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
}
