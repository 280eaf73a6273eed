package sync

import (
	"context"
	"testing"
	"time"

	"stock-sync/core/storage/mocks"
	"stock-sync/feature/catalog/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArchiveUploadsRunReport(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "sync-reports").Return(true, nil)
	client.On("PutObject", mock.Anything, "sync-reports", "runs/run-000042.json",
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	a := NewArchiver(client, "sync-reports", testLogger())

	finished := time.Now()
	run := &models.SyncRun{
		ID:         42,
		Status:     models.RunStatusCompleted,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: &finished,
		Total:      10,
		Created:    3,
	}

	require.NoError(t, a.Archive(context.Background(), run))
	client.AssertExpectations(t)
}

func TestArchiveCreatesMissingBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "sync-reports").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "sync-reports", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "sync-reports", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	a := NewArchiver(client, "sync-reports", testLogger())
	run := &models.SyncRun{ID: 1, Status: models.RunStatusCompleted}

	require.NoError(t, a.Archive(context.Background(), run))
	client.AssertExpectations(t)
}

func TestArchiveListReturnsObjectNames(t *testing.T) {
	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "runs/run-000001.json"}
	ch <- minio.ObjectInfo{Key: "runs/run-000002.json"}
	close(ch)
	var recv <-chan minio.ObjectInfo = ch

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "sync-reports", mock.Anything).Return(recv)

	a := NewArchiver(client, "sync-reports", testLogger())
	names, err := a.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/run-000001.json", "runs/run-000002.json"}, names)
}

func TestArchiveReadRejectsForeignPrefix(t *testing.T) {
	a := NewArchiver(new(mocks.Client), "sync-reports", testLogger())
	_, err := a.Read(context.Background(), "../secrets.json")
	require.Error(t, err)
}

func TestArchiveBucketCheckFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "sync-reports").Return(false, assert.AnError)

	a := NewArchiver(client, "sync-reports", testLogger())
	err := a.Archive(context.Background(), &models.SyncRun{ID: 1})
	require.Error(t, err)
	client.AssertExpectations(t)
}
