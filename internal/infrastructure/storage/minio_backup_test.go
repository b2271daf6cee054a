package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
	"github.com/stretchr/testify/mock"
)

type mockObjectClient struct {
	mock.Mock
	stored map[string][]byte
}

func (m *mockObjectClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *mockObjectClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *mockObjectClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	if err := args.Error(1); err != nil {
		return minio.UploadInfo{}, err
	}
	raw, _ := io.ReadAll(reader)
	if m.stored == nil {
		m.stored = make(map[string][]byte)
	}
	m.stored[objectName] = raw
	return args.Get(0).(minio.UploadInfo), nil
}

func (m *mockObjectClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(m.stored[objectName])), nil
}

func TestRosterBackup_WritesAndLoadsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := &mockObjectClient{}
	backup := NewRosterBackup(client, RosterBackupConfig{Bucket: "rosters"}, logging.NewNop())
	backup.now = func() time.Time { return time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC) }

	wantKey := "roster-backups/2025/09/07/sync-1.json"
	client.On("BucketExists", mock.Anything, "rosters").Return(false, nil).Once()
	client.On("MakeBucket", mock.Anything, "rosters", mock.Anything).Return(nil).Once()
	client.On("PutObject", mock.Anything, "rosters", wantKey, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{Key: wantKey}, nil).Twice()
	client.On("GetObject", mock.Anything, "rosters", wantKey, mock.Anything).Return(nil, nil).Once()

	candidates := []player.Candidate{
		{ID: 10, FirstName: "Patrick", LastName: "Mahomes", TeamAbbreviation: "KC", Position: "QB", Active: true},
		{ID: 11, FirstName: "Travis", LastName: "Kelce", TeamAbbreviation: "KC", Position: "TE", Active: true},
	}
	location, err := backup.Backup(ctx, "sync-1", candidates)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if location != "s3://rosters/"+wantKey {
		t.Fatalf("unexpected location: %s", location)
	}

	// Bucket checks happen once per process.
	if _, err := backup.Backup(ctx, "sync-1", candidates); err != nil {
		t.Fatalf("second backup: %v", err)
	}

	snapshot, err := backup.Load(ctx, location)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snapshot.SyncID != "sync-1" || snapshot.Count != 2 || snapshot.Candidates[1].LastName != "Kelce" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	client.AssertExpectations(t)
}

func TestRosterBackup_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, err := NewRosterBackup(&mockObjectClient{}, RosterBackupConfig{}, logging.NewNop()).Backup(ctx, "sync-1", nil); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected missing bucket error, got %v", err)
	}

	client := &mockObjectClient{}
	client.On("BucketExists", mock.Anything, "rosters").Return(true, nil).Once()
	client.On("PutObject", mock.Anything, "rosters", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, errors.New("access denied")).Once()
	backup := NewRosterBackup(client, RosterBackupConfig{Bucket: "rosters"}, logging.NewNop())

	if _, err := backup.Backup(ctx, " ", nil); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := backup.Backup(ctx, "sync-2", nil); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, err := backup.Load(ctx, "s3://other/key.json"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid location error, got %v", err)
	}
}

func TestSanitizeKeySegment(t *testing.T) {
	t.Parallel()

	if got := sanitizeKeySegment("sync 1/../x"); got != "sync-1-..-x" {
		t.Fatalf("unexpected sanitized key: %q", got)
	}
}
