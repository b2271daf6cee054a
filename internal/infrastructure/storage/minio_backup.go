package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/minio/minio-go/v7"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const defaultBackupPrefix = "roster-backups"

// RosterSnapshot is the object body written for each backup.
type RosterSnapshot struct {
	SyncID     string             `json:"sync_id"`
	CreatedAt  time.Time          `json:"created_at"`
	Count      int                `json:"count"`
	Candidates []player.Candidate `json:"candidates"`
}

type RosterBackupConfig struct {
	Bucket string
	Prefix string
}

// RosterBackup writes one JSON object per sync id before a roster run
// starts writing.
type RosterBackup struct {
	client ObjectClient
	bucket string
	prefix string
	logger *logging.Logger
	now    func() time.Time

	bucketOnce sync.Once
	bucketErr  error
}

var _ usecase.RosterBackup = (*RosterBackup)(nil)

func NewRosterBackup(client ObjectClient, cfg RosterBackupConfig, logger *logging.Logger) *RosterBackup {
	if logger == nil {
		logger = logging.Default()
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	if prefix == "" {
		prefix = defaultBackupPrefix
	}

	return &RosterBackup{
		client: client,
		bucket: strings.TrimSpace(cfg.Bucket),
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (b *RosterBackup) Backup(ctx context.Context, syncID string, candidates []player.Candidate) (string, error) {
	syncID = strings.TrimSpace(syncID)
	if syncID == "" {
		return "", fmt.Errorf("%w: sync id is required", usecase.ErrInvalidInput)
	}
	if err := b.ensureBucket(ctx); err != nil {
		return "", err
	}

	createdAt := b.now().UTC()
	body, err := sonic.Marshal(RosterSnapshot{
		SyncID:     syncID,
		CreatedAt:  createdAt,
		Count:      len(candidates),
		Candidates: candidates,
	})
	if err != nil {
		return "", fmt.Errorf("marshal roster snapshot: %w", err)
	}

	key := b.objectKey(createdAt, syncID)
	_, err = b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"sync-id": syncID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: put roster backup key=%s: %v", usecase.ErrDependencyUnavailable, key, err)
	}

	location := "s3://" + b.bucket + "/" + key
	b.logger.InfoContext(ctx, "roster backup written", "sync_id", syncID, "location", location, "candidates", len(candidates))
	return location, nil
}

// Load reads back a snapshot by the location Backup returned.
func (b *RosterBackup) Load(ctx context.Context, location string) (RosterSnapshot, error) {
	key := strings.TrimPrefix(strings.TrimSpace(location), "s3://"+b.bucket+"/")
	if key == "" || strings.HasPrefix(key, "s3://") {
		return RosterSnapshot{}, fmt.Errorf("%w: location %q is not in bucket %s", usecase.ErrInvalidInput, location, b.bucket)
	}

	reader, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return RosterSnapshot{}, fmt.Errorf("%w: get roster backup key=%s: %v", usecase.ErrDependencyUnavailable, key, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return RosterSnapshot{}, fmt.Errorf("read roster backup key=%s: %w", key, err)
	}

	var snapshot RosterSnapshot
	if err := sonic.Unmarshal(raw, &snapshot); err != nil {
		return RosterSnapshot{}, fmt.Errorf("decode roster backup key=%s: %w", key, err)
	}
	return snapshot, nil
}

func (b *RosterBackup) ensureBucket(ctx context.Context) error {
	if b.bucket == "" {
		return fmt.Errorf("%w: backup bucket is not configured", usecase.ErrDependencyUnavailable)
	}

	b.bucketOnce.Do(func() {
		exists, err := b.client.BucketExists(ctx, b.bucket)
		if err != nil {
			b.bucketErr = fmt.Errorf("%w: check bucket %s: %v", usecase.ErrDependencyUnavailable, b.bucket, err)
			return
		}
		if exists {
			return
		}
		if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
			b.bucketErr = fmt.Errorf("%w: create bucket %s: %v", usecase.ErrDependencyUnavailable, b.bucket, err)
		}
	})
	return b.bucketErr
}

func (b *RosterBackup) objectKey(at time.Time, syncID string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(b.prefix)
	_ = buf.WriteByte('/')
	_, _ = buf.WriteString(at.Format("2006/01/02"))
	_ = buf.WriteByte('/')
	_, _ = buf.WriteString(sanitizeKeySegment(syncID))
	_, _ = buf.WriteString(".json")
	return buf.String()
}

func sanitizeKeySegment(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, value)
}
