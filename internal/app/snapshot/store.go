package snapshot

import (
	"context"
	"fmt"

	"emberchat/internal/configs"
)

// Store is the external persistence backend for snapshot documents.
// Save overwrites the single latest snapshot; Load returns (nil, nil)
// when no snapshot has been written yet.
type Store interface {
	Save(ctx context.Context, doc *Document) error
	Load(ctx context.Context) (*Document, error)
	Close()
}

// NewStore is the factory for Store implementations, selected by
// cfg.SnapshotBackend.
func NewStore(ctx context.Context, cfg *configs.AppConfig) (Store, error) {
	switch cfg.SnapshotBackend {
	case configs.BackendPostgres:
		return newPostgresStore(ctx, cfg.DatabaseDSN)

	case configs.BackendS3:
		return newS3Store(ctx, s3Config{
			Bucket:          cfg.S3BucketName,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})

	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}
