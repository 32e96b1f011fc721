// Package media stores post attachments for a team and serves them back.
package media

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"postplanner/internal/config"
	"postplanner/internal/dbmongo"
)

const (
	BackendGridFS = "gridfs"
	BackendS3     = "s3"
)

// Blob is one upload on its way to a backend.
type Blob struct {
	TeamID      string
	UploaderID  string
	Name        string
	ContentType string
	Digest      string
	Data        []byte
}

// StoredBlob locates a blob after a successful Put.
type StoredBlob struct {
	FileID string
	URL    string
}

// BlobStore is implemented by GridFSStore and S3Store.
type BlobStore interface {
	Backend() string
	Put(ctx context.Context, blob Blob) (StoredBlob, error)
	Delete(ctx context.Context, fileID string) error
}

// OpenStore connects the backend selected by cfg.Media.Backend. The returned
// cleanup func releases the connection.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (BlobStore, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Media.Backend {
	case BackendS3:
		client, err := NewS3Client(cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		store := NewS3Store(client, cfg.S3.Bucket)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		log.Info("media backend ready", zap.String("backend", BackendS3), zap.String("bucket", cfg.S3.Bucket))
		return store, func() {}, nil

	case BackendGridFS, "":
		client, err := dbmongo.NewMongoConnection(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Close(context.Background()); err != nil {
				log.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		log.Info("media backend ready", zap.String("backend", BackendGridFS), zap.String("bucket", dbmongo.BucketName(cfg)))
		return NewGridFSStore(dbmongo.NewMediaStorage(client), cfg.Server.MediaBaseURL), cleanup, nil
	}
	return nil, nil, fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
}
