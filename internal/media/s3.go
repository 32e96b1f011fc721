package media

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"postplanner/internal/config"
)

func NewS3Client(cfg config.S3Config) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: "us-east-1",
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return client, nil
}

// S3Store keeps blobs in an S3 compatible bucket under <team>/<digest><ext>.
type S3Store struct {
	client *minio.Client
	bucket string

	ensureOnce sync.Once
	ensureErr  error
}

func NewS3Store(client *minio.Client, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

func (s *S3Store) Backend() string { return BackendS3 }

func (s *S3Store) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = err
			return
		}
		if exists {
			return
		}
		s.ensureErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})

	if s.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, s.ensureErr)
	}

	return nil
}

func (s *S3Store) Put(ctx context.Context, blob Blob) (StoredBlob, error) {
	if s.client == nil {
		return StoredBlob{}, fmt.Errorf("s3 client is nil")
	}
	key := ObjectKey(blob.TeamID, blob.Digest, blob.Name)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(blob.Data), int64(len(blob.Data)), minio.PutObjectOptions{
		ContentType: blob.ContentType,
		UserMetadata: map[string]string{
			"uploaded-by": blob.UploaderID,
			"file-name":   blob.Name,
		},
	})
	if err != nil {
		return StoredBlob{}, fmt.Errorf("put object to s3: %w", err)
	}

	return StoredBlob{FileID: key, URL: s.objectURL(key)}, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if s.client == nil || key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *S3Store) objectURL(key string) string {
	u := *s.client.EndpointURL()
	u.Path = path.Join("/", s.bucket, key)
	return u.String()
}

// ObjectKey is content addressed so a retried upload overwrites itself.
func ObjectKey(teamID, digest, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return path.Join(teamID, digest+ext)
}
