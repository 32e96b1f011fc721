package media

import (
	"context"
	"encoding/hex"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"postplanner/internal/common"
	"postplanner/internal/config"
	"postplanner/internal/dbmysql"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// RefRepository is satisfied by *dbmysql.MediaRefRepository.
type RefRepository interface {
	Create(ctx context.Context, ref *dbmysql.MediaRef) error
	ByDigest(ctx context.Context, teamID, digest string) (*dbmysql.MediaRef, error)
	ByTeam(ctx context.Context, teamID string, limit, offset int) ([]dbmysql.MediaRef, error)
}

// MediaService uploads attachments and lists a team's library.
type MediaService interface {
	Upload(ctx context.Context, teamID, uploaderID string, file common.LocalFile) (string, error)
	List(ctx context.Context, teamID string, limit, offset int) ([]dbmysql.MediaRef, error)
}

type mediaService struct {
	store   BlobStore
	refs    RefRepository
	maxSize int64
	log     *zap.Logger
}

func NewMediaService(store BlobStore, refs RefRepository, cfg *config.Config, log *zap.Logger) MediaService {
	if log == nil {
		log = zap.NewNop()
	}
	return &mediaService{
		store:   store,
		refs:    refs,
		maxSize: cfg.Media.MaxUploadSize,
		log:     log,
	}
}

// Upload returns the URL of an existing copy when the team already uploaded
// identical bytes.
func (s *mediaService) Upload(ctx context.Context, teamID, uploaderID string, file common.LocalFile) (string, error) {
	if err := s.validate(teamID, file); err != nil {
		return "", err
	}

	digest := Digest(file.Data)

	existing, err := s.refs.ByDigest(ctx, teamID, digest)
	switch {
	case err == nil:
		s.log.Debug("media upload deduplicated",
			zap.String("team_id", teamID),
			zap.String("digest", digest),
			zap.String("file_id", existing.FileID))
		return existing.URL, nil
	case !errors.Is(err, common.ErrNotFound):
		return "", err
	}

	stored, err := s.store.Put(ctx, Blob{
		TeamID:      teamID,
		UploaderID:  uploaderID,
		Name:        file.Name,
		ContentType: file.ContentType,
		Digest:      digest,
		Data:        file.Data,
	})
	if err != nil {
		return "", err
	}

	ref := &dbmysql.MediaRef{
		TeamID:      teamID,
		FileID:      stored.FileID,
		Backend:     s.store.Backend(),
		Type:        common.DetectFileType(file.ContentType).String(),
		FileName:    file.Name,
		ContentType: file.ContentType,
		URL:         stored.URL,
		Size:        int64(len(file.Data)),
		Digest:      digest,
		UploadedBy:  uploaderID,
	}
	if err := s.refs.Create(ctx, ref); err != nil {
		// a concurrent upload of the same bytes may have won the unique index
		if winner, lookupErr := s.refs.ByDigest(ctx, teamID, digest); lookupErr == nil {
			s.discard(ctx, stored.FileID)
			return winner.URL, nil
		}
		s.discard(ctx, stored.FileID)
		return "", err
	}

	s.log.Info("media uploaded",
		zap.String("team_id", teamID),
		zap.String("backend", ref.Backend),
		zap.String("file_id", ref.FileID),
		zap.Int64("size", ref.Size))

	return stored.URL, nil
}

func (s *mediaService) List(ctx context.Context, teamID string, limit, offset int) ([]dbmysql.MediaRef, error) {
	if teamID == "" {
		return nil, common.NewValidationError("team_id", "is required")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.refs.ByTeam(ctx, teamID, limit, offset)
}

func (s *mediaService) validate(teamID string, file common.LocalFile) error {
	if teamID == "" {
		return common.NewValidationError("team_id", "is required")
	}
	if len(file.Data) == 0 {
		return common.NewValidationError("file", "%s is empty", file.Name)
	}
	if s.maxSize > 0 && int64(len(file.Data)) > s.maxSize {
		return common.NewValidationError("file", "%s exceeds the %d MB limit", file.Name, s.maxSize>>20)
	}
	if !common.IsSupportedUpload(file.ContentType) {
		return common.NewValidationError("content_type", "%q is not a supported attachment type", file.ContentType)
	}
	return nil
}

func (s *mediaService) discard(ctx context.Context, fileID string) {
	if err := s.store.Delete(ctx, fileID); err != nil {
		s.log.Warn("orphaned media blob", zap.String("file_id", fileID), zap.Error(err))
	}
}

// Digest is the hex blake2b-256 of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
