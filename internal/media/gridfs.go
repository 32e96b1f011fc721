package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"postplanner/internal/dbmongo"
)

// GridFiles is satisfied by *dbmongo.MediaStorage.
type GridFiles interface {
	UploadFile(ctx context.Context, filename string, meta dbmongo.UploadMeta, content io.Reader) (*dbmongo.MediaFile, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// GridFSStore keeps blobs in MongoDB; URLs point at the media-server.
type GridFSStore struct {
	files   GridFiles
	baseURL string
}

func NewGridFSStore(files GridFiles, baseURL string) *GridFSStore {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &GridFSStore{files: files, baseURL: baseURL}
}

func (s *GridFSStore) Backend() string { return BackendGridFS }

func (s *GridFSStore) Put(ctx context.Context, blob Blob) (StoredBlob, error) {
	meta := dbmongo.UploadMeta{
		TeamID:      blob.TeamID,
		UploaderID:  blob.UploaderID,
		ContentType: blob.ContentType,
		Digest:      blob.Digest,
	}
	file, err := s.files.UploadFile(ctx, blob.Name, meta, bytes.NewReader(blob.Data))
	if err != nil {
		return StoredBlob{}, fmt.Errorf("gridfs put: %w", err)
	}
	return StoredBlob{FileID: file.ID, URL: s.baseURL + file.ID}, nil
}

func (s *GridFSStore) Delete(ctx context.Context, fileID string) error {
	return s.files.DeleteFile(ctx, fileID)
}
