package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postplanner/internal/common"
)

type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
	}
}

// UploadMeta is written into the GridFS metadata document of every file.
type UploadMeta struct {
	TeamID      string
	UploaderID  string
	ContentType string
	Digest      string
}

type MediaFile struct {
	ID          string               `json:"id"`           // GridFS ObjectID
	Filename    string               `json:"filename"`     // Original filename
	Size        int64                `json:"size"`         // File size in bytes
	FileType    common.MediaFileType `json:"file_type"`    // image or video
	ContentType string               `json:"content_type"` // mime type given at upload
	TeamID      string               `json:"team_id"`
	Digest      string               `json:"digest,omitempty"`
	UploadedBy  string               `json:"uploaded_by"`
	UploadedAt  time.Time            `json:"uploaded_at"`
}

func (ms *MediaStorage) UploadFile(ctx context.Context, filename string, meta UploadMeta, content io.Reader) (*MediaFile, error) {
	fileType := common.DetectFileType(meta.ContentType)
	now := time.Now().UTC()

	opts := options.GridFSUpload().SetMetadata(uploadMetadata(meta, fileType, now))
	stream, err := ms.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("file copy failed: %w", err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("upload finalize failed: %w", err)
	}

	fileID, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected file id type %T", stream.FileID)
	}

	return &MediaFile{
		ID:          fileID.Hex(),
		Filename:    filename,
		Size:        size,
		FileType:    fileType,
		ContentType: meta.ContentType,
		TeamID:      meta.TeamID,
		Digest:      meta.Digest,
		UploadedBy:  meta.UploaderID,
		UploadedAt:  now,
	}, nil
}

func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *MediaFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file ID: %w", err)
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, fmt.Errorf("file %s: %w", fileID, common.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		if err := bson.Unmarshal(fileInfo.Metadata, &metadata); err != nil {
			_ = stream.Close()
			return nil, nil, fmt.Errorf("corrupt metadata for %s: %w", fileID, err)
		}
	}

	return stream, fileFromMetadata(fileID, fileInfo.Name, fileInfo.Length, fileInfo.UploadDate, metadata), nil
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", err)
	}
	if err := ms.gridFS.DeleteContext(ctx, objectID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("file %s: %w", fileID, common.ErrNotFound)
		}
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func uploadMetadata(meta UploadMeta, fileType common.MediaFileType, at time.Time) bson.M {
	return bson.M{
		"file_type":   fileType.String(),
		"mime_type":   meta.ContentType,
		"team_id":     meta.TeamID,
		"digest":      meta.Digest,
		"uploaded_by": meta.UploaderID,
		"uploaded_at": at,
	}
}

func fileFromMetadata(id, name string, size int64, uploaded time.Time, metadata bson.M) *MediaFile {
	contentType := getStringFromMap(metadata, "mime_type")
	fileType := common.MediaFileType(getStringFromMap(metadata, "file_type"))
	if !fileType.IsValid() {
		fileType = common.DetectFileType(contentType)
	}
	return &MediaFile{
		ID:          id,
		Filename:    name,
		Size:        size,
		FileType:    fileType,
		ContentType: contentType,
		TeamID:      getStringFromMap(metadata, "team_id"),
		Digest:      getStringFromMap(metadata, "digest"),
		UploadedBy:  getStringFromMap(metadata, "uploaded_by"),
		UploadedAt:  uploaded,
	}
}

// Helper function for metadata extraction
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
