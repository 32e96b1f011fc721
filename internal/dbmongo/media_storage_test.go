package dbmongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"postplanner/internal/common"
	"postplanner/internal/config"
)

func TestBucketName(t *testing.T) {
	assert.Equal(t, "media_files", BucketName(nil))
	assert.Equal(t, "media_files", BucketName(&config.Config{}))
	assert.Equal(t, "team_media", BucketName(&config.Config{MongoDB: config.MongoDBConfig{Bucket: "team_media"}}))
}

func TestClientOptions(t *testing.T) {
	cfg := &config.Config{MongoDB: config.MongoDBConfig{
		Host: "mongo.internal", Port: "27018", Username: "planner", Password: "s3cret",
	}}

	opts := clientOptions(cfg)

	require.NoError(t, opts.Validate())
	assert.Equal(t, []string{"mongo.internal:27018"}, opts.Hosts)
	require.NotNil(t, opts.Auth)
	assert.Equal(t, "planner", opts.Auth.Username)
	assert.Equal(t, "admin", opts.Auth.AuthSource)
	assert.Equal(t, appName, *opts.AppName)
	assert.Equal(t, ConnectTimeout, *opts.ConnectTimeout)
	assert.Equal(t, ConnectTimeout, *opts.ServerSelectionTimeout)
}

func TestConnect_UnreachableServer(t *testing.T) {
	cfg := &config.Config{MongoDB: config.MongoDBConfig{
		Host: "127.0.0.1", Port: "1", Username: "planner", Password: "s3cret", Database: "planner",
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	client, err := Connect(ctx, cfg)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "mongo")
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.NotContains(t, err.Error(), "s3cret")
}

func TestUploadMetadata(t *testing.T) {
	at := time.Date(2024, 3, 6, 12, 10, 0, 0, time.UTC)
	meta := UploadMeta{TeamID: "team-1", UploaderID: "user-1", ContentType: "video/mp4", Digest: "abc"}

	m := uploadMetadata(meta, common.MediaFileTypeVideo, at)

	assert.Equal(t, "video", m["file_type"])
	assert.Equal(t, "video/mp4", m["mime_type"])
	assert.Equal(t, "team-1", m["team_id"])
	assert.Equal(t, "abc", m["digest"])
	assert.Equal(t, "user-1", m["uploaded_by"])
	assert.Equal(t, at, m["uploaded_at"])
}

func TestFileFromMetadata(t *testing.T) {
	uploaded := time.Date(2024, 3, 6, 12, 10, 0, 0, time.UTC)

	tests := []struct {
		name     string
		metadata bson.M
		want     *MediaFile
	}{
		{
			name: "full metadata",
			metadata: bson.M{
				"file_type":   "image",
				"mime_type":   "image/png",
				"team_id":     "team-1",
				"digest":      "d1",
				"uploaded_by": "user-1",
			},
			want: &MediaFile{
				ID: "507f1f77bcf86cd799439011", Filename: "a.png", Size: 10,
				FileType: common.MediaFileTypeImage, ContentType: "image/png",
				TeamID: "team-1", Digest: "d1", UploadedBy: "user-1", UploadedAt: uploaded,
			},
		},
		{
			name:     "file type derived from mime",
			metadata: bson.M{"mime_type": "video/webm"},
			want: &MediaFile{
				ID: "507f1f77bcf86cd799439011", Filename: "a.png", Size: 10,
				FileType: common.MediaFileTypeVideo, ContentType: "video/webm", UploadedAt: uploaded,
			},
		},
		{
			name:     "no metadata",
			metadata: nil,
			want: &MediaFile{
				ID: "507f1f77bcf86cd799439011", Filename: "a.png", Size: 10,
				FileType: common.MediaFileTypeImage, UploadedAt: uploaded,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fileFromMetadata("507f1f77bcf86cd799439011", "a.png", 10, uploaded, tt.metadata)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetStringFromMap(t *testing.T) {
	testMap := bson.M{
		"string_key": "string_value",
		"int_key":    123,
		"bool_key":   true,
		"nil_key":    nil,
	}

	tests := []struct {
		name     string
		input    bson.M
		key      string
		expected string
	}{
		{"valid_string", testMap, "string_key", "string_value"},
		{"non_string_value", testMap, "int_key", ""},
		{"nil_value", testMap, "nil_key", ""},
		{"missing_key", testMap, "missing", ""},
		{"nil_map", nil, "any_key", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getStringFromMap(tt.input, tt.key))
		})
	}
}
