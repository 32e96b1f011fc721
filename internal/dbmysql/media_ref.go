package dbmysql

import (
	"gorm.io/gorm"
)

type MediaRef struct {
	TeamID      string `gorm:"size:36;not null;uniqueIndex:idx_media_team_digest,priority:1" json:"team_id"`
	FileID      string `gorm:"size:255" json:"file_id"` // GridFS ObjectID hex or S3 object key
	Backend     string `gorm:"size:16" json:"backend"`  // gridfs, s3
	Type        string `gorm:"size:20" json:"type"`     // image, video
	FileName    string `gorm:"size:255" json:"file_name"`
	ContentType string `gorm:"size:100" json:"content_type"`
	URL         string `gorm:"size:500" json:"url"`
	Size        int64  `json:"size"`
	Digest      string `gorm:"size:64;not null;uniqueIndex:idx_media_team_digest,priority:2" json:"digest"`
	UploadedBy  string `gorm:"size:36;index" json:"uploaded_by"`
	gorm.Model         // Adds ID, CreatedAt, UpdatedAt, DeletedAt
}

func (MediaRef) TableName() string {
	return "media_refs"
}
