package common

import "strings"

// MediaFileType is the coarse kind of an attachment.
type MediaFileType string

const (
	MediaFileTypeImage MediaFileType = "image"
	MediaFileTypeVideo MediaFileType = "video"
)

// String returns the string representation
func (mft MediaFileType) String() string {
	return string(mft)
}

// IsValid checks if the media file type is valid
func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeImage || mft == MediaFileTypeVideo
}

// mime types the social platforms accept for post attachments
var supportedUploads = map[string]MediaFileType{
	"image/jpeg":      MediaFileTypeImage,
	"image/png":       MediaFileTypeImage,
	"image/gif":       MediaFileTypeImage,
	"image/webp":      MediaFileTypeImage,
	"video/mp4":       MediaFileTypeVideo,
	"video/quicktime": MediaFileTypeVideo,
	"video/webm":      MediaFileTypeVideo,
}

func DetectFileType(mimeType string) MediaFileType {
	lowerMimeType := strings.ToLower(strings.TrimSpace(mimeType))

	if strings.HasPrefix(lowerMimeType, "video/") {
		return MediaFileTypeVideo
	}
	return MediaFileTypeImage
}

// IsSupportedUpload reports whether an attachment of this mime type can be posted.
func IsSupportedUpload(mimeType string) bool {
	base := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	_, ok := supportedUploads[base]
	return ok
}
