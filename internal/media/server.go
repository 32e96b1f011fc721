package media

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"postplanner/internal/dbmongo"
)

// FileSource is satisfied by *dbmongo.MediaStorage.
type FileSource interface {
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error)
}

// HTTPServer serves GridFS blobs at GET /media/{fileId}.
type HTTPServer struct {
	storage FileSource
	router  *mux.Router
	log     *zap.Logger
}

func NewHTTPServer(storage FileSource, log *zap.Logger) *HTTPServer {
	if log == nil {
		log = zap.NewNop()
	}
	s := &HTTPServer{storage: storage, log: log}

	router := mux.NewRouter()
	router.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router = router

	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	fileReader, mediaFile, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		s.log.Debug("media lookup failed", zap.String("file_id", fileID), zap.Error(err))
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer fileReader.Close()

	contentType := mediaFile.ContentType
	if contentType == "" {
		contentType = contentTypeFor(mediaFile.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(mediaFile.Size, 10))
	// file ids never get reused
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	if r.Method == http.MethodHead {
		return
	}

	if _, err := io.Copy(w, fileReader); err != nil {
		s.log.Warn("error streaming file", zap.String("file_id", fileID), zap.Error(err))
	}
}

func contentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "media"})
}
