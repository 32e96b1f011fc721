package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"postplanner/internal/common"
	"postplanner/internal/dbmongo"
)

type fakeFileSource struct {
	files map[string]*dbmongo.MediaFile
	data  map[string]string
}

func (f *fakeFileSource) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error) {
	file, ok := f.files[fileID]
	if !ok {
		return nil, nil, common.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(f.data[fileID])), file, nil
}

func newTestServer() *HTTPServer {
	src := &fakeFileSource{
		files: map[string]*dbmongo.MediaFile{
			"img":    {ID: "img", Filename: "a.jpg", Size: 6, ContentType: "image/webp"},
			"legacy": {ID: "legacy", Filename: "clip.mov", Size: 4},
		},
		data: map[string]string{"img": "pixels", "legacy": "film"},
	}
	return NewHTTPServer(src, nil)
}

func TestHTTPServer_ServeFile(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{"stored content type wins", http.MethodGet, "/media/img", http.StatusOK, "image/webp", "pixels"},
		{"extension fallback", http.MethodGet, "/media/legacy", http.StatusOK, "video/quicktime", "film"},
		{"head has no body", http.MethodHead, "/media/img", http.StatusOK, "image/webp", ""},
		{"unknown file", http.MethodGet, "/media/missing", http.StatusNotFound, "", "File not found\n"},
		{"wrong method", http.MethodPost, "/media/img", http.StatusMethodNotAllowed, "", ""},
	}

	srv := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
				assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
			}
			if tt.wantBody != "" || tt.method == http.MethodHead {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHTTPServer_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"media"}`, rec.Body.String())
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentTypeFor("A.JPEG"))
	assert.Equal(t, "video/webm", contentTypeFor("b.webm"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("notes.txt"))
}
