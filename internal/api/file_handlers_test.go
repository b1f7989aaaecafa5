package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/mwantia/godepot/internal/config/server"
	"github.com/mwantia/godepot/pkg/blob"
	"github.com/mwantia/godepot/pkg/db/store"
	"github.com/mwantia/godepot/pkg/files"
	"github.com/mwantia/godepot/pkg/log"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.BaseServerConfig{
		ShutdownTimeout: "5s",
		Log: config.LogServerConfig{
			Level:      "ERROR",
			TimeFormat: "15:04:05",
		},
		HTTP: config.HTTPServerConfig{
			Address:     ":0",
			CORSOrigins: []string{"*"},
		},
		Storage: config.StorageServerConfig{
			UploadDirectory: filepath.Join(t.TempDir(), "uploads"),
			MaxUploadSize:   1 << 20,
			URLPrefix:       "/uploads",
		},
	}

	metadata, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, metadata.Migrate(t.Context()))
	t.Cleanup(func() { metadata.Close() })

	blobs, err := blob.NewStore(cfg.Storage.UploadDirectory)
	require.NoError(t, err)

	logger := log.NewLoggerService("test", cfg.Log)
	svc := files.NewService(metadata, blobs, nil, logger, files.Config{
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		URLPrefix:     cfg.Storage.URLPrefix,
	})

	return NewServer(cfg, svc, logger)
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {"text/plain"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, form.WriteField(key, value))
	}
	require.NoError(t, form.Close())

	return &body, form.FormDataContentType()
}

func uploadFile(t *testing.T, srv *Server, filename, content string, fields map[string]string) files.FileInfo {
	t.Helper()

	body, contentType := multipartUpload(t, filename, content, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, "upload failed: %s", rec.Body.String())

	var envelope struct {
		File files.FileInfo `json:"file"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.File
}

func TestUploadHandler(t *testing.T) {
	srv := newTestServer(t)

	info := uploadFile(t, srv, "a.txt", "hello", map[string]string{
		"uploadedBy":  "alice",
		"description": "greeting",
		"tags":        "x, y",
	})

	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "a.txt", info.OriginalName)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "alice", info.UploadedBy)
	assert.Equal(t, []string{"x", "y"}, info.Tags)
	assert.Equal(t, "/uploads/"+info.Filename, info.URL)
}

func TestUploadResponseOmitsPath(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartUpload(t, "a.txt", "hello", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.NotContains(t, rec.Body.String(), `"path"`)
}

func TestUploadWithoutFile(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=empty")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectedType(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="evil.exe"`},
		"Content-Type":        {"application/x-msdownload"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_file_type")
}

func TestListHandler(t *testing.T) {
	srv := newTestServer(t)

	uploadFile(t, srv, "a.txt", "12345", map[string]string{"uploadedBy": "alice"})
	uploadFile(t, srv, "b.txt", "other", map[string]string{"uploadedBy": "bob"})

	req := httptest.NewRequest(http.MethodGet, "/api/files?user=alice", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Files      []files.FileInfo `json:"files"`
		Pagination struct {
			Current    int   `json:"current"`
			TotalFiles int64 `json:"totalFiles"`
			Count      int   `json:"count"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	require.Len(t, envelope.Files, 1)
	assert.Equal(t, "alice", envelope.Files[0].UploadedBy)
	assert.Equal(t, int64(1), envelope.Pagination.TotalFiles)
	assert.Equal(t, 1, envelope.Pagination.Count)
	assert.Equal(t, 1, envelope.Pagination.Current)
}

func TestGetHandlerNotFound(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/files/no-such-id", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestDownloadHandler(t *testing.T) {
	srv := newTestServer(t)

	info := uploadFile(t, srv, "trip.txt", "round trip", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/files/"+info.ID+"/download", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "round trip", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="trip.txt"`)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestUpdateHandler(t *testing.T) {
	srv := newTestServer(t)

	info := uploadFile(t, srv, "doc.txt", "doc", map[string]string{"description": "old"})

	// Tags arrive as a comma-separated string here, not a list
	payload := `{"uploadedBy":"carol","tags":"x, y"}`
	req := httptest.NewRequest(http.MethodPut, "/api/files/"+info.ID, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		File files.FileInfo `json:"file"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.Equal(t, "carol", envelope.File.UploadedBy)
	assert.Equal(t, []string{"x", "y"}, envelope.File.Tags)
	assert.Equal(t, "old", envelope.File.Description, "unsupplied fields stay untouched")
}

func TestDeleteHandler(t *testing.T) {
	srv := newTestServer(t)

	info := uploadFile(t, srv, "del.txt", "bye", nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/files/"+info.ID, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/files/"+info.ID, nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsHandlerEmpty(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/files/stats/summary", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats files.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))

	assert.Equal(t, int64(0), stats.TotalFiles)
	assert.Equal(t, int64(0), stats.TotalSizeBytes)
	assert.Empty(t, stats.FileTypes)
	assert.Empty(t, stats.RecentFiles)

	// The JSON body itself must carry zeros, not nulls
	assert.Contains(t, rec.Body.String(), `"totalSize":0`)
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}
