package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filedrop/internal/app"
	"github.com/templui/filedrop/internal/config"
	"github.com/templui/filedrop/internal/db"
	"github.com/templui/filedrop/internal/middleware"
	"github.com/templui/filedrop/internal/repository"
	"github.com/templui/filedrop/internal/service"
	"github.com/templui/filedrop/internal/storage"
)

// memStorage fakes S3: any key put() into it exists for Head
type memStorage struct {
	mu      sync.Mutex
	objects map[string]int64
}

func (m *memStorage) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return "https://s3.test/bucket/" + key + "?put", nil
}

func (m *memStorage) PresignGet(ctx context.Context, bucket, key, filename string, expiry time.Duration) (string, error) {
	return "https://s3.test/" + bucket + "/" + key + "?get", nil
}

func (m *memStorage) Head(ctx context.Context, bucket, key string) (*storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	size, ok := m.objects[key]
	if !ok {
		return nil, errors.New("operation error S3: HeadObject, StatusCode: 404, NotFound")
	}
	return &storage.ObjectInfo{SizeBytes: &size}, nil
}

func (m *memStorage) Bucket() string { return "bucket" }

func (m *memStorage) put(key string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = size
}

type testServer struct {
	handler http.Handler
	store   *memStorage
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	conn := filepath.Join(t.TempDir(), "files.db") + "?_pragma=busy_timeout(5000)"
	database, err := db.Init("sqlite", conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	store := &memStorage{objects: map[string]int64{}}
	a := &app.App{
		Cfg: &config.Config{
			AppEnv:       "test",
			AppVersion:   "9.9.9",
			MaxBodyBytes: 1 << 10,
		},
		DB:            database,
		FileService:   service.NewFileService(repository.NewSQLFileRepository(database), store, 5*time.Minute),
		UploadLimiter: limiter,
	}

	return &testServer{handler: SetupRoutes(a), store: store}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func (s *testServer) presign(t *testing.T, name string) map[string]any {
	t.Helper()
	rec, out := s.do(t, http.MethodPost, "/files/presign-upload",
		fmt.Sprintf(`{"originalFilename": %q, "contentType": "application/pdf"}`, name))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return out
}

func TestSystemRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec, out := s.do(t, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"version": "9.9.9"}, out)

	rec, out = s.do(t, http.MethodGet, "/env", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"env": "test"}, out)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "filedrop")

	rec, _ = s.do(t, http.MethodGet, "/robots.txt", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/nope.js", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresignUploadValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty filename", `{"originalFilename": "", "contentType": "text/plain"}`, "originalFilename is required"},
		{"blank filename", `{"originalFilename": "   ", "contentType": "text/plain"}`, "originalFilename is required"},
		{"numeric filename", `{"originalFilename": 12, "contentType": "text/plain"}`, "originalFilename is required"},
		{"missing content type", `{"originalFilename": "a.txt"}`, "contentType is required"},
		{"empty body", ``, "originalFilename is required"},
		{"malformed json", `{"originalFilename":`, "invalid JSON body"},
		{"body too large", `{"originalFilename": "` + strings.Repeat("a", 2048) + `"}`, "request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := s.do(t, http.MethodPost, "/files/presign-upload", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, map[string]any{"error": tt.wantErr}, out)
		})
	}
}

func TestFileLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	ticket := s.presign(t, "my file (1).pdf")
	fileID := ticket["fileId"].(string)
	key := ticket["s3Key"].(string)
	assert.Equal(t, "uploads/"+fileID+"/my_file__1_.pdf", key)
	assert.Equal(t, "https://s3.test/bucket/"+key+"?put", ticket["uploadUrl"])
	assert.NotZero(t, ticket["expiresAt"])

	// Metadata while uploading
	rec, meta := s.do(t, http.MethodGet, "/files/"+fileID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UPLOADING", meta["status"])
	assert.Equal(t, float64(0), meta["downloadCount"])
	assert.Equal(t, "my file (1).pdf", meta["originalFilename"])
	assert.NotContains(t, meta, "sizeBytes")

	// Share before completion
	rec, out := s.do(t, http.MethodPost, "/files/"+fileID+"/share", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "not ready: UPLOADING", out["error"])

	// Complete before the object exists is an upstream failure
	rec, out = s.do(t, http.MethodPost, "/files/complete", `{"fileId": "`+fileID+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, out["error"], "NotFound")

	s.store.put(key, 1234)

	rec, out = s.do(t, http.MethodPost, "/files/complete", `{"fileId": "`+fileID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{
		"ok":          true,
		"fileId":      fileID,
		"sizeBytes":   float64(1234),
		"contentType": "application/pdf",
	}, out)

	rec, out = s.do(t, http.MethodPost, "/files/complete", `{"fileId": "`+fileID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid status: READY", out["error"])

	rec, out = s.do(t, http.MethodPost, "/files/"+fileID+"/share", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fileID, out["fileId"])
	assert.Equal(t, "https://s3.test/bucket/"+key+"?get", out["downloadUrl"])
	assert.NotZero(t, out["expiresAt"])

	rec, meta = s.do(t, http.MethodGet, "/files/"+fileID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", meta["status"])
	assert.Equal(t, float64(1234), meta["sizeBytes"])
	assert.Equal(t, float64(1), meta["downloadCount"])
}

func TestMetadataIsStable(t *testing.T) {
	s := newTestServer(t, nil)
	fileID := s.presign(t, "a.pdf")["fileId"].(string)

	first, _ := s.do(t, http.MethodGet, "/files/"+fileID, "")
	second, _ := s.do(t, http.MethodGet, "/files/"+fileID, "")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestUnknownFile(t *testing.T) {
	s := newTestServer(t, nil)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/files/unknown", ""},
		{http.MethodPost, "/files/unknown/share", ""},
		{http.MethodPost, "/files/complete", `{"fileId": "unknown"}`},
	} {
		rec, out := s.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
		assert.Equal(t, map[string]any{"error": "file not found"}, out)
	}
}

func TestUnknownFilesPath(t *testing.T) {
	s := newTestServer(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/files/abc/share"},
		{http.MethodPut, "/files/abc"},
		{http.MethodPost, "/files/abc/download"},
		{http.MethodDelete, "/files/abc/extra/segments"},
	} {
		rec, out := s.do(t, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method+" "+tc.path)
		assert.Equal(t, map[string]any{"error": "not found"}, out, tc.method+" "+tc.path)
	}
}

func TestCompleteRequiresFileID(t *testing.T) {
	s := newTestServer(t, nil)

	rec, out := s.do(t, http.MethodPost, "/files/complete", `{"fileId": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fileId is required", out["error"])

	rec, _ = s.do(t, http.MethodGet, "/files/%20", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConcurrentShares(t *testing.T) {
	s := newTestServer(t, nil)
	ticket := s.presign(t, "a.pdf")
	fileID := ticket["fileId"].(string)
	s.store.put(ticket["s3Key"].(string), 10)

	rec, _ := s.do(t, http.MethodPost, "/files/complete", `{"fileId": "`+fileID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	const n = 15
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/files/"+fileID+"/share", nil)
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	_, meta := s.do(t, http.MethodGet, "/files/"+fileID, "")
	assert.Equal(t, float64(n), meta["downloadCount"])
}

func TestUploadRateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(2, time.Minute))

	s.presign(t, "a.pdf")
	s.presign(t, "b.pdf")

	rec, out := s.do(t, http.MethodPost, "/files/presign-upload", `{"originalFilename": "c.pdf", "contentType": "application/pdf"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too many requests", out["error"])
}
