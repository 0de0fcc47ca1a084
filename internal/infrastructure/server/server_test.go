package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmiclibrary/core/internal/adapters/repository"
	"github.com/cosmiclibrary/core/internal/infrastructure/config"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	backgrounds := filepath.Join(dir, "backgrounds")
	require.NoError(t, os.MkdirAll(backgrounds, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(backgrounds, "local1.svg"), []byte("<svg/>"), 0o644))

	return &config.Config{
		App:         config.AppConfig{Name: "Cosmic Library", Version: "1.0.0", Environment: "test"},
		Server:      config.ServerConfig{Port: 8080, Host: "127.0.0.1", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Storage:     config.StorageConfig{Path: filepath.Join(dir, "database.json")},
		Auth:        config.AuthConfig{LibraryUsers: "admin:secret", AdminUsername: "admin"},
		Backgrounds: config.BackgroundsConfig{Dir: backgrounds},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: "*",
			RateLimitRequests:  1000,
			RateLimitWindow:    time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *repository.DocumentStore) {
	t.Helper()
	log := logger.NewNop()
	store := repository.NewDocumentStore(cfg.Storage, log)

	srv, err := New(cfg, store, log)
	require.NoError(t, err)
	return srv, store
}

func serve(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRoutesAreWired(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := serve(srv, http.MethodPost, "/api/books", `{"title":"Dune","author":"Frank Herbert","genre":"SF"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Dune"`)

	rec = serve(srv, http.MethodPost, "/api/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"env"`)

	rec = serve(srv, http.MethodGet, "/api/check-admin?username=admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isAdmin":true}`, rec.Body.String())
}

func TestDebugModeIsOffInProduction(t *testing.T) {
	cfg := testConfig(t)
	cfg.App.Debug = true

	cfg.App.Environment = "development"
	srv, _ := newTestServer(t, cfg)
	assert.True(t, srv.echo.Debug)

	cfg.App.Environment = "production"
	srv, _ = newTestServer(t, cfg)
	assert.False(t, srv.echo.Debug)

	cfg.App.Debug = false
	cfg.App.Environment = "development"
	srv, _ = newTestServer(t, cfg)
	assert.False(t, srv.echo.Debug)
}

func TestMiddlewareHeaders(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := serve(srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	assert.Equal(t, "DENY", rec.Header().Get(echo.HeaderXFrameOptions))
}

func TestErrorBodyShape(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := serve(srv, http.MethodDelete, "/api/books?id=42", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"book not found"}`, rec.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := serve(srv, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, http.MethodGet, "/health/detailed", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Storage struct {
				Status string `json:"status"`
				Books  int    `json:"books"`
			} `json:"storage"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks.Storage.Status)
	assert.Equal(t, 0, body.Checks.Storage.Books)
}

func TestReadyFailsWhenDocumentDirectoryIsMissing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Path = filepath.Join(t.TempDir(), "gone", "database.json")
	srv, _ := newTestServer(t, cfg)

	rec := serve(srv, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "storage_not_writable")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))
	serve(srv, http.MethodGet, "/api/books", "")

	rec := serve(srv, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "http_request_duration_seconds")
	assert.Contains(t, body, "document_store_write_failures_total 0")
	assert.Contains(t, body, "document_store_recoveries_total 1")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	srv, _ := newTestServer(t, cfg)

	rec := serve(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticBackgrounds(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := serve(srv, http.MethodGet, "/backgrounds/local1.svg", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<svg/>", rec.Body.String())

	rec = serve(srv, http.MethodGet, "/backgrounds/missing.svg", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSwaggerDocs(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := serve(srv, http.MethodGet, "/docs/doc.json", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cosmic Library API")
	assert.Contains(t, rec.Body.String(), "/check-admin")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimitRequests = 2
	cfg.Security.RateLimitWindow = time.Hour
	srv, _ := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/health", "").Code)
	}

	rec := serve(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}
