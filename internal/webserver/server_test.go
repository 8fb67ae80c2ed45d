package webserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/config"
)

func testServer(t *testing.T) (*WebServer, *config.AppConfig) {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.System.Workdir = t.TempDir()
	cfg.Web.Port = 8088
	return Init(&cfg), &cfg
}

func TestApiRoutesAndRequestID(t *testing.T) {
	s, _ := testServer(t)
	ApiGET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	ApiPOST("/ping", func(c echo.Context) error { return c.NoContent(http.StatusAccepted) })

	rec := httptest.NewRecorder()
	s.Root().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)

	rec = httptest.NewRecorder()
	s.Root().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ping", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	assert.Equal(t, "0.0.0.0:8088", s.Addr())
}

func TestRecoverFromPanic(t *testing.T) {
	s, _ := testServer(t)
	ApiGET("/boom", func(c echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	s.Root().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServesUploads(t *testing.T) {
	s, cfg := testServer(t)
	require.NoError(t, os.MkdirAll(cfg.GetUploadDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.GetUploadDir(), "1-a.txt"), []byte("hello"), 0o644))

	rec := httptest.NewRecorder()
	s.Root().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/1-a.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Root().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidator(t *testing.T) {
	s, _ := testServer(t)
	type payload struct {
		Name string `validate:"required"`
	}
	assert.Error(t, s.Root().Validator.Validate(&payload{}))
	assert.NoError(t, s.Root().Validator.Validate(&payload{Name: "x"}))
}
