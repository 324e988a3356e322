package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recipeapp/internal/config"
	"recipeapp/internal/database"
	"recipeapp/internal/media"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		DatabaseDriver: "sqlite",
		JWTSecret:      "test_jwt_secret",
		TokenTTL:       time.Hour,
		MediaBackend:   "fs",
		MediaRoot:      "unused",
		MediaURL:       "/media/",
		MaxUploadBytes: 1 << 20,
		CORSOrigins:    "*",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.Disabled)

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	return NewApp(cfg, Deps{DB: db, Store: media.NewFSStore(afero.NewMemMapFs())})
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t, testConfig())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, testConfig())

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "recipeapp_http_requests_total")
}

func TestUnauthenticatedAccess(t *testing.T) {
	app := newTestApp(t, testConfig())

	for _, path := range []string{"/api/recipe/recipes", "/api/recipe/tags", "/api/recipe/ingredients", "/api/user/me"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimit = 2
	app := newTestApp(t, cfg)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/user/token", bytes.NewBufferString(`{"email":"x@test.com","password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, statuses)
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	app := newTestApp(t, testConfig())
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"message":"Internal server error"}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "process keeps serving after a panic")
}

func TestStaticPrefix(t *testing.T) {
	cfg := testConfig()
	prefix, ok := staticPrefix(cfg)
	assert.True(t, ok)
	assert.Equal(t, "/media", prefix)

	cfg.MediaURL = "https://cdn.example.com/media/"
	_, ok = staticPrefix(cfg)
	assert.False(t, ok)

	cfg.MediaURL = "/media/"
	cfg.MediaBackend = "s3"
	_, ok = staticPrefix(cfg)
	assert.False(t, ok)
}

func TestMediaServedWithNosniff(t *testing.T) {
	cfg := testConfig()
	cfg.MediaRoot = t.TempDir()
	dir := filepath.Join(cfg.MediaRoot, "uploads", "recipe")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644))
	app := newTestApp(t, cfg)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/media/uploads/recipe/a.png", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
