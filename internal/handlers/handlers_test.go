package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		ping       func() error
		wantCode   int
		wantStatus string
	}{
		{"healthy", func() error { return nil }, fiber.StatusOK, "ok"},
		{"db down", func() error { return errors.New("connection refused") }, fiber.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(tt.ping).Check)

			resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var got dto.HealthResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.NotEmpty(t, got.Timestamp)
		})
	}
}

func loginApp(t *testing.T, issuer *auth.JWTIssuer) (*fiber.App, *services.AuditService) {
	t.Helper()
	db := testutil.NewDB(t, &models.AuditLog{})
	audit := services.NewAuditService(db)
	app := fiber.New()
	app.Post("/login", NewAuthHandler(auth.NewStaticTokenVerifier("s3cret"), issuer, audit).Login)
	return app, audit
}

func loginRequest(password string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"password":"`+password+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	app, audit := loginApp(t, auth.NewJWTIssuer("jwt-secret", time.Hour))

	resp, body := do(t, app, loginRequest("s3cret"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var got dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.ExpiresAt.After(time.Now()))

	p, err := auth.NewJWTVerifier("jwt-secret").Verify(context.Background(), got.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Subject)

	logs, total, err := audit.List(context.Background(), services.AuditFilter{ActionType: services.ActionLogin}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Contains(t, logs[0].Details, "static")
	assert.Equal(t, "static", logs[0].AuthMethod)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		issuer   *auth.JWTIssuer
		req      *http.Request
		wantCode int
	}{
		{"wrong password", auth.NewJWTIssuer("k", time.Hour), loginRequest("guess"), fiber.StatusUnauthorized},
		{"empty password", auth.NewJWTIssuer("k", time.Hour), loginRequest(""), fiber.StatusBadRequest},
		{"sessions disabled", nil, loginRequest("s3cret"), fiber.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, audit := loginApp(t, tt.issuer)
			resp, _ := do(t, app, tt.req)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			_, total, err := audit.List(context.Background(), services.AuditFilter{}, 1, 10)
			require.NoError(t, err)
			assert.Zero(t, total)
		})
	}
}

func TestUploadServe(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	dir := filepath.Join(store.Root, storage.FolderReviews)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png-bytes"), 0o644))

	app := fiber.New()
	app.Get("/uploads/*", NewUploadHandler(store).Serve)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/uploads/reviews/a.png", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, uploadCacheControl, resp.Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t, "nosniff", resp.Header.Get(fiber.HeaderXContentTypeOptions))

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/uploads/reviews/missing.png", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/uploads/reviews", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "directories are not served")
}

func TestAuditLogsEndpoint(t *testing.T) {
	db := testutil.NewDB(t, &models.AuditLog{}, &models.SystemLog{})
	audit := services.NewAuditService(db)
	ctx := context.Background()
	audit.Record(ctx, services.AuditEntry{Action: services.ActionCreate, EntityType: "blog_post", EntityID: 1})
	audit.Record(ctx, services.AuditEntry{Action: services.ActionApprove, EntityType: "review_submission", EntityID: 2})
	audit.Record(ctx, services.AuditEntry{Action: services.ActionReject, EntityType: "review_submission", EntityID: 3})

	app := fiber.New()
	h := NewLogHandler(audit)
	app.Get("/audit-logs", h.AuditLogs)
	app.Get("/system-logs", h.SystemLogs)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/audit-logs?entity_type=review_submission&limit=1", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got struct {
		Logs       []models.AuditLog `json:"logs"`
		Pagination dto.Pagination    `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Logs, 1)
	assert.Equal(t, "review_submission", got.Logs[0].EntityType)
	assert.EqualValues(t, 2, got.Pagination.Total)
	assert.EqualValues(t, 2, got.Pagination.TotalPages)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/system-logs", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSiteEndpoints(t *testing.T) {
	registry := site.NewRegistry(site.Info{
		BusinessName: "Sparkle Co",
		Categories:   []string{"Cleaning"},
		Services:     []site.Service{{Slug: "deep-clean", Name: "Deep Clean", Category: "Cleaning"}},
	})
	h := NewSiteHandler(registry)
	app := fiber.New()
	app.Get("/site", h.Info)
	app.Get("/services", h.Services)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/site", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"business_name":"Sparkle Co"`)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/services", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"slug":"deep-clean"`)
	assert.Contains(t, string(body), `"categories":["Cleaning"]`)
}
