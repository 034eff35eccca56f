package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/nats-backoffice/internal/cache"
	"github.com/diewo77/nats-backoffice/internal/config"
	"github.com/diewo77/nats-backoffice/internal/models"
	"github.com/diewo77/nats-backoffice/internal/policy"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	*App
	db  *gorm.DB
	cfg *config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	cfg := &config.Config{
		Auth:      config.AuthConfig{SessionSecret: "test-secret", SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost},
		Upload:    config.UploadConfig{Dir: filepath.Join(t.TempDir(), "portfolio"), PublicPrefix: "/uploads/portfolio", MaxBytes: 5 << 20},
		RateLimit: config.RateLimitConfig{ContactPerMinute: 10, LoginPerMinute: 3},
	}
	rc := policy.NewRouterConfig(policy.Deps{DB: db, Config: cfg, Log: zap.NewNop(), Cache: cache.NewMemory(), CacheTTL: time.Minute})
	return &testApp{App: NewApp(db, cfg, zap.NewNop(), rc), db: db, cfg: cfg}
}

func (a *testApp) user(t *testing.T, email, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, a.db.Create(&models.User{Email: email, Name: role, PasswordHash: string(hash), Role: role}).Error)
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	w := a.do(http.MethodPost, "/login", `{"email":"`+email+`","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (a *testApp) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app := newTestApp(t)
	n := 0
	count := func(*gorm.DB) { n++ }
	require.NoError(t, app.db.Callback().Query().Before("gorm:query").Register("test:count_query", count))
	require.NoError(t, app.db.Callback().Create().Before("gorm:create").Register("test:count_create", count))
	require.NoError(t, app.db.Callback().Delete().Before("gorm:delete").Register("test:count_delete", count))

	routes := []struct{ method, path string }{
		{http.MethodGet, "/leads"},
		{http.MethodPost, "/leads"},
		{http.MethodGet, "/leads/x"},
		{http.MethodPatch, "/leads/x"},
		{http.MethodDelete, "/leads/x"},
		{http.MethodPost, "/portfolio"},
		{http.MethodPut, "/portfolio/x"},
		{http.MethodDelete, "/portfolio/x"},
		{http.MethodPost, "/upload"},
		{http.MethodGet, "/me"},
	}
	for _, rt := range routes {
		w := app.do(rt.method, rt.path, `{}`, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
		require.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	}
	require.Zero(t, n, "anonymous requests must not reach the store")
}

func TestLeadFlow(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "staff@nats.test", models.RoleStaff)

	w := app.do(http.MethodPost, "/contact", `{"name":"Ana","email":"ana@x.test","phone":"+33","service":"cctv","message":"hi"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token := app.login(t, "staff@nats.test")
	w = app.do(http.MethodGet, "/leads?status=new", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Leads []models.Lead `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Leads, 1)
	id := listed.Leads[0].ID

	w = app.do(http.MethodPatch, "/leads/"+id, `{"status":"contacted"}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"status":"contacted"`)

	w = app.do(http.MethodGet, "/leads?status=bogus", "", token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodDelete, "/leads/"+id, "", token)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(http.MethodGet, "/leads/"+id, "", token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "staff@nats.test")
}

func TestUnknownRoleForbidden(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "guest@nats.test", "viewer")
	token := app.login(t, "guest@nats.test")

	w := app.do(http.MethodGet, "/leads", "", token)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
}

func TestLoginRateLimited(t *testing.T) {
	app := newTestApp(t)
	var last int
	for i := 0; i < app.cfg.RateLimit.LoginPerMinute+1; i++ {
		last = app.do(http.MethodPost, "/login", `{"email":"nobody@nats.test","password":"x"}`, "").Code
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}

func TestPortfolioPublicListAndUploads(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "admin@nats.test", models.RoleAdmin)
	token := app.login(t, "admin@nats.test")

	w := app.do(http.MethodGet, "/portfolio", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"portfolio":[]}`, w.Body.String())

	w = app.do(http.MethodPost, "/portfolio", `{"title":"Gate","category":"gate","description":"d","image":"/uploads/portfolio/1_g.png"}`, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The create must invalidate the cached empty listing.
	w = app.do(http.MethodGet, "/portfolio", "", "")
	require.Contains(t, w.Body.String(), `"title":"Gate"`)

	require.NoError(t, os.MkdirAll(app.cfg.Upload.Dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(app.cfg.Upload.Dir, "1_g.png"), []byte("png"), 0o644))
	w = app.do(http.MethodGet, "/uploads/portfolio/1_g.png", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "png", w.Body.String())

	w = app.do(http.MethodGet, "/uploads/portfolio/", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	sqlDB, err := app.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	w = app.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "degraded"))
}
