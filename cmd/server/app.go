package main

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/diewo77/nats-backoffice/auth"
	"github.com/diewo77/nats-backoffice/gate"
	"github.com/diewo77/nats-backoffice/httpx"
	"github.com/diewo77/nats-backoffice/internal/config"
	"github.com/diewo77/nats-backoffice/internal/middleware"
	"github.com/diewo77/nats-backoffice/internal/policy"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	cfg       *config.Config
	log       *zap.Logger
	routerCfg *policy.RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, cfg *config.Config, log *zap.Logger, routerCfg *policy.RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		cfg:       cfg,
		log:       log,
		routerCfg: routerCfg,
	}
	app.setupRoutes()

	// Outermost first: panics, then request logging, then the session.
	var h http.Handler = routerCfg.Sessions.Middleware(app.mux)
	h = middleware.RequestLogger(log, cfg.RateLimit.TrustProxy)(h)
	h = middleware.Recover(log)(h)
	app.handler = h
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	ah := a.routerCfg.AuthHandler
	lh := a.routerCfg.LeadHandler
	ph := a.routerCfg.PortfolioHandler
	uh := a.routerCfg.UploadHandler

	contactLimit := middleware.NewRateLimiter(a.cfg.RateLimit.ContactPerMinute, a.cfg.RateLimit.TrustProxy)
	loginLimit := middleware.NewRateLimiter(a.cfg.RateLimit.LoginPerMinute, a.cfg.RateLimit.TrustProxy)

	// Public
	a.mux.Handle("POST /contact", contactLimit.Middleware(http.HandlerFunc(lh.Contact)))
	a.mux.Handle("POST /login", loginLimit.Middleware(http.HandlerFunc(ah.Login)))
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.HandleFunc("GET /portfolio", ph.List)
	a.mux.HandleFunc("GET /portfolio/{id}", ph.Get)
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET "+uploadsRoute(a.cfg.Upload.PublicPrefix), a.uploads())

	a.mux.Handle("GET /me", auth.RequireSession(http.HandlerFunc(ah.Me)))

	// Leads
	a.mux.Handle("GET /leads", a.requirePermission(policy.ResourceLead, gate.ActionList, lh.List))
	a.mux.Handle("POST /leads", a.requirePermission(policy.ResourceLead, gate.ActionCreate, lh.Create))
	a.mux.Handle("GET /leads/{id}", a.requirePermission(policy.ResourceLead, gate.ActionView, lh.Get))
	a.mux.Handle("PATCH /leads/{id}", a.requirePermission(policy.ResourceLead, gate.ActionUpdate, lh.Update))
	a.mux.Handle("DELETE /leads/{id}", a.requirePermission(policy.ResourceLead, gate.ActionDelete, lh.Delete))

	// Portfolio writes
	a.mux.Handle("POST /portfolio", a.requirePermission(policy.ResourcePortfolio, gate.ActionCreate, ph.Create))
	a.mux.Handle("PUT /portfolio/{id}", a.requirePermission(policy.ResourcePortfolio, gate.ActionUpdate, ph.Update))
	a.mux.Handle("DELETE /portfolio/{id}", a.requirePermission(policy.ResourcePortfolio, gate.ActionDelete, ph.Delete))

	a.mux.Handle("POST /upload", a.requirePermission(policy.ResourceUpload, gate.ActionCreate, uh.Upload))
}

func (a *App) requirePermission(resourceType string, action gate.Action, h http.HandlerFunc) http.Handler {
	return a.routerCfg.AuthGate.RequirePermission(resourceType, action)(h)
}

// uploadsRoute turns "/uploads/portfolio" into the subtree pattern "/uploads/portfolio/".
func uploadsRoute(prefix string) string {
	return strings.TrimSuffix(path.Clean("/"+prefix), "/") + "/"
}

// uploads serves stored images without directory listings.
func (a *App) uploads() http.Handler {
	route := uploadsRoute(a.cfg.Upload.PublicPrefix)
	fs := http.FileServer(http.Dir(a.cfg.Upload.Dir))
	return http.StripPrefix(route, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}))
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
