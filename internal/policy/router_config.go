package policy

import (
	"time"

	"github.com/diewo77/nats-backoffice/auth"
	"github.com/diewo77/nats-backoffice/internal/cache"
	"github.com/diewo77/nats-backoffice/internal/config"
	"github.com/diewo77/nats-backoffice/internal/handlers"
	"github.com/diewo77/nats-backoffice/internal/services"
	"github.com/diewo77/nats-backoffice/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	// AuthGate provides authorization checks and middleware
	AuthGate *AuthGate
	// Sessions issues and verifies session tokens
	Sessions *auth.Manager

	AuthHandler      *handlers.AuthHandler
	LeadHandler      *handlers.LeadHandler
	PortfolioHandler *handlers.PortfolioHandler
	UploadHandler    *handlers.UploadHandler
}

// Deps are the collaborators built by main.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *zap.Logger
	// Cache backs public portfolio listings; nil disables caching.
	Cache    cache.Store
	CacheTTL time.Duration
	// Store receives uploads; defaults to a local directory from Config.Upload.
	Store storage.Store
}

// NewRouterConfig wires services, handlers, sessions and the gate together.
func NewRouterConfig(d Deps) *RouterConfig {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := d.Config
	dev := cfg.App.Dev

	users := services.NewUserService(d.DB)
	sessions := auth.NewManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL, users.LookupSession)
	sessions.SetSecureCookie(cfg.Auth.SecureCookie)

	portfolio := services.NewPortfolioService(d.DB)
	if d.Cache != nil {
		portfolio.WithCache(d.Cache, d.CacheTTL, log)
	}

	store := d.Store
	if store == nil {
		store = storage.NewLocal(cfg.Upload.Dir, cfg.Upload.PublicPrefix)
	}

	return &RouterConfig{
		AuthGate:         NewAuthGate(NewRoleResolver(DefaultProfiles())),
		Sessions:         sessions,
		AuthHandler:      handlers.NewAuthHandler(users, sessions, log, dev),
		LeadHandler:      handlers.NewLeadHandler(services.NewLeadService(d.DB), log, dev),
		PortfolioHandler: handlers.NewPortfolioHandler(portfolio, log, dev),
		UploadHandler:    handlers.NewUploadHandler(services.NewUploadService(store, cfg.Upload.MaxBytes), log, dev),
	}
}
