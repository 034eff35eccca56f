package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/nats-backoffice/internal/cache"
	"github.com/diewo77/nats-backoffice/internal/config"
	"github.com/diewo77/nats-backoffice/internal/db"
	"github.com/diewo77/nats-backoffice/internal/logging"
	"github.com/diewo77/nats-backoffice/internal/policy"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Create the admin account and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.App.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	dbConn, err := db.Open(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(dbConn); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}()

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg, logger); err != nil {
			return err
		}
		logger.Info("migrations completed")
		return nil
	}

	if *seedOnlyFlag {
		if err := db.AutoMigrate(dbConn); err != nil {
			return err
		}
		created, err := db.SeedAdmin(dbConn, cfg.Seed, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		logger.Info("seed completed", zap.String("email", cfg.Seed.AdminEmail), zap.Bool("created", created))
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := db.Migrate(dbConn, cfg, logger); err != nil {
		return err
	}

	if cfg.Blob.Token != "" {
		logger.Info("blob token configured")
	} else {
		logger.Info("blob token not set, uploads stay on local disk", zap.String("dir", cfg.Upload.Dir))
	}

	store, closeCache, err := openCache(cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	routerCfg := policy.NewRouterConfig(policy.Deps{
		DB:       dbConn,
		Config:   cfg,
		Log:      logger,
		Cache:    store,
		CacheTTL: cfg.Cache.TTL,
	})
	app := NewApp(dbConn, cfg, logger, routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// openCache dials redis when REDIS_ADDR is set and keeps listings in process otherwise.
func openCache(cfg config.CacheConfig, logger *zap.Logger) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("portfolio cache in memory")
		return cache.NewMemory(), func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	logger.Info("portfolio cache on redis", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedis(client, "nats:"), func() { _ = client.Close() }, nil
}
