package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jgirmay/learnpath/internal/app"
	"github.com/jgirmay/learnpath/internal/health"
	"github.com/jgirmay/learnpath/pkg/config"
	"github.com/jgirmay/learnpath/pkg/database"
	"github.com/jgirmay/learnpath/pkg/http/admin"
	"github.com/jgirmay/learnpath/pkg/http/handlers"
	"github.com/jgirmay/learnpath/pkg/logging"
	"github.com/jgirmay/learnpath/pkg/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Get().Fatal("failed to load configuration", zap.Error(err))
	}

	if err := logging.Init(logging.LogLevel(cfg.Logging.Level), cfg.Logging.Format); err != nil {
		logging.Get().Fatal("failed to initialize logger", zap.Error(err))
	}
	logger := logging.Get()
	defer logger.Sync()

	logger.Info("[INIT] configuration loaded", zap.Stringer("config", cfg))

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("[INIT] database connection established", zap.String("type", cfg.Database.Type))

	registry := repository.NewRegistry(db)
	if err := registry.Initialize(); err != nil {
		logger.Fatal("failed to initialize repository registry", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	system, err := app.Load(ctx, registry, cfg.Pipeline, logger)
	if err != nil {
		logger.Fatal("failed to bootstrap recommendation system", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to access connection pool", zap.Error(err))
	}
	checker := health.NewHealthChecker(sqlDB, system)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apiServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handlers.NewRouter(system, checker, logger.Named("http")),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	servers := []*http.Server{apiServer}
	if cfg.Server.AdminPort > 0 {
		servers = append(servers, &http.Server{
			Addr:         cfg.Server.AdminAddr(),
			Handler:      admin.NewRouter(health.NewHealthHandler(checker)),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		srv := srv
		go func() {
			logger.Info("[INFO] starting HTTP server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("[SHUTDOWN] received signal, initiating graceful shutdown")
	case err := <-errCh:
		logger.Error("server startup error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("[SHUTDOWN] server shutdown error", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}

	logger.Info("[SHUTDOWN] closing database connection")
	if err := registry.Close(); err != nil {
		logger.Warn("[SHUTDOWN] database close error", zap.Error(err))
	}

	logger.Info("[SHUTDOWN] graceful shutdown complete")
	if len(errCh) > 0 {
		os.Exit(1)
	}
}
