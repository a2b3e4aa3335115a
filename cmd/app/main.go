package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creatememe/internal/cache"
	"creatememe/internal/config"
	"creatememe/internal/db"
	httpServer "creatememe/internal/http"
	"creatememe/internal/http/handlers"
	"creatememe/internal/http/middleware"
	"creatememe/internal/logger"
	"creatememe/internal/migrations"
	"creatememe/internal/repository"
	"creatememe/internal/scheduler"
	"creatememe/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	dbPool := db.Connect(ctx, cfg.DatabaseURL)
	defer dbPool.Close()

	if cfg.DBAutoMigrate {
		applied, err := db.Migrate(ctx, dbPool, migrations.FS)
		if err != nil {
			logger.Fatal("migrations failed", "error", err)
		}
		logger.Info("migrations applied", "files", applied)
	}

	rdb, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory stores", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
		middleware.InitRedisRateLimiter(rdb)
	}

	h, sessions, err := httpServer.NewHandler(cfg, dbPool, rdb)
	if err != nil {
		logger.Fatal("failed to build services", "error", err)
	}

	hub := ws.NewHub()
	r := httpServer.NewRouter(httpServer.Deps{
		Config:   cfg,
		Handler:  h,
		Health:   handlers.NewHealthHandler(dbPool, rdb, cfg.AppVersion),
		Sessions: sessions,
		Accounts: repository.NewUserRepository(dbPool),
		Hub:      hub,
	})

	var sched *scheduler.Scheduler
	if cfg.CronSchedule != "" {
		sched, err = scheduler.New(cfg.CronSchedule, h.Subscriptions)
		if err != nil {
			logger.Fatal("invalid CRON_SCHEDULE", "error", err)
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "env", cfg.AppEnv, "network", cfg.Solana.Network)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	hub.Close()

	logger.Info("server exited")
}
