package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"financeflow/internal/config"
	"financeflow/internal/handlers"
	"financeflow/internal/logging"
	"financeflow/internal/repository"
	"financeflow/internal/service"
	"financeflow/internal/session"
	"financeflow/internal/state"
	"financeflow/internal/syncer"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	logger := logging.SetupLogger(cfg.LogLevel)

	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := repository.Open(ctx, repository.Config{
		Path:          cfg.DBPath,
		BusyTimeout:   cfg.DBBusyTimeout,
		PollInterval:  cfg.ChangePollInterval,
		LeaseTTL:      cfg.LeaderLeaseTTL,
		RenewInterval: cfg.LeaderRenewInterval,
	}, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("path", cfg.DBPath), slog.Any("err", err))
		os.Exit(1)
	}
	defer store.Close()

	cache := state.NewCache(store, logger)
	defer cache.Close()
	svc := service.NewFinanceService(store, cache, logger)
	sessions := session.NewMemoryProvider(nil)

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go session.Bind(runCtx, sessions, svc, logger)

	var leader syncer.Leader
	if e := store.Elector(); e != nil {
		leader = e
	}
	runner := syncer.NewRunner(store, leader, syncer.Unavailable{}, cfg.SyncInterval, logger)
	go runner.Run(runCtx)

	handler := handlers.NewFinanceHTTPHandler(svc, sessions, logger)

	r := gin.Default()
	r.Use(handlers.CORS(cfg.CORSOrigins))
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    "127.0.0.1:" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", slog.Any("err", err))
	}
	stop()
	logger.Info("Server exiting")
}
