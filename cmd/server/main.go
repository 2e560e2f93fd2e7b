package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lpiteam/autoorder/internal/api"
	"github.com/lpiteam/autoorder/internal/cache"
	"github.com/lpiteam/autoorder/internal/config"
	"github.com/lpiteam/autoorder/internal/service"
	"github.com/lpiteam/autoorder/internal/settings"
	"github.com/lpiteam/autoorder/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	summaryCache, err := cache.NewSummaryCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("summary cache unavailable, continuing without")
		summaryCache = cache.NewNoopSummaryCache()
	}

	store := settings.NewStore()
	persist := settings.NewFilePersistence(cfg.App.SettingsPath)
	svc := service.NewOrderService(store, summaryCache, persist)
	if err := svc.LoadPersistedSettings(); err != nil {
		logger.Log.Warn().Err(err).Msg("could not restore persisted settings, starting with defaults")
	}

	router := api.NewRouter(svc, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UrgentRatioPct: cfg.App.UrgentRatioPct,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}
