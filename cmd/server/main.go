package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eternisai/fxinsight/internal/config"
	"github.com/eternisai/fxinsight/internal/logger"
	"github.com/eternisai/fxinsight/internal/metrics"
	"github.com/eternisai/fxinsight/internal/proxy"
	"github.com/eternisai/fxinsight/internal/upstream"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()

	log := logger.New(logger.FromConfig(config.AppConfig.LogLevel, config.AppConfig.LogFormat))
	slog.SetDefault(log.Logger)

	log.Info("setting gin mode", slog.String("mode", config.AppConfig.GinMode))
	gin.SetMode(config.AppConfig.GinMode)

	generation := config.AppConfig.Generation
	client := upstream.NewClient(upstream.Options{
		BaseURL:        config.AppConfig.OpenAIBaseURL,
		DefaultModel:   generation.DefaultModel,
		Temperature:    generation.Temperature,
		ResponseFormat: upstream.ResponseFormat(generation.ResponseFormat),
	}, log)

	m := metrics.New()
	router := proxy.NewRouter(config.AppConfig, log, client, m)

	port := ":" + config.AppConfig.Port
	srv := &http.Server{
		Addr:              port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("server listening",
		slog.String("addr", "http://localhost"+port),
		slog.String("static_dir", config.AppConfig.StaticDir),
		slog.String("default_model", generation.DefaultModel),
		slog.String("response_format", string(generation.ResponseFormat)))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), config.AppConfig.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server exited")
}
