// Package main boots the PDF split service: configuration, logging,
// tracing, the HTTP server, and the background cleanup sweeper.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/docslice/go-pdf-splitter/internal/config"
	httpapi "github.com/docslice/go-pdf-splitter/internal/http"
	"github.com/docslice/go-pdf-splitter/internal/observability"
	"github.com/docslice/go-pdf-splitter/internal/pdf"
	"github.com/docslice/go-pdf-splitter/internal/services"
	"github.com/docslice/go-pdf-splitter/internal/store"
	"github.com/docslice/go-pdf-splitter/internal/sweeper"
	"github.com/docslice/go-pdf-splitter/internal/sysutil"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetupLogger(cfg.LogPretty)
	sysutil.SetLogLevel(cfg.LogLevel)

	if err := sysutil.EnsureDirs(cfg.UploadDir, cfg.OutputDir); err != nil {
		log.Fatal().Err(err).Msg("create storage directories")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, httpapi.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("init opentelemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("opentelemetry shutdown")
		}
	}()

	registry := store.NewMemoryRegistry()
	limits := store.NewMemoryRateLimiter(cfg.RateLimitWindow)
	svc := &services.SplitService{
		Registry:    registry,
		Splitter:    pdf.NewSplitter(),
		UploadDir:   cfg.UploadDir,
		OutputDir:   cfg.OutputDir,
		FileTTL:     cfg.FileTTL,
		DownloadTTL: cfg.DownloadTTL,
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, svc, limits, cfg)

	sw := &sweeper.Sweeper{
		Registry:   registry,
		RateLimits: limits,
		Interval:   cfg.CleanupInterval,
		Logger:     &log.Logger,
	}
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sw.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", httpapi.Version).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	<-sweeperDone
	log.Info().Msg("server stopped")
}
