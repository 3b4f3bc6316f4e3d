package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"conversion-insights-go/internal/cache"
	"conversion-insights-go/internal/config"
	"conversion-insights-go/internal/features"
	apihttp "conversion-insights-go/internal/http"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/metrics"
	"conversion-insights-go/internal/model"
	"conversion-insights-go/internal/processor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("invalid configuration")
	}
	log := logger.NewWithOptions(logger.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Service:     "conversion-api",
	})
	log.Info("starting service")

	// no model, no traffic
	log.WithField("artifact_path", cfg.ArtifactPath).Info("loading model artifact")
	art, err := model.Load(cfg.ArtifactPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load model artifact")
	}
	log.WithField("model_id", art.ID).
		WithField("model", art.Classifier.Kind()).
		WithField("features", art.Schema.Width()).
		Info("model artifact loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	opts := []processor.Option{processor.WithMetrics(m)}
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, serving without prediction cache")
		} else {
			defer client.Close()
			opts = append(opts, processor.WithCache(cache.NewRedis(client, cfg.CacheTTL)))
			log.WithField("addr", cfg.RedisAddr).Info("prediction cache enabled")
		}
	}

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	predictor := processor.NewPredictor(art, features.NewBuilder(), log, opts...)
	router := apihttp.NewRouter(log, apihttp.NewHandler(predictor, log), m, cfg.Origins())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}
}
