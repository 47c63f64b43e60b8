package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"registrum/internal/catalog"
	"registrum/internal/config"
	"registrum/internal/handler"
	"registrum/internal/llm/chain"
	"registrum/internal/logger"
	"registrum/internal/metrics"
	"registrum/internal/port"
	"registrum/internal/qualification"
	"registrum/internal/router"
	"registrum/internal/service"
	s3storage "registrum/internal/storage/s3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load requirement catalog: %w", err)
	}
	zl.Info("requirement catalog loaded",
		zap.String("version", cat.Version()), zap.Int("items", cat.Len()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	completer, err := chain.Build(&cfg.LLM, m, zl.Named("llm"))
	if err != nil {
		return fmt.Errorf("failed to initialize llm chain: %w", err)
	}

	engine, err := qualification.NewEngine(cat, completer, qualification.Config{
		DocumentConcurrency:   cfg.Qualification.DocumentConcurrency,
		EvaluationConcurrency: cfg.Qualification.EvaluationConcurrency,
		ApprovalThreshold:     cfg.Qualification.ApprovalThreshold,
		MandatoryItems:        cfg.Qualification.MandatoryItems,
		ExcerptLength:         cfg.Qualification.ExcerptLength,
		MinTextLength:         cfg.Qualification.MinTextLength,
	}, m, zl.Named("engine"))
	if err != nil {
		return fmt.Errorf("failed to initialize qualification engine: %w", err)
	}

	// Object storage is optional; without it only inline texts are accepted
	var texts port.TextSource
	if cfg.S3.Enabled() {
		src, err := s3storage.NewTextSource(context.Background(), &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 text source: %w", err)
		}
		texts = src
	}

	qualificationSvc := service.NewQualificationService(engine, texts, zl.Named("service"))

	qualificationH := handler.NewQualificationHandler(qualificationSvc)
	healthH := handler.NewHealthHandler(map[string]handler.ReadinessCheck{
		"catalog": func(context.Context) error {
			if cat.Len() == 0 {
				return errors.New("empty catalog")
			}
			return nil
		},
	})

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	r := router.Setup(cfg, zl, qualificationH, healthH, metricsHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("addr", cfg.Server.Port), zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
