package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Mitheesha/situational-awareness/internal/config"
	"github.com/Mitheesha/situational-awareness/internal/httpx"
	"github.com/Mitheesha/situational-awareness/internal/mq"
	"github.com/Mitheesha/situational-awareness/internal/pipeline"
	"github.com/Mitheesha/situational-awareness/internal/rules"
	"github.com/Mitheesha/situational-awareness/internal/storage"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("service", "analytics-engine")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer dbPool.Close()

	if err := storage.RunMigrations(ctx, dbPool); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}

	tables := rules.Defaults()
	if cfg.RulesFile != "" {
		tables, err = rules.Load(cfg.RulesFile)
		if err != nil {
			log.WithError(err).WithField("path", cfg.RulesFile).Fatal("rules file invalid")
		}
		log.WithField("path", cfg.RulesFile).Info("loaded rule tables")
	}

	writer := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicWarnings)
	defer writer.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pipeline.NewMetrics(registry)

	repo := storage.NewRepository(dbPool)
	runner, err := pipeline.New(pipeline.Deps{
		Log:     log,
		Source:  repo,
		Results: repo,
		Writer:  writer,
		Tables:  tables,
		Config:  cfg,
		Metrics: metrics,
	})
	if err != nil {
		log.WithError(err).Fatal("pipeline construction failed")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "analytics-engine"})
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("metrics server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.WithField("interval", cfg.AnalysisInterval.String()).Info("analytics engine started")

	ticker := time.NewTicker(cfg.AnalysisInterval)
	defer ticker.Stop()

	runOnce(ctx, log, runner)
	for {
		select {
		case <-ctx.Done():
			log.Info("analytics engine shutting down")
			return
		case <-ticker.C:
			runOnce(ctx, log, runner)
		}
	}
}

func runOnce(ctx context.Context, log *logrus.Entry, runner *pipeline.Runner) {
	if _, err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.WithError(err).Error("analysis run failed")
	}
}
