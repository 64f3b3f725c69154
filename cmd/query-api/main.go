package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Mitheesha/situational-awareness/internal/config"
	"github.com/Mitheesha/situational-awareness/internal/httpx"
	"github.com/Mitheesha/situational-awareness/internal/pipeline"
	"github.com/Mitheesha/situational-awareness/internal/rules"
	"github.com/Mitheesha/situational-awareness/internal/storage"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("service", "query-api")

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
	}

	repo := storage.NewRepository(dbPool)

	// On-demand risk reads run the full pipeline against the live event
	// window but never persist or publish.
	runner, err := pipeline.New(pipeline.Deps{
		Log:    log,
		Source: repo,
		Tables: tables,
		Config: cfg,
	})
	if err != nil {
		log.WithError(err).Fatal("pipeline construction failed")
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(15 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "query-api"})
	})

	router.Get("/v1/signals", func(w http.ResponseWriter, r *http.Request) {
		urgency := r.URL.Query().Get("urgency")
		limit := parseLimit(r.URL.Query().Get("limit"), 100)

		signals, err := repo.ListSignals(r.Context(), urgency, limit)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": signals})
	})

	router.Get("/v1/insights", func(w http.ResponseWriter, r *http.Request) {
		severity := r.URL.Query().Get("severity")
		limit := parseLimit(r.URL.Query().Get("limit"), 100)

		insights, err := repo.ListInsights(r.Context(), severity, limit)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": insights})
	})

	router.Get("/v1/summary", func(w http.ResponseWriter, r *http.Request) {
		summary, err := repo.ResultsSummary(r.Context())
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, summary)
	})

	router.Get("/v1/risk", func(w http.ResponseWriter, r *http.Request) {
		result, err := runner.Run(r.Context())
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, result)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.HTTPAddr).Info("query-api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server stopped")
	}
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
