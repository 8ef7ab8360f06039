// Package api MarcDB REST API
//
// @title           MarcDB REST API
// @version         1.0.0
// @description     REST API for storing and retrieving MARC21 bibliographic records.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled
const shutdownTimeout = 10 * time.Second

// NewRouter builds the HTTP routes for server. Metrics are served from
// gatherer on /metrics without authentication.
func NewRouter(server *Server, gatherer prometheus.Gatherer) http.Handler {
	metrics := server.metrics

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(server.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Records
		r.Get("/records", metrics.InstrumentHandler("GET", "/api/v1/records", server.handleListRecords))
		r.Post("/records", metrics.InstrumentHandler("POST", "/api/v1/records", server.handleImportRecords))
		r.Get("/records/{id}", metrics.InstrumentHandler("GET", "/api/v1/records/{id}", server.handleGetRecord))
		r.Get("/records/{id}/marc", metrics.InstrumentHandler("GET", "/api/v1/records/{id}/marc", server.handleGetRecordMARC))
		r.Delete("/records/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/records/{id}", server.handleDeleteRecord))

		// Diagnostics
		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully
func StartServer(ctx context.Context, store RecordStore, config ServerConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.APIKey == "" {
		return fmt.Errorf("an API key is required to start the server")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := NewMetrics(registry)

	server := NewServer(store, config, metrics, logger)
	if stats, err := store.Stats(); err == nil {
		metrics.UpdateCatalogStats(stats.Records, stats.Bytes)
	}

	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start background metrics updater
	go server.startMetricsUpdater(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting MarcDB REST API server",
			zap.String("addr", addr),
			zap.String("metrics", fmt.Sprintf("http://%s/metrics", addr)),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down REST API server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
