package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/batch"
	"github.com/ssargent/marcdb/pkg/catalog"
	"github.com/ssargent/marcdb/pkg/codec"
	"github.com/ssargent/marcdb/pkg/render"
	"github.com/ssargent/marcdb/pkg/store"
)

// ContentTypeMARC is the media type for ISO 2709 record bodies
const ContentTypeMARC = "application/marc"

// DefaultMaxUploadBytes bounds POST /records bodies
const DefaultMaxUploadBytes = 64 << 20

// statsRefreshInterval is how often catalog gauges are refreshed
const statsRefreshInterval = 30 * time.Second

// Server holds the API server state
type Server struct {
	store   RecordStore
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(store RecordStore, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListRecords godoc
//
//	@Summary		List record ids
//	@Description	List stored record ids in ascending order
//	@Tags			records
//	@Produce		json
//	@Param			prefix	query		string	false	"Id prefix"
//	@Param			limit	query		int		false	"Maximum number of ids"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/records [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	prefix := r.URL.Query().Get("prefix")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ids, err := s.store.List(prefix, limit)
	s.metrics.RecordCatalogOperation("list", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list records: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, map[string]interface{}{"ids": ids})
}

// handleImportRecords godoc
//
//	@Summary		Import records
//	@Description	Store every record of a MARC stream. Malformed records are skipped when skip_malformed is true.
//	@Tags			records
//	@Accept			application/marc
//	@Produce		json
//	@Param			skip_malformed	query		bool	false	"Skip records that fail to decode"
//	@Success		200				{object}	ImportResponse
//	@Failure		400				{object}	map[string]string
//	@Failure		413				{object}	map[string]string
//	@Router			/records [post]
//	@Security		ApiKeyAuth
func (s *Server) handleImportRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	opts := batch.DefaultOptions()
	opts.ProgressEvery = 0
	opts.SkipMalformed = s.config.SkipMalformed
	if v := r.URL.Query().Get("skip_malformed"); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			sendError(w, "skip_malformed must be a boolean", http.StatusBadRequest)
			return
		}
		opts.SkipMalformed = skip
	}

	maxBytes := s.config.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	result, err := s.store.Import(r.Context(), store.NewRecordReaderFrom(body), opts)
	s.metrics.RecordCatalogOperation("import", err == nil, time.Since(start))
	if result != nil && result.Result != nil {
		s.metrics.RecordImport(result.Records, result.Skipped)
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			sendError(w, fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		if isDecodeError(err) {
			sendError(w, fmt.Sprintf("Invalid MARC data: %v", err), http.StatusBadRequest)
			return
		}
		s.logger.Error("import failed", zap.Error(err))
		sendError(w, fmt.Sprintf("Failed to import records: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, ImportResponse{
		IDs:     result.IDs,
		Records: result.Records,
		Skipped: result.Skipped,
	})
}

// handleGetRecord godoc
//
//	@Summary		Get a record
//	@Description	Get a stored record as a JSON document
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Record id"
//	@Success		200	{object}	render.Document
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/records/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	rec, err := s.store.Get(id)
	s.metrics.RecordCatalogOperation("get", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	sendSuccess(w, render.ToDocument(rec))
}

// handleGetRecordMARC godoc
//
//	@Summary		Get a serialized record
//	@Description	Get the stored record bytes
//	@Tags			records
//	@Produce		application/marc
//	@Param			id	path		string	true	"Record id"
//	@Success		200	{string}	byte
//	@Failure		404	{object}	map[string]string
//	@Router			/records/{id}/marc [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRecordMARC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	data, err := s.store.GetRaw(id)
	s.metrics.RecordCatalogOperation("get_raw", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", ContentTypeMARC)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleDeleteRecord godoc
//
//	@Summary		Delete a record
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Record id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Router			/records/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	err := s.store.Delete(id)
	s.metrics.RecordCatalogOperation("delete", err == nil, time.Since(start))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	sendSuccess(w, map[string]string{"message": "Record deleted successfully"})
}

// handleStats godoc
//
//	@Summary		Catalog statistics
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	catalog.Stats
//	@Failure		500	{object}	map[string]string
//	@Router			/stats [get]
//	@Security		ApiKeyAuth
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to get stats: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.UpdateCatalogStats(stats.Records, stats.Bytes)
	sendSuccess(w, stats)
}

func (s *Server) sendStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrRecordNotFound):
		sendError(w, "Record not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrInvalidID):
		sendError(w, "Record id is required", http.StatusBadRequest)
	default:
		s.logger.Error("catalog operation failed", zap.Error(err))
		sendError(w, fmt.Sprintf("Catalog error: %v", err), http.StatusInternalServerError)
	}
}

// startMetricsUpdater periodically updates catalog gauges until ctx is done
func (s *Server) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(statsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := s.store.Stats()
			if err != nil {
				s.logger.Warn("failed to refresh catalog stats", zap.Error(err))
				continue
			}
			s.metrics.UpdateCatalogStats(stats.Records, stats.Bytes)
		}
	}
}

// isDecodeError reports whether err comes from malformed input rather than
// from the catalog
func isDecodeError(err error) bool {
	var recErr *store.RecordError
	var streamErr *store.StreamError
	var marcErr *codec.MARCError
	return errors.As(err, &recErr) || errors.As(err, &streamErr) || errors.As(err, &marcErr)
}
