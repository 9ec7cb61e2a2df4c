// Package api - Thin HTTP layer over the quote engine.
// The API only decodes requests, picks the current catalog and encodes
// results. It never prices anything itself.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"wireless-quote/core/catalog"
	"wireless-quote/core/engine"
	"wireless-quote/core/output"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// MaxBodyBytes caps request bodies
const MaxBodyBytes = 1 << 20

// Server is the API server
type Server struct {
	engine   *engine.Engine
	store    *catalog.Store
	registry *output.Registry
	logger   *zap.Logger
	version  string
	mux      *http.ServeMux
}

// NewServer creates a new API server. Every request prices against the
// catalog the store holds when the request arrives.
func NewServer(eng *engine.Engine, store *catalog.Store, registry *output.Registry, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:   eng,
		store:    store,
		registry: registry,
		logger:   logger,
		version:  version,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /quotes", s.handleQuote)
	s.mux.HandleFunc("POST /quotes/batch", s.handleBatch)
	s.mux.HandleFunc("GET /catalog", s.handleCatalog)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleQuote handles POST /quotes. ?format= selects a rendering other
// than JSON.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req types.QuoteRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	formatter, err := s.formatter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q, err := s.engine.Quote(s.store.Current(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Debug("quote served",
		zap.String("quote_id", q.ID),
		zap.Duration("duration", time.Since(start)),
	)

	if formatter == nil {
		s.writeJSON(w, q, http.StatusOK)
		return
	}
	var buf bytes.Buffer
	if err := formatter.Render(&buf, q); err != nil {
		s.writeError(w, ierr.Internal("render quote", err))
		return
	}
	w.Header().Set("Content-Type", contentType(formatter.Format()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleBatch handles POST /quotes/batch
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Requests) == 0 {
		s.writeError(w, ierr.InvalidRequest("requests must not be empty"))
		return
	}

	c := s.store.Current()
	resp := &BatchResponse{
		CatalogVersion: c.Version(),
		CatalogHash:    c.Hash().Hex(),
		Results:        make([]BatchItem, 0, len(req.Requests)),
	}
	for i, res := range s.engine.QuoteEach(c, req.Requests) {
		item := BatchItem{Index: i, Quote: res.Quote}
		if res.Err != nil {
			body := errorBody(res.Err)
			item.Error = &body
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleCatalog handles GET /catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, catalogInfo(s.store.Current()), http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c := s.store.Current()
	status, code := "healthy", http.StatusOK
	if !c.Verify() {
		status, code = "catalog hash mismatch", http.StatusServiceUnavailable
	}
	s.writeJSON(w, map[string]interface{}{
		"status":          status,
		"version":         s.version,
		"catalog_version": c.Version(),
		"time":            time.Now().UTC().Format(time.RFC3339),
	}, code)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "wireless-quote",
		"api_version": "v1",
	}, http.StatusOK)
}

// formatter returns nil for the default JSON response
func (s *Server) formatter(r *http.Request) (output.Formatter, error) {
	name := r.URL.Query().Get("format")
	if name == "" || name == string(output.FormatJSON) {
		return nil, nil
	}
	return s.registry.Get(name)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ierr.Parsing("decode request body", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, ErrorResponse{Error: errorBody(err)}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
