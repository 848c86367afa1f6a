// Package api exposes the correspondence pipeline over HTTP for the
// `zonelink serve` command. The service accepts two GeoJSON collections and
// returns the computed weight table, caching results by input content so
// repeated requests with unchanged zones are served without recomputation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/transportlab/zonelink/pkg/cache"
	"github.com/transportlab/zonelink/pkg/geoio"
	"github.com/transportlab/zonelink/pkg/pipeline"
	"github.com/transportlab/zonelink/pkg/zone"
)

// maxBodyBytes caps request bodies; zone systems are large but bounded.
const maxBodyBytes = 256 << 20

// Server handles correspondence requests.
type Server struct {
	cache  cache.Cache
	logger *log.Logger
}

// NewServer creates an API server. A nil cache disables result caching.
func NewServer(c cache.Cache, logger *log.Logger) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cache: c, logger: logger}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/correspondence", s.handleCorrespondence)
	return r
}

// request is the JSON body of POST /v1/correspondence.
type request struct {
	// Source and Target are GeoJSON feature collections.
	Source json.RawMessage `json:"source"`
	Target json.RawMessage `json:"target"`

	// IDProperty and AttributeProperty configure feature parsing.
	IDProperty        string `json:"id_property,omitempty"`
	AttributeProperty string `json:"attribute_property,omitempty"`

	// Options configures the run. Zero values use pipeline defaults.
	Options pipeline.Options `json:"options"`
}

// response is the JSON body returned on success.
type response struct {
	RunID       string           `json:"run_id"`
	Table       zone.Table       `json:"table"`
	Diagnostics zone.Diagnostics `json:"diagnostics"`
	Stats       pipeline.Stats   `json:"stats"`
	Cached      bool             `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCorrespondence(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Source) == 0 || len(req.Target) == 0 {
		writeError(w, http.StatusBadRequest, "source and target collections are required")
		return
	}

	key := cache.RunKey(req.Source, req.Target, cacheKeyOptions(req))
	if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		var cached response
		if json.Unmarshal(data, &cached) == nil {
			cached.Cached = true
			s.logger.Debugf("request %s served from cache", middleware.GetReqID(r.Context()))
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	resp, status, err := s.compute(r.Context(), req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(r.Context(), key, data, cache.DefaultTTL); err != nil {
			s.logger.Warnf("cache write failed: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// compute parses both collections and runs the pipeline.
func (s *Server) compute(ctx context.Context, req request) (*response, int, error) {
	readOpts := geoio.ReadOptions{
		IDProperty:        req.IDProperty,
		AttributeProperty: req.AttributeProperty,
	}
	source, err := geoio.ReadZones(bytes.NewReader(req.Source), readOpts)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	target, err := geoio.ReadZones(bytes.NewReader(req.Target), readOpts)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	opts := req.Options
	opts.Logger = s.logger
	result, err := pipeline.NewRunner(s.logger).Execute(ctx, source, target, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, zone.ErrEmptySources) || errors.Is(err, zone.ErrEmptyTargets) {
			status = http.StatusUnprocessableEntity
		}
		return nil, status, err
	}

	return &response{
		RunID:       result.RunID,
		Table:       result.Table,
		Diagnostics: result.Diagnostics,
		Stats:       result.Stats,
	}, http.StatusOK, nil
}

// cacheKeyOptions strips non-semantic fields from the request before keying:
// worker count and timeouts don't change the table.
func cacheKeyOptions(req request) map[string]any {
	return map[string]any{
		"id_property":        req.IDProperty,
		"attribute_property": req.AttributeProperty,
		"mode":               req.Options.Mode,
		"absolute_sliver":    req.Options.AbsoluteSliver,
		"relative_sliver":    req.Options.RelativeSliver,
		"area_epsilon":       req.Options.AreaEpsilon,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Infof("listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
