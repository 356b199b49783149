// Package api serves the bridge and BIM read API over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"fortio.org/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/config"
	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/repository"
)

// Server owns the route table and the middleware stack.
type Server struct {
	bridges repository.Bridges
	models  repository.Models
	cfg     config.Server
	service string
}

// New builds a server over the given read models.
func New(bridges repository.Bridges, models repository.Models, cfg config.Config) *Server {
	return &Server{
		bridges: bridges,
		models:  models,
		cfg:     cfg.Server,
		service: cfg.Telemetry.ServiceName,
	}
}

// Routes returns the bare route table.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/bridges", s.listBridges)
	mux.HandleFunc("GET /api/bridges/{id}", s.getBridge)

	mux.HandleFunc("GET /api/bim/models", s.listModels)
	mux.HandleFunc("GET /api/bim/bridges/{bridgeId}/bim", s.modelByBridge)
	mux.HandleFunc("GET /api/bim/models/{modelId}", s.getModel)
	mux.HandleFunc("GET /api/bim/models/{modelId}/components", s.listComponents)
	mux.HandleFunc("GET /api/bim/models/{modelId}/components/{componentId}", s.getComponent)
	mux.HandleFunc("GET /api/bim/models/{modelId}/components/{componentId}/geometry", s.getGeometry)
	mux.HandleFunc("GET /api/bim/models/{modelId}/relationships", s.listRelationships)
	mux.HandleFunc("POST /api/bim/upload", handleUpload)
	return mux
}

// Handler returns the routes wrapped in the full middleware stack.
func (s *Server) Handler() http.Handler {
	return Chain(s.Routes(),
		OTel(s.service),
		RequestID(),
		Recover(),
		Logger(),
		CORS(s.cfg.CORSOrigin),
		RateLimit(s.cfg.RateLimit, s.cfg.RateBurst),
		Metrics(),
	)
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("API server listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Infof("Shutting down API server")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
