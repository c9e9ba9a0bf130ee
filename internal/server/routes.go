package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Retrieval
	mux.HandleFunc("/api/retrieve", s.app.RetrieveHandler.RetrieveHandler)
	mux.HandleFunc("/api/retrieve/stream", s.app.StreamHandler.HandleStream)

	// System
	mux.HandleFunc("/api/metrics", s.app.MetricsHandler.LatencyHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}
