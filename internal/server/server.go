// Package server provides the HTTP server for the tofgesture recognizer.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/tofgesture/internal/app"
	"github.com/ayusman/tofgesture/internal/server/api"
	"github.com/ayusman/tofgesture/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	// PreviewMaxRangeMm is the distance drawn coldest in /api/stream.
	PreviewMaxRangeMm float64
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	live   *LiveHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.PreviewMaxRangeMm <= 0 {
		config.PreviewMaxRangeMm = 1000
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		var resolver api.PluginResolver
		if s.config.App != nil {
			resolver = s.config.App.PluginManager()
		}
		actions := api.NewActionHandler(s.config.Store, resolver)
		s.mux.Handle("/api/actions", actions)
		s.mux.Handle("/api/actions/", actions)

		events := api.NewEventHandler(s.config.Store)
		s.mux.Handle("/api/events", events)
		s.mux.Handle("/api/events/", events)
	}

	if s.config.App != nil {
		s.mux.Handle("/api/status", NewStatusHandler(s.config.App))
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.App.PluginManager()))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App, s.config.PreviewMaxRangeMm))

		s.live = NewLiveHandler()
		s.config.App.OnResult(s.live.Publish)
		s.mux.Handle("/api/live", s.live)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close disconnects live clients.
func (s *Server) Close() {
	if s.live != nil {
		s.live.Close()
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	writeJSON(w, http.StatusOK, response)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
