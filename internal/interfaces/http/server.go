// Package http runs the REST API server.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/EricBell/accessible-outings/internal/cache"
	"github.com/EricBell/accessible-outings/internal/config"
	"github.com/EricBell/accessible-outings/internal/interfaces/http/handlers"
)

const requestTimeout = 30 * time.Second

// Server is the HTTP server hosting the REST API and metrics endpoint.
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *handlers.Handlers
	metrics  *MetricsRegistry
	cache    cache.Cache
	config   config.ServerConfig
}

// NewServer creates the server and wires its routes.
func NewServer(cfg config.ServerConfig, h *handlers.Handlers, c cache.Cache) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		handlers: h,
		metrics:  NewMetricsRegistry(),
		cache:    c,
		config:   cfg,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.GetAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.timeoutMiddleware)
	s.router.Use(s.corsMiddleware)

	s.router.Handle("/metrics", s.metricsHandler()).Methods("GET")
	s.router.HandleFunc("/health", s.handlers.Health).Methods("GET")

	// API routes (JSON only)
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.jsonContentTypeMiddleware)

	api.HandleFunc("/health", s.handlers.Health).Methods("GET")
	api.HandleFunc("/search", s.withSearchCounter(s.handlers.Search)).Methods("GET")
	api.HandleFunc("/geocode", s.handlers.Geocode).Methods("GET")
	api.HandleFunc("/categories", s.handlers.Categories).Methods("GET")

	api.HandleFunc("/venues/{id:[0-9]+}", s.handlers.VenueDetail).Methods("GET")
	api.HandleFunc("/venues/{id:[0-9]+}/reviews", s.handlers.ListVenueReviews).Methods("GET")
	api.HandleFunc("/venues/{id:[0-9]+}/reviews", s.handlers.SubmitReview).Methods("POST")
	api.HandleFunc("/accessibility-score/{id:[0-9]+}", s.handlers.AccessibilityScore).Methods("GET")

	api.HandleFunc("/favorites", s.handlers.ListFavorites).Methods("GET")
	api.HandleFunc("/favorites", s.handlers.AddFavorite).Methods("POST")
	api.HandleFunc("/favorites/{id:[0-9]+}", s.handlers.AddFavorite).Methods("POST")
	api.HandleFunc("/favorites/{id:[0-9]+}", s.handlers.RemoveFavorite).Methods("DELETE")

	api.HandleFunc("/reviews", s.handlers.ListUserReviews).Methods("GET")
	api.HandleFunc("/reviews", s.handlers.SubmitReview).Methods("POST")
	api.HandleFunc("/search-history", s.handlers.SearchHistory).Methods("GET")
	api.HandleFunc("/popular-searches", s.handlers.PopularSearches).Methods("GET")
	api.HandleFunc("/events", s.handlers.Events).Methods("GET")
	api.HandleFunc("/cache/clear", s.handlers.ClearCache).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(s.handlers.NotFound)
}

// metricsHandler refreshes the cache gauges before each scrape.
func (s *Server) metricsHandler() http.Handler {
	inner := s.metrics.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.UpdateCacheStats(s.cache.Stats())
		inner.ServeHTTP(w, r)
	})
}

func (s *Server) withSearchCounter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.SearchesTotal.Inc()
		next(w, r)
	}
}

// requestIDMiddleware adds a short unique ID to each request.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), handlers.RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID, _ := r.Context().Value(handlers.RequestIDKey).(string)

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.RecordRequest(route, r.Method, wrapper.statusCode, time.Since(start))
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// corsMiddleware allows browser requests from local development origins.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	log.Info().Str("addr", s.GetAddress()).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// GetAddress returns the listen address.
func (s *Server) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Router exposes the mux for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// responseWrapper captures the HTTP status code for logging and metrics.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
