package entry

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zombor/bill-tracker/internal/logger"
)

// Server handles HTTP requests for bills and entries
type Server struct {
	service   *Service
	basicAuth BasicAuth
	mux       *http.ServeMux
	log       zerolog.Logger
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, basicAuth BasicAuth, log zerolog.Logger) *Server {
	return NewServerWithMux(service, basicAuth, http.NewServeMux(), log)
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, basicAuth BasicAuth, mux *http.ServeMux, log zerolog.Logger) *Server {
	s := &Server{
		service:   service,
		basicAuth: basicAuth,
		mux:       mux,
		log:       log.With().Str("component", "http").Logger(),
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(user), []byte(s.basicAuth.Username)) == 1 &&
		subtle.ConstantTimeCompare([]byte(pass), []byte(s.basicAuth.Password)) == 1
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Bill Tracker"`)
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// middleware answers CORS preflights and attaches a request-scoped logger
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		start := time.Now()
		reqLog := s.log.With().
			Str("req_id", uuid.New().String()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context(), reqLog)))

		reqLog.Info().
			Int("status", rec.status).
			Int64("elapsed_ms", time.Since(start).Milliseconds()).
			Msg("request")
	})
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /bill/process/{userId}", s.requireAuth(s.handleProcessBill))

	s.mux.HandleFunc("GET /api/entries/{id}/file", s.requireAuth(s.handleGetEntryFile))
	s.mux.HandleFunc("GET /api/entries/{id}", s.requireAuth(s.handleGetEntry))
	s.mux.HandleFunc("DELETE /api/entries/{id}", s.requireAuth(s.handleDeleteEntry))
	s.mux.HandleFunc("GET /api/entries", s.requireAuth(s.handleListEntries))
}

// Handler returns the mux wrapped in the CORS and logging middleware
func (s *Server) Handler() http.Handler {
	return s.middleware(s.mux)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.log.Info().Str("address", addr).Msg("starting server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}
