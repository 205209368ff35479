// Package httpserver implements the HTTP validation service behind the
// jesse serve command: a chi router exposing document validation and the
// session schema store.
//
// Endpoints:
//
//	POST /v1/validate        validate a document against an inline schema or a stored key
//	PUT  /v1/schemas/{key}   store a schema document under a key
//	GET  /v1/schemas/{key}   fetch a stored schema document
//	GET  /v1/schemas         list stored schema keys
//	GET  /healthz            liveness probe with version and store size
//
// Schema keys are URIs and must be URL-path-escaped when they appear in a
// request path.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/store"
	"github.com/Phonebooth/jesse/validator"
)

// DefaultMaxBodyBytes bounds request body size unless WithMaxBodyBytes
// overrides it.
const DefaultMaxBodyBytes int64 = 10 << 20

// Server carries the schema store and configuration shared by all handlers.
// Construct with New; the zero value is not usable.
type Server struct {
	st      *store.Store
	checker *validator.Validator
	logger  store.Logger
	maxBody int64
	handler http.Handler
}

// Option is a function that configures a Server.
type Option func(*Server) error

// WithLogger sets the structured logger. The default discards all output.
func WithLogger(l store.Logger) Option {
	return func(s *Server) error {
		if l == nil {
			return &jesseerrors.ConfigError{Option: "logger", Message: "logger must not be nil"}
		}
		s.logger = l
		return nil
	}
}

// WithMaxBodyBytes sets the request body size limit.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) error {
		if n <= 0 {
			return &jesseerrors.ConfigError{
				Option:  "max_body_bytes",
				Value:   n,
				Message: "must be positive",
			}
		}
		s.maxBody = n
		return nil
	}
}

// New returns a Server publishing into and validating against st.
func New(st *store.Store, opts ...Option) (*Server, error) {
	if st == nil {
		return nil, &jesseerrors.ConfigError{Option: "store", Message: "store must not be nil"}
	}
	checker, err := validator.New()
	if err != nil {
		return nil, err
	}
	s := &Server{
		st:      st,
		checker: checker,
		logger:  store.NopLogger{},
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the configured router, ready for http.Server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/validate", s.handleValidate)
	r.Route("/v1/schemas", func(r chi.Router) {
		r.Get("/", s.handleListSchemas)
		r.Put("/{key}", s.handlePutSchema)
		r.Get("/{key}", s.handleGetSchema)
	})
	return r
}

// requestLogger emits one structured log line per served request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := codec.Marshal(v)
	if err != nil {
		s.logger.Error("encoding response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
