package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/antmrlt/API64/engine"
	"github.com/antmrlt/API64/logging"
	"github.com/antmrlt/API64/metrics"
)

// Route templates served by the Server.
const (
	RouteUpload   = "/upload"
	RouteRetrieve = "/uploads/{filename}"
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"
)

// HeaderAPIKey carries the shared secret on upload requests.
const HeaderAPIKey = "API-Key"

// HeaderRequestID carries the request correlation ID.
const HeaderRequestID = "X-Request-ID"

// Options configures a Server.
type Options struct {
	// Metrics instruments every route and serves /metrics. Nil disables both.
	Metrics *metrics.Metrics

	// Logger receives transport level messages. Defaults to NoOp logger.
	Logger logging.Logger

	// AllowedOrigins is the CORS origin allow-list. Empty disables CORS
	// handling altogether.
	AllowedOrigins []string

	// MaxBodyBytes caps the size of an upload request body. Zero means no
	// limit.
	MaxBodyBytes int64
}

// Server routes HTTP requests to an Engine.
type Server struct {
	engine  *engine.Engine
	opts    Options
	router  *mux.Router
	handler http.Handler
}

// New creates a Server for eng.
func New(eng *engine.Engine, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{
		engine: eng,
		opts:   opts,
		router: mux.NewRouter().SkipClean(true).UseEncodedPath(),
	}
	s.registerRoutes()

	var h http.Handler = s.router
	if len(opts.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", HeaderAPIKey, HeaderRequestID},
			ExposedHeaders: []string{"Content-Length", "Content-Type", HeaderRequestID},
		})
		h = c.Handler(h)
	}
	s.handler = requestID(recovery(opts.Logger, h))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.router.Handle(RouteUpload, s.instrument("upload", s.handleUpload())).Methods(http.MethodPost)
	s.router.Handle(RouteRetrieve, s.instrument("retrieve", s.handleRetrieve())).Methods(http.MethodGet, http.MethodHead)
	s.router.Handle(RouteHealth, s.instrument("health", handleHealth())).Methods(http.MethodGet)

	if s.opts.Metrics != nil {
		s.router.Handle(RouteMetrics, s.opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondStatus(w, http.StatusNotFound, "no such route")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondStatus(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

func (s *Server) instrument(op string, h http.Handler) http.Handler {
	if s.opts.Metrics == nil {
		return h
	}
	return s.opts.Metrics.Middleware(op, h)
}
