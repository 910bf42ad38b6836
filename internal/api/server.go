package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gobwas/glob"

	"github.com/nerrad567/bookshelf/internal/auth"
	"github.com/nerrad567/bookshelf/internal/book"
	"github.com/nerrad567/bookshelf/internal/infrastructure/config"
	"github.com/nerrad567/bookshelf/internal/infrastructure/database"
	"github.com/nerrad567/bookshelf/internal/infrastructure/logging"
	"github.com/nerrad567/bookshelf/internal/views"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// BrokerStatus reports the state of the optional MQTT connection.
type BrokerStatus interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Registry *book.Registry
	Gate     auth.Gate       // nil admits every page request
	Views    *views.Renderer // nil parses the embedded templates
	MQTT     BrokerStatus    // optional, reported by health and metrics
	DB       *database.DB    // optional, pool stats reported by metrics
	Version  string
}

// Server is the HTTP server for Bookshelf.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	secCfg      config.SecurityConfig
	logger      *logging.Logger
	registry    *book.Registry
	gate        auth.Gate
	credentials auth.Credentials
	views       *views.Renderer
	mqtt        BrokerStatus
	db          *database.DB
	version     string
	origins     []glob.Glob
	startTime   time.Time
	server      *http.Server
	hub         *Hub
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The WebSocket hub is subscribed to the registry immediately, so events are
// relayed even before Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("book registry is required")
	}

	gate := deps.Gate
	if gate == nil {
		gate = auth.OpenGate{}
	}

	renderer := deps.Views
	if renderer == nil {
		var err error
		if renderer, err = views.New(); err != nil {
			return nil, fmt.Errorf("loading page templates: %w", err)
		}
	}

	origins, err := compileOrigins(deps.Config.CORS.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		secCfg:      deps.Security,
		logger:      deps.Logger,
		registry:    deps.Registry,
		gate:        gate,
		credentials: auth.CredentialsFromConfig(deps.Security.Admin),
		views:       renderer,
		mqtt:        deps.MQTT,
		db:          deps.DB,
		version:     deps.Version,
		origins:     origins,
		startTime:   time.Now(),
		hub:         NewHub(deps.WS, deps.Logger),
	}

	s.registry.Subscribe(s.hub.HandleBookEvent)

	return s, nil
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return errors.New("api server not started")
	}

	return nil
}

// compileOrigins turns the configured CORS origins into glob matchers,
// e.g. "http://localhost:*".
func compileOrigins(patterns []string) ([]glob.Glob, error) {
	origins := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid CORS origin %q: %w", p, err)
		}
		origins = append(origins, g)
	}
	return origins, nil
}
