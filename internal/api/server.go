package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/philatelist/backend/internal/audit"
	"github.com/philatelist/backend/internal/auth"
	"github.com/philatelist/backend/internal/catalog"
	"github.com/philatelist/backend/internal/infrastructure/config"
	"github.com/philatelist/backend/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      *config.Config
	Logger      *logging.Logger
	Users       catalog.UserRepository
	Collectors  catalog.CollectorRepository
	Collections catalog.CollectionRepository
	Stamps      catalog.StampRepository
	AuditRepo   audit.Repository // optional: audit logging disabled when nil
	Codec       *auth.TokenCodec
	Issuer      *auth.SessionIssuer
	Hasher      *auth.Hasher
	Routes      auth.RouteRules // optional: defaults to auth.DefaultRouteRules()
	Version     string
}

// Server is the HTTP API server for the PhilateList backend.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg         *config.Config
	logger      *logging.Logger
	users       catalog.UserRepository
	collectors  catalog.CollectorRepository
	collections catalog.CollectionRepository
	stamps      catalog.StampRepository
	auditRepo   audit.Repository
	auditCh     chan *audit.AuditLog
	codec       *auth.TokenCodec
	issuer      *auth.SessionIssuer
	hasher      *auth.Hasher
	routes      auth.RouteRules
	version     string
	server      *http.Server
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Users == nil || deps.Collectors == nil || deps.Collections == nil || deps.Stamps == nil {
		return nil, fmt.Errorf("catalog repositories are required")
	}
	if deps.Codec == nil || deps.Issuer == nil || deps.Hasher == nil {
		return nil, fmt.Errorf("token codec, session issuer, and hasher are required")
	}

	routes := deps.Routes
	if routes == nil {
		routes = auth.DefaultRouteRules()
	}

	s := &Server{
		cfg:         deps.Config,
		logger:      deps.Logger,
		users:       deps.Users,
		collectors:  deps.Collectors,
		collections: deps.Collections,
		stamps:      deps.Stamps,
		auditRepo:   deps.AuditRepo,
		codec:       deps.Codec,
		issuer:      deps.Issuer,
		hasher:      deps.Hasher,
		routes:      routes,
		version:     deps.Version,
	}

	if s.auditRepo != nil {
		s.auditCh = make(chan *audit.AuditLog, auditChanSize)
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the audit log writer, and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.auditCh != nil {
		go s.drainAuditLog(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// Cancel background goroutines (audit writer)
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

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
