// Package server is the HTTP surface of the moniker service: thin adapters
// over the resolver and the catalog registry, with centralized error mapping.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openmoniker/openmoniker/audit"
	"github.com/openmoniker/openmoniker/cache"
	"github.com/openmoniker/openmoniker/catalog"
	"github.com/openmoniker/openmoniker/config"
	"github.com/openmoniker/openmoniker/resolver"
	"github.com/openmoniker/openmoniker/telemetry"
)

// Server wires the engine components behind the HTTP routes
type Server struct {
	cfg      *config.Config
	registry *catalog.Registry
	service  *resolver.Service
	reloader *catalog.Reloader
	cache    *cache.InMemory // nil when disabled
	auditLog *audit.Store    // nil when disabled
	emitter  telemetry.Emitter
	metrics  *telemetry.Metrics
	logger   *zap.SugaredLogger

	mux        *http.ServeMux
	httpServer *http.Server

	// Event hub for /ws/events clients
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan interface{}
	clientsMu  sync.RWMutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options carries the dependencies the server serves over
type Options struct {
	Config   *config.Config
	Registry *catalog.Registry
	Service  *resolver.Service
	Reloader *catalog.Reloader
	Cache    *cache.InMemory
	AuditLog *audit.Store
	Emitter  telemetry.Emitter
	Metrics  *telemetry.Metrics
	Logger   *zap.SugaredLogger
}

// New creates a server; routes are registered immediately
func New(opts Options) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:        opts.Config,
		registry:   opts.Registry,
		service:    opts.Service,
		reloader:   opts.Reloader,
		cache:      opts.Cache,
		auditLog:   opts.AuditLog,
		emitter:    opts.Emitter,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		mux:        http.NewServeMux(),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan interface{}, 64),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.setupRoutes()

	if s.reloader != nil {
		s.reloader.OnReload(func(nodes int) {
			if s.metrics != nil {
				s.metrics.CatalogNodes.Set(float64(nodes))
			}
			s.BroadcastEvent(map[string]interface{}{
				"type":  "catalog_reloaded",
				"nodes": nodes,
				"at":    time.Now().UTC().Format(time.RFC3339),
			})
		})
	}

	return s
}

// Handler returns the root handler (used by tests and by Start)
func (s *Server) Handler() http.Handler {
	return s.mux
}

// caller extracts the observed (not enforced) caller identity from headers
func caller(r *http.Request) *resolver.CallerIdentity {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = "anonymous"
	}
	return &resolver.CallerIdentity{UserID: userID, Source: "api"}
}
