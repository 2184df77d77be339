package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openmoniker/openmoniker/errors"
)

// Start binds the listener and serves until Shutdown is called. Background
// services (event hub, cache sweeper, interval reloader) start here.
func (s *Server) Start() error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	if s.reloader != nil {
		s.reloader.Start(s.ctx)
	}
	if s.cache != nil && s.cfg != nil && s.cfg.Cache.CleanupIntervalSeconds > 0 {
		s.cache.StartCleanup(s.ctx, time.Duration(s.cfg.Cache.CleanupIntervalSeconds)*time.Second)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Bind, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Infow("Server ready",
		"addr", addr,
		"nodes", s.registry.Len(),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout, then
// stops background goroutines
func (s *Server) Shutdown() error {
	drain := 30 * time.Second
	if s.cfg != nil && s.cfg.Server.DrainTimeoutSeconds > 0 {
		drain = time.Duration(s.cfg.Server.DrainTimeoutSeconds) * time.Second
	}

	s.logger.Infow("Shutting down", "drain_timeout", drain)

	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}

	s.cancel()
	s.wg.Wait()

	if err != nil {
		return errors.Wrap(err, "drain http server")
	}
	return nil
}
