package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/go-chi/chi/v5"
)

// Startable represents a component that can be started.
// Components implementing this interface will have Start called during application startup.
type Startable interface {
	Start(context.Context) error
}

// Stoppable represents a component that can be stopped.
// Components implementing this interface will have Stop called during application shutdown.
type Stoppable interface {
	Stop(context.Context) error
}

// RouteRegistrar represents a component that registers HTTP routes.
// Components implementing this interface will have RegisterRoutes called during setup.
type RouteRegistrar interface {
	RegisterRoutes(chi.Router)
}

// Hook is one component lifecycle function, tagged with the component's type
// name for diagnostics.
type Hook struct {
	Name string
	Fn   func(context.Context) error
}

// Setup discovers component capabilities and builds startup/shutdown pipelines.
// It inspects each component for RouteRegistrar, Startable, and Stoppable
// interfaces, collecting start/stop hooks and route registrars in order.
func Setup(ctx context.Context, r chi.Router, comps ...any) (
	starts []Hook,
	stops []Hook,
	registrars []RouteRegistrar,
) {
	for _, c := range comps {
		name := fmt.Sprintf("%T", c)
		if rr, ok := c.(RouteRegistrar); ok {
			registrars = append(registrars, rr)
		}
		if s, ok := c.(Startable); ok {
			starts = append(starts, Hook{Name: name, Fn: s.Start})
		}
		if st, ok := c.(Stoppable); ok {
			stops = append(stops, Hook{Name: name, Fn: st.Stop})
		}
	}
	return
}

// Start executes startup hooks in order with automatic rollback on failure.
// If any start hook fails, already-started components are stopped in reverse
// order, so either all components start successfully or none remain running.
// After all components start, routes are registered.
func Start(ctx context.Context, log logger.Logger, starts []Hook, stops []Hook, registrars []RouteRegistrar, router chi.Router) error {
	started := 0
	for _, h := range starts {
		if err := h.Fn(ctx); err != nil {
			log.Errorf("error starting %s: %v", h.Name, err)
			rollback(log, stops, started)
			return err
		}
		started++
	}

	for _, rr := range registrars {
		rr.RegisterRoutes(router)
	}

	return nil
}

// rollback stops the first n started components in reverse order.
func rollback(log logger.Logger, stops []Hook, n int) {
	if n > len(stops) {
		n = len(stops)
	}
	for i := n - 1; i >= 0; i-- {
		if err := stops[i].Fn(context.Background()); err != nil {
			log.Errorf("error stopping %s during rollback: %v", stops[i].Name, err)
		}
	}
}

// Serve starts the HTTP server and blocks until it's shut down.
func Serve(router chi.Router, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop stops all components in reverse order (LIFO).
func Stop(ctx context.Context, log logger.Logger, stops []Hook) {
	for i := len(stops) - 1; i >= 0; i-- {
		if err := stops[i].Fn(ctx); err != nil {
			log.Errorf("error stopping %s: %v", stops[i].Name, err)
		}
	}
}

// Shutdown performs graceful shutdown of the HTTP server and all components.
func Shutdown(srv *http.Server, log logger.Logger, stops []Hook) {
	log.Info("Shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown failed: %v", err)
	}

	Stop(shutdownCtx, log, stops)
}
