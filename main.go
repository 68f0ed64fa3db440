package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/foliohq/folio/internal/feat/admin"
	"github.com/foliohq/folio/internal/feat/auth"
	"github.com/foliohq/folio/internal/feat/content"
	"github.com/foliohq/folio/internal/feat/prefs"
	"github.com/foliohq/folio/internal/feat/remote"
	"github.com/foliohq/folio/pkg/fl/app"
	"github.com/foliohq/folio/pkg/fl/config"
	"github.com/foliohq/folio/pkg/fl/database"
	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/foliohq/folio/pkg/fl/middleware"
	"github.com/go-chi/chi/v5"
)

//go:embed assets/migrations/sqlite/*.sql
var migrationsFS embed.FS

func main() {
	ctx := context.Background()

	cfg := config.Load()
	log := logger.New(cfg.Log.Level)

	log.Infof("Starting Folio [%s mode]", cfg.Env)
	log.Infof("Database: %s", cfg.Database.Path)
	log.Infof("Content store: %s", cfg.Remote.BaseURL)

	db := database.New(migrationsFS, "assets/migrations/sqlite", cfg, log)

	store := remote.NewClient(cfg, log)

	authService := auth.NewService(db, cfg, log)
	prefsService := prefs.NewService(db, cfg, log)

	requiredSessionMw := middleware.Session(authService)

	projects := content.NewCollection(store.Projects(), log)
	blogs := content.NewCollection(store.Blogs(), log)
	slides := content.NewCollection(store.Slides(), log)
	pipeline := content.NewPipeline(store, log)

	authHandler := auth.NewHandler(authService, cfg, log)
	adminHandler := admin.NewHandler(store, prefsService, projects, blogs, slides, pipeline, requiredSessionMw, cfg, log)

	authSeeder := auth.NewSeeder(authService, cfg, log)

	router := chi.NewRouter()
	middleware.DefaultStack(router)

	deps := []any{db, store, authService, prefsService, authSeeder, authHandler, adminHandler}

	starts, stops, registrars := app.Setup(ctx, router, deps...)
	if err := app.Start(ctx, log, starts, stops, registrars, router); err != nil {
		log.Errorf("Startup failed: %v", err)
		os.Exit(1)
	}

	go app.Serve(router, cfg.Server.Addr)
	log.Infof("Server listening on %s", cfg.Server.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Stop(ctx, log, stops)
	log.Info("Server stopped")
}
