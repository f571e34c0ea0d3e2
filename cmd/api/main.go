package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/recipebox/recipe-api/internal/config"
	"github.com/recipebox/recipe-api/internal/crypto"
	"github.com/recipebox/recipe-api/internal/handler"
	"github.com/recipebox/recipe-api/internal/model"
	"github.com/recipebox/recipe-api/internal/repository"
	"github.com/recipebox/recipe-api/internal/service"
	"github.com/recipebox/recipe-api/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			slog.Error("database migration failed", "error", err)
			os.Exit(1)
		}
	}

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		slog.Error("image storage unavailable", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	tagRepo := repository.NewAttributeRepository(db, model.KindTag)
	ingredientRepo := repository.NewAttributeRepository(db, model.KindIngredient)

	routes := handler.RouterConfig{
		Auth: service.NewAuthService(
			repository.NewUserRepository(db),
			repository.NewTokenRepository(db),
			crypto.NewHasher(crypto.DefaultHashParams()),
		),
		Tags:           service.NewAttributeService(tagRepo),
		Ingredients:    service.NewAttributeService(ingredientRepo),
		Recipes:        service.NewRecipeService(repository.NewRecipeRepository(db), tagRepo, ingredientRepo, images),
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
	}

	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewDBStatsCollector(db, "recipes"),
		)
		routes.Registry = reg
	}

	// Serve local media ourselves only when MEDIA_URL is a path on this host.
	if cfg.Storage.Backend == "local" && strings.HasPrefix(cfg.Storage.MediaURL, "/") {
		routes.MediaRoot = cfg.Storage.MediaRoot
		routes.MediaPrefix = cfg.Storage.MediaURL
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
