// Package main runs the exercise-link HTTP server.
package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof on the default mux
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/api"
	snapmem "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/snapshot/memory"
	snappg "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/snapshot/postgres"
	snapsqlite "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/snapshot/sqlite"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/store/httpapi"
	storemem "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/store/memory"
	storepg "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/adapters/store/postgres"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/services"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/snapshot"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/infrastructure/config"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/pkg/logging"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/pkg/serialization"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		JSON:    cfg.Log.JSON,
		Service: "linkgraph-server",
	})

	ctx := context.Background()
	serializer := buildSerializer(cfg)

	apiConfig, cleanup, err := buildBackend(ctx, cfg, serializer)
	if err != nil {
		log.Fatalf("backend error: %v", err)
	}
	defer cleanup()
	apiConfig.Logger = logger

	server := api.New(apiConfig)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "Exercise link server is running. See /healthz, /metrics, /debug/vars, /debug/pprof/")
	})
	r.Get("/healthz", server.HealthCheck)
	r.Get("/metrics", promMetricsHandler)
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())
	r.Mount("/debug/pprof", http.DefaultServeMux)
	r.Mount("/api", server.Routes())

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr, "store", cfg.Store.Backend, "snapshots", cfg.Snapshot.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// buildSerializer maps codec and compression names onto a serializer. The
// names were validated when the config loaded.
func buildSerializer(cfg *config.Config) *serialization.Serializer {
	var codec serialization.Codec = &serialization.JSONCodec{}
	if cfg.Snapshot.Codec == "msgpack" {
		codec = &serialization.MsgPackCodec{}
	}
	return serialization.NewSerializer(serialization.SerializationConfig{
		Codec:       codec,
		Compression: serialization.CompressionType(cfg.Snapshot.Compression),
	})
}

// buildBackend wires the configured store and snapshot backends into an API
// server config. The returned cleanup closes any opened connections.
func buildBackend(ctx context.Context, cfg *config.Config, serializer *serialization.Serializer) (api.Config, func(), error) {
	var (
		apiConfig api.Config
		cleanups  []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var pool *pgxpool.Pool

	switch cfg.Store.Backend {
	case "memory":
		store := storemem.NewInMemoryStore()
		suggester := services.NewSuggestionService(store)
		store.SetSuggester(func(ctx context.Context, exerciseID string, exclude map[string]bool, count int) ([]*link.ExerciseLink, error) {
			suggestions, err := suggester.SuggestAlternatives(ctx, exerciseID, exclude, count)
			if err != nil {
				return nil, err
			}
			links := make([]*link.ExerciseLink, 0, len(suggestions))
			for i, sug := range suggestions {
				links = append(links, &link.ExerciseLink{
					ID:               "suggested-" + sug.Exercise.ID,
					SourceExerciseID: exerciseID,
					TargetExerciseID: sug.Exercise.ID,
					TargetName:       sug.Exercise.Name,
					Type:             link.TypeAlternative,
					DisplayOrder:     i,
				})
			}
			return links, nil
		})
		apiConfig.Store = store
		apiConfig.Catalog = store
		apiConfig.Register = func(_ context.Context, ex *link.Exercise) error {
			store.SeedExercises(ex)
			return nil
		}

	case "postgres":
		var err error
		pool, err = pgxpool.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return api.Config{}, cleanup, fmt.Errorf("connecting to postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)

		store := storepg.NewLinkStore(pool, serializer)
		if err := store.CreateTables(ctx); err != nil {
			return api.Config{}, cleanup, fmt.Errorf("creating tables: %w", err)
		}
		apiConfig.Store = store
		apiConfig.Catalog = store
		apiConfig.Register = store.UpsertExercise

	case "api":
		apiConfig.Store = httpapi.NewClient(httpapi.Config{
			BaseURL: cfg.Store.APIBaseURL,
			Timeout: cfg.Store.APITimeout,
		})
	}

	saver, err := buildSaver(ctx, cfg, serializer, pool, &cleanups)
	if err != nil {
		return api.Config{}, cleanup, err
	}
	apiConfig.Saver = saver

	return apiConfig, cleanup, nil
}

func buildSaver(ctx context.Context, cfg *config.Config, serializer *serialization.Serializer, pool *pgxpool.Pool, cleanups *[]func()) (snapshot.Saver, error) {
	switch cfg.Snapshot.Backend {
	case "none":
		return nil, nil

	case "memory":
		saver := snapmem.NewInMemorySaver(snapmem.InMemoryConfig{
			DefaultTTL: cfg.Snapshot.TTL,
			Serializer: serializer,
		})
		*cleanups = append(*cleanups, func() { _ = saver.Close() })
		return saver, nil

	case "postgres":
		if pool == nil {
			var err error
			pool, err = pgxpool.New(ctx, cfg.Store.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("connecting to postgres: %w", err)
			}
			*cleanups = append(*cleanups, pool.Close)
		}
		saver := snappg.NewSnapshotSaver(pool, serializer)
		if err := saver.CreateTables(ctx); err != nil {
			return nil, fmt.Errorf("creating snapshot tables: %w", err)
		}
		return saver, nil

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.Snapshot.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		*cleanups = append(*cleanups, func() { _ = db.Close() })
		saver := snapsqlite.NewSnapshotSaver(db, serializer)
		if err := saver.CreateTables(ctx); err != nil {
			return nil, fmt.Errorf("creating snapshot tables: %w", err)
		}
		return saver, nil
	}
	return nil, nil
}
