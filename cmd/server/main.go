package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/all-in-store/internal/apiclient"
	"github.com/hongminglow/all-in-store/internal/catalog"
	"github.com/hongminglow/all-in-store/internal/config"
	"github.com/hongminglow/all-in-store/internal/logging"
	"github.com/hongminglow/all-in-store/internal/server"
	"github.com/hongminglow/all-in-store/internal/storage"
	"github.com/hongminglow/all-in-store/internal/storage/memory"
	postgres "github.com/hongminglow/all-in-store/internal/storage/postgres"
	"github.com/hongminglow/all-in-store/internal/views"
)

const sweepInterval = 10 * time.Minute

func main() {
	loadLocalEnv()

	logger, err := logging.Init(logging.ConfigFromEnv())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("init session store", "error", err)
	}
	defer closeSessions()
	if sweeper, ok := sessions.(storage.Sweeper); ok {
		go storage.RunSweeper(ctx, sweeper, sweepInterval, sugar)
	}

	// Outbound calls end with the request that made them; no client timeout.
	api := apiclient.New(cfg.APIBaseURL, &http.Client{}, sugar.Named("api"))
	games, err := catalog.NewCache(api, cfg.CatalogCacheTTL)
	if err != nil {
		sugar.Fatalw("init catalog cache", "error", err)
	}
	defer games.Close()

	renderer, err := views.New()
	if err != nil {
		sugar.Fatalw("parse templates", "error", err)
	}

	srv := server.New(cfg, server.Deps{
		API:      api,
		Catalog:  games,
		Sessions: sessions,
		Views:    renderer,
		Logger:   sugar,
	})

	go func() {
		sugar.Infow("storefront listening", "addr", cfg.HTTPAddress(), "api", cfg.APIBaseURL)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("http server error", "error", err)
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		sugar.Errorw("graceful shutdown error", "error", err)
	}
}

// openSessionStore picks Postgres when DATABASE_URL is set and the in-memory
// store otherwise.
func openSessionStore(ctx context.Context, cfg config.Config) (storage.SessionStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return memory.NewStore(), func() {}, nil
	}
	store, err := postgres.NewSessionStore(ctx, cfg.DatabaseURL, cfg.SessionSecret)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
