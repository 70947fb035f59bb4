package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"flexinsights/internal/adapters/feed"
	server "flexinsights/internal/adapters/http_server"
	"flexinsights/internal/adapters/observability"
	redisad "flexinsights/internal/adapters/redis"
	"flexinsights/internal/app"
	"flexinsights/internal/domain"
	"flexinsights/internal/shared"
	"flexinsights/internal/storage/open"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	store, err := open.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer store.Close()

	// deps
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; cache disabled")
		} else {
			cache = rc
			defer rc.Close()
		}
	}
	ing, q := app.NewServices(store, cache, cfg.CacheTTL())

	// seed from the mock feed, as the dashboard expects data on first load
	if cfg.SeedOnStart {
		var src domain.FeedSource = feed.File{Path: cfg.FeedPath}
		if cfg.FeedURL != "" {
			c, err := feed.NewClient(cfg.FeedURL, cfg.FeedAPIKey, cfg.FeedRPS)
			if err != nil {
				log.Fatal().Err(err).Msg("feed client init failed")
			}
			src = c
		}
		n, err := ing.Ingest(ctx, src)
		if err != nil {
			log.Fatal().Err(err).Msg("seed ingest failed")
		}
		log.Info().Int("reviews", n).Msg("seed ingest ok")
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, A: ing})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
