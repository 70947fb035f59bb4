package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"flexinsights/internal/adapters/feed"
	"flexinsights/internal/adapters/observability"
	redisad "flexinsights/internal/adapters/redis"
	"flexinsights/internal/app"
	"flexinsights/internal/domain"
	"flexinsights/internal/shared"
	"flexinsights/internal/storage/open"
)

// Usage: ingestor [feed.json ...]
// With no arguments it re-syncs FEED_URL if set, else FEED_PATH.
func main() {
	ctx := context.Background()
	flag.Parse()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	sources := make([]domain.FeedSource, 0, flag.NArg()+1)
	for _, p := range flag.Args() {
		sources = append(sources, feed.File{Path: p})
	}
	if len(sources) == 0 {
		if cfg.FeedURL != "" {
			c, err := feed.NewClient(cfg.FeedURL, cfg.FeedAPIKey, cfg.FeedRPS)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize feed client")
			}
			sources = append(sources, c)
		} else {
			sources = append(sources, feed.File{Path: cfg.FeedPath})
		}
	}

	log.Info().
		Str("driver", cfg.StoreDriver).
		Int("workers", cfg.Workers).
		Int("feeds", len(sources)).
		Msg("ingestor starting")

	store, err := open.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer store.Close()

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}
	ing := app.NewIngestionService(store, cache)

	// feeds are fetched in parallel; writes still go through the single writer
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, src := range sources {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(src domain.FeedSource) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := ing.Ingest(ctx, src)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("feed", fmt.Sprint(src)).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("feed", fmt.Sprint(src)).Int("reviews", n).Msg("ingest ok")
		}(src)
	}

	wg.Wait()
	if failed.Load() > 0 {
		log.Error().Int32("failed", failed.Load()).Msg("ingestion completed with failures")
		store.Close()
		os.Exit(1)
	}
	log.Info().Msg("ingestion completed")
}
