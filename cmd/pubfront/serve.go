package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/pubfront"
	"github.com/eringen/pubfront/logger"
	"github.com/eringen/pubfront/views"
)

func runServe() error {
	cfg, err := pubfront.LoadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Output: cfg.LogOutput, Pretty: cfg.LogPretty}); err != nil {
		logger.Warn().Err(err).Msg("logger output")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []pubfront.Option
	if cfg.RedisURL != "" {
		backend, err := pubfront.NewRedisBackend(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return err
		}
		opts = append(opts, pubfront.WithCacheBackend(backend))
	}

	app := pubfront.New(cfg, views.Funcs(), opts...)
	defer app.Close()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go invalidateOnHangup(ctx, app.Index, hup)

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

// invalidateOnHangup drops the cached feed and sitemap listing on every
// SIGHUP so newly published articles show up before the TTL runs out.
func invalidateOnHangup(ctx context.Context, index *pubfront.IndexCache, hup <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := index.Invalidate(ctx); err != nil {
				logger.Warn().Err(err).Msg("invalidate listing cache")
				continue
			}
			logger.Info().Msg("listing cache invalidated")
		}
	}
}
