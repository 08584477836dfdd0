package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pefman/legacy-idle/internal/config"
	"github.com/pefman/legacy-idle/internal/content"
	"github.com/pefman/legacy-idle/internal/logger"
	"github.com/pefman/legacy-idle/internal/scaling"
	"github.com/pefman/legacy-idle/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	catalog, err := catalogFrom(cfg)
	if err != nil {
		log.Fatal("load content", zap.Error(err))
	}

	var cache scaling.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Warn("redis unavailable, using memory cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
		} else {
			defer rdb.Close()
			cache = scaling.NewRedisCache(rdb, "legacy-idle:scaled:", cfg.ContentCacheTTL)
		}
	}

	var db *store.Store
	if cfg.DBPath != "" {
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			log.Fatal("open store", zap.String("path", cfg.DBPath), zap.Error(err))
		}
		defer db.Close()
	}

	g := newGameServer(log, catalog, cache, db, cfg.TickInterval)
	httpServer := &http.Server{
		Addr:              ":" + cfg.GamePort,
		Handler:           g.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("game listening",
			zap.String("addr", httpServer.Addr),
			zap.String("data_api", cfg.DataAPIBase),
			zap.Duration("tick", cfg.TickInterval),
			zap.String("version", buildVersion),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("game server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

// catalogFrom reads content from the content API when DATA_API_BASE is set
// and from the embedded tables otherwise.
func catalogFrom(cfg *config.Config) (catalogSource, error) {
	if cfg.DataAPIBase == "" {
		cat, err := content.Default()
		if err != nil {
			return nil, err
		}
		return func(context.Context) (*content.Static, error) { return cat, nil }, nil
	}
	client := content.NewClient(cfg.DataAPIBase, cfg.ContentCacheTTL)
	return client.Catalog, nil
}
