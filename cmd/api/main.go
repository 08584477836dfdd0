package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pefman/legacy-idle/internal/config"
	"github.com/pefman/legacy-idle/internal/content"
	"github.com/pefman/legacy-idle/internal/logger"
	"github.com/pefman/legacy-idle/internal/stats"
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

	catalog, err := content.Default()
	if err != nil {
		log.Fatal("load content", zap.Error(err))
	}

	var db *store.Store
	if cfg.DBPath != "" {
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			log.Fatal("open store", zap.String("path", cfg.DBPath), zap.Error(err))
		}
		defer db.Close()
	}

	srv := newServer(log, catalog, stats.NewRecords(), db)
	httpServer := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      srv.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api server", zap.Error(err))
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
