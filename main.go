package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func newLogger(cfg LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("❌ invalid config", zap.String("path", *configPath), zap.Error(err))
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("🚀 Room Pathfinder Server")

	registry := NewRoomRegistry(cfg, logger)
	if _, err := loadRoomsFromDir(cfg.RoomsDir, registry, logger); err != nil {
		logger.Warn("⚠️  Failed to load rooms", zap.String("dir", cfg.RoomsDir), zap.Error(err))
	}
	if registry.Len() == 0 {
		logger.Info("ℹ️  No rooms found (add YAML room templates to the rooms directory)", zap.String("dir", cfg.RoomsDir))
	}

	if cfg.WatchRooms {
		watcher, err := NewRoomWatcher(registry, logger, cfg.RoomsDir)
		if err != nil {
			logger.Warn("⚠️  Room hot reload disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			go func() {
				for file := range watcher.Reloaded {
					logger.Info("🔄 Room file reloaded", zap.String("file", file))
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: NewServer(registry, logger).Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("⚠️  Shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Server starting", zap.String("addr", cfg.ListenAddr), zap.Strings("rooms", registry.IDs()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
