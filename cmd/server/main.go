package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/minicasino/config"
	"github.com/Ashenafi-pixel/minicasino/events"
	"github.com/Ashenafi-pixel/minicasino/logger"
	"github.com/Ashenafi-pixel/minicasino/monitoring"
	"github.com/Ashenafi-pixel/minicasino/profile"
	"github.com/Ashenafi-pixel/minicasino/round"
	"github.com/Ashenafi-pixel/minicasino/server"
	"github.com/Ashenafi-pixel/minicasino/session"
)

func main() {
	// .env in the working directory, then the project root
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal("profile store unavailable", zap.String("backend", cfg.ProfileBackend), zap.Error(err))
	}
	defer store.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		p, err := events.ConnectNATS(cfg.NATSURL, "minicasino")
		if err != nil {
			log.Warn("NATS unavailable, settlement events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	metrics := monitoring.New()
	sessions := session.NewRegistry(session.Deps{
		Store:     store,
		Results:   round.NewResultsStore(cfg.DataDir),
		History:   round.NewHistoryStore(cfg.DataDir),
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    log,
		CrashMax:  cfg.CrashMax,
		CrashSkew: cfg.CrashSkew,
		CrashTick: cfg.CrashTick,
	}, cfg.StartingBalance)
	accounts := profile.NewAccounts(store, cfg.GuestBalance, log)
	srv := server.New(cfg, accounts, sessions, metrics, log)

	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func openStore(cfg *config.Config) (profile.Store, error) {
	switch cfg.ProfileBackend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, err
		}
		return profile.OpenSQLite(cfg.SQLitePath)
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
		return profile.OpenPostgres(cfg.DatabaseURL)
	case config.BackendRedis:
		return profile.NewRedisStore(cfg.RedisAddr)
	}
	return profile.NewFileStore(cfg.DataDir)
}
