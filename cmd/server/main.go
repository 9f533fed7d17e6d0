package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"locationShare/internal/api"
	"locationShare/internal/auth"
	"locationShare/internal/authz"
	"locationShare/internal/config"
	"locationShare/internal/db"
	"locationShare/internal/logging"
	"locationShare/internal/service"
	"locationShare/repository"
)

const sessionCleanupInterval = 10 * time.Minute

func main() {
	rollback := flag.Bool("rollback", false, "roll back the last applied migration and exit")
	flag.Parse()

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.Info().Stringer("config", cfg).Msg("configuration loaded")
	if cfg.Auth.UsesDevSecret() {
		logging.Warn().Msg("SESSION_SECRET is not set; using the development secret")
	}

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open db")
	}
	defer func() {
		if err := d.Close(); err != nil {
			logging.Error().Err(err).Msg("close db")
		}
	}()

	if *rollback {
		if err := db.RollbackLast(d); err != nil {
			logging.Error().Err(err).Msg("rollback")
			os.Exit(1)
		}
		return
	}

	signer, err := auth.NewTokenSigner(cfg.Auth.SessionSecret)
	if err != nil {
		logging.Fatal().Err(err).Msg("session signer")
	}
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("load authorization policy")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := auth.NewMemorySessionStore()
	go store.RunCleanup(ctx, sessionCleanupInterval)

	srv := api.NewServer(cfg.HTTP, api.Deps{
		Accounts: service.NewAccounts(repository.NewUserRepository(d), cfg.Auth.BcryptCost),
		Sessions: auth.NewSessionManager(store, signer, auth.SessionConfig{
			CookieName: cfg.Auth.CookieName,
			TTL:        cfg.Auth.SessionTTL,
			Secure:     cfg.Auth.CookieSecure,
		}),
		Enforcer: enforcer,
		DB:       d,
	})

	shutdown, err := api.StartHTTP(cfg.HTTP.Address, srv.Routes())
	if err != nil {
		logging.Fatal().Err(err).Str("address", cfg.HTTP.Address).Msg("start http")
	}

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logging.Info().Str("signal", sig.String()).Msg("shutting down")

	sctx, scancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer scancel()
	if err := shutdown(sctx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
}
