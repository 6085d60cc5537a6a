package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MatusOllah/slogcolor"

	"github.com/rmacedo/guild-console/internal/jobs"
	"github.com/rmacedo/guild-console/pkg/authgate"
	"github.com/rmacedo/guild-console/pkg/config"
	"github.com/rmacedo/guild-console/pkg/discord"
	"github.com/rmacedo/guild-console/pkg/extract"
	"github.com/rmacedo/guild-console/pkg/messaging"
	"github.com/rmacedo/guild-console/pkg/routes"
	"github.com/rmacedo/guild-console/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration file")
	flag.Parse()

	slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, slogcolor.DefaultOptions)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("unable to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := store.Open(cfg.DatabaseDSN())
	if err != nil {
		slog.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		slog.Error("unable to run migrations", "error", err)
		os.Exit(1)
	}
	stores := store.New(db)

	client := discord.NewClient(cfg.Discord.APIBaseURL)
	gate := authgate.NewGate(stores.Passwords, cfg.Auth.BootstrapPassword)
	issuer := authgate.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	router := &routes.WebRouter{
		Extractor: extract.New(stores.Tokens, stores.Lists, stores.Members,
			client, cfg.Discord.MemberPageLimit, cfg.Discord.RoleCacheTTL),
		Messenger: messaging.New(stores.Tokens, client, cfg.Discord.MessageDelay),
	}
	router.Initialize(*cfg, stores, gate, issuer)

	scheduler := jobs.NewScheduler(stores.Passwords, cfg.Jobs.PasswordSweepSchedule)
	if err := scheduler.Start(); err != nil {
		slog.Error("unable to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router.Handler(),
	}

	go func() {
		slog.Info("server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
