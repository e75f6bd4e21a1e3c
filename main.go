package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/overtinction/server/internal/auth"
	"github.com/overtinction/server/internal/config"
	"github.com/overtinction/server/internal/database"
	"github.com/overtinction/server/internal/handlers"
	"github.com/overtinction/server/internal/history"
	"github.com/overtinction/server/internal/middleware"
	"github.com/overtinction/server/internal/round"
)

func main() {
	cfg := &config.Config{}
	cobra.CheckErr(config.NewCommand(cfg, run).Execute())
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func run(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg.LogLevel)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := database.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	if err := auth.Init(); err != nil {
		return err
	}

	// History is optional; without Redis the orchestrator simply skips
	// publishing.
	var publisher round.EventPublisher
	if cfg.RedisAddr != "" {
		p, err := history.NewPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.HistQueue)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	rounds := round.NewService(store, store, publisher, log)
	srv := handlers.NewServer(rounds, store, log, cfg.BaseURL)

	server := &http.Server{
		Handler:      middleware.LogMiddleware(log)(srv.Router()),
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
	}

	l, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	log.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		return fmt.Errorf("failed to serve: %w", err)
	case sig := <-sigs:
		log.Infof("terminating: %v", sig)
	case <-ctx.Done():
		log.Info("context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
