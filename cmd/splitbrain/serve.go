package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/parietal-io/splitbrain/pkg/logging"
	"github.com/parietal-io/splitbrain/pkg/neurodb"
	"github.com/parietal-io/splitbrain/server"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// runServe starts the dissociation HTTP API.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Optional YAML config file")
	host := fs.String("host", "", "Listen host (overrides config)")
	port := fs.Int("port", 0, "Listen port (overrides config)")
	mode := fs.String("mode", "", "Server mode: development or production")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// .env is optional; deployments set DB_URL in the environment.
	_ = godotenv.Load()

	cfg, err := server.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *mode != "" {
		cfg.Mode = *mode
	}

	url, err := neurodb.URLFromEnv()
	if err != nil {
		return err
	}

	// Resolve the store eagerly and ping it so a bad DB_URL is fatal
	// here, not on the first request.
	provider := neurodb.NewProvider(cfg.Database.PoolConfig(url))
	defer provider.Close()

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := provider.Store(startCtx)
	if err != nil {
		return fmt.Errorf("open study database: %w", err)
	}
	if err := store.Ping(startCtx); err != nil {
		return fmt.Errorf("verify study database: %w", err)
	}

	srv, err := server.New(cfg, &server.Dependencies{Store: store})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-ctx.Done():
			// Start failed; nothing to shut down.
			return nil
		case sig := <-quit:
			logging.Info(context.Background(), "server.signal", map[string]any{
				"signal": sig.String(),
			})
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(stopCtx)
	})

	err = g.Wait()
	logging.Flush(context.Background())
	return err
}
