package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/partygames/truthordare/internal/fakeapi"
	"github.com/partygames/truthordare/internal/observability"
)

type devServerOptions struct {
	addr          string
	dbDriver      string
	dbDSN         string
	secret        string
	accessTTL     time.Duration
	authRateLimit int
	seed          bool
	seedEmail     string
	seedPassword  string
}

func newDevServerCommand(opts *options) *cobra.Command {
	dev := &devServerOptions{}
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Serve the REST API locally for development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDevServer(cmd, opts, dev)
		},
	}
	cmd.Flags().StringVar(&dev.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dev.dbDriver, "db-driver", "sqlite", "sqlite or postgres")
	cmd.Flags().StringVar(&dev.dbDSN, "db-dsn", "", "database DSN; empty sqlite means in-memory")
	cmd.Flags().StringVar(&dev.secret, "secret", "", "token signing secret")
	cmd.Flags().DurationVar(&dev.accessTTL, "access-ttl", 15*time.Minute, "access token lifetime")
	cmd.Flags().IntVar(&dev.authRateLimit, "auth-rate-limit", 30, "auth requests per client per minute, 0 disables")
	cmd.Flags().BoolVar(&dev.seed, "seed", true, "create a demo account with sample collections")
	cmd.Flags().StringVar(&dev.seedEmail, "seed-email", "demo@example.com", "demo account email")
	cmd.Flags().StringVar(&dev.seedPassword, "seed-password", "demo-pass", "demo account password")
	return cmd
}

func runDevServer(cmd *cobra.Command, opts *options, dev *devServerOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg, os.Stderr, nil)

	db, err := fakeapi.OpenDB(dev.dbDriver, dev.dbDSN)
	if err != nil {
		return err
	}
	store, err := fakeapi.NewStore(db)
	if err != nil {
		return err
	}
	srv := fakeapi.NewServer(store, fakeapi.Options{Secret: dev.secret, AccessTTL: dev.accessTTL, AuthRateLimit: dev.authRateLimit}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if dev.seed {
		if err := srv.Seed(ctx, dev.seedEmail, dev.seedPassword, fakeapi.DemoCollections); err != nil {
			return err
		}
	}

	httpServer := &http.Server{
		Addr:              dev.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("dev server listening", "addr", dev.addr, "db_driver", dev.dbDriver)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("dev server shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
