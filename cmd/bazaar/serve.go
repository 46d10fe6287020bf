package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/bazaarhq/bazaar/internal/config"
	httpapp "github.com/bazaarhq/bazaar/internal/http"
	"github.com/bazaarhq/bazaar/internal/http/authn"
	"github.com/bazaarhq/bazaar/internal/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	httpReadHeaderTimeout = 5 * time.Second
	httpShutdownTimeout   = 10 * time.Second
	sessionCleanupEvery   = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the HTTP server.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogAnnotation(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.LoadOptionalDB()
	if err != nil {
		return err
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadProviderSecrets(ctx, &cfg, logger); err != nil {
		return err
	}
	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	screens, err := buildScreens(cfg, provider)
	if err != nil {
		return err
	}

	var store scs.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgStore := pgxstore.NewWithCleanupInterval(pool, sessionCleanupEvery)
		defer pgStore.StopCleanup()
		store = pgStore
		logger.Info("sessions stored in postgres")
	} else {
		logger.Warn("DATABASE_URL not set; sessions are kept in memory")
	}

	sessions := authn.New(authn.NewManager(store, cfg.SessionLifetime, cfg.AuthCookieSecure))
	srv, err := httpapp.NewEchoServer(httpapp.Options{
		Sessions:  sessions,
		Screens:   screens,
		StaticDir: "web/static",
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: httpReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr, "auth_provider", provider.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return metrics.Serve(gctx, cfg.MetricsAddr, logger)
	})
	return g.Wait()
}
