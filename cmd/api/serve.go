package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"env-access-broker/internal/adapters/storage/dynamo"
	pg "env-access-broker/internal/adapters/storage/postgres"
	"env-access-broker/internal/config"
	"env-access-broker/internal/domain/accessgrants"
	"env-access-broker/internal/domain/envrequests"
	"env-access-broker/internal/platform/logger"
	"env-access-broker/internal/platform/metrics"
	"env-access-broker/internal/router"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background grant sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	envRepo, closeStore, err := openEnvRequestStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rt, err := router.NewRouter(router.Options{
		Config:      cfg,
		Logger:      log,
		Metrics:     metrics.New(),
		EnvRequests: envRepo,
	})
	if err != nil {
		return err
	}

	var sweeper *accessgrants.Sweeper
	if cfg.SweepSchedule != "" {
		sweeper, err = accessgrants.NewSweeper(rt.Grants, cfg.SweepSchedule, log)
		if err != nil {
			return err
		}
		sweeper.Start()
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      rt,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{
			"addr":    srv.Addr,
			"backend": cfg.StoreBackend,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if sweeper != nil {
			sweeper.Stop(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openEnvRequestStore devuelve nil para memory (el router usa su default).
func openEnvRequestStore(ctx context.Context, cfg config.Config, log logger.Logger) (envrequests.Repository, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := pg.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.Migrate(db); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		log.Info("env request store ready", map[string]any{"backend": cfg.StoreBackend})
		return pg.NewEnvRequestsRepo(db), func() { _ = db.Close() }, nil

	case config.BackendDynamoDB:
		client := dynamo.NewClient(dynamo.ClientConfig{
			Region:          cfg.AWSRegion,
			EndpointURL:     cfg.DynamoDBEndpointURL,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		log.Info("env request store ready", map[string]any{
			"backend": cfg.StoreBackend,
			"table":   cfg.DynamoDBTable,
		})
		return dynamo.NewEnvRequestsRepo(client, cfg.DynamoDBTable), noop, nil

	default:
		return nil, noop, nil
	}
}
