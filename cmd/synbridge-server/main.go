package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	synbridge "github.com/synian-app/synbridge"
	"github.com/synian-app/synbridge/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := run(context.Background(), logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	builder := synbridge.New().
		WithConfig(cfg.engineConfig()).
		WithAuditSink(synbridge.NewJSONWriterSink(os.Stdout))

	var redisClient *redis.Client
	if session.Driver(cfg.Session.Driver) == session.DriverRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := waitForRedis(ctx, redisClient); err != nil {
			return fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
		}
		builder = builder.WithRedis(redisClient)
		logger.Info("session store online", "driver", "redis", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("session store online", "driver", "memory")
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(engine, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
			return
		}
		listenErr <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-listenErr:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if dropped := engine.AuditDropped(); dropped > 0 {
		logger.Warn("audit events dropped", "count", dropped)
	}
	return <-listenErr
}

// waitForRedis pings with exponential backoff so the process survives a
// Redis that comes up a few seconds after it does.
func waitForRedis(ctx context.Context, client *redis.Client) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, backoff.WithContext(policy, ctx))
}
