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

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-admin/cmd/odyssey/cli"
	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/hr"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

const usage = "usage: odyssey [serve|backup|restore|status]"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	switch command {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "backup", "restore", "status":
		err = operate(ctx, cfg, logger, command)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(command, slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	redisClient, err := storage.Dial(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store, closeStore, err := app.OpenStorage(ctx, cfg, redisClient)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStore()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	// The worker cannot see in-process memory storage, so those backups run inline.
	var backups dashboard.Backuper
	if cfg.StorageDriver != app.DriverMemory {
		client, err := jobs.NewClient(redisOpts)
		if err != nil {
			return fmt.Errorf("init job client: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		backups = client
	}

	dash, err := app.Wire(ctx, app.WireParams{
		Config:    cfg,
		Logger:    logger,
		Redis:     redisClient,
		Storage:   store,
		Backups:   backups,
		Inspector: inspector,
		Metrics:   observability.NewMetrics(),
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      dash.Handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}

func operate(ctx context.Context, cfg *app.Config, logger *slog.Logger, command string) error {
	redisClient, err := storage.Dial(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	store, closeStore, err := app.OpenStorage(ctx, cfg, redisClient)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStore()

	queueAddr := cfg.RedisAddr
	if cfg.StorageDriver == app.DriverMemory {
		queueAddr = ""
	}
	ops, err := cli.NewJobsCLI(queueAddr, store, jobs.NewBackupJob(store, hr.Keys(), logger, nil))
	if err != nil {
		return err
	}
	defer ops.Close()

	switch command {
	case "backup":
		queued, err := ops.Backup(ctx, "cli")
		if errors.Is(err, jobs.ErrBackupQueued) {
			fmt.Println("backup already queued")
			return nil
		}
		if err != nil {
			return err
		}
		if queued {
			fmt.Println("backup queued")
		} else {
			fmt.Println("backup completed")
		}
	case "restore":
		n, err := ops.Restore(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("restored %d collections; restart the dashboard to reload them\n", n)
	case "status":
		return ops.Status(ctx, os.Stdout)
	}
	return nil
}
