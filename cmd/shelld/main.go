package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shellchain/config"
	"shellchain/core/runtime"
	"shellchain/indexer"
	"shellchain/native/world"
	"shellchain/observability/logging"
	telemetry "shellchain/observability/otel"
	"shellchain/rpc"
	"shellchain/storage"
)

const serviceName = "shelld"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "shelld: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(serviceName, cfg.Node.Environment, cfg.LoggingOptions())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.TelemetryConfig(serviceName))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	db, err := storage.NewLevelDB(cfg.Node.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	archive, err := indexer.Open(cfg.Indexer.Driver, cfg.Indexer.DSN)
	if err != nil {
		db.Close()
		return fmt.Errorf("open event archive: %w", err)
	}
	defer archive.Close()

	rc, err := cfg.RuntimeConfig()
	if err != nil {
		db.Close()
		return err
	}
	rt, err := runtime.New(db, rc, runtime.WithLogger(logger), runtime.WithRecordSink(archive))
	if err != nil {
		db.Close()
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close()

	genesis, err := cfg.Genesis()
	if err != nil {
		return err
	}
	if err := rt.InitGenesis(ctx, genesis); err != nil && !errors.Is(err, world.ErrGenesisAlreadyApplied) {
		return fmt.Errorf("apply genesis: %w", err)
	}

	server, err := rpc.NewServer(rpc.Config{
		Backend:   rt,
		Archive:   archive,
		Stream:    rt.Hub(),
		Logger:    logger,
		RateLimit: rpc.RateLimit{RequestsPerMinute: 600, Burst: 60},
		Metrics:   true,
	})
	if err != nil {
		return err
	}

	go runClock(ctx, rt, cfg.Node.TickInterval, logger)

	logger.Info("shelld started",
		slog.String("data_dir", cfg.Node.DataDir),
		slog.String("listen", cfg.Node.ListenAddress),
		slog.Duration("tick", cfg.Node.TickInterval))
	if err := server.Serve(ctx, cfg.Node.ListenAddress); err != nil {
		return fmt.Errorf("query api: %w", err)
	}
	logger.Info("shelld stopped")
	return nil
}

// runClock drives the era clock until ctx is done.
func runClock(ctx context.Context, rt *runtime.Runtime, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			advanced, err := rt.Tick(ctx)
			if err != nil {
				logger.Error("era tick failed", slog.Any("error", err))
				continue
			}
			if advanced {
				if info, err := rt.World(); err == nil {
					logger.Info("era advanced", slog.Uint64("era", info.Era))
				}
			}
		}
	}
}
