// Package main implements the reference worker host for the bootsteps
// orchestrator. It claims the "worker" namespace, brings its components up
// in dependency order, and tears them down on POSIX shutdown signals.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360/bootsteps/boot"
	"github.com/c360/bootsteps/config"
	"github.com/c360/bootsteps/metric"
)

const appName = "worker"

type cliConfig struct {
	configPath string
	logLevel   string
	logFormat  string
	validate   bool
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Worker failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cli := parseFlags()
	logger := newLogger(cli.logLevel, cli.logFormat)
	slog.SetDefault(logger)

	cfg := config.Default()
	if cli.configPath != "" {
		loaded, err := config.Load(cli.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cli.validate {
		logger.Info("Configuration is valid")
		return nil
	}

	metricsRegistry := metric.NewMetricsRegistry()
	worker := NewWorker(cfg, logger, metricsRegistry)

	ns := boot.New("worker",
		boot.WithLogger(logger),
		boot.WithMetrics(metricsRegistry),
		boot.WithModules(RegisterSteps),
		boot.WithContinueOnStopError(),
		boot.WithOnStart(func() {
			logger.Info("Worker starting", "instance_id", worker.instanceID)
		}),
		boot.WithOnStopped(func() {
			logger.Info("Worker stopped")
		}),
	)

	ctx := context.Background()
	if err := ns.Apply(worker, nil); err != nil {
		return err
	}
	if err := ns.Start(ctx, worker); err != nil {
		// Bring-up failed partway; Stop knows only close calls are safe.
		logger.Error("Startup failed, shutting down", "error", err)
		_ = ns.Stop(ctx, worker)
		return err
	}
	logger.Info("Worker running", "components", len(worker.Components()))

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-sigCh
		logger.Info("Shutdown signal received", "signal", sig.String())
		if sig == syscall.SIGQUIT {
			if err := ns.Terminate(ctx, worker); err != nil {
				logger.Error("Terminate failed", "error", err)
			}
			return
		}
		if err := ns.Stop(ctx, worker); err != nil {
			logger.Error("Stop failed", "error", err)
		}
	}()

	ns.Join(ctx)
	return nil
}

func parseFlags() cliConfig {
	var cli cliConfig
	flag.StringVar(&cli.configPath, "config", "", "path to YAML configuration file")
	flag.StringVar(&cli.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&cli.logFormat, "log-format", "text", "log format (text, json)")
	flag.BoolVar(&cli.validate, "validate", false, "validate configuration and exit")
	flag.Parse()
	return cli
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler).With("app", appName)
}
