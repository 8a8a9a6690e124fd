package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"flowfunds/internal/interfaces/scheduler"
	"flowfunds/internal/shared/config"
	"flowfunds/internal/shared/logger"
	"flowfunds/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	// Initialize telemetry (if enabled)
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		}, log)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Error("telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Initialize scheduler (if enabled)
	var sched *scheduler.Scheduler
	if cfg.Insight.Enabled {
		sched, err = scheduler.NewScheduler(scheduler.Config{
			MorningTime:  cfg.Insight.MorningTime,
			EveningTime:  cfg.Insight.EveningTime,
			WorkerCount:  cfg.Insight.WorkerCount,
			JobDelay:     cfg.Insight.JobDelay,
			QueueSize:    cfg.Insight.QueueSize,
			RunOnStartup: cfg.Insight.RunOnStartup,
			Locker:       deps.Locker,
		}, deps.NotificationService, deps.InsightService, log)
		if err != nil {
			return err
		}
		sched.Start()
		log.Info("scheduler started", zap.Time("next_run", sched.NextRun()))
	} else {
		log.Info("scheduler is disabled")
	}

	handler := SetupRoutes(deps, cfg, log)
	srv, redirectSrv, serveErr := StartServers(NewServerConfigFromConfig(handler, cfg), log)

	// Wait for interrupt signal or a fatal listen error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	case err = <-serveErr:
		log.Error("server error", zap.Error(err))
	}

	GracefulShutdown(srv, redirectSrv, sched, shutdownTimeout, log)
	return err
}
