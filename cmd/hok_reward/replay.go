package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hokarena/reward/internal/config"
	"github.com/hokarena/reward/internal/dispatcher"
	"github.com/hokarena/reward/internal/logging"
	"github.com/hokarena/reward/internal/monitor"
	"github.com/hokarena/reward/internal/parser"
	"github.com/hokarena/reward/internal/replay"
	"github.com/hokarena/reward/internal/reward"
	"github.com/hokarena/reward/internal/session"
	"github.com/hokarena/reward/internal/storage"
)

// agentSlots is the number of scored agents in a 1v1 episode.
const agentSlots = 2

func newEngines(rc config.RewardConfig) ([]*reward.Engine, error) {
	opts := []reward.Option{
		reward.WithLogger(Logger.With("component", "reward")),
		reward.WithMeter(OTelProvider.Meter("github.com/hokarena/reward/internal/reward")),
	}
	if rc.Strict {
		opts = append(opts, reward.WithStrictValidation())
	}

	engines := make([]*reward.Engine, agentSlots)
	for i := range engines {
		e, err := reward.NewEngine(rc.Engine(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create reward engine: %w", err)
		}
		engines[i] = e
	}
	return engines, nil
}

func replayAction(configDir string, files []string) error {
	if err := loadConfig(configDir); err != nil {
		return err
	}

	var logs logFiles
	defer logs.Close()
	logFile, err := setupLogging(&logs)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	rc := config.GetRewardConfig()
	engines, err := newEngines(rc)
	if err != nil {
		return err
	}

	backend, err := initStorage()
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	influxManager := setupInflux(logFile)
	if influxManager != nil {
		defer func() {
			if err := influxManager.Close(); err != nil {
				Logger.Error("Failed to close InfluxDB", "error", err)
			}
		}()
	}

	level := config.GetString("logLevel")
	eventDispatcher, err := dispatcher.NewWithMeter(
		logging.NewDispatcherLogger(logging.NewZerolog(logFile, level, "dispatcher")),
		OTelProvider.Meter("github.com/hokarena/reward/internal/dispatcher"),
	)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer eventDispatcher.Close()

	deps := session.Dependencies{
		Parser:           parser.NewParser(Logger.With("component", "parser"), rc.Strict),
		Backend:          backend,
		EpisodeContext:   EpisodeContext,
		Terminal:         rc.Terminal,
		FrameSampleEvery: config.GetInfluxConfig().FrameSampleEvery,
		Logger:           Logger.With("component", "session"),
	}
	if influxManager != nil {
		deps.Influx = influxManager
	}
	sessionManager, err := session.NewManager(deps, engines...)
	if err != nil {
		return err
	}
	sessionManager.RegisterHandlers(eventDispatcher)
	Logger.Info("Session handlers registered with dispatcher", "weights", engines[0].Weights())

	monitorDeps := monitor.Dependencies{
		Stats:          sessionManager,
		EpisodeContext: EpisodeContext,
		DB:             storageDB(backend),
		StatusPath:     filepath.Join(config.GetString("logsDir"), "status.txt"),
		Interval:       config.GetDuration("monitor.interval"),
		Logger:         Logger.With("component", "monitor"),
	}
	if q, ok := backend.(storage.QueueReporter); ok {
		monitorDeps.Queues = q
	}
	if influxManager != nil {
		monitorDeps.Influx = influxManager
	}
	monitorService := monitor.NewService(monitorDeps)
	if err := monitorService.Start(); err != nil {
		Logger.Warn("Status monitor not started", "error", err)
	}
	defer monitorService.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var total replay.Stats
	for _, path := range files {
		stats, err := replay.PlayFile(ctx, path, eventDispatcher, Logger)
		total.Events += stats.Events
		total.Failed += stats.Failed
		if err != nil {
			Logger.Error("Replay stopped", "file", path, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		Logger.Info("Replay finished", "file", path, "events", stats.Events, "failed", stats.Failed)
	}

	if err := sessionManager.Close(); err != nil {
		Logger.Error("Failed to close open episode", "error", err)
	}
	Logger.Info("Done",
		"files", len(files),
		"events", total.Events,
		"failed", total.Failed,
		"frames", sessionManager.FramesScored(),
		"episodes", sessionManager.Episodes())
	return nil
}
