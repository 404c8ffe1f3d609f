package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hokarena/reward/internal/config"
	"github.com/hokarena/reward/internal/influx"
	"github.com/hokarena/reward/internal/logging"
	intOtel "github.com/hokarena/reward/internal/otel"
)

// logFiles collects the files opened during setup so they can be closed on exit.
type logFiles []*os.File

func (l *logFiles) open(dir, name string) (*os.File, error) {
	f, err := logging.OpenLogFile(dir, name, SessionStartTime)
	if err != nil {
		return nil, err
	}
	*l = append(*l, f)
	return f, nil
}

func (l logFiles) Close() {
	for _, f := range l {
		_ = f.Close()
	}
}

func loadConfig(configDir string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	return os.MkdirAll(config.GetString("logsDir"), 0755)
}

// setupLogging wires OTel and slog. It returns the session log file, which
// the zerolog based components write to as well.
func setupLogging(files *logFiles) (*os.File, error) {
	logsDir := config.GetString("logsDir")
	level := config.GetString("logLevel")

	logFile, err := files.open(logsDir, AppName)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	otelCfg := config.GetOTelConfig()
	providerCfg := intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		BatchTimeout:   otelCfg.BatchTimeout,
		MetricInterval: otelCfg.MetricInterval,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	}
	if otelCfg.Enabled {
		if providerCfg.LogWriter, err = files.open(logsDir, AppName+".otel"); err != nil {
			return nil, fmt.Errorf("error opening otel log file: %w", err)
		}
		if providerCfg.MetricWriter, err = files.open(logsDir, AppName+".metrics"); err != nil {
			return nil, fmt.Errorf("error opening metrics file: %w", err)
		}
	}
	OTelProvider, err = intOtel.New(providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OTel: %w", err)
	}

	SlogManager.Setup(io.MultiWriter(logFile, os.Stderr), level, OTelProvider.LoggerProvider(), EpisodeContext)
	Logger = SlogManager.Logger()
	Logger.Info("Starting", "version", CurrentVersion, "build", BuildDate, "logsDir", logsDir)

	return logFile, nil
}

// setupInflux connects to InfluxDB when enabled. It returns nil when influx
// is disabled or unusable.
func setupInflux(logFile io.Writer) *influx.Manager {
	cfg := config.GetInfluxConfig()
	backupPath := filepath.Join(config.GetString("logsDir"),
		fmt.Sprintf("%s_influx_%s.lp.gz", AppName, SessionStartTime.Format("20060102_150405")))

	m := influx.NewManager(logging.NewZerolog(logFile, config.GetString("logLevel"), "influx"), backupPath)
	if err := m.Connect(cfg); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			Logger.Error("Failed to set up InfluxDB", "error", err)
		}
		return nil
	}
	return m
}

func shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Warn("Failed to flush logs", "error", err)
	}
	if OTelProvider == nil {
		return
	}
	if err := OTelProvider.Flush(ctx); err != nil {
		Logger.Warn("Failed to flush OTel", "error", err)
	}
	if err := OTelProvider.Shutdown(ctx); err != nil {
		Logger.Warn("Failed to shut down OTel", "error", err)
	}
}
