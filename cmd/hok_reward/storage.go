package main

import (
	"fmt"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/hokarena/reward/internal/config"
	"github.com/hokarena/reward/internal/storage"
	"github.com/hokarena/reward/internal/storage/memory"
	pgstorage "github.com/hokarena/reward/internal/storage/postgres"
	sqlitestorage "github.com/hokarena/reward/internal/storage/sqlite"
)

func initStorage() (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	backend, err := createStorageBackend(storageCfg)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return nil, err
	}
	return backend, nil
}

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		Logger.Info("Postgres storage backend initialized")
		return pgstorage.New(pgstorage.Dependencies{
			DBConfig: config.GetDBConfig(),
			Logger:   Logger,
		}), nil

	case "sqlite":
		dumpPath := storageCfg.SQLite.DumpPath
		if dumpPath == "" {
			dumpPath = filepath.Join(config.GetString("logsDir"), fmt.Sprintf("%s_%s.db", AppName, SessionStartTime.Format("20060102_150405")))
		}
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     dumpPath,
		}, Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		Logger.Info("SQLite storage backend initialized", "dumpPath", dumpPath)
		return backend, nil

	case "memory", "":
		Logger.Info("Memory storage backend initialized", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// dbProvider is implemented by the database backed storage types.
type dbProvider interface {
	DB() *gorm.DB
}

// storageDB returns the connection of a database backed storage, or nil.
func storageDB(b storage.Backend) *gorm.DB {
	if p, ok := b.(dbProvider); ok {
		return p.DB()
	}
	return nil
}
