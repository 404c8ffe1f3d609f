// Package postgres implements the storage.Backend interface on a
// PostgreSQL connection, using the GORM queue writer.
package postgres

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/hokarena/reward/internal/config"
	"github.com/hokarena/reward/internal/database"
	gormstorage "github.com/hokarena/reward/internal/storage/gorm"
)

// Dependencies holds all dependencies for the Postgres storage backend.
// When DB is nil, Init connects with DBConfig.
type Dependencies struct {
	DB       *gorm.DB
	DBConfig config.DBConfig
	Logger   *slog.Logger
}

// Backend wraps the GORM backend with Postgres connection handling.
type Backend struct {
	*gormstorage.Backend
	deps Dependencies
}

// New creates a new Postgres storage backend. It does not connect until Init.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// Init connects, validates the connection and starts the GORM writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDB(b.deps.DBConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     b.deps.DB,
		Logger: b.deps.Logger.With("storage", "postgres"),
	})
	return b.Backend.Init()
}

// Close stops the writer and closes the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
