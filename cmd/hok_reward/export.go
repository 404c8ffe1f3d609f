package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/hokarena/reward/internal/config"
	"github.com/hokarena/reward/internal/database"
	"github.com/hokarena/reward/internal/lineup"
	"github.com/hokarena/reward/internal/logging"
	gormstorage "github.com/hokarena/reward/internal/storage/gorm"
	"github.com/hokarena/reward/internal/storage/memory"
)

func lineupsAction(configDir string, n int, w io.Writer) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	cfg := config.GetLineupConfig()

	schedule, err := lineup.NewSchedule(cfg.CampHeroes, cfg.EvalFreq, cfg.Seed)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, plan := range schedule.Take(n) {
		if err := enc.Encode(plan); err != nil {
			return err
		}
	}
	return nil
}

// exportSources opens the databases to read from. A sqlite path may name a
// single file or a directory of dumps; without one, Postgres is used with
// the usual fallback to the local sqlite file.
func exportSources(sqlitePath string) ([]*gorm.DB, func(), error) {
	level := config.GetString("logLevel")
	zl := logging.NewZerolog(os.Stderr, level, "database")

	if sqlitePath == "" {
		m := database.NewManager(zl)
		m.SqliteFilePath = filepath.Join(config.GetString("logsDir"), AppName+".db")
		if err := m.Connect(config.GetDBConfig()); err != nil {
			return nil, nil, err
		}
		return []*gorm.DB{m.DB}, func() { _ = m.Close() }, nil
	}

	paths := []string{sqlitePath}
	if info, err := os.Stat(sqlitePath); err != nil {
		return nil, nil, err
	} else if info.IsDir() {
		if paths, err = database.GetBackupDBPaths(sqlitePath); err != nil {
			return nil, nil, err
		}
	}

	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no sqlite databases in %s", sqlitePath)
	}

	var managers []*database.Manager
	closeAll := func() {
		for _, m := range managers {
			_ = m.Close()
		}
	}
	var dbs []*gorm.DB
	for _, p := range paths {
		db, err := database.GetSqliteDB(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		m := database.NewManager(zl)
		if err := m.UseDB(db); err != nil {
			closeAll()
			return nil, nil, err
		}
		managers = append(managers, m)
		dbs = append(dbs, db)
	}
	return dbs, closeAll, nil
}

func exportAction(configDir, sqlitePath, outDir string, ids []string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	dbs, closeAll, err := exportSources(sqlitePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeAll()

	for _, id := range ids {
		episodeID, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid episode id %q: %w", id, err)
		}

		txStart := time.Now()
		var lastErr error
		found := false
		for _, db := range dbs {
			record, err := gormstorage.LoadRecord(db, uint(episodeID))
			if err != nil {
				lastErr = err
				continue
			}
			path := filepath.Join(outDir, memory.ExportFileName(record.Episode, true))
			if err := memory.WriteRecord(path, record, true); err != nil {
				return err
			}
			fmt.Println("Exported episode", episodeID, "to", path, "in", time.Since(txStart))
			found = true
			break
		}
		if !found {
			return fmt.Errorf("episode %d: %w", episodeID, lastErr)
		}
	}
	return nil
}
