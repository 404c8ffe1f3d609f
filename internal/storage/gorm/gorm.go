// Package gormstorage implements the storage.Backend interface using GORM
// with internal queues and a background DB writer goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/hokarena/reward/internal/model"
	"github.com/hokarena/reward/internal/model/convert"
	"github.com/hokarena/reward/internal/queue"
	"github.com/hokarena/reward/pkg/core"
)

// DefaultWriteInterval is how often the writer drains the queues.
const DefaultWriteInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	WriteInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	FrameRewards *queue.Queue[model.FrameReward]
	Summaries    *queue.Queue[model.EpisodeSummary]
}

func newQueues() *queues {
	return &queues{
		FrameRewards: queue.New[model.FrameReward](),
		Summaries:    queue.New[model.EpisodeSummary](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	episodeID atomic.Uint64
	lastWrite atomic.Int64
	writeMu   sync.Mutex
	stopChan  chan struct{}
	done      chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.WriteInterval <= 0 {
		deps.WriteInterval = DefaultWriteInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
// Without a DB the backend only queues, which is useful for tests.
func (b *Backend) Init() error {
	if b.deps.DB != nil {
		b.deps.Logger.Info("Migrating schema")
		if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.startDBWriter()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	<-b.done
	b.stopChan = nil
	return b.Flush()
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// StartEpisode inserts the episode synchronously because frame rows need its ID.
func (b *Backend) StartEpisode(ep *core.Episode) error {
	if b.deps.DB == nil {
		b.episodeID.Store(uint64(ep.ID))
		return nil
	}

	gormEp := convert.CoreToEpisode(*ep)
	if err := b.deps.DB.Create(&gormEp).Error; err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}

	ep.ID = gormEp.ID
	b.episodeID.Store(uint64(gormEp.ID))
	return nil
}

// SetEpisodeID sets the episode ID stamped on rows that carry none.
func (b *Backend) SetEpisodeID(id uint) {
	b.episodeID.Store(uint64(id))
}

// EndEpisode writes everything queued for the episode.
func (b *Backend) EndEpisode() error {
	return b.Flush()
}

// RecordFrameReward converts and queues a frame reward.
func (b *Backend) RecordFrameReward(f *core.FrameReward) error {
	b.queues.FrameRewards.Push(convert.CoreToFrameReward(*f))
	return nil
}

// RecordSummary converts and queues an episode summary.
func (b *Backend) RecordSummary(s *core.EpisodeSummary) error {
	b.queues.Summaries.Push(convert.CoreToEpisodeSummary(*s))
	return nil
}

// QueueLengths reports the pending rows per queue.
func (b *Backend) QueueLengths() model.WriteQueueLengths {
	return model.WriteQueueLengths{
		FrameRewards: uint32(b.queues.FrameRewards.Len()),
		Summaries:    uint32(b.queues.Summaries.Len()),
	}
}

// GetLastDBWriteDuration returns how long the last write cycle took.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load())
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the items go back to the head of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T)) error {
	if q.Empty() {
		return nil
	}

	items := q.Drain()
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Error writing queue", "queue", name, "rows", len(items), "error", err)
		tx.Rollback()
		q.Requeue(items...)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tx.Commit().Error; err != nil {
		q.Requeue(items...)
		return fmt.Errorf("committing %s: %w", name, err)
	}

	log.Debug("Wrote queue", "queue", name, "rows", len(items))
	return nil
}

// Flush runs one write cycle.
func (b *Backend) Flush() error {
	if b.deps.DB == nil {
		return nil
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	start := time.Now()

	// Read episodeID once per write cycle
	episodeID := uint(b.episodeID.Load())

	stampFrameRewards := func(items []model.FrameReward) {
		for i := range items {
			if items[i].EpisodeID == 0 {
				items[i].EpisodeID = episodeID
			}
		}
	}
	stampSummaries := func(items []model.EpisodeSummary) {
		for i := range items {
			if items[i].EpisodeID == 0 {
				items[i].EpisodeID = episodeID
			}
		}
	}

	err := errors.Join(
		writeQueue(b.deps.DB, b.queues.FrameRewards, "frame rewards", b.deps.Logger, stampFrameRewards),
		writeQueue(b.deps.DB, b.queues.Summaries, "episode summaries", b.deps.Logger, stampSummaries),
	)

	b.lastWrite.Store(int64(time.Since(start)))
	return err
}

// startDBWriter periodically drains queues into the DB until Close.
func (b *Backend) startDBWriter() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.WriteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.Logger.Warn("DB write cycle failed", "error", err)
			}
		}
	}
}
