package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"gorm.io/gorm"

	"github.com/hokarena/reward/internal/episode"
	"github.com/hokarena/reward/internal/influx"
	"github.com/hokarena/reward/internal/model"
	"github.com/hokarena/reward/internal/storage"
)

// DefaultInterval is used when Dependencies.Interval is not set.
const DefaultInterval = 10 * time.Second

// Stats reports scoring progress.
type Stats interface {
	FramesScored() uint64
	Episodes() uint64
}

// PointWriter receives influx points.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Stats          Stats
	Queues         storage.QueueReporter // optional
	EpisodeContext *episode.Context
	Influx         PointWriter // optional
	DB             *gorm.DB    // optional
	StatusPath     string      // optional
	Interval       time.Duration
	Logger         *slog.Logger
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.EpisodeContext == nil {
		deps.EpisodeContext = episode.NewContext()
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus returns the current program status as printable lines
// and as a performance row.
func (s *Service) GetProgramStatus(writeQueues bool, lastWrite bool) (output []string, perf model.ScorerPerformance) {
	perf.Time = time.Now()
	if ep := s.deps.EpisodeContext.GetEpisode(); ep != nil {
		perf.EpisodeID = ep.ID
	}
	if s.deps.Stats != nil {
		perf.FramesScored = s.deps.Stats.FramesScored()
		perf.Episodes = s.deps.Stats.Episodes()
	}
	if s.deps.Queues != nil {
		perf.WriteQueueLengths = s.deps.Queues.QueueLengths()
		perf.LastWriteDurationMs = float32(s.deps.Queues.GetLastDBWriteDuration().Milliseconds())
	}

	output = append(output, fmt.Sprintf("frames scored: %d, episodes: %d", perf.FramesScored, perf.Episodes))
	if writeQueues {
		writeQueuesStr, err := json.MarshalIndent(perf.WriteQueueLengths, "", "  ")
		if err != nil {
			writeQueuesStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
		}
		output = append(output, string(writeQueuesStr))
	}
	if lastWrite {
		lastWriteStr, err := json.MarshalIndent(perf.LastWriteDurationMs, "", "  ")
		if err != nil {
			lastWriteStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
		}
		output = append(output, string(lastWriteStr))
	}

	return output, perf
}

// Collect takes one status snapshot and writes it to every configured sink.
func (s *Service) Collect(ctx context.Context, statusFile *os.File) {
	logger := s.deps.Logger
	statusStr, perf := s.GetProgramStatus(true, true)

	if statusFile != nil {
		if err := statusFile.Truncate(0); err != nil {
			logger.Error("Error truncating status file", "error", err)
		}
		if _, err := statusFile.Seek(0, 0); err != nil {
			logger.Error("Error rewinding status file", "error", err)
		}
		for _, line := range statusStr {
			if _, err := statusFile.WriteString(line + "\n"); err != nil {
				logger.Error("Error writing status file", "error", err)
				break
			}
		}
	}

	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePoint(ctx, influx.BucketPerformance, influx.PerformancePoint(perf)); err != nil {
			logger.Error("Error writing perf point to InfluxDB", "error", err)
		}
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Create(&perf).Error; err != nil {
			logger.Error("Error writing perf model to database", "error", err)
		}
	}
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}

	var statusFile *os.File
	if s.deps.StatusPath != "" {
		f, err := os.Create(s.deps.StatusPath)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("error creating status file: %w", err)
		}
		statusFile = f
	}

	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()
		if statusFile != nil {
			defer statusFile.Close()
		}

		logger := s.deps.Logger
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				s.Collect(context.Background(), statusFile)
				return
			case <-ticker.C:
				if s.deps.Stats != nil && s.deps.Stats.FramesScored() == 0 {
					continue
				}
				s.Collect(context.Background(), statusFile)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor after a final snapshot.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	s.isRunning = false
	done := s.done
	s.mu.Unlock()
	<-done
}
