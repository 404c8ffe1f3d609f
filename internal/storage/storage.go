// internal/storage/storage.go
package storage

import (
	"time"

	"github.com/hokarena/reward/internal/model"
	"github.com/hokarena/reward/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Episode management (StartEpisode assigns ep.ID)
	StartEpisode(ep *core.Episode) error
	EndEpisode() error

	// Recording
	RecordFrameReward(f *core.FrameReward) error
	RecordSummary(s *core.EpisodeSummary) error
}

// Exportable is an optional interface for storage backends that write one
// file per finished episode.
type Exportable interface {
	GetExportedFilePath() string
}

// QueueReporter is an optional interface for storage backends that batch
// writes in the background.
type QueueReporter interface {
	QueueLengths() model.WriteQueueLengths
	GetLastDBWriteDuration() time.Duration
}
