// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"

	"github.com/hokarena/reward/internal/config"
	"github.com/hokarena/reward/pkg/core"
)

// Backend collects one episode in memory and exports it to JSON when it ends
type Backend struct {
	cfg     config.MemoryConfig
	episode *core.Episode

	frames    []core.FrameReward
	summaries []core.EpisodeSummary
	endFrame  int

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartEpisode begins collecting a new episode and assigns its ID
func (b *Backend) StartEpisode(ep *core.Episode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	ep.ID = b.idCounter
	b.episode = ep

	b.frames = nil
	b.summaries = nil
	b.endFrame = 0

	return nil
}

// EndEpisode exports the collected data and forgets the episode
func (b *Backend) EndEpisode() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.episode == nil {
		return fmt.Errorf("no episode started")
	}
	err := b.exportJSON()
	b.episode = nil
	return err
}

// RecordFrameReward appends one agent's frame breakdown
func (b *Backend) RecordFrameReward(f *core.FrameReward) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.episode == nil {
		return nil // silently ignore between episodes
	}
	b.frames = append(b.frames, *f)
	if f.FrameNo > b.endFrame {
		b.endFrame = f.FrameNo
	}
	return nil
}

// RecordSummary appends one agent's episode summary
func (b *Backend) RecordSummary(s *core.EpisodeSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.episode == nil {
		return nil
	}
	b.summaries = append(b.summaries, *s)
	if s.EndFrame > b.endFrame {
		b.endFrame = s.EndFrame
	}
	return nil
}

// FrameCount returns the number of frame records of the current episode
func (b *Backend) FrameCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.frames)
}

// GetExportedFilePath returns the path of the last exported episode
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
