// Package session scores replay streams episode by episode. A Manager owns
// one reward engine per agent slot and turns dispatcher events into stored
// frame rewards and episode summaries.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/hokarena/reward/internal/episode"
	"github.com/hokarena/reward/internal/influx"
	"github.com/hokarena/reward/internal/parser"
	"github.com/hokarena/reward/internal/reward"
	"github.com/hokarena/reward/internal/storage"
	"github.com/hokarena/reward/internal/util"
	"github.com/hokarena/reward/pkg/core"
	"github.com/hokarena/reward/pkg/streaming"
)

var (
	// ErrNoEpisode is returned for frame and episode_end events that arrive
	// outside an episode.
	ErrNoEpisode = errors.New("no episode in progress")
	// ErrTooManyAgents is returned when an episode names more agents than
	// the manager has engines.
	ErrTooManyAgents = errors.New("more agents than reward engines")
)

// PointWriter receives influx points. *influx.Manager implements it.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the session manager
type Dependencies struct {
	Parser         *parser.Parser
	Backend        storage.Backend
	Influx         PointWriter // optional
	EpisodeContext *episode.Context
	Terminal       reward.TerminalConfig
	// FrameSampleEvery sends every Nth frame to influx; 0 sends none.
	FrameSampleEvery int
	Logger           *slog.Logger
}

// Manager scores the agents of one episode at a time. Handlers must be
// called in stream order.
type Manager struct {
	deps    Dependencies
	engines []*reward.Engine

	mu      sync.Mutex
	episode *core.Episode
	last    *core.FrameSnapshot
	pending []*core.FrameReward
	totals  []map[string]float64
	frames  int

	framesScored atomic.Uint64
	episodes     atomic.Uint64
}

// NewManager creates a session manager over the given engines, one per
// agent slot.
func NewManager(deps Dependencies, engines ...*reward.Engine) (*Manager, error) {
	if len(engines) == 0 {
		return nil, fmt.Errorf("session needs at least one reward engine")
	}
	if deps.Parser == nil || deps.Backend == nil {
		return nil, fmt.Errorf("session needs a parser and a storage backend")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.EpisodeContext == nil {
		deps.EpisodeContext = episode.NewContext()
	}
	return &Manager{
		deps:    deps,
		engines: engines,
	}, nil
}

// FramesScored returns the number of frames scored since start.
func (m *Manager) FramesScored() uint64 {
	return m.framesScored.Load()
}

// Episodes returns the number of finished episodes.
func (m *Manager) Episodes() uint64 {
	return m.episodes.Load()
}

// Close finishes an open episode as truncated.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.episode == nil {
		return nil
	}
	m.deps.Logger.Warn("Stream ended inside an episode, truncating")
	return m.finish(context.Background(), m.truncation())
}

func (m *Manager) truncation() streaming.EpisodeEndPayload {
	end := streaming.EpisodeEndPayload{Truncated: true}
	if m.last != nil {
		end.FrameNo = m.last.FrameNo
	}
	return end
}

func (m *Manager) startEpisode(ep core.Episode) error {
	if len(ep.Agents) > len(m.engines) {
		return fmt.Errorf("%w: %d > %d", ErrTooManyAgents, len(ep.Agents), len(m.engines))
	}
	if m.episode != nil {
		m.deps.Logger.Warn("Episode started before the previous one ended, truncating",
			"previous", m.episode.ExternalID)
		if err := m.finish(context.Background(), m.truncation()); err != nil {
			return err
		}
	}

	if err := m.deps.Backend.StartEpisode(&ep); err != nil {
		return fmt.Errorf("failed to start episode in storage: %w", err)
	}

	m.totals = make([]map[string]float64, len(ep.Agents))
	m.pending = make([]*core.FrameReward, len(ep.Agents))
	for i, a := range ep.Agents {
		m.engines[i].Reset(reward.Identity{Camp: a.Camp, PlayerID: a.PlayerID})
		m.totals[i] = make(map[string]float64)
	}
	m.episode = &ep
	m.last = nil
	m.frames = 0
	m.deps.EpisodeContext.SetEpisode(m.episode)

	m.deps.Logger.Info("Episode started",
		"agents", len(ep.Agents),
		"train_agent", ep.TrainAgent,
		"eval", ep.IsEval,
		"opponent", ep.Opponent)
	return nil
}

// flushPending stores the held-back rewards of the previous frame.
func (m *Manager) flushPending() error {
	var errs []error
	for i, fr := range m.pending {
		if fr == nil {
			continue
		}
		if err := m.deps.Backend.RecordFrameReward(fr); err != nil {
			errs = append(errs, fmt.Errorf("agent %d: %w", i, err))
		}
		m.pending[i] = nil
	}
	return errors.Join(errs...)
}

func (m *Manager) scoreFrame(ctx context.Context, snap core.FrameSnapshot, at time.Time) error {
	if m.episode == nil {
		return ErrNoEpisode
	}
	// every engine must accept the frame before any of them advances
	for i := range m.episode.Agents {
		if err := m.engines[i].Check(&snap); err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
	}
	if err := m.flushPending(); err != nil {
		return fmt.Errorf("failed to record frame rewards: %w", err)
	}

	m.deps.EpisodeContext.SetFrame(snap.FrameNo)
	for i, a := range m.episode.Agents {
		b, err := m.engines[i].Evaluate(&snap)
		if err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
		util.MergeSum(m.totals[i], b.Flatten())
		m.pending[i] = &core.FrameReward{
			EpisodeID:  m.episode.ID,
			AgentIndex: i,
			PlayerID:   a.PlayerID,
			FrameNo:    b.FrameNo,
			Time:       at,
			Terms:      b.Terms,
			Total:      b.Total,
		}
	}
	m.last = &snap
	m.frames++
	m.framesScored.Add(1)

	if m.deps.Influx != nil && m.deps.FrameSampleEvery > 0 && m.frames%m.deps.FrameSampleEvery == 0 {
		for _, fr := range m.pending {
			m.writePoint(ctx, influx.BucketFrames, influx.FramePoint(m.episode, fr))
		}
	}
	return nil
}

func (m *Manager) finish(ctx context.Context, end streaming.EpisodeEndPayload) error {
	if m.episode == nil {
		return ErrNoEpisode
	}
	ep := m.episode
	endFrame := end.FrameNo
	if m.last != nil && m.last.FrameNo > endFrame {
		endFrame = m.last.FrameNo
	}

	summaries := make([]*core.EpisodeSummary, len(ep.Agents))
	for i, a := range ep.Agents {
		s := &core.EpisodeSummary{
			EpisodeID:  ep.ID,
			AgentIndex: i,
			PlayerID:   a.PlayerID,
			EndFrame:   endFrame,
			Frames:     m.engines[i].Frames(),
			Terminated: end.Terminated,
			Truncated:  end.Truncated,
			Totals:     m.totals[i],
			EndTime:    time.Now(),
			Monitor:    MonitorFromTotals(m.totals[i]),
		}
		// the monitor scalars leave the terminal reward out
		if !ep.IsEval && m.last != nil {
			s.TerminalReward = reward.TerminalReward(m.last, a.Camp, m.deps.Terminal)
			s.Totals[core.TotalKey] += s.TerminalReward
			if fr := m.pending[i]; fr != nil {
				fr.Total += s.TerminalReward
			}
		}
		if fr := m.pending[i]; fr != nil {
			s.LastTotal = fr.Total
		}
		summaries[i] = s
	}

	var errs []error
	if err := m.flushPending(); err != nil {
		errs = append(errs, fmt.Errorf("failed to record frame rewards: %w", err))
	}
	for _, s := range summaries {
		if err := m.deps.Backend.RecordSummary(s); err != nil {
			errs = append(errs, fmt.Errorf("failed to record summary for agent %d: %w", s.AgentIndex, err))
		}
	}
	if err := m.deps.Backend.EndEpisode(); err != nil {
		errs = append(errs, fmt.Errorf("failed to end episode in storage: %w", err))
	}

	for _, s := range summaries {
		m.writePoint(ctx, influx.BucketEpisodes, influx.EpisodePoint(ep, s))
	}
	if ep.IsEval && ep.TrainAgent < len(summaries) {
		mon := summaries[ep.TrainAgent].Monitor
		m.deps.Logger.Info("Monitor data",
			"reward", mon.Reward,
			"diy1", mon.Diy1,
			"diy2", mon.Diy2,
			"opponent", ep.Opponent)
	}
	if exp, ok := m.deps.Backend.(storage.Exportable); ok && exp.GetExportedFilePath() != "" {
		m.deps.Logger.Info("Episode exported", "path", exp.GetExportedFilePath())
	}

	m.deps.Logger.Info("Episode ended",
		"end_frame", endFrame,
		"frames", m.frames,
		"terminated", end.Terminated,
		"truncated", end.Truncated)

	m.episode = nil
	m.last = nil
	m.pending = nil
	m.totals = nil
	m.deps.EpisodeContext.Clear()
	m.episodes.Add(1)

	return errors.Join(errs...)
}

func (m *Manager) writePoint(ctx context.Context, bucket string, p *influxdb2_write.Point) {
	if m.deps.Influx == nil {
		return
	}
	if err := m.deps.Influx.WritePoint(ctx, bucket, p); err != nil {
		m.deps.Logger.Error("Failed to write influx point", "bucket", bucket, "error", err)
	}
}
