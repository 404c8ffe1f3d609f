package session

import (
	"context"
	"fmt"
	"time"

	"github.com/hokarena/reward/internal/dispatcher"
	"github.com/hokarena/reward/internal/reward"
	"github.com/hokarena/reward/internal/util"
	"github.com/hokarena/reward/pkg/core"
	"github.com/hokarena/reward/pkg/streaming"
)

// RegisterHandlers registers the replay stream handlers with the dispatcher.
// All of them are synchronous: frames depend on the episode opened before
// them and on the frames scored before them.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(streaming.TypeEpisodeStart, m.handleEpisodeStart, dispatcher.Logged())
	d.Register(streaming.TypeFrame, m.handleFrame, dispatcher.Logged())
	d.Register(streaming.TypeEpisodeEnd, m.handleEpisodeEnd, dispatcher.Logged())
}

func (m *Manager) handleEpisodeStart(e dispatcher.Event) (any, error) {
	ep, err := m.deps.Parser.ParseEpisodeStart(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse episode start: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.startEpisode(ep); err != nil {
		return nil, err
	}
	return m.episode.ID, nil
}

func (m *Manager) handleFrame(e dispatcher.Event) (any, error) {
	snap, err := m.deps.Parser.ParseFrame(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frame: %w", err)
	}

	at := e.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.scoreFrame(context.Background(), snap, at); err != nil {
		return nil, fmt.Errorf("failed to score frame %d: %w", snap.FrameNo, err)
	}
	return snap.FrameNo, nil
}

func (m *Manager) handleEpisodeEnd(e dispatcher.Event) (any, error) {
	end, err := m.deps.Parser.ParseEpisodeEnd(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse episode end: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.finish(context.Background(), end); err != nil {
		return nil, err
	}
	return nil, nil
}

// MonitorFromTotals derives the per-episode monitor scalars from an agent's
// accumulated totals.
func MonitorFromTotals(totals map[string]float64) core.MonitorData {
	return core.MonitorData{
		Reward: util.Round2(totals[core.TotalKey]),
		Diy1:   util.Round2(totals[reward.KindForward.String()]),
		Diy2:   util.Round2(totals[reward.KindTowerHPPoint.String()]),
	}
}
