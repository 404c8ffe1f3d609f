package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokarena/reward/internal/dispatcher"
	"github.com/hokarena/reward/internal/episode"
	"github.com/hokarena/reward/internal/influx"
	"github.com/hokarena/reward/internal/parser"
	"github.com/hokarena/reward/internal/reward"
	"github.com/hokarena/reward/internal/util"
	"github.com/hokarena/reward/pkg/core"
	"github.com/hokarena/reward/pkg/streaming"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// mockBackend implements storage.Backend for testing
type mockBackend struct {
	mu        sync.Mutex
	nextID    uint
	episodes  []*core.Episode
	frames    []*core.FrameReward
	summaries []*core.EpisodeSummary
	ended     int
}

func (b *mockBackend) Init() error  { return nil }
func (b *mockBackend) Close() error { return nil }

func (b *mockBackend) StartEpisode(ep *core.Episode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ep.ID = b.nextID
	b.episodes = append(b.episodes, ep)
	return nil
}

func (b *mockBackend) EndEpisode() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ended++
	return nil
}

func (b *mockBackend) RecordFrameReward(f *core.FrameReward) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, f)
	return nil
}

func (b *mockBackend) RecordSummary(s *core.EpisodeSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summaries = append(b.summaries, s)
	return nil
}

func (b *mockBackend) framesFor(agent int) []*core.FrameReward {
	var out []*core.FrameReward
	for _, f := range b.frames {
		if f.AgentIndex == agent {
			out = append(out, f)
		}
	}
	return out
}

type mockInflux struct {
	points map[string][]*influxdb2_write.Point
}

func (w *mockInflux) WritePoint(_ context.Context, bucket string, p *influxdb2_write.Point) error {
	if w.points == nil {
		w.points = map[string][]*influxdb2_write.Point{}
	}
	w.points[bucket] = append(w.points[bucket], p)
	return nil
}

type fixture struct {
	manager *Manager
	backend *mockBackend
	influx  *mockInflux
	ctx     *episode.Context
	d       *dispatcher.Dispatcher
}

func newFixture(t *testing.T, sampleEvery int, opts ...reward.Option) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	engines := make([]*reward.Engine, 2)
	for i := range engines {
		e, err := reward.NewEngine(reward.DefaultConfig(), append([]reward.Option{reward.WithLogger(logger)}, opts...)...)
		require.NoError(t, err)
		engines[i] = e
	}

	f := &fixture{
		backend: &mockBackend{},
		influx:  &mockInflux{},
		ctx:     episode.NewContext(),
	}
	m, err := NewManager(Dependencies{
		Parser:           parser.NewParser(logger, false),
		Backend:          f.backend,
		Influx:           f.influx,
		EpisodeContext:   f.ctx,
		Terminal:         reward.TerminalConfig{Bonus: 15, Horizon: 20000},
		FrameSampleEvery: sampleEvery,
		Logger:           logger,
	}, engines...)
	require.NoError(t, err)
	f.manager = m

	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	m.RegisterHandlers(d)
	f.d = d
	return f
}

func (f *fixture) send(t *testing.T, typ string, payload any) error {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	_, err = f.d.Dispatch(dispatcher.Event{Type: typ, Payload: raw})
	return err
}

func startPayload(eval bool) streaming.EpisodeStartPayload {
	return streaming.EpisodeStartPayload{
		EpisodeID: "ep-1",
		Lineups:   [][]int{{133}, {199}},
		Agents: []streaming.AgentPayload{
			{PlayerID: 7, Camp: json.RawMessage(`"PLAYERCAMP_1"`), HeroID: 133},
			{PlayerID: 8, Camp: json.RawMessage(`2`), HeroID: 199},
		},
		TrainAgent: 1,
		Eval:       eval,
	}
}

func actor(runtimeID int64, camp int, subType string, hp, maxHP, x float64) map[string]any {
	return map[string]any{
		"runtime_id": runtimeID,
		"camp":       camp,
		"sub_type":   subType,
		"hp":         hp,
		"max_hp":     maxHP,
		"location":   map[string]any{"x": x, "z": 0},
	}
}

func hero(playerID, runtimeID int64, camp int, x, money float64) map[string]any {
	return map[string]any{
		"player_id":   playerID,
		"actor_state": actor(runtimeID, camp, "ACTOR_SUB_HERO", 3000, 4000, x),
		"moneyCnt":    money,
		"level":       1,
	}
}

// framePayload builds a frame where the blue tower has more hp than the red one.
func framePayload(frameNo int, money float64) map[string]any {
	return map[string]any{
		"frameNo": frameNo,
		"hero_states": []any{
			hero(7, 11, 1, -12000, money),
			hero(8, 12, 2, 12000, money/2),
		},
		"npc_states": []any{
			actor(101, 1, "ACTOR_SUB_TOWER", 6000, 6000, -10000),
			actor(102, 1, "ACTOR_SUB_CRYSTAL", 9000, 9000, -20000),
			actor(201, 2, "ACTOR_SUB_TOWER", 2000, 6000, 10000),
			actor(202, 2, "ACTOR_SUB_CRYSTAL", 9000, 9000, 20000),
		},
	}
}

func TestEpisode_TrainingLifecycle(t *testing.T) {
	f := newFixture(t, 0)

	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, startPayload(false)))
	require.Len(t, f.backend.episodes, 1)
	assert.Equal(t, "ep-1", f.ctx.GetEpisode().ExternalID)

	for i, frame := range []int{0, 1000, 2000} {
		require.NoError(t, f.send(t, streaming.TypeFrame, framePayload(frame, float64(100*(i+1)))))
	}
	frameNo, frames := f.ctx.Frame()
	assert.Equal(t, 2000, frameNo)
	assert.Equal(t, 3, frames)

	// the last frame is held back for the terminal reward
	assert.Len(t, f.backend.frames, 4)

	require.NoError(t, f.send(t, streaming.TypeEpisodeEnd, streaming.EpisodeEndPayload{FrameNo: 2000, Terminated: true}))

	assert.Len(t, f.backend.frames, 6)
	require.Len(t, f.backend.summaries, 2)
	assert.Equal(t, 1, f.backend.ended)
	assert.Nil(t, f.ctx.GetEpisode())
	assert.Equal(t, uint64(3), f.manager.FramesScored())
	assert.Equal(t, uint64(1), f.manager.Episodes())

	wantTerminal := []float64{13.5, -13.5}
	for i, s := range f.backend.summaries {
		assert.Equal(t, i, s.AgentIndex)
		assert.Equal(t, uint(1), s.EpisodeID)
		assert.Equal(t, 2000, s.EndFrame)
		assert.Equal(t, 3, s.Frames)
		assert.True(t, s.Terminated)
		assert.InDelta(t, wantTerminal[i], s.TerminalReward, 1e-9)

		rows := f.backend.framesFor(i)
		require.Len(t, rows, 3)
		sum := 0.0
		for _, r := range rows {
			sum += r.Total
			assert.Equal(t, uint(1), r.EpisodeID)
		}
		last := rows[len(rows)-1]
		assert.Equal(t, 2000, last.FrameNo)
		assert.InDelta(t, last.Total, s.LastTotal, 1e-9)
		assert.InDelta(t, sum, s.Totals[core.TotalKey], 1e-9)
		assert.Equal(t, util.Round2(s.Totals[core.TotalKey]-s.TerminalReward), s.Monitor.Reward)
	}
}

func TestEpisode_MonitorExcludesTerminalReward(t *testing.T) {
	f := newFixture(t, 0)

	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, startPayload(false)))
	require.NoError(t, f.send(t, streaming.TypeFrame, framePayload(2000, 100)))
	require.NoError(t, f.send(t, streaming.TypeEpisodeEnd, streaming.EpisodeEndPayload{FrameNo: 2000, Terminated: true}))

	require.Len(t, f.backend.summaries, 2)
	for _, s := range f.backend.summaries {
		require.NotZero(t, s.TerminalReward)
		rows := f.backend.framesFor(s.AgentIndex)
		require.Len(t, rows, 1)
		// the stored frame and the totals carry the terminal reward, the monitor does not
		assert.InDelta(t, rows[0].Total, s.Totals[core.TotalKey], 1e-9)
		assert.InDelta(t, util.Round2(rows[0].Total-s.TerminalReward), s.Monitor.Reward, 1e-9)
	}
}

func TestFrame_StrictRejectionKeepsAgentsInStep(t *testing.T) {
	f := newFixture(t, 0, reward.WithStrictValidation())

	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, startPayload(false)))
	require.NoError(t, f.send(t, streaming.TypeFrame, framePayload(100, 100)))
	assert.Empty(t, f.backend.frames)

	bad := framePayload(200, 200)
	bad["hero_states"] = bad["hero_states"].([]any)[:1]
	err := f.send(t, streaming.TypeFrame, bad)
	assert.ErrorIs(t, err, core.ErrInvalidSnapshot)

	// nothing moved: the previous frame is still held back and no engine advanced
	assert.Empty(t, f.backend.frames)
	assert.Equal(t, uint64(1), f.manager.FramesScored())
	for _, e := range f.manager.engines {
		assert.Equal(t, 1, e.Frames())
	}
	frameNo, frames := f.ctx.Frame()
	assert.Equal(t, 100, frameNo)
	assert.Equal(t, 1, frames)

	require.NoError(t, f.send(t, streaming.TypeFrame, framePayload(200, 200)))
	assert.Len(t, f.backend.frames, 2)
	for _, e := range f.manager.engines {
		assert.Equal(t, 2, e.Frames())
	}
}

func TestEpisode_EvalHasNoTerminalReward(t *testing.T) {
	f := newFixture(t, 0)

	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, startPayload(true)))
	require.NoError(t, f.send(t, streaming.TypeFrame, framePayload(100, 100)))
	require.NoError(t, f.send(t, streaming.TypeEpisodeEnd, streaming.EpisodeEndPayload{FrameNo: 100, Terminated: true}))

	require.Len(t, f.backend.summaries, 2)
	for _, s := range f.backend.summaries {
		assert.Zero(t, s.TerminalReward)
	}
	assert.Equal(t, core.OpponentCommonAI, f.backend.episodes[0].Opponent)
}

func TestFrame_BeforeEpisodeStart(t *testing.T) {
	f := newFixture(t, 0)

	err := f.send(t, streaming.TypeFrame, framePayload(0, 0))
	assert.ErrorIs(t, err, ErrNoEpisode)
	assert.Empty(t, f.backend.frames)

	err = f.send(t, streaming.TypeEpisodeEnd, streaming.EpisodeEndPayload{})
	assert.ErrorIs(t, err, ErrNoEpisode)
}

func TestFrame_InvalidPayload(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, startPayload(false)))

	_, err := f.d.Dispatch(dispatcher.Event{Type: streaming.TypeFrame, Payload: json.RawMessage(`{"frameNo":`)})
	assert.Error(t, err)
	assert.Equal(t, uint64(0), f.manager.FramesScored())
}

func TestInfluxSampling(t *testing.T) {
	f := newFixture(t, 2)

	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, startPayload(false)))
	for i := 0; i < 4; i++ {
		require.NoError(t, f.send(t, streaming.TypeFrame, framePayload(i*100, float64(i*10))))
	}
	require.NoError(t, f.send(t, streaming.TypeEpisodeEnd, streaming.EpisodeEndPayload{FrameNo: 300, Truncated: true}))

	assert.Len(t, f.influx.points[influx.BucketFrames], 4)
	require.Len(t, f.influx.points[influx.BucketEpisodes], 2)
	assert.Equal(t, "episode_summary", f.influx.points[influx.BucketEpisodes][0].Name())
}

func TestEpisodeStart_TruncatesOpenEpisode(t *testing.T) {
	f := newFixture(t, 0)

	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, startPayload(false)))
	require.NoError(t, f.send(t, streaming.TypeFrame, framePayload(500, 100)))

	next := startPayload(false)
	next.EpisodeID = "ep-2"
	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, next))

	require.Len(t, f.backend.summaries, 2)
	assert.True(t, f.backend.summaries[0].Truncated)
	assert.Equal(t, 500, f.backend.summaries[0].EndFrame)
	assert.Equal(t, 1, f.backend.ended)
	assert.Equal(t, "ep-2", f.ctx.GetEpisode().ExternalID)
}

func TestClose(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.manager.Close())

	require.NoError(t, f.send(t, streaming.TypeEpisodeStart, startPayload(false)))
	require.NoError(t, f.send(t, streaming.TypeFrame, framePayload(40, 100)))
	require.NoError(t, f.manager.Close())

	assert.Len(t, f.backend.frames, 2)
	require.Len(t, f.backend.summaries, 2)
	assert.True(t, f.backend.summaries[0].Truncated)
	assert.Equal(t, uint64(1), f.manager.Episodes())
}

func TestEpisodeStart_TooManyAgents(t *testing.T) {
	f := newFixture(t, 0)

	p := startPayload(false)
	p.Agents = append(p.Agents, streaming.AgentPayload{PlayerID: 9, Camp: json.RawMessage(`1`)})
	err := f.send(t, streaming.TypeEpisodeStart, p)
	assert.ErrorIs(t, err, ErrTooManyAgents)
	assert.Empty(t, f.backend.episodes)
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(Dependencies{})
	assert.Error(t, err)

	e, err := reward.NewEngine(reward.DefaultConfig())
	require.NoError(t, err)
	_, err = NewManager(Dependencies{}, e)
	assert.Error(t, err)
}

func TestMonitorFromTotals(t *testing.T) {
	got := MonitorFromTotals(map[string]float64{
		core.TotalKey:    12.3456,
		"forward":        -0.004,
		"tower_hp_point": 1.005,
		"money":          99,
	})
	assert.Equal(t, 12.35, got.Reward)
	assert.InDelta(t, 0, got.Diy1, 1e-12)
	assert.InDelta(t, 1.0, got.Diy2, 0.011)
}
