package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hokarena/reward/internal/database"
	"github.com/hokarena/reward/internal/model"
	"github.com/hokarena/reward/pkg/core"
)

// newTestBackend creates a Backend with no DB (queue-only mode for unit testing).
func newTestBackend() *Backend {
	return New(Dependencies{})
}

func newSqliteBackend(t *testing.T) (*Backend, *gorm.DB) {
	t.Helper()
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, WriteInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b, db
}

func testEpisode() *core.Episode {
	return &core.Episode{
		ExternalID: "ep-1",
		StartTime:  time.Now(),
		Lineups:    [][]int{{133}, {199}},
		Agents: []core.Agent{
			{Index: 0, PlayerID: 1, Camp: core.CampBlue, HeroID: 133},
			{Index: 1, PlayerID: 2, Camp: core.CampRed, HeroID: 199},
		},
		Opponent: core.OpponentSelfPlay,
	}
}

func TestInitClose(t *testing.T) {
	b := newTestBackend()

	require.NoError(t, b.Init())
	require.NotNil(t, b.queues)
	require.NotNil(t, b.stopChan)

	require.NoError(t, b.Close())
	// closing twice is harmless
	require.NoError(t, b.Close())
}

func TestRecordFrameReward_QueuesToInternalQueue(t *testing.T) {
	b := newTestBackend()
	require.NoError(t, b.Init())
	defer func() { _ = b.Close() }()

	require.NoError(t, b.RecordFrameReward(&core.FrameReward{FrameNo: 3, Terms: map[string]float64{"kill": 1}}))
	require.NoError(t, b.RecordSummary(&core.EpisodeSummary{EndFrame: 3}))

	assert.Equal(t, model.WriteQueueLengths{FrameRewards: 1, Summaries: 1}, b.QueueLengths())
}

func TestStartEpisode_NoDB(t *testing.T) {
	b := newTestBackend()
	ep := testEpisode()
	ep.ID = 5

	require.NoError(t, b.StartEpisode(ep))
	assert.Equal(t, uint64(5), b.episodeID.Load())
}

func TestEpisodeLifecycle_WritesRows(t *testing.T) {
	b, db := newSqliteBackend(t)

	ep := testEpisode()
	require.NoError(t, b.StartEpisode(ep))
	require.NotZero(t, ep.ID)

	for frame := 0; frame < 5; frame++ {
		for agent := 0; agent < 2; agent++ {
			require.NoError(t, b.RecordFrameReward(&core.FrameReward{
				AgentIndex: agent,
				PlayerID:   int64(agent + 1),
				FrameNo:    frame,
				Time:       time.Now(),
				Terms:      map[string]float64{"forward": 0.25},
				Total:      0.25,
			}))
		}
	}
	require.NoError(t, b.RecordSummary(&core.EpisodeSummary{
		EpisodeID:  ep.ID,
		AgentIndex: 1,
		EndFrame:   4,
		Frames:     5,
		Totals:     map[string]float64{core.TotalKey: 1.25},
		Monitor:    core.MonitorData{Reward: 1.25},
	}))

	require.NoError(t, b.EndEpisode())
	assert.Equal(t, model.WriteQueueLengths{}, b.QueueLengths())
	assert.Positive(t, b.GetLastDBWriteDuration())

	var frames int64
	require.NoError(t, db.Model(&model.FrameReward{}).Where("episode_id = ?", ep.ID).Count(&frames).Error)
	assert.Equal(t, int64(10), frames)

	record, err := LoadRecord(db, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, "ep-1", record.Episode.ExternalID)
	assert.Len(t, record.Episode.Agents, 2)
	assert.Equal(t, [][]int{{133}, {199}}, record.Episode.Lineups)
	require.Len(t, record.Frames, 10)
	assert.Equal(t, 0, record.Frames[0].FrameNo)
	assert.Equal(t, 0.25, record.Frames[9].Terms["forward"])
	require.Len(t, record.Summaries, 1)
	assert.Equal(t, 1.25, record.Summaries[0].Monitor.Reward)
	assert.Equal(t, 4, record.EndFrame)
}

func TestLoadRecord_Missing(t *testing.T) {
	_, db := newSqliteBackend(t)

	_, err := LoadRecord(db, 404)
	assert.Error(t, err)
}

func TestWriteQueue_RequeuesOnFailure(t *testing.T) {
	b, db := newSqliteBackend(t)
	require.NoError(t, b.StartEpisode(testEpisode()))
	require.NoError(t, db.Migrator().DropTable(&model.FrameReward{}))

	require.NoError(t, b.RecordFrameReward(&core.FrameReward{FrameNo: 1}))
	assert.Error(t, b.Flush())
	assert.Equal(t, uint32(1), b.QueueLengths().FrameRewards)

	require.NoError(t, db.AutoMigrate(&model.FrameReward{}))
	require.NoError(t, b.Flush())
	assert.Zero(t, b.QueueLengths().FrameRewards)
}

func TestBackgroundWriter(t *testing.T) {
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "bg.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, WriteInterval: 10 * time.Millisecond})
	require.NoError(t, b.Init())
	defer func() { _ = b.Close() }()

	ep := testEpisode()
	require.NoError(t, b.StartEpisode(ep))
	require.NoError(t, b.RecordFrameReward(&core.FrameReward{FrameNo: 1}))

	assert.Eventually(t, func() bool {
		var n int64
		db.Model(&model.FrameReward{}).Where("episode_id = ?", ep.ID).Count(&n)
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)
}
