package influx

import (
	"strconv"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/hokarena/reward/internal/model"
	"github.com/hokarena/reward/pkg/core"
)

func episodeTags(p *influxdb2_write.Point, ep *core.Episode, agentIndex int) {
	p.AddTag("episode", ep.ExternalID).
		AddTag("agent", strconv.Itoa(agentIndex)).
		AddTag("opponent", ep.Opponent).
		AddTag("eval", strconv.FormatBool(ep.IsEval))
}

// FramePoint builds the per-frame reward point of one agent. Every term is a field.
func FramePoint(ep *core.Episode, fr *core.FrameReward) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("frame_reward")
	episodeTags(p, ep, fr.AgentIndex)
	p.AddField("frame_no", fr.FrameNo)
	for name, v := range fr.Terms {
		p.AddField(name, v)
	}
	p.AddField(core.TotalKey, fr.Total)
	p.SetTime(fr.Time)
	return p
}

// EpisodePoint builds the end-of-episode point of one agent.
func EpisodePoint(ep *core.Episode, s *core.EpisodeSummary) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("episode_summary")
	episodeTags(p, ep, s.AgentIndex)
	p.AddTag("terminated", strconv.FormatBool(s.Terminated)).
		AddField("end_frame", s.EndFrame).
		AddField("frames", s.Frames).
		AddField("terminal_reward", s.TerminalReward).
		AddField("reward", s.Monitor.Reward).
		AddField("diy1", s.Monitor.Diy1).
		AddField("diy2", s.Monitor.Diy2)
	for name, v := range s.Totals {
		p.AddField("total_"+name, v)
	}
	p.SetTime(s.EndTime)
	return p
}

// PerformancePoint builds a scorer performance point.
func PerformancePoint(perf model.ScorerPerformance) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("scorer_performance")
	p.AddTag("episode_id", strconv.FormatUint(uint64(perf.EpisodeID), 10)).
		AddField("frames_scored", int64(perf.FramesScored)).
		AddField("episodes", int64(perf.Episodes)).
		AddField("writequeue_frame_rewards", int64(perf.WriteQueueLengths.FrameRewards)).
		AddField("writequeue_summaries", int64(perf.WriteQueueLengths.Summaries)).
		AddField("last_write_duration_ms", perf.LastWriteDurationMs)
	if perf.Time.IsZero() {
		p.SetTime(time.Now())
	} else {
		p.SetTime(perf.Time)
	}
	return p
}
