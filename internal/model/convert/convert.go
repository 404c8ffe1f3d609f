package convert

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/hokarena/reward/internal/model"
	"github.com/hokarena/reward/pkg/core"
)

// jsonToTerms decodes a stored term map. Malformed data yields an empty map.
func jsonToTerms(data datatypes.JSON) map[string]float64 {
	terms := map[string]float64{}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &terms)
	}
	return terms
}

// EpisodeToCore converts a GORM Episode to a core.Episode.
func EpisodeToCore(e model.Episode) core.Episode {
	var lineups [][]int
	if len(e.Lineups) > 0 {
		_ = json.Unmarshal(e.Lineups, &lineups)
	}

	agents := make([]core.Agent, 0, len(e.Agents))
	for _, a := range e.Agents {
		agents = append(agents, core.Agent{
			Index:    a.AgentIndex,
			PlayerID: a.PlayerID,
			Camp:     core.Camp(a.Camp),
			HeroID:   a.HeroID,
		})
	}

	return core.Episode{
		ID:          e.ID,
		ExternalID:  e.ExternalID,
		StartTime:   e.StartTime,
		Lineups:     lineups,
		Agents:      agents,
		TrainAgent:  e.TrainAgent,
		IsEval:      e.IsEval,
		MonitorSide: e.MonitorSide,
		Opponent:    e.Opponent,
	}
}

// FrameRewardToCore converts a GORM FrameReward to a core.FrameReward.
func FrameRewardToCore(f model.FrameReward) core.FrameReward {
	return core.FrameReward{
		EpisodeID:  f.EpisodeID,
		AgentIndex: f.AgentIndex,
		PlayerID:   f.PlayerID,
		FrameNo:    f.FrameNo,
		Time:       f.Time,
		Terms:      jsonToTerms(f.Terms),
		Total:      f.Total,
	}
}

// EpisodeSummaryToCore converts a GORM EpisodeSummary to a core.EpisodeSummary.
func EpisodeSummaryToCore(s model.EpisodeSummary) core.EpisodeSummary {
	return core.EpisodeSummary{
		EpisodeID:      s.EpisodeID,
		AgentIndex:     s.AgentIndex,
		PlayerID:       s.PlayerID,
		EndFrame:       s.EndFrame,
		Frames:         s.Frames,
		Terminated:     s.Terminated,
		Truncated:      s.Truncated,
		TerminalReward: s.TerminalReward,
		LastTotal:      s.LastTotal,
		Totals:         jsonToTerms(s.Totals),
		Monitor: core.MonitorData{
			Reward: s.Monitor.Reward,
			Diy1:   s.Monitor.Diy1,
			Diy2:   s.Monitor.Diy2,
		},
		EndTime: s.EndTime,
	}
}
