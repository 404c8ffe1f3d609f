// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/hokarena/reward/internal/model"
	"github.com/hokarena/reward/pkg/core"
)

// termsToJSON converts a term map to datatypes.JSON for DB storage.
func termsToJSON(terms map[string]float64) datatypes.JSON {
	if len(terms) == 0 {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToEpisode converts a core.Episode to a GORM model.Episode.
func CoreToEpisode(e core.Episode) model.Episode {
	lineups := datatypes.JSON("[]")
	if len(e.Lineups) > 0 {
		if data, err := json.Marshal(e.Lineups); err == nil {
			lineups = data
		}
	}

	agents := make([]model.EpisodeAgent, 0, len(e.Agents))
	for _, a := range e.Agents {
		agents = append(agents, model.EpisodeAgent{
			EpisodeID:  e.ID,
			AgentIndex: a.Index,
			PlayerID:   a.PlayerID,
			Camp:       int(a.Camp),
			HeroID:     a.HeroID,
		})
	}

	ep := model.Episode{
		ExternalID:  e.ExternalID,
		StartTime:   e.StartTime,
		Lineups:     lineups,
		TrainAgent:  e.TrainAgent,
		IsEval:      e.IsEval,
		MonitorSide: e.MonitorSide,
		Opponent:    e.Opponent,
		Agents:      agents,
	}
	ep.ID = e.ID
	return ep
}

// CoreToFrameReward converts a core.FrameReward to a GORM model.FrameReward.
func CoreToFrameReward(f core.FrameReward) model.FrameReward {
	return model.FrameReward{
		Time:       f.Time,
		EpisodeID:  f.EpisodeID,
		FrameNo:    f.FrameNo,
		AgentIndex: f.AgentIndex,
		PlayerID:   f.PlayerID,
		Terms:      termsToJSON(f.Terms),
		Total:      f.Total,
	}
}

// CoreToEpisodeSummary converts a core.EpisodeSummary to a GORM model.EpisodeSummary.
func CoreToEpisodeSummary(s core.EpisodeSummary) model.EpisodeSummary {
	return model.EpisodeSummary{
		EpisodeID:      s.EpisodeID,
		AgentIndex:     s.AgentIndex,
		PlayerID:       s.PlayerID,
		EndFrame:       s.EndFrame,
		Frames:         s.Frames,
		Terminated:     s.Terminated,
		Truncated:      s.Truncated,
		TerminalReward: s.TerminalReward,
		LastTotal:      s.LastTotal,
		Totals:         termsToJSON(s.Totals),
		Monitor: model.MonitorData{
			Reward: s.Monitor.Reward,
			Diy1:   s.Monitor.Diy1,
			Diy2:   s.Monitor.Diy2,
		},
		EndTime: s.EndTime,
	}
}
