// pkg/core/reward.go
package core

import (
	"time"
)

// TotalKey is the reserved breakdown key holding the weighted sum.
const TotalKey = "reward_sum"

// Opponent labels reported with episode metrics.
const (
	OpponentCommonAI = "common_ai"
	OpponentSelfPlay = "selfplay"
)

// RewardBreakdown is the engine output for one frame.
type RewardBreakdown struct {
	FrameNo int                `json:"frame_no"`
	Terms   map[string]float64 `json:"terms"`
	Total   float64            `json:"total"`
}

// Flatten returns the per-term values together with the total under TotalKey.
func (b RewardBreakdown) Flatten() map[string]float64 {
	out := make(map[string]float64, len(b.Terms)+1)
	for k, v := range b.Terms {
		out[k] = v
	}
	out[TotalKey] = b.Total
	return out
}

// Agent is one scored slot of an episode.
type Agent struct {
	Index    int   `json:"index"`
	PlayerID int64 `json:"player_id"`
	Camp     Camp  `json:"camp"`
	HeroID   int   `json:"hero_id"`
}

// Episode describes a single match.
type Episode struct {
	ID          uint      `json:"id"`
	ExternalID  string    `json:"external_id"`
	StartTime   time.Time `json:"start_time"`
	Lineups     [][]int   `json:"lineups"`
	Agents      []Agent   `json:"agents"`
	TrainAgent  int       `json:"train_agent"`
	IsEval      bool      `json:"is_eval"`
	MonitorSide int       `json:"monitor_side"`
	Opponent    string    `json:"opponent"`
}

// FrameReward is one agent's breakdown for one frame.
type FrameReward struct {
	EpisodeID  uint               `json:"episode_id"`
	AgentIndex int                `json:"agent_index"`
	PlayerID   int64              `json:"player_id"`
	FrameNo    int                `json:"frame_no"`
	Time       time.Time          `json:"time"`
	Terms      map[string]float64 `json:"terms"`
	Total      float64            `json:"total"`
}

// MonitorData mirrors the three scalars reported per episode.
type MonitorData struct {
	Reward float64 `json:"reward"`
	Diy1   float64 `json:"diy1"`
	Diy2   float64 `json:"diy2"`
}

// EpisodeSummary is written once per agent when an episode ends.
type EpisodeSummary struct {
	EpisodeID      uint               `json:"episode_id"`
	AgentIndex     int                `json:"agent_index"`
	PlayerID       int64              `json:"player_id"`
	EndFrame       int                `json:"end_frame"`
	Frames         int                `json:"frames"`
	Terminated     bool               `json:"terminated"`
	Truncated      bool               `json:"truncated"`
	TerminalReward float64            `json:"terminal_reward"`
	LastTotal      float64            `json:"last_total"`
	Totals         map[string]float64 `json:"totals"`
	Monitor        MonitorData        `json:"monitor"`
	EndTime        time.Time          `json:"end_time"`
}

// EpisodeRecord is everything stored for one episode.
type EpisodeRecord struct {
	Episode   Episode          `json:"episode"`
	EndFrame  int              `json:"end_frame"`
	Frames    []FrameReward    `json:"frames"`
	Summaries []EpisodeSummary `json:"summaries"`
}
