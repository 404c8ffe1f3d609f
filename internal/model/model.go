package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Episode{},
	&EpisodeAgent{},
	&FrameReward{},
	&EpisodeSummary{},
	&ScorerPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// ScorerPerformance is the model for scorer performance snapshots
type ScorerPerformance struct {
	Time                time.Time         `json:"time" gorm:"index:idx_scorerperformance_time"`
	EpisodeID           uint              `json:"episodeId" gorm:"index:idx_scorerperformance_episode_id"`
	FramesScored        uint64            `json:"framesScored"`
	Episodes            uint64            `json:"episodes"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*ScorerPerformance) TableName() string {
	return "scorer_performances"
}

// WriteQueueLengths is the model for the write queue lengths
type WriteQueueLengths struct {
	FrameRewards uint32 `json:"frameRewards"`
	Summaries    uint32 `json:"summaries"`
}

////////////////////////
// EPISODE MODELS
////////////////////////

// Episode is the main model for a scored match
type Episode struct {
	gorm.Model
	ExternalID  string         `json:"externalId" gorm:"size:64;uniqueIndex:idx_episode_external_id"`
	StartTime   time.Time      `json:"startTime" gorm:"index:idx_episode_start"`
	Lineups     datatypes.JSON `json:"lineups"`
	TrainAgent  int            `json:"trainAgent"`
	IsEval      bool           `json:"isEval"`
	MonitorSide int            `json:"monitorSide"`
	Opponent    string         `json:"opponent" gorm:"size:64"`

	Agents    []EpisodeAgent   `json:"agents" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Frames    []FrameReward    `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Summaries []EpisodeSummary `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Episode) TableName() string {
	return "episodes"
}

// EpisodeAgent is one scored slot of an episode
type EpisodeAgent struct {
	ID         uint  `json:"id" gorm:"primarykey"`
	EpisodeID  uint  `json:"episodeId" gorm:"index:idx_episodeagent_episode_id"`
	AgentIndex int   `json:"agentIndex"`
	PlayerID   int64 `json:"playerId"`
	Camp       int   `json:"camp"`
	HeroID     int   `json:"heroId"`
}

func (*EpisodeAgent) TableName() string {
	return "episode_agents"
}

// FrameReward is one agent's reward breakdown for one frame
type FrameReward struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement"`
	Time       time.Time      `json:"time"`
	EpisodeID  uint           `json:"episodeId" gorm:"index:idx_framereward_episode_frame,priority:1"`
	FrameNo    int            `json:"frameNo" gorm:"index:idx_framereward_episode_frame,priority:2"`
	AgentIndex int            `json:"agentIndex"`
	PlayerID   int64          `json:"playerId"`
	Terms      datatypes.JSON `json:"terms"`
	Total      float64        `json:"total"`
}

func (*FrameReward) TableName() string {
	return "frame_rewards"
}

// EpisodeSummary is the per-agent result of a finished episode
type EpisodeSummary struct {
	gorm.Model
	EpisodeID      uint           `json:"episodeId" gorm:"index:idx_episodesummary_episode_id"`
	AgentIndex     int            `json:"agentIndex"`
	PlayerID       int64          `json:"playerId"`
	EndFrame       int            `json:"endFrame"`
	Frames         int            `json:"frames"`
	Terminated     bool           `json:"terminated"`
	Truncated      bool           `json:"truncated"`
	TerminalReward float64        `json:"terminalReward"`
	LastTotal      float64        `json:"lastTotal"`
	Totals         datatypes.JSON `json:"totals"`
	Monitor        MonitorData    `json:"monitor" gorm:"embedded;embeddedPrefix:monitor_"`
	EndTime        time.Time      `json:"endTime"`
}

func (*EpisodeSummary) TableName() string {
	return "episode_summaries"
}

// MonitorData is the model for the reported monitor scalars
type MonitorData struct {
	Reward float64 `json:"reward"`
	Diy1   float64 `json:"diy1"`
	Diy2   float64 `json:"diy2"`
}
