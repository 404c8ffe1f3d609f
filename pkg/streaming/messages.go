package streaming

import (
	"encoding/json"
)

// Message type constants of the replay stream.
const (
	TypeEpisodeStart = "episode_start"
	TypeFrame        = "frame"
	TypeEpisodeEnd   = "episode_end"
)

// Envelope wraps every message of a replay stream, one per line.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AgentPayload binds one scored slot to the hero it controls.
type AgentPayload struct {
	PlayerID int64           `json:"player_id"`
	Camp     json.RawMessage `json:"camp"`
	HeroID   int             `json:"hero_id"`
}

// EpisodeStartPayload opens an episode. EpisodeID is optional; a random
// one is assigned when empty.
type EpisodeStartPayload struct {
	EpisodeID  string         `json:"episode_id,omitempty"`
	Lineups    [][]int        `json:"lineups"`
	Agents     []AgentPayload `json:"agents"`
	TrainAgent int            `json:"train_agent"`
	Eval       bool           `json:"eval"`
	Opponent   string         `json:"opponent,omitempty"`
}

// EpisodeEndPayload closes the current episode.
type EpisodeEndPayload struct {
	FrameNo    int  `json:"frame_no"`
	Terminated bool `json:"terminated"`
	Truncated  bool `json:"truncated"`
}

// NewEnvelope marshals payload under the given type.
func NewEnvelope(typ string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: typ, Payload: raw}, nil
}
