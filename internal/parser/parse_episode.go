package parser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hokarena/reward/pkg/core"
	"github.com/hokarena/reward/pkg/streaming"
)

// ParseEpisodeStart decodes an episode_start payload. The episode gets a
// random external id when none is given, and an opponent label derived from
// the eval flag when none is given.
func (p *Parser) ParseEpisodeStart(data []byte) (core.Episode, error) {
	var ep core.Episode

	var payload streaming.EpisodeStartPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ep, fmt.Errorf("error unmarshalling episode start: %w", err)
	}
	if len(payload.Agents) == 0 {
		return ep, fmt.Errorf("episode start has no agents")
	}
	if payload.TrainAgent < 0 || payload.TrainAgent >= len(payload.Agents) {
		return ep, fmt.Errorf("train agent %d out of range [0, %d)", payload.TrainAgent, len(payload.Agents))
	}

	ep.ExternalID = payload.EpisodeID
	if ep.ExternalID == "" {
		ep.ExternalID = uuid.NewString()
	}
	ep.StartTime = time.Now()
	ep.Lineups = payload.Lineups
	ep.TrainAgent = payload.TrainAgent
	ep.MonitorSide = payload.TrainAgent
	ep.IsEval = payload.Eval

	ep.Opponent = payload.Opponent
	if ep.Opponent == "" {
		ep.Opponent = core.OpponentSelfPlay
		if ep.IsEval {
			ep.Opponent = core.OpponentCommonAI
		}
	}

	for i, a := range payload.Agents {
		camp, err := ParseCamp(a.Camp)
		if err != nil {
			return ep, fmt.Errorf("agent %d: %w", i, err)
		}
		if !camp.Valid() {
			return ep, fmt.Errorf("agent %d: camp %d is not playable", i, int(camp))
		}
		ep.Agents = append(ep.Agents, core.Agent{
			Index:    i,
			PlayerID: a.PlayerID,
			Camp:     camp,
			HeroID:   a.HeroID,
		})
	}

	p.logger.Debug("Parsed episode start",
		"episode", ep.ExternalID,
		"agents", len(ep.Agents),
		"eval", ep.IsEval,
		"opponent", ep.Opponent)

	return ep, nil
}

// ParseEpisodeEnd decodes an episode_end payload.
func (p *Parser) ParseEpisodeEnd(data []byte) (streaming.EpisodeEndPayload, error) {
	var payload streaming.EpisodeEndPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("error unmarshalling episode end: %w", err)
	}
	return payload, nil
}
