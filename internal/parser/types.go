package parser

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/hokarena/reward/pkg/core"
)

// wireFrame mirrors the simulator frame_state document.
type wireFrame struct {
	FrameNo     int             `json:"frameNo"`
	HeroStates  []wireHero      `json:"hero_states"`
	NPCStates   []wireActor     `json:"npc_states"`
	FrameAction wireFrameAction `json:"frame_action"`
}

// wireHero carries counters as floats; the simulator is not consistent about
// integer encoding.
type wireHero struct {
	PlayerID          int64          `json:"player_id"`
	ActorState        wireActor      `json:"actor_state"`
	MoneyCnt          float64        `json:"moneyCnt"`
	KillCnt           float64        `json:"killCnt"`
	DeadCnt           float64        `json:"deadCnt"`
	TotalHurtToHero   float64        `json:"totalHurtToHero"`
	TotalHurt         float64        `json:"totalHurt"`
	TotalBeHurtByHero float64        `json:"totalBeHurtByHero"`
	Level             float64        `json:"level"`
	Exp               float64        `json:"exp"`
	IsInGrass         bool           `json:"isInGrass"`
	SkillState        wireSkillState `json:"skill_state"`
}

type wireActor struct {
	ConfigID      int             `json:"config_id"`
	RuntimeID     int64           `json:"runtime_id"`
	Camp          json.RawMessage `json:"camp"`
	SubType       wireSubtype     `json:"sub_type"`
	HP            float64         `json:"hp"`
	MaxHP         float64         `json:"max_hp"`
	Values        wireValues      `json:"values"`
	Location      wireLocation    `json:"location"`
	AttackRange   float64         `json:"attack_range"`
	AttackTarget  wireTarget      `json:"attack_target"`
	HitTargetInfo []wireHitTarget `json:"hit_target_info"`
}

type wireValues struct {
	EP    float64 `json:"ep"`
	MaxEP float64 `json:"max_ep"`
}

// wireLocation drops the vertical axis on conversion.
type wireLocation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type wireHitTarget struct {
	HitTarget     int64   `json:"hit_target"`
	ContiHitCount float64 `json:"conti_hit_count"`
}

type wireSkillState struct {
	SlotStates []wireSlot `json:"slot_states"`
}

type wireSlot struct {
	UsedTimes    float64 `json:"usedTimes"`
	HitHeroTimes float64 `json:"hitHeroTimes"`
}

type wireFrameAction struct {
	DeadAction []wireDeadAction `json:"dead_action"`
}

type wireDeadAction struct {
	Death  wireActor `json:"death"`
	Killer wireActor `json:"killer"`
}

// wireSubtype accepts the enum name or its numeric value.
type wireSubtype core.OrganSubtype

var subtypeNames = map[string]core.OrganSubtype{
	"ACTOR_SUB_TOWER":   core.OrganTower,
	"ACTOR_SUB_CRYSTAL": core.OrganCrystal,
	"ACTOR_SUB_SOLDIER": core.OrganMinion,
	"ACTOR_SUB_HERO":    core.OrganHero,
}

var subtypeCodes = map[int64]core.OrganSubtype{
	11: core.OrganMinion,
	21: core.OrganTower,
	24: core.OrganCrystal,
}

func (w *wireSubtype) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*w = wireSubtype(core.OrganUnknown)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = wireSubtype(subtypeNames[strings.ToUpper(s)])
		return nil
	}
	n, err := parseIntFromFloat(string(b))
	if err != nil {
		return err
	}
	*w = wireSubtype(subtypeCodes[n])
	return nil
}

// wireTarget accepts a bare runtime id or a hit_target_info style list, of
// which the first record counts.
type wireTarget int64

func (w *wireTarget) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*w = 0
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '[' {
		var list []wireHitTarget
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			*w = wireTarget(list[0].HitTarget)
		}
		return nil
	}
	n, err := parseIntFromFloat(string(b))
	if err != nil {
		return err
	}
	*w = wireTarget(n)
	return nil
}
