// pkg/core/frame.go
package core

// Camp identifies one of the two competing sides.
type Camp int

const (
	CampUnknown Camp = 0
	CampBlue    Camp = 1
	CampRed     Camp = 2
)

// Opponent returns the other camp. CampUnknown has no opponent.
func (c Camp) Opponent() Camp {
	switch c {
	case CampBlue:
		return CampRed
	case CampRed:
		return CampBlue
	default:
		return CampUnknown
	}
}

// Valid reports whether c is one of the two playable camps.
func (c Camp) Valid() bool {
	return c == CampBlue || c == CampRed
}

func (c Camp) String() string {
	switch c {
	case CampBlue:
		return "PLAYERCAMP_1"
	case CampRed:
		return "PLAYERCAMP_2"
	default:
		return "PLAYERCAMP_NONE"
	}
}

// OrganSubtype classifies non-hero actors.
type OrganSubtype int

const (
	OrganUnknown OrganSubtype = iota
	OrganTower
	OrganCrystal
	OrganMinion
	OrganHero
)

func (s OrganSubtype) String() string {
	switch s {
	case OrganTower:
		return "ACTOR_SUB_TOWER"
	case OrganCrystal:
		return "ACTOR_SUB_CRYSTAL"
	case OrganMinion:
		return "ACTOR_SUB_SOLDIER"
	case OrganHero:
		return "ACTOR_SUB_HERO"
	default:
		return "ACTOR_SUB_NONE"
	}
}

// Location is a point on the ground plane. The simulator's vertical axis is
// dropped, so Z is the second planar coordinate.
type Location struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// HitTarget is one active target record of a hero.
type HitTarget struct {
	Target        int64 `json:"hit_target"`
	ContiHitCount int   `json:"conti_hit_count"`
}

// SkillSlot carries per-slot usage counters.
type SkillSlot struct {
	UsedTimes    int `json:"used_times"`
	HitHeroTimes int `json:"hit_hero_times"`
}

// HeroState is one hero as seen in a single frame.
type HeroState struct {
	PlayerID  int64 `json:"player_id"`
	RuntimeID int64 `json:"runtime_id"`
	ConfigID  int   `json:"config_id"`
	Camp      Camp  `json:"camp"`

	HP    float64 `json:"hp"`
	MaxHP float64 `json:"max_hp"`
	EP    float64 `json:"ep"`
	MaxEP float64 `json:"max_ep"`

	Money      float64 `json:"money"`
	KillCount  int     `json:"kill_count"`
	DeathCount int     `json:"death_count"`

	TotalHurtToHero   float64 `json:"total_hurt_to_hero"`
	TotalHurt         float64 `json:"total_hurt"`
	TotalBeHurtByHero float64 `json:"total_be_hurt_by_hero"`

	Exp   float64 `json:"exp"`
	Level int     `json:"level"`

	Location    Location `json:"location"`
	AttackRange float64  `json:"attack_range"`
	InGrass     bool     `json:"in_grass"`

	HitTargets []HitTarget `json:"hit_targets,omitempty"`
	Skills     []SkillSlot `json:"skills,omitempty"`
}

// HPRatio returns hp/max_hp, or 0 when max_hp is not positive.
func (h *HeroState) HPRatio() float64 {
	if h == nil || h.MaxHP <= 0 {
		return 0
	}
	return h.HP / h.MaxHP
}

// Targets reports whether any of the hero's active target records points at runtimeID.
func (h *HeroState) Targets(runtimeID int64) bool {
	if h == nil || runtimeID == 0 {
		return false
	}
	for _, t := range h.HitTargets {
		if t.Target == runtimeID {
			return true
		}
	}
	return false
}

// OrganState is a tower, base crystal or minion.
type OrganState struct {
	RuntimeID    int64        `json:"runtime_id"`
	Camp         Camp         `json:"camp"`
	Subtype      OrganSubtype `json:"sub_type"`
	HP           float64      `json:"hp"`
	MaxHP        float64      `json:"max_hp"`
	Location     Location     `json:"location"`
	AttackTarget int64        `json:"attack_target,omitempty"`
}

// HPRatio returns hp/max_hp, or 0 when max_hp is not positive.
func (o *OrganState) HPRatio() float64 {
	if o == nil || o.MaxHP <= 0 {
		return 0
	}
	return o.HP / o.MaxHP
}

// DeadAction records one death that happened during the frame.
type DeadAction struct {
	KillerRuntimeID int64        `json:"killer_runtime_id"`
	DeathRuntimeID  int64        `json:"death_runtime_id"`
	DeathSubtype    OrganSubtype `json:"death_sub_type"`
}

// FrameEvents lists the discrete events of a frame.
type FrameEvents struct {
	Deaths []DeadAction `json:"deaths,omitempty"`
}

// FrameSnapshot is the read-only world state handed to the reward engine
// once per simulation tick.
type FrameSnapshot struct {
	FrameNo int          `json:"frame_no"`
	Heroes  []HeroState  `json:"heroes"`
	Organs  []OrganState `json:"organs"`
	Events  FrameEvents  `json:"events"`
}
