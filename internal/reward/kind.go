package reward

import (
	"strings"
)

// Kind is one member of the closed set of reward terms.
type Kind int

const (
	KindMoney Kind = iota
	KindHPPoint
	KindTowerHPPoint
	KindEPRate
	KindDeath
	KindKill
	KindLastHit
	KindExp
	KindForward
	KindHurtToHero
	KindBeHurtByHero
	KindHurtToOthers
	KindEnemySoldiersHP
	KindHeal
	KindSkillHitCount

	numKinds
)

// kindDef binds a term name to its per-camp extraction and its combination rule.
type kindDef struct {
	name    string
	extract extractFunc
	combine combineFunc
}

var kinds = [numKinds]kindDef{
	KindMoney:           {"money", extractMoney, scaled(1.0 / 100)},
	KindHPPoint:         {"hp_point", extractHPPoint, combineHPPoint},
	KindTowerHPPoint:    {"tower_hp_point", extractTowerHPPoint, combineNegated},
	KindEPRate:          {"ep_rate", extractEPRate, combineEPRate},
	KindDeath:           {"death", extractDeath, combineDeath},
	KindKill:            {"kill", extractKill, combineKill},
	KindLastHit:         {"last_hit", extractLastHit, combineSelf},
	KindExp:             {"exp", extractExp, combineExp},
	KindForward:         {"forward", extractForward, combineSelf},
	KindHurtToHero:      {"HurtToHero", extractHurtToHero, scaled(100)},
	KindBeHurtByHero:    {"BeHurtByHero", extractBeHurtByHero, scaled(50)},
	KindHurtToOthers:    {"HurtToOthers", extractHurtToOthers, scaled(50)},
	KindEnemySoldiersHP: {"enemy_Soldiers_hp", extractEnemySoldiersHP, combineSoldiers},
	KindHeal:            {"heal", extractHeal, combineHeal},
	KindSkillHitCount:   {"skill_hit_count", extractSkillHitCount, combineSymmetric},
}

// Valid reports whether k belongs to the closed set.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// String returns the canonical term name used in configuration and output.
func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return kinds[k].name
}

// LookupKind resolves a term name case-insensitively. Configuration keys
// pass through viper, which lower-cases them.
func LookupKind(name string) (Kind, bool) {
	for i := range kinds {
		if strings.EqualFold(kinds[i].name, name) {
			return Kind(i), true
		}
	}
	return 0, false
}
