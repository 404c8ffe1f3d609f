package reward

import (
	"math"

	"github.com/hokarena/reward/internal/geo"
	"github.com/hokarena/reward/internal/util"
	"github.com/hokarena/reward/pkg/core"
)

// HealSlot is the skill slot of the heal summoner spell.
const HealSlot = 4

const (
	inRangeBalance    = 1.2
	grassBonus        = 0.1
	movingBonus       = 0.1
	othersDamageScale = 1e5
	contiHitBonus     = 0.03
	minionHeroBonus   = 0.2
	minionBackBonus   = 0.1
)

// extraction carries what a camp's extractors read. view.Hero is never nil
// when an extractor runs.
type extraction struct {
	snap    *core.FrameSnapshot
	view    View
	state   *campState
	exp     ExpTable
	balance float64
	check   float64
}

type extractFunc func(x *extraction) float64

func newExtraction(snap *core.FrameSnapshot, v View, s *campState, exp ExpTable) *extraction {
	x := &extraction{snap: snap, view: v, state: s, exp: exp}
	if v.Hero != nil {
		x.balance = minionBalance(v)
		x.check = s.health.Check()
	}
	return x
}

func extractMoney(x *extraction) float64 {
	return x.view.Hero.Money
}

func extractHPPoint(x *extraction) float64 {
	return util.SqrtNonNeg(util.SqrtNonNeg(x.view.Hero.HPRatio()))
}

func extractEPRate(x *extraction) float64 {
	h := x.view.Hero
	if h.MaxEP <= 0 || h.HP <= 0 {
		return 0
	}
	return util.SafeDiv(h.EP, h.MaxEP)
}

func extractKill(x *extraction) float64 {
	return float64(x.view.Hero.KillCount)
}

func extractDeath(x *extraction) float64 {
	return float64(x.view.Hero.DeathCount)
}

func extractTowerHPPoint(x *extraction) float64 {
	return x.view.OwnTower.HPRatio()
}

func extractLastHit(x *extraction) float64 {
	hero, enemy := x.view.Hero, x.view.Enemy
	v := 0.0
	for _, d := range x.snap.Events.Deaths {
		if d.DeathSubtype != core.OrganMinion || d.KillerRuntimeID == 0 {
			continue
		}
		switch {
		case d.KillerRuntimeID == hero.RuntimeID:
			v++
		case enemy != nil && d.KillerRuntimeID == enemy.RuntimeID:
			v--
		}
	}
	return v
}

func extractExp(x *extraction) float64 {
	return x.exp.Cumulative(x.view.Hero.Level, x.view.Hero.Exp)
}

func extractForward(x *extraction) float64 {
	return forwardValue(x.view, x.check)
}

func extractHeal(x *extraction) float64 {
	skills := x.view.Hero.Skills
	if len(skills) <= HealSlot {
		return 0
	}
	return float64(skills[HealSlot].UsedTimes)
}

func extractSkillHitCount(x *extraction) float64 {
	sum := 0
	for _, s := range x.view.Hero.Skills {
		sum += s.HitHeroTimes
	}
	return float64(sum)
}

func extractHurtToHero(x *extraction) float64 {
	hero, enemy := x.view.Hero, x.view.Enemy
	if !x.state.seen || enemy == nil || enemy.MaxHP <= 0 {
		return 0
	}
	balance := 1.0
	if geo.Distance(hero.Location, enemy.Location) <= hero.AttackRange {
		balance *= inRangeBalance
	}
	if hero.InGrass {
		balance += grassBonus
	}
	if geo.Moved(hero.Location, x.state.lastPos) {
		balance += movingBonus
	}
	delta := hero.TotalHurtToHero - x.state.lastHurtToHero
	return delta * balance / enemy.MaxHP * util.SqrtNonNeg(hero.HPRatio())
}

func extractHurtToOthers(x *extraction) float64 {
	hero := x.view.Hero
	maxConti := 0
	for _, t := range hero.HitTargets {
		if t.ContiHitCount > maxConti {
			maxConti = t.ContiHitCount
		}
	}
	balance := 1 + contiHitBonus*float64(maxConti)
	return (hero.TotalHurt - hero.TotalHurtToHero) / othersDamageScale * balance * util.SqrtNonNeg(hero.HPRatio())
}

// extractBeHurtByHero damps received damage by current energy, not max energy.
func extractBeHurtByHero(x *extraction) float64 {
	hero := x.view.Hero
	if !x.state.seen || hero.MaxHP <= 0 {
		return 0
	}
	delta := hero.TotalBeHurtByHero - x.state.lastBeHurtByHero
	damp := math.Exp(-util.SqrtNonNeg(hero.EP/hero.MaxHP) / 2)
	return delta / hero.MaxHP * damp
}

func extractEnemySoldiersHP(x *extraction) float64 {
	if len(x.view.EnemyMinions) == 0 {
		return 0
	}
	prev := averageHP(x.state.lastEnemyMinions)
	if prev == 0 {
		return 0
	}
	return (prev - averageHP(x.view.EnemyMinions)) * x.balance
}

// averageHP is the mean health ratio over minions with a positive max hp.
func averageHP(minions []core.OrganState) float64 {
	total, n := 0.0, 0
	for i := range minions {
		if minions[i].MaxHP <= 0 {
			continue
		}
		total += minions[i].HPRatio()
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// minionBalance weighs minion damage by who is focusing enemy minions: 0 when
// neither the own tower nor the hero targets one, otherwise 1 with bonuses
// for the hero's own focus and for picking the rearmost minion.
func minionBalance(v View) float64 {
	heroFocus, towerFocus := false, false
	for i := range v.EnemyMinions {
		id := v.EnemyMinions[i].RuntimeID
		if v.Hero.Targets(id) {
			heroFocus = true
		}
		if v.OwnTower != nil && id != 0 && v.OwnTower.AttackTarget == id {
			towerFocus = true
		}
	}
	if !heroFocus && !towerFocus {
		return 0
	}
	balance := 1.0
	if heroFocus {
		balance += minionHeroBonus
	}
	if back := rearmostMinion(v); back != nil && v.Hero.Targets(back.RuntimeID) {
		balance += minionBackBonus
	}
	return balance
}

// rearmostMinion returns the enemy minion deepest toward the enemy tower
// along the own-tower to enemy-tower axis.
func rearmostMinion(v View) *core.OrganState {
	if v.OwnTower == nil || v.EnemyTower == nil {
		return nil
	}
	axis := geo.NewAxis(v.OwnTower.Location, v.EnemyTower.Location)
	if !axis.Valid() {
		return nil
	}
	var best *core.OrganState
	bestProj := math.Inf(-1)
	for i := range v.EnemyMinions {
		if p := axis.Project(v.EnemyMinions[i].Location); p > bestProj {
			bestProj = p
			best = &v.EnemyMinions[i]
		}
	}
	return best
}
