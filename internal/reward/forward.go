package reward

import (
	"math"

	"github.com/hokarena/reward/internal/geo"
)

// Positional shaping constants, in simulator distance units where relevant.
const (
	fullHealth        = 0.99
	lowHealth         = 0.30
	advanceScale      = 100.0
	lowHealthPull     = 0.01
	pushScale         = 500.0
	pushMinDistance   = 8800.0
	defendRadius      = 9000.0
	defendMinInvaders = 2
)

// forwardValue scores the hero's lane position. check is the camp's rolling
// health signal from the previous frames.
func forwardValue(v View, check float64) float64 {
	hero := v.Hero
	if hero == nil || v.OwnTower == nil || v.EnemyTower == nil {
		return 0
	}

	dT := geo.Distance(v.OwnTower.Location, v.EnemyTower.Location)
	if dT == 0 {
		return 0
	}
	dHE := geo.Distance(hero.Location, v.EnemyTower.Location)
	hp := hero.HPRatio()

	value := 0.0
	if dHE > dT {
		// behind the own tower line
		switch {
		case hp > fullHealth:
			value += (dT - dHE) / dT * advanceScale
		case hp < lowHealth && v.OwnBase != nil:
			dBT := geo.Distance(v.OwnBase.Location, v.OwnTower.Location)
			if dBT > 0 {
				dHB := geo.Distance(hero.Location, v.OwnBase.Location)
				value -= lowHealthPull * dHB / dBT
			}
		}
	} else {
		retreat := (dHE - dT) / dT
		if check < 0 || (hero.RuntimeID != 0 && v.EnemyTower.AttackTarget == hero.RuntimeID) {
			value += retreat
		}
		if hp < lowHealth {
			value += retreat * math.Exp(1-hp)
		}
		if len(v.EnemyMinions) == 0 && len(v.OwnMinions) > 0 {
			dM := math.Inf(1)
			for i := range v.OwnMinions {
				dM = math.Min(dM, geo.Distance(v.OwnMinions[i].Location, v.EnemyTower.Location))
			}
			if dM < dT && dHE > pushMinDistance && dHE >= dM {
				value += (dHE - dM) / dT * pushScale
			}
		}
	}

	invaders := 0
	for i := range v.EnemyMinions {
		if geo.Distance(v.EnemyMinions[i].Location, v.OwnTower.Location) < defendRadius {
			invaders++
		}
	}
	if invaders >= defendMinInvaders && dHE < dT-defendRadius {
		value += (dHE - dT) / dT
	}

	return value
}
