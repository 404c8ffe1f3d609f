package reward

import (
	"math"

	"github.com/hokarena/reward/pkg/core"
)

const (
	lateGameFrame      = 8000
	lateGameHPBoost    = 1.2
	killRewardFrame    = 6000
	killStreak         = 2
	deathPenaltyFrame  = 5000
	deathPenaltyGrowth = 1.00005
	expScale           = 1.0 / 50
	minionScale        = 100.0
	healHighHealth     = 0.85
	decayBase          = 0.6
)

// combination carries the frame-wide facts the combiners need beyond the two
// raw entries.
type combination struct {
	frameNo  int
	hero     *core.HeroState
	balance  float64
	recovery float64
	first    bool
}

// resolution is the combined current and previous value of a term together
// with its resolved (pre-decay) value.
type resolution struct {
	cur, prev, value float64
}

type combineFunc func(c *combination, main, enemy *Entry) resolution

func symdiff(m, e *Entry) resolution {
	cur := m.Current - e.Current
	prev := m.Previous - e.Previous
	return resolution{cur: cur, prev: prev, value: cur - prev}
}

func combineSymmetric(_ *combination, m, e *Entry) resolution {
	return symdiff(m, e)
}

func scaled(factor float64) combineFunc {
	return func(_ *combination, m, e *Entry) resolution {
		r := symdiff(m, e)
		r.value *= factor
		return r
	}
}

func combineNegated(_ *combination, m, e *Entry) resolution {
	r := symdiff(m, e)
	r.value = -r.value
	return r
}

func combineHPPoint(c *combination, m, e *Entry) resolution {
	var r resolution
	switch {
	case m.Previous == 0 && e.Previous == 0:
		return r
	case m.Previous == 0:
		r = resolution{cur: -e.Current, prev: -e.Previous}
	case e.Previous == 0:
		r = resolution{cur: m.Current, prev: m.Previous}
	default:
		r = resolution{cur: m.Current - e.Current, prev: m.Previous - e.Previous}
	}
	r.value = r.cur - r.prev
	if c.frameNo > lateGameFrame {
		r.value *= lateGameHPBoost
	}
	return r
}

func combineSelf(_ *combination, m, _ *Entry) resolution {
	return resolution{cur: m.Current, prev: m.Previous, value: m.Current}
}

func combineEPRate(_ *combination, m, _ *Entry) resolution {
	r := resolution{cur: m.Current, prev: m.Previous}
	if m.Previous != 0 {
		r.value = m.Current
	}
	return r
}

func combineExp(c *combination, m, e *Entry) resolution {
	r := symdiff(m, e)
	if c.hero != nil && c.hero.Level >= MaxLevel {
		r.value = 0
		return r
	}
	r.value *= expScale
	return r
}

func combineKill(c *combination, m, e *Entry) resolution {
	r := symdiff(m, e)
	if c.frameNo <= killRewardFrame && m.Current < killStreak {
		r.value = -r.value
	}
	return r
}

func combineDeath(c *combination, m, e *Entry) resolution {
	r := symdiff(m, e)
	if c.frameNo > deathPenaltyFrame {
		r.value *= math.Pow(deathPenaltyGrowth, float64(c.frameNo))
	}
	return r
}

func combineSoldiers(c *combination, m, e *Entry) resolution {
	r := symdiff(m, e)
	r.value *= c.balance * minionScale
	return r
}

// combineHeal rewards casting heal when it is needed: a cast at high health
// is penalized in proportion to how full the bar already was, and a cast
// followed by a recovery is boosted.
func combineHeal(c *combination, m, _ *Entry) resolution {
	r := resolution{cur: m.Current, prev: m.Previous}
	if c.first || c.hero == nil {
		return r
	}
	use := m.Current - m.Previous
	if use <= 0 {
		return r
	}
	hp := c.hero.HPRatio()
	if hp > healHighHealth {
		r.value = -use * (hp - healHighHealth) / (1 - healHighHealth)
		return r
	}
	r.value = use * (1 + math.Max(0, c.recovery))
	return r
}

// Decay returns the global time decay factor for a frame. A non-positive
// timeScale disables decay.
func Decay(frameNo int, timeScale float64) float64 {
	if timeScale <= 0 {
		return 1
	}
	return math.Pow(decayBase, float64(frameNo)/timeScale)
}
