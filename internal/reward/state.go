package reward

import (
	"github.com/hokarena/reward/pkg/core"
)

// campState is the cross-frame memory kept for one scored camp during an episode.
type campState struct {
	seen bool

	lastHurtToHero   float64
	lastBeHurtByHero float64
	lastPos          core.Location

	lastEnemyMinions []core.OrganState

	health *HealthHistory
}

func newCampState() campState {
	return campState{health: NewHealthHistory()}
}

func (s *campState) reset() {
	s.seen = false
	s.lastHurtToHero = 0
	s.lastBeHurtByHero = 0
	s.lastPos = core.Location{}
	s.lastEnemyMinions = nil
	s.health.Reset()
}

// remember stores what the next frame compares against. The minion list is
// copied because the view aliases a snapshot the engine does not own.
func (s *campState) remember(v View) {
	if v.Hero == nil {
		return
	}
	s.seen = true
	s.lastHurtToHero = v.Hero.TotalHurtToHero
	s.lastBeHurtByHero = v.Hero.TotalBeHurtByHero
	s.lastPos = v.Hero.Location
	s.lastEnemyMinions = append(s.lastEnemyMinions[:0], v.EnemyMinions...)
	s.health.Observe(v.Hero.HPRatio())
}
