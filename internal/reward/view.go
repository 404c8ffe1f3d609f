package reward

import (
	"github.com/hokarena/reward/pkg/core"
)

// View is one camp's perspective on a frame. Pointers alias the snapshot,
// which is never written.
type View struct {
	Camp core.Camp

	Hero  *core.HeroState
	Enemy *core.HeroState

	OwnTower   *core.OrganState
	OwnBase    *core.OrganState
	EnemyTower *core.OrganState
	EnemyBase  *core.OrganState

	OwnMinions   []core.OrganState
	EnemyMinions []core.OrganState
}

// CampView partitions the snapshot around camp. The first hero of camp is
// the scored hero and the first hero of any other playable camp is its
// opponent. The first tower and crystal found per side are taken as primary.
func CampView(snap *core.FrameSnapshot, camp core.Camp) View {
	v := View{Camp: camp}
	if snap == nil {
		return v
	}

	for i := range snap.Heroes {
		h := &snap.Heroes[i]
		switch {
		case h.Camp == camp && v.Hero == nil:
			v.Hero = h
		case h.Camp != camp && h.Camp.Valid() && v.Enemy == nil:
			v.Enemy = h
		}
	}

	for i := range snap.Organs {
		o := &snap.Organs[i]
		own := o.Camp == camp
		if !own && !o.Camp.Valid() {
			continue
		}
		switch o.Subtype {
		case core.OrganTower:
			if own && v.OwnTower == nil {
				v.OwnTower = o
			} else if !own && v.EnemyTower == nil {
				v.EnemyTower = o
			}
		case core.OrganCrystal:
			if own && v.OwnBase == nil {
				v.OwnBase = o
			} else if !own && v.EnemyBase == nil {
				v.EnemyBase = o
			}
		case core.OrganMinion:
			if own {
				v.OwnMinions = append(v.OwnMinions, *o)
			} else {
				v.EnemyMinions = append(v.EnemyMinions, *o)
			}
		}
	}
	return v
}
