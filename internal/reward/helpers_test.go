package reward

import (
	"github.com/hokarena/reward/pkg/core"
)

const (
	bluePlayer int64 = 1
	redPlayer  int64 = 2
)

func hero(player int64, camp core.Camp, hp float64) core.HeroState {
	return core.HeroState{
		PlayerID:  player,
		RuntimeID: player * 10,
		Camp:      camp,
		HP:        hp,
		MaxHP:     100,
		EP:        50,
		MaxEP:     100,
		Level:     1,
	}
}

// frame builds a lane with towers 20000 apart, blue at the origin side.
func frame(no int, blueHP, redHP float64) *core.FrameSnapshot {
	blue := hero(bluePlayer, core.CampBlue, blueHP)
	blue.Location = core.Location{X: -15000}
	red := hero(redPlayer, core.CampRed, redHP)
	red.Location = core.Location{X: 15000}
	return &core.FrameSnapshot{
		FrameNo: no,
		Heroes:  []core.HeroState{blue, red},
		Organs: []core.OrganState{
			{RuntimeID: 101, Camp: core.CampBlue, Subtype: core.OrganTower, HP: 1000, MaxHP: 1000, Location: core.Location{X: -10000}},
			{RuntimeID: 102, Camp: core.CampBlue, Subtype: core.OrganCrystal, HP: 2000, MaxHP: 2000, Location: core.Location{X: -20000}},
			{RuntimeID: 201, Camp: core.CampRed, Subtype: core.OrganTower, HP: 1000, MaxHP: 1000, Location: core.Location{X: 10000}},
			{RuntimeID: 202, Camp: core.CampRed, Subtype: core.OrganCrystal, HP: 2000, MaxHP: 2000, Location: core.Location{X: 20000}},
		},
	}
}

func onlyWeights(names ...string) map[string]float64 {
	w := make(map[string]float64, len(names))
	for _, n := range names {
		w[n] = 1
	}
	return w
}
