package reward

import (
	"github.com/hokarena/reward/pkg/core"
)

// TerminalConfig shapes the one-off reward granted on the last frame of a
// training episode.
type TerminalConfig struct {
	Bonus   float64
	Horizon float64
}

// DefaultTerminalConfig matches the training workflow constants.
func DefaultTerminalConfig() TerminalConfig {
	return TerminalConfig{Bonus: 15, Horizon: 20000}
}

// TerminalReward scores the end state from camp's point of view: positive
// when its tower outlived the enemy's, negative otherwise, shrinking
// linearly as the match runs toward the horizon.
func TerminalReward(snap *core.FrameSnapshot, camp core.Camp, cfg TerminalConfig) float64 {
	if snap == nil {
		return 0
	}
	magnitude := cfg.Bonus
	if cfg.Horizon > 0 {
		magnitude *= 1 - float64(snap.FrameNo)/cfg.Horizon
	}

	v := CampView(snap, camp)
	switch {
	case v.OwnTower == nil:
		return -magnitude
	case v.EnemyTower == nil:
		return magnitude
	case v.OwnTower.HP <= v.EnemyTower.HP:
		return -magnitude
	default:
		return magnitude
	}
}
