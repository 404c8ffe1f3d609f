package parser

import (
	"encoding/json"
	"fmt"

	"github.com/hokarena/reward/pkg/core"
)

// ParseFrame decodes a frame_state document into a snapshot.
func (p *Parser) ParseFrame(data []byte) (core.FrameSnapshot, error) {
	var snap core.FrameSnapshot

	var wf wireFrame
	if err := json.Unmarshal(data, &wf); err != nil {
		return snap, fmt.Errorf("error unmarshalling frame state: %w", err)
	}
	snap.FrameNo = wf.FrameNo

	snap.Heroes = make([]core.HeroState, 0, len(wf.HeroStates))
	for i, wh := range wf.HeroStates {
		h, err := convertHero(wh)
		if err != nil {
			return snap, fmt.Errorf("hero %d: %w", i, err)
		}
		snap.Heroes = append(snap.Heroes, h)
	}

	snap.Organs = make([]core.OrganState, 0, len(wf.NPCStates))
	for i, wa := range wf.NPCStates {
		o, err := convertOrgan(wa)
		if err != nil {
			return snap, fmt.Errorf("npc %d: %w", i, err)
		}
		if o.Subtype == core.OrganUnknown || o.Subtype == core.OrganHero {
			continue
		}
		snap.Organs = append(snap.Organs, o)
	}

	for _, d := range wf.FrameAction.DeadAction {
		snap.Events.Deaths = append(snap.Events.Deaths, core.DeadAction{
			KillerRuntimeID: d.Killer.RuntimeID,
			DeathRuntimeID:  d.Death.RuntimeID,
			DeathSubtype:    core.OrganSubtype(d.Death.SubType),
		})
	}

	if p.strict {
		if err := p.Validate(&snap); err != nil {
			return snap, err
		}
	}

	p.logger.Debug("Parsed frame",
		"frame", snap.FrameNo,
		"heroes", len(snap.Heroes),
		"organs", len(snap.Organs),
		"deaths", len(snap.Events.Deaths))

	return snap, nil
}

func convertHero(wh wireHero) (core.HeroState, error) {
	a := wh.ActorState
	camp, err := ParseCamp(a.Camp)
	if err != nil {
		return core.HeroState{}, err
	}

	h := core.HeroState{
		PlayerID:          wh.PlayerID,
		RuntimeID:         a.RuntimeID,
		ConfigID:          a.ConfigID,
		Camp:              camp,
		HP:                a.HP,
		MaxHP:             a.MaxHP,
		EP:                a.Values.EP,
		MaxEP:             a.Values.MaxEP,
		Money:             wh.MoneyCnt,
		KillCount:         int(wh.KillCnt),
		DeathCount:        int(wh.DeadCnt),
		TotalHurtToHero:   wh.TotalHurtToHero,
		TotalHurt:         wh.TotalHurt,
		TotalBeHurtByHero: wh.TotalBeHurtByHero,
		Exp:               wh.Exp,
		Level:             int(wh.Level),
		Location:          core.Location{X: a.Location.X, Z: a.Location.Z},
		AttackRange:       a.AttackRange,
		InGrass:           wh.IsInGrass,
	}
	for _, t := range a.HitTargetInfo {
		h.HitTargets = append(h.HitTargets, core.HitTarget{
			Target:        t.HitTarget,
			ContiHitCount: int(t.ContiHitCount),
		})
	}
	for _, s := range wh.SkillState.SlotStates {
		h.Skills = append(h.Skills, core.SkillSlot{
			UsedTimes:    int(s.UsedTimes),
			HitHeroTimes: int(s.HitHeroTimes),
		})
	}
	return h, nil
}

func convertOrgan(a wireActor) (core.OrganState, error) {
	camp, err := ParseCamp(a.Camp)
	if err != nil {
		return core.OrganState{}, err
	}
	return core.OrganState{
		RuntimeID:    a.RuntimeID,
		Camp:         camp,
		Subtype:      core.OrganSubtype(a.SubType),
		HP:           a.HP,
		MaxHP:        a.MaxHP,
		Location:     core.Location{X: a.Location.X, Z: a.Location.Z},
		AttackTarget: int64(a.AttackTarget),
	}, nil
}
