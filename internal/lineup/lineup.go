// Package lineup generates hero lineups and the per-episode training plan.
package lineup

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/hokarena/reward/pkg/core"
)

// ErrNoHeroes is returned when the hero pool is empty.
var ErrNoHeroes = errors.New("no camp heroes configured")

// RoundRobin cycles every ordered pair of camp hero lists.
type RoundRobin struct {
	camps [][]int
	i, j  int
}

// NewRoundRobin returns an iterator over campHeroes. Each entry is the hero
// list of one camp.
func NewRoundRobin(campHeroes [][]int) (*RoundRobin, error) {
	if len(campHeroes) == 0 {
		return nil, ErrNoHeroes
	}
	for i, c := range campHeroes {
		if len(c) == 0 {
			return nil, fmt.Errorf("%w: entry %d is empty", ErrNoHeroes, i)
		}
	}
	return &RoundRobin{camps: campHeroes}, nil
}

// Next returns the lineup for both camps and advances the iterator.
func (r *RoundRobin) Next() [][]int {
	out := [][]int{
		append([]int(nil), r.camps[r.i]...),
		append([]int(nil), r.camps[r.j]...),
	}
	r.j++
	if r.j == len(r.camps) {
		r.j = 0
		r.i = (r.i + 1) % len(r.camps)
	}
	return out
}

// Len is the cycle length.
func (r *RoundRobin) Len() int {
	return len(r.camps) * len(r.camps)
}

// Plan is what one episode is configured with before it starts.
type Plan struct {
	Episode    int     `json:"episode"`
	Lineups    [][]int `json:"lineups"`
	TrainAgent int     `json:"train_agent"`
	Eval       bool    `json:"eval"`
	Opponent   string  `json:"opponent"`
}

// Schedule alternates the trained side, spreads evaluation episodes evenly
// and draws lineups from a RoundRobin.
type Schedule struct {
	lineups     *RoundRobin
	evalFreq    int
	randomStart int
	episode     int
	trainAgent  int
}

// NewSchedule builds a schedule. A zero seed seeds from the clock; evalFreq
// below 1 disables evaluation episodes.
func NewSchedule(campHeroes [][]int, evalFreq int, seed int64) (*Schedule, error) {
	rr, err := NewRoundRobin(campHeroes)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Schedule{lineups: rr, evalFreq: evalFreq}
	if evalFreq > 0 {
		s.randomStart = rand.New(rand.NewSource(seed)).Intn(evalFreq + 1)
	}
	return s, nil
}

// Next returns the plan of the next episode.
func (s *Schedule) Next() Plan {
	s.trainAgent = 1 - s.trainAgent
	eval := s.evalFreq > 0 && (s.episode+s.randomStart)%s.evalFreq == 0

	p := Plan{
		Episode:    s.episode + 1,
		Lineups:    s.lineups.Next(),
		TrainAgent: s.trainAgent,
		Eval:       eval,
		Opponent:   core.OpponentSelfPlay,
	}
	if eval {
		p.Opponent = core.OpponentCommonAI
	}
	s.episode++
	return p
}

// Take returns the next n plans.
func (s *Schedule) Take(n int) []Plan {
	out := make([]Plan, 0, max(n, 0))
	for range n {
		out = append(out, s.Next())
	}
	return out
}
