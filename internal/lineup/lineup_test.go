package lineup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokarena/reward/pkg/core"
)

func TestRoundRobin_CyclesOrderedPairs(t *testing.T) {
	rr, err := NewRoundRobin([][]int{{133}, {199}, {508}})
	require.NoError(t, err)
	assert.Equal(t, 9, rr.Len())

	var got [][][]int
	for range 10 {
		got = append(got, rr.Next())
	}

	assert.Equal(t, [][]int{{133}, {133}}, got[0])
	assert.Equal(t, [][]int{{133}, {199}}, got[1])
	assert.Equal(t, [][]int{{133}, {508}}, got[2])
	assert.Equal(t, [][]int{{199}, {133}}, got[3])
	assert.Equal(t, [][]int{{508}, {508}}, got[8])
	assert.Equal(t, got[0], got[9])
}

func TestRoundRobin_ReturnsCopies(t *testing.T) {
	pool := [][]int{{133}}
	rr, err := NewRoundRobin(pool)
	require.NoError(t, err)

	l := rr.Next()
	l[0][0] = 1

	assert.Equal(t, 133, pool[0][0])
}

func TestRoundRobin_Errors(t *testing.T) {
	tests := []struct {
		name string
		pool [][]int
	}{
		{"nil", nil},
		{"empty", [][]int{}},
		{"empty camp", [][]int{{133}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoundRobin(tt.pool)
			assert.ErrorIs(t, err, ErrNoHeroes)
		})
	}
}

func TestSchedule_AlternatesTrainAgent(t *testing.T) {
	s, err := NewSchedule([][]int{{133}, {199}}, 10, 7)
	require.NoError(t, err)

	plans := s.Take(4)
	require.Len(t, plans, 4)

	assert.Equal(t, 1, plans[0].TrainAgent)
	assert.Equal(t, 0, plans[1].TrainAgent)
	assert.Equal(t, 1, plans[2].TrainAgent)
	assert.Equal(t, 0, plans[3].TrainAgent)
	assert.Equal(t, 1, plans[0].Episode)
	assert.Equal(t, 4, plans[3].Episode)
}

func TestSchedule_EvalFrequency(t *testing.T) {
	s, err := NewSchedule([][]int{{133}, {199}, {508}}, 10, 42)
	require.NoError(t, err)

	plans := s.Take(100)
	evals := 0
	for _, p := range plans {
		if p.Eval {
			evals++
			assert.Equal(t, core.OpponentCommonAI, p.Opponent)
		} else {
			assert.Equal(t, core.OpponentSelfPlay, p.Opponent)
		}
	}
	assert.Equal(t, 10, evals)
}

func TestSchedule_Deterministic(t *testing.T) {
	a, err := NewSchedule([][]int{{133}, {199}}, 5, 99)
	require.NoError(t, err)
	b, err := NewSchedule([][]int{{133}, {199}}, 5, 99)
	require.NoError(t, err)

	assert.Equal(t, a.Take(20), b.Take(20))
}

func TestSchedule_EvalDisabled(t *testing.T) {
	s, err := NewSchedule([][]int{{133}}, 0, 1)
	require.NoError(t, err)

	for _, p := range s.Take(5) {
		assert.False(t, p.Eval)
	}
	assert.Empty(t, s.Take(0))
}
