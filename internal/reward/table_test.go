package reward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	tbl, err := NewTable(map[string]float64{
		"skill_hit_count": 0.01,
		"money":           0.5,
		"nope":            1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Has(KindMoney))
	assert.False(t, tbl.Has(KindHeal))
	assert.Nil(t, tbl.Entry(KindHeal))

	var order []Kind
	tbl.Each(func(e *Entry) { order = append(order, e.Kind) })
	assert.Equal(t, []Kind{KindMoney, KindSkillHitCount}, order)
	assert.Equal(t, map[string]float64{"money": 0.5, "skill_hit_count": 0.01}, tbl.Weights())
}

func TestNewTable_Errors(t *testing.T) {
	_, err := NewTable(map[string]float64{"money": math.Inf(1)})
	assert.ErrorIs(t, err, ErrNonFiniteWeight)

	_, err = NewTable(map[string]float64{"money": 1, "MONEY": 2})
	assert.ErrorIs(t, err, ErrDuplicateTerm)
}

func TestUnknownTerms(t *testing.T) {
	got := UnknownTerms(map[string]float64{"money": 1, "zeta": 1, "alpha": 1})
	assert.Equal(t, []string{"alpha", "zeta"}, got)
	assert.Empty(t, UnknownTerms(DefaultWeights()))
}

func TestTable_ShiftAndClear(t *testing.T) {
	tbl, err := NewTable(map[string]float64{"money": 1})
	require.NoError(t, err)

	e := tbl.Entry(KindMoney)
	e.Current = 5
	tbl.Shift()
	e.Current = 7
	assert.Equal(t, 5.0, e.Previous)
	assert.Equal(t, 7.0, e.Current)

	clone := tbl.Clone()
	assert.Equal(t, 0.0, clone.Entry(KindMoney).Current)
	assert.Equal(t, 1.0, clone.Entry(KindMoney).Weight)

	e.Resolved = 3
	tbl.Clear()
	assert.Equal(t, Entry{Kind: KindMoney, Weight: 1}, *e)
}
