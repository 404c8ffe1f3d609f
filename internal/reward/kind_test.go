package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds_AllPopulated(t *testing.T) {
	names := make(map[string]bool)
	for k, def := range kinds {
		assert.NotEmpty(t, def.name, "kind %d", k)
		assert.NotNil(t, def.extract, "kind %s", def.name)
		assert.NotNil(t, def.combine, "kind %s", def.name)
		assert.False(t, names[def.name], "duplicate name %s", def.name)
		names[def.name] = true
	}
	assert.Len(t, names, 15)
}

func TestLookupKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
		ok   bool
	}{
		{"money", KindMoney, true},
		{"HurtToHero", KindHurtToHero, true},
		{"hurttohero", KindHurtToHero, true},
		{"ENEMY_SOLDIERS_HP", KindEnemySoldiersHP, true},
		{"reward_sum", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := LookupKind(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "BeHurtByHero", KindBeHurtByHero.String())
	assert.Equal(t, "unknown", Kind(-1).String())
	assert.Equal(t, "unknown", numKinds.String())
}
