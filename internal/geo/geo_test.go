package geo

import (
	"testing"

	"github.com/hokarena/reward/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     core.Location
		expected float64
	}{
		{"same point", core.Location{X: 1, Z: 1}, core.Location{X: 1, Z: 1}, 0},
		{"3-4-5", core.Location{X: 0, Z: 0}, core.Location{X: 3, Z: 4}, 5},
		{"negative coords", core.Location{X: -3000, Z: 0}, core.Location{X: 3000, Z: 0}, 6000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.expected, Distance(tt.b, tt.a), 1e-9)
		})
	}
}

func TestMoved(t *testing.T) {
	assert.False(t, Moved(core.Location{X: 1, Z: 2}, core.Location{X: 1, Z: 2}))
	assert.True(t, Moved(core.Location{X: 1, Z: 2}, core.Location{X: 1, Z: 3}))
}

func TestAxis_Project(t *testing.T) {
	axis := NewAxis(core.Location{X: 0, Z: 0}, core.Location{X: 10, Z: 0})
	assert.True(t, axis.Valid())
	assert.InDelta(t, 4.0, axis.Project(core.Location{X: 4, Z: 7}), 1e-9)
	assert.InDelta(t, -2.0, axis.Project(core.Location{X: -2, Z: 0}), 1e-9)

	diag := NewAxis(core.Location{X: 0, Z: 0}, core.Location{X: 1, Z: 1})
	assert.InDelta(t, 1.41421356, diag.Project(core.Location{X: 1, Z: 1}), 1e-6)
}

func TestAxis_Degenerate(t *testing.T) {
	axis := NewAxis(core.Location{X: 5, Z: 5}, core.Location{X: 5, Z: 5})
	assert.False(t, axis.Valid())
	assert.Equal(t, 0.0, axis.Project(core.Location{X: 100, Z: 100}))
}
