// Package geo provides planar geometry on the match map.
// The arena is a flat plane measured in simulator units, so plain Euclidean
// math is used rather than any geodetic projection.
package geo

import (
	"math"

	"github.com/hokarena/reward/pkg/core"
)

// Distance returns the Euclidean distance between a and b.
func Distance(a, b core.Location) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// Moved reports whether two locations differ.
func Moved(a, b core.Location) bool {
	return a.X != b.X || a.Z != b.Z
}

// Axis is a unit direction on the plane anchored at an origin.
type Axis struct {
	Origin core.Location
	dx, dz float64
	ok     bool
}

// NewAxis returns the axis pointing from "from" to "to". The axis is invalid
// when both points coincide.
func NewAxis(from, to core.Location) Axis {
	d := Distance(from, to)
	if d == 0 {
		return Axis{Origin: from}
	}
	return Axis{
		Origin: from,
		dx:     (to.X - from.X) / d,
		dz:     (to.Z - from.Z) / d,
		ok:     true,
	}
}

// Valid reports whether the axis has a direction.
func (a Axis) Valid() bool {
	return a.ok
}

// Project returns the signed distance of p along the axis from its origin.
func (a Axis) Project(p core.Location) float64 {
	if !a.ok {
		return 0
	}
	return (p.X-a.Origin.X)*a.dx + (p.Z-a.Origin.Z)*a.dz
}
