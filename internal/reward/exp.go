package reward

// DefaultLevelExp is the experience needed to clear each of levels 1 through 14.
var DefaultLevelExp = []float64{160, 298, 446, 524, 613, 713, 825, 950, 1088, 1240, 1406, 1585, 1778, 1984}

// MaxLevel is the level at which experience stops paying out.
const MaxLevel = 15

// ExpTable maps a level to the experience accumulated before reaching it.
type ExpTable struct {
	caps []float64
}

// NewExpTable copies the per-level caps, index 0 being level 1.
func NewExpTable(caps []float64) ExpTable {
	c := make([]float64, len(caps))
	copy(c, caps)
	return ExpTable{caps: c}
}

// Cumulative returns the caps of every level below level plus the current exp.
// Levels beyond the table contribute nothing.
func (t ExpTable) Cumulative(level int, exp float64) float64 {
	sum := 0.0
	for l := 1; l < level && l <= len(t.caps); l++ {
		sum += t.caps[l-1]
	}
	return sum + exp
}
