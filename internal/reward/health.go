package reward

import (
	"github.com/hokarena/reward/internal/queue"
)

// HealthHistoryCap is the number of health ratios kept for the rolling check.
const HealthHistoryCap = 8

const (
	sharpDropRatio     = 0.4
	sharpRecoveryRatio = 1.2
)

// HealthHistory is a bounded window of normalized health ratios, oldest first.
type HealthHistory struct {
	ring *queue.Ring[float64]
}

// NewHealthHistory returns an empty history.
func NewHealthHistory() *HealthHistory {
	return &HealthHistory{ring: queue.NewRing[float64](HealthHistoryCap)}
}

// Observe records a health ratio. A ratio of zero or less means the hero is
// dead and empties the window.
func (h *HealthHistory) Observe(ratio float64) {
	if ratio <= 0 {
		h.ring.Clear()
		return
	}
	h.ring.Push(ratio)
}

// Reset empties the window.
func (h *HealthHistory) Reset() {
	h.ring.Clear()
}

func (h *HealthHistory) size() int {
	return h.ring.Len()
}

// Check returns a negative drop signal when the newest ratio fell to 40% of
// the oldest or less, a positive recovery signal when the second-newest rose
// to 120% of the oldest or more, and 0 otherwise.
func (h *HealthHistory) Check() float64 {
	n := h.size()
	if n < 2 {
		return 0
	}
	oldest := h.ring.At(0)
	newest := h.ring.At(n - 1)
	if newest <= sharpDropRatio*oldest {
		return newest - oldest
	}
	second := h.ring.At(n - 2)
	if second >= sharpRecoveryRatio*oldest {
		return second - oldest
	}
	return 0
}
