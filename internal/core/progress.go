package core

import "math"

// Progress returns how far g is towards its target as a ratio clamped to
// [0, 1] and as a whole percentage rounded to the nearest integer.
// Callers must pass a validated goal (TargetAmount > 0).
func Progress(g Goal) (ratio float64, percent int) {
	if g.TargetAmount.Cents <= 0 {
		return 0, 0
	}
	ratio = float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents)
	ratio = math.Max(0, math.Min(ratio, 1))
	return ratio, int(math.Round(ratio * 100))
}
