package hilbpix

import (
	"math"
	"strconv"
	"strings"
)

// AutoOffset selects the golden-ratio default shift.
const AutoOffset = "auto"

// goldenRatio is the golden ratio conjugate (√5−1)/2.
var goldenRatio = (math.Sqrt(5) - 1) / 2

// DefaultOffset returns the golden-ratio shift for a grid of total cells:
// round(φ·(total−1)), always inside [0, total−1]. A grid with at most one
// cell has no non-trivial shift and yields 0.
func DefaultOffset(total int) int {
	if total <= 1 {
		return 0
	}
	return int(math.Round(goldenRatio * float64(total-1)))
}

// SelectOffset resolves a user-supplied offset string against the grid size.
// Empty input or "auto" picks the golden-ratio default. Numeric input is
// taken by absolute value and clamped to total−1. Anything unparsable
// counts as 0. The result is always in [0, total−1].
func SelectOffset(total int, value string) int {
	if total <= 1 {
		return 0
	}
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, AutoOffset) {
		return DefaultOffset(total)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	f = math.Abs(math.Round(f))
	if f > float64(total-1) {
		return total - 1
	}
	return int(f)
}
