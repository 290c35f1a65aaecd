package stats

import "math"

// WilsonInterval calculates the Wilson score confidence interval
// for a single variant's conversion rate. It's more accurate for small
// samples than the normal approximation and never leaves [0, 1].
func WilsonInterval(successes, trials int, level ConfidenceLevel) Interval {
	if trials == 0 {
		return Interval{}
	}

	z := CriticalValue(level)
	p := float64(successes) / float64(trials)
	n := float64(trials)

	denominator := 1 + z*z/n
	center := (p + z*z/(2*n)) / denominator
	spread := (z / denominator) * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))

	return Interval{
		Lower: math.Max(0, center-spread),
		Upper: math.Min(1, center+spread),
	}
}
