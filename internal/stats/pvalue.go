package stats

import "math"

// Coefficients from Abramowitz and Stegun, Handbook of Mathematical
// Functions, formula 7.1.26 (|error| <= 1.5e-7).
const (
	asA1 = 0.254829592
	asA2 = -0.284496736
	asA3 = 1.421413741
	asA4 = -1.453152027
	asA5 = 1.061405429
	asP  = 0.3275911
)

// tailCutoff is the |z| beyond which the two-tailed probability is
// reported as exactly 0.
const tailCutoff = 7.0

// PValue returns the two-tailed p-value for a z-score: the probability
// of a deviation at least as extreme as |z| under the null hypothesis.
// It is 1 at z = 0, 0 beyond |z| = 7, NaN for non-finite z and always
// within [0, 1] otherwise.
func PValue(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return math.NaN()
	}
	if z == 0 {
		return 1
	}

	x := math.Abs(z)
	if x > tailCutoff {
		return 0
	}

	return clampUnit(erfcApprox(x / math.Sqrt2))
}

// erfcApprox is the A&S complementary error function for x >= 0.
func erfcApprox(x float64) float64 {
	t := 1.0 / (1.0 + asP*x)
	poly := ((((asA5*t+asA4)*t+asA3)*t+asA2)*t + asA1) * t
	return poly * math.Exp(-x*x)
}

func clampUnit(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
