package stats

import (
	"errors"
	"fmt"
	"math"
)

// TestInput holds the raw counts for a two-variant test. Callers must
// validate it first: visitors > 0 and 0 <= conversions <= visitors.
type TestInput struct {
	VisitorsA       int
	ConversionsA    int
	VisitorsB       int
	ConversionsB    int
	ConfidenceLevel ConfidenceLevel
}

// Interval bounds the absolute difference rateB - rateA.
type Interval struct {
	Lower float64
	Upper float64
}

// StatisticalResult is the outcome of a single calculation. Degenerate
// inputs leave NaN or Inf in ZScore, PValue, ConfidenceInterval and
// RelativeImprovement; use Verdict to tell them apart.
type StatisticalResult struct {
	RateA               float64
	RateB               float64
	ZScore              float64
	PValue              float64
	ConfidenceInterval  Interval
	RelativeImprovement float64
	IsSignificant       bool
	ConfidenceLevel     ConfidenceLevel
}

// Verdict classifies a result for display.
type Verdict string

const (
	VerdictSignificant    Verdict = "significant"
	VerdictNotSignificant Verdict = "not_significant"
	VerdictIndeterminate  Verdict = "indeterminate"
)

// Calculate runs the full pipeline: rates, z-score, p-value, interval
// and verdict. It is a pure function.
func Calculate(in TestInput) StatisticalResult {
	rateA := ConversionRate(in.ConversionsA, in.VisitorsA)
	rateB := ConversionRate(in.ConversionsB, in.VisitorsB)

	z := ZScore(rateA, rateB, in.VisitorsA, in.VisitorsB)
	p := PValue(z)

	return StatisticalResult{
		RateA:               rateA,
		RateB:               rateB,
		ZScore:              z,
		PValue:              p,
		ConfidenceInterval:  ConfidenceIntervalFor(rateA, rateB, in.VisitorsA, in.VisitorsB, in.ConfidenceLevel),
		RelativeImprovement: RelativeImprovement(rateA, rateB),
		IsSignificant:       IsSignificant(p, in.ConfidenceLevel),
		ConfidenceLevel:     in.ConfidenceLevel,
	}
}

// ConversionRate returns conversions / visitors.
func ConversionRate(conversions, visitors int) float64 {
	return float64(conversions) / float64(visitors)
}

// StandardError is the standard error of the difference between two
// independent proportions, using each group's own variance.
func StandardError(rateA, rateB float64, visitorsA, visitorsB int) float64 {
	return math.Sqrt(rateA*(1-rateA)/float64(visitorsA) + rateB*(1-rateB)/float64(visitorsB))
}

// ZScore is the standardized difference between the two rates. Positive
// means B converts better than A. A zero standard error is not special
// cased: equal rates give NaN, unequal ones a signed infinity.
func ZScore(rateA, rateB float64, visitorsA, visitorsB int) float64 {
	se := StandardError(rateA, rateB, visitorsA, visitorsB)
	return (rateB - rateA) / se
}

// ConfidenceIntervalFor returns diff ± z_crit·se for diff = rateB - rateA.
func ConfidenceIntervalFor(rateA, rateB float64, visitorsA, visitorsB int, level ConfidenceLevel) Interval {
	diff := rateB - rateA
	marginOfError := CriticalValue(level) * StandardError(rateA, rateB, visitorsA, visitorsB)
	return Interval{
		Lower: diff - marginOfError,
		Upper: diff + marginOfError,
	}
}

// RelativeImprovement is the percentage change of B relative to A.
// It is ±Inf or NaN when rateA is 0.
func RelativeImprovement(rateA, rateB float64) float64 {
	return (rateB - rateA) / rateA * 100
}

// IsSignificant reports pValue < 1 - level. The comparison is strict,
// and a NaN p-value is never significant.
func IsSignificant(pValue float64, level ConfidenceLevel) bool {
	return pValue < SignificanceThreshold(level)
}

// SignificanceThreshold returns alpha = 1 - level.
func SignificanceThreshold(level ConfidenceLevel) float64 {
	return 1 - level.Float()
}

// Verdict is indeterminate whenever the z-score or p-value is not a
// finite number, so degenerate input is never reported as a plain
// "not significant".
func (r StatisticalResult) Verdict() Verdict {
	if !isFinite(r.ZScore) || !isFinite(r.PValue) {
		return VerdictIndeterminate
	}
	if r.IsSignificant {
		return VerdictSignificant
	}
	return VerdictNotSignificant
}

// Indeterminate is shorthand for Verdict() == VerdictIndeterminate.
func (r StatisticalResult) Indeterminate() bool {
	return r.Verdict() == VerdictIndeterminate
}

// ErrInconsistentResult is wrapped by Check failures.
var ErrInconsistentResult = errors.New("inconsistent statistical result")

// Check verifies the post-conditions a result must satisfy before it is
// handed to a consumer. Non-finite values are allowed; out-of-range
// finite values are not.
func (r StatisticalResult) Check() error {
	if !inUnitRange(r.RateA) {
		return fmt.Errorf("%w: rateA %v outside [0,1]", ErrInconsistentResult, r.RateA)
	}
	if !inUnitRange(r.RateB) {
		return fmt.Errorf("%w: rateB %v outside [0,1]", ErrInconsistentResult, r.RateB)
	}
	if isFinite(r.PValue) && !inUnitRange(r.PValue) {
		return fmt.Errorf("%w: pValue %v outside [0,1]", ErrInconsistentResult, r.PValue)
	}
	ci := r.ConfidenceInterval
	if isFinite(ci.Lower) && isFinite(ci.Upper) && ci.Lower > ci.Upper {
		return fmt.Errorf("%w: interval lower %v above upper %v", ErrInconsistentResult, ci.Lower, ci.Upper)
	}
	if r.IsSignificant && !isFinite(r.PValue) {
		return fmt.Errorf("%w: significant with non-finite p-value", ErrInconsistentResult)
	}
	return nil
}

func inUnitRange(x float64) bool {
	return x >= 0 && x <= 1
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
