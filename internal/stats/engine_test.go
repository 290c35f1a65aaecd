package stats_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

func TestCalculate_ModerateLift(t *testing.T) {
	// 10% vs 11%: visible lift, not enough evidence at 95%
	res := stats.Calculate(stats.TestInput{
		VisitorsA: 5000, ConversionsA: 500,
		VisitorsB: 5000, ConversionsB: 550,
		ConfidenceLevel: stats.Confidence95,
	})

	assert.InDelta(t, 0.10, res.RateA, 1e-12)
	assert.InDelta(t, 0.11, res.RateB, 1e-12)
	assert.InDelta(t, 10.0, res.RelativeImprovement, 1e-9)
	assert.InDelta(t, 1.6313, res.ZScore, 1e-4)
	assert.InDelta(t, 0.1028, res.PValue, 1e-4)
	assert.Greater(t, res.PValue, 0.05)
	assert.False(t, res.IsSignificant)
	assert.Equal(t, stats.VerdictNotSignificant, res.Verdict())
	assert.Equal(t, stats.Confidence95, res.ConfidenceLevel)

	assert.InDelta(t, -0.002015, res.ConfidenceInterval.Lower, 1e-5)
	assert.InDelta(t, 0.022015, res.ConfidenceInterval.Upper, 1e-5)
}

func TestCalculate_StrongLift(t *testing.T) {
	res := stats.Calculate(stats.TestInput{
		VisitorsA: 5000, ConversionsA: 500,
		VisitorsB: 5000, ConversionsB: 600,
		ConfidenceLevel: stats.Confidence95,
	})

	assert.InDelta(t, 0.12, res.RateB, 1e-12)
	assert.InDelta(t, 20.0, res.RelativeImprovement, 1e-9)
	assert.InDelta(t, 3.1976, res.ZScore, 1e-4)
	assert.Less(t, res.PValue, 0.05)
	assert.True(t, res.IsSignificant)
	assert.Equal(t, stats.VerdictSignificant, res.Verdict())

	// Interval excludes zero when the result is significant
	assert.Greater(t, res.ConfidenceInterval.Lower, 0.0)
}

func TestCalculate_SmallSampleSameLift(t *testing.T) {
	large := stats.Calculate(stats.TestInput{
		VisitorsA: 5000, ConversionsA: 500,
		VisitorsB: 5000, ConversionsB: 600,
		ConfidenceLevel: stats.Confidence95,
	})
	small := stats.Calculate(stats.TestInput{
		VisitorsA: 500, ConversionsA: 50,
		VisitorsB: 500, ConversionsB: 60,
		ConfidenceLevel: stats.Confidence95,
	})

	assert.InDelta(t, large.RelativeImprovement, small.RelativeImprovement, 1e-9)
	assert.Less(t, math.Abs(small.ZScore), math.Abs(large.ZScore))
	assert.Greater(t, small.PValue, large.PValue)
	assert.InDelta(t, 1.0112, small.ZScore, 1e-4)
	assert.False(t, small.IsSignificant)
}

func TestCalculate_NegativeLift(t *testing.T) {
	res := stats.Calculate(stats.TestInput{
		VisitorsA: 1000, ConversionsA: 100,
		VisitorsB: 1000, ConversionsB: 80,
		ConfidenceLevel: stats.Confidence99,
	})

	assert.Less(t, res.ZScore, 0.0)
	assert.InDelta(t, -20.0, res.RelativeImprovement, 1e-9)
	assert.InDelta(t, -0.05295, res.ConfidenceInterval.Lower, 1e-5)
	assert.InDelta(t, 0.01295, res.ConfidenceInterval.Upper, 1e-5)
	assert.False(t, res.IsSignificant)
}

func TestCalculate_AllZeroIsIndeterminate(t *testing.T) {
	res := stats.Calculate(stats.TestInput{
		VisitorsA: 100, ConversionsA: 0,
		VisitorsB: 100, ConversionsB: 0,
		ConfidenceLevel: stats.Confidence95,
	})

	assert.Equal(t, 0.0, res.RateA)
	assert.Equal(t, 0.0, res.RateB)
	assert.True(t, math.IsNaN(res.ZScore), "z-score should be NaN, got %v", res.ZScore)
	assert.True(t, math.IsNaN(res.PValue), "p-value should be NaN, got %v", res.PValue)
	assert.True(t, math.IsNaN(res.RelativeImprovement))
	assert.False(t, res.IsSignificant)

	// Degenerate input must surface as indeterminate, not as a negative finding
	assert.Equal(t, stats.VerdictIndeterminate, res.Verdict())
	assert.NotEqual(t, stats.VerdictNotSignificant, res.Verdict())
	assert.True(t, res.Indeterminate())
	assert.NoError(t, res.Check())
}

func TestCalculate_AllConvertIsIndeterminate(t *testing.T) {
	res := stats.Calculate(stats.TestInput{
		VisitorsA: 50, ConversionsA: 50,
		VisitorsB: 80, ConversionsB: 80,
		ConfidenceLevel: stats.Confidence90,
	})

	assert.True(t, math.IsNaN(res.ZScore))
	assert.Equal(t, stats.VerdictIndeterminate, res.Verdict())
}

func TestCalculate_ZeroToAllIsInfinite(t *testing.T) {
	res := stats.Calculate(stats.TestInput{
		VisitorsA: 10, ConversionsA: 0,
		VisitorsB: 10, ConversionsB: 10,
		ConfidenceLevel: stats.Confidence95,
	})

	assert.True(t, math.IsInf(res.ZScore, 1))
	assert.True(t, math.IsNaN(res.PValue))
	assert.True(t, math.IsInf(res.RelativeImprovement, 1))
	assert.Equal(t, stats.VerdictIndeterminate, res.Verdict())
}

func TestCalculate_ZeroControlRateKeepsFiniteZ(t *testing.T) {
	res := stats.Calculate(stats.TestInput{
		VisitorsA: 1000, ConversionsA: 0,
		VisitorsB: 1000, ConversionsB: 30,
		ConfidenceLevel: stats.Confidence95,
	})

	assert.False(t, math.IsInf(res.ZScore, 0))
	assert.True(t, math.IsInf(res.RelativeImprovement, 1))
	assert.True(t, res.IsSignificant)
	assert.Equal(t, stats.VerdictSignificant, res.Verdict())
}

func TestCalculate_Idempotent(t *testing.T) {
	in := stats.TestInput{
		VisitorsA: 1234, ConversionsA: 77,
		VisitorsB: 1300, ConversionsB: 95,
		ConfidenceLevel: stats.Confidence99,
	}

	first := stats.Calculate(in)
	second := stats.Calculate(in)

	assert.Equal(t, math.Float64bits(first.ZScore), math.Float64bits(second.ZScore))
	assert.Equal(t, math.Float64bits(first.PValue), math.Float64bits(second.PValue))
	assert.Equal(t, first, second)
}

func TestCalculate_WiderIntervalAtHigherConfidence(t *testing.T) {
	in := stats.TestInput{VisitorsA: 2000, ConversionsA: 200, VisitorsB: 2000, ConversionsB: 230}

	var widths []float64
	for _, level := range stats.ConfidenceLevels {
		in.ConfidenceLevel = level
		ci := stats.Calculate(in).ConfidenceInterval
		widths = append(widths, ci.Upper-ci.Lower)
	}

	assert.Less(t, widths[0], widths[1])
	assert.Less(t, widths[1], widths[2])
}

func TestIsSignificant_StrictBoundary(t *testing.T) {
	for _, level := range stats.ConfidenceLevels {
		alpha := 1 - level.Float()
		assert.False(t, stats.IsSignificant(alpha, level), "p == alpha must not be significant at %s", level)
		assert.True(t, stats.IsSignificant(math.Nextafter(alpha, 0), level))
		assert.False(t, stats.IsSignificant(math.NaN(), level))
	}
}

func TestStandardError_UsesPerGroupVariance(t *testing.T) {
	// Unequal group sizes: the pooled-proportion formula would give a different value
	se := stats.StandardError(0.2, 0.3, 100, 400)
	pooled := math.Sqrt(0.24 * 0.76 * (1.0/100 + 1.0/400))
	assert.InDelta(t, 0.046097722286464436, se, 1e-12)
	assert.NotEqual(t, pooled, se)
}

func TestCheck_RejectsInconsistentResults(t *testing.T) {
	tests := []struct {
		name string
		res  stats.StatisticalResult
	}{
		{"rate above one", stats.StatisticalResult{RateA: 1.5}},
		{"negative rate", stats.StatisticalResult{RateB: -0.1}},
		{"p-value above one", stats.StatisticalResult{PValue: 1.2}},
		{"inverted interval", stats.StatisticalResult{ConfidenceInterval: stats.Interval{Lower: 0.2, Upper: 0.1}}},
		{"significant NaN", stats.StatisticalResult{PValue: math.NaN(), IsSignificant: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.res.Check()
			require.Error(t, err)
			assert.ErrorIs(t, err, stats.ErrInconsistentResult)
		})
	}
}

func TestProperty_RatesWithinUnitRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := drawInput(rt)
		res := stats.Calculate(in)

		assert.GreaterOrEqual(rt, res.RateA, 0.0)
		assert.LessOrEqual(rt, res.RateA, 1.0)
		assert.GreaterOrEqual(rt, res.RateB, 0.0)
		assert.LessOrEqual(rt, res.RateB, 1.0)
		require.NoError(rt, res.Check())
	})
}

func TestProperty_IntervalOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		res := stats.Calculate(drawInput(rt))
		ci := res.ConfidenceInterval

		if math.IsNaN(ci.Lower) || math.IsNaN(ci.Upper) {
			return
		}
		assert.LessOrEqual(rt, ci.Lower, ci.Upper)
	})
}

func TestProperty_SignificanceMatchesThreshold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		res := stats.Calculate(drawInput(rt))
		want := res.PValue < 1-res.ConfidenceLevel.Float()

		assert.Equal(rt, want, res.IsSignificant)
		if res.Verdict() == stats.VerdictIndeterminate {
			assert.False(rt, res.IsSignificant)
		}
	})
}

func drawInput(rt *rapid.T) stats.TestInput {
	visitorsA := rapid.IntRange(1, 1_000_000).Draw(rt, "visitorsA")
	visitorsB := rapid.IntRange(1, 1_000_000).Draw(rt, "visitorsB")
	return stats.TestInput{
		VisitorsA:       visitorsA,
		ConversionsA:    rapid.IntRange(0, visitorsA).Draw(rt, "conversionsA"),
		VisitorsB:       visitorsB,
		ConversionsB:    rapid.IntRange(0, visitorsB).Draw(rt, "conversionsB"),
		ConfidenceLevel: rapid.SampledFrom(stats.ConfidenceLevels).Draw(rt, "confidenceLevel"),
	}
}
