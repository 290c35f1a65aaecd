package stats_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
	"pgregory.net/rapid"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

// twoTailed is the reference two-tailed p-value from gonum.
func twoTailed(z float64) float64 {
	return 2 * distuv.UnitNormal.Survival(math.Abs(z))
}

func TestPValue_ExactlyOneAtZero(t *testing.T) {
	assert.Equal(t, 1.0, stats.PValue(0))
	assert.Equal(t, 1.0, stats.PValue(math.Copysign(0, -1)))
}

func TestPValue_MatchesReferenceTable(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{0.5, 0.617075},
		{1.0, 0.317311},
		{1.645, 0.099971},
		{1.96, 0.049996},
		{2.576, 0.009995},
		{3.0, 0.002700},
	}

	for _, tt := range tests {
		got := stats.PValue(tt.z)
		assert.InDelta(t, tt.want, got, 1e-5, "PValue(%v)", tt.z)
		assert.InDelta(t, twoTailed(tt.z), got, 3e-7, "PValue(%v) vs gonum", tt.z)
	}
}

func TestPValue_ResidualAgainstGonum(t *testing.T) {
	for z := -7.0; z <= 7.0; z += 0.01 {
		assert.InDelta(t, twoTailed(z), stats.PValue(z), 3e-7, "z=%v", z)
	}
}

func TestPValue_MonotonicInAbsZ(t *testing.T) {
	prev := stats.PValue(0)
	for z := 0.001; z <= 10; z += 0.001 {
		p := stats.PValue(z)
		if p > prev {
			t.Fatalf("PValue not monotonic: PValue(%v)=%v > previous %v", z, p, prev)
		}
		prev = p
	}
}

func TestPValue_TailIsZero(t *testing.T) {
	assert.Equal(t, 0.0, stats.PValue(7.0001))
	assert.Equal(t, 0.0, stats.PValue(-40))
	assert.Equal(t, 0.0, stats.PValue(math.MaxFloat64))
	assert.Greater(t, stats.PValue(7), 0.0)
}

func TestPValue_NonFiniteIsNaN(t *testing.T) {
	assert.True(t, math.IsNaN(stats.PValue(math.NaN())))
	assert.True(t, math.IsNaN(stats.PValue(math.Inf(1))))
	assert.True(t, math.IsNaN(stats.PValue(math.Inf(-1))))
}

func TestProperty_PValueRangeAndSymmetry(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		z := rapid.Float64Range(-50, 50).Draw(rt, "z")
		p := stats.PValue(z)

		assert.GreaterOrEqual(rt, p, 0.0)
		assert.LessOrEqual(rt, p, 1.0)
		assert.Equal(rt, p, stats.PValue(-z))
	})
}

func TestProperty_PValueOrderedByMagnitude(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Float64Range(0, 10).Draw(rt, "a")
		b := rapid.Float64Range(0, 10).Draw(rt, "b")
		if a > b {
			a, b = b, a
		}
		// Points closer than the approximation error are not comparable
		if b-a < 1e-6 {
			return
		}

		assert.GreaterOrEqual(rt, stats.PValue(a), stats.PValue(b))
	})
}
