package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfidenceLevel is the target probability used to pick the critical
// value and the significance threshold. It travels as a string so the
// wire format matches the three enumerated values exactly.
type ConfidenceLevel string

const (
	Confidence90 ConfidenceLevel = "0.9"
	Confidence95 ConfidenceLevel = "0.95"
	Confidence99 ConfidenceLevel = "0.99"
)

// DefaultConfidence is used whenever a level is missing or unknown.
const DefaultConfidence = Confidence95

// ConfidenceLevels lists the supported levels in ascending order.
var ConfidenceLevels = []ConfidenceLevel{Confidence90, Confidence95, Confidence99}

// criticalValues holds two-tailed critical z-values.
var criticalValues = map[ConfidenceLevel]float64{
	Confidence90: 1.645,
	Confidence95: 1.96,
	Confidence99: 2.576,
}

// CriticalValue returns the two-tailed critical z-value for the level.
// Common values:
//   - 0.9  -> 1.645
//   - 0.95 -> 1.96
//   - 0.99 -> 2.576
//
// Unrecognized levels fall back to 1.96 instead of failing; the input
// schema is what restricts the set.
func CriticalValue(level ConfidenceLevel) float64 {
	if z, ok := criticalValues[level]; ok {
		return z
	}
	return criticalValues[DefaultConfidence]
}

// CriticalValue is shorthand for CriticalValue(l).
func (l ConfidenceLevel) CriticalValue() float64 {
	return CriticalValue(l)
}

// Float returns the numeric level. Anything that does not parse to a
// value strictly between 0 and 1 reads as 0.95.
func (l ConfidenceLevel) Float() float64 {
	f, err := strconv.ParseFloat(string(l), 64)
	if err != nil || f <= 0 || f >= 1 {
		return 0.95
	}
	return f
}

// Valid reports whether l is one of the enumerated levels.
func (l ConfidenceLevel) Valid() bool {
	_, ok := criticalValues[l]
	return ok
}

// Percent renders the level as a whole percentage, e.g. 95.
func (l ConfidenceLevel) Percent() float64 {
	return l.Float() * 100
}

// ParseConfidenceLevel accepts the canonical strings plus a few human
// spellings ("0.90", "90", "90%").
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("invalid confidence level %q", s)
	}
	if f > 1 {
		f /= 100
	}

	for _, level := range ConfidenceLevels {
		if f == level.Float() {
			return level, nil
		}
	}
	return "", fmt.Errorf("unsupported confidence level %q: must be one of 0.9, 0.95, 0.99", s)
}
