package store

import (
	"time"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

// Sample is a named input dataset. Only inputs are stored; results are
// always recomputed.
type Sample struct {
	ID              int64
	Name            string
	Description     string
	VisitorsA       int
	ConversionsA    int
	VisitorsB       int
	ConversionsB    int
	ConfidenceLevel stats.ConfidenceLevel
	BuiltIn         bool
	CreatedAt       time.Time
}

// TestInput returns the engine input recorded by the sample.
func (s *Sample) TestInput() stats.TestInput {
	return stats.TestInput{
		VisitorsA:       s.VisitorsA,
		ConversionsA:    s.ConversionsA,
		VisitorsB:       s.VisitorsB,
		ConversionsB:    s.ConversionsB,
		ConfidenceLevel: s.ConfidenceLevel,
	}
}

// BuiltInSamples are seeded into every database.
var BuiltInSamples = []Sample{
	{
		Name:            "moderate-lift",
		Description:     "Moderate improvement (10% lift)",
		VisitorsA:       5000,
		ConversionsA:    500,
		VisitorsB:       5000,
		ConversionsB:    550,
		ConfidenceLevel: stats.Confidence95,
	},
	{
		Name:            "strong-lift",
		Description:     "Strong improvement (20% lift)",
		VisitorsA:       5000,
		ConversionsA:    500,
		VisitorsB:       5000,
		ConversionsB:    600,
		ConfidenceLevel: stats.Confidence95,
	},
	{
		Name:            "small-sample",
		Description:     "Small sample size (low confidence)",
		VisitorsA:       500,
		ConversionsA:    50,
		VisitorsB:       500,
		ConversionsB:    60,
		ConfidenceLevel: stats.Confidence95,
	},
}
