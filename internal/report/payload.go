package report

import (
	"github.com/gkobilansky/sigcalc/internal/stats"
)

// Payload is the JSON shape of a calculation result. JSON has no NaN or
// Infinity, so non-finite numbers are sent as null and their field names
// listed in Indeterminate.
type Payload struct {
	RateA               float64         `json:"rateA"`
	RateB               float64         `json:"rateB"`
	ZScore              *float64        `json:"zScore"`
	PValue              *float64        `json:"pValue"`
	ConfidenceInterval  IntervalPayload `json:"confidenceInterval"`
	RelativeImprovement *float64        `json:"relativeImprovement"`
	IsSignificant       bool            `json:"isSignificant"`
	ConfidenceLevel     string          `json:"confidenceLevel"`
	Verdict             stats.Verdict   `json:"verdict"`
	Indeterminate       []string        `json:"indeterminate,omitempty"`
}

type IntervalPayload struct {
	Lower *float64 `json:"lower"`
	Upper *float64 `json:"upper"`
}

// NewPayload converts a result for JSON encoding.
func NewPayload(r stats.StatisticalResult) Payload {
	var missing []string
	num := func(name string, v float64) *float64 {
		if !finite(v) {
			missing = append(missing, name)
			return nil
		}
		return &v
	}

	p := Payload{
		RateA:  r.RateA,
		RateB:  r.RateB,
		ZScore: num("zScore", r.ZScore),
		PValue: num("pValue", r.PValue),
		ConfidenceInterval: IntervalPayload{
			Lower: num("confidenceInterval.lower", r.ConfidenceInterval.Lower),
			Upper: num("confidenceInterval.upper", r.ConfidenceInterval.Upper),
		},
		RelativeImprovement: num("relativeImprovement", r.RelativeImprovement),
		IsSignificant:       r.IsSignificant,
		ConfidenceLevel:     string(r.ConfidenceLevel),
		Verdict:             r.Verdict(),
	}
	p.Indeterminate = missing
	return p
}
