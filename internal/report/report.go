// Package report turns a statistical result into the text and numbers a
// person reads: localized headline, formatted figures, chart widths and a
// plain-language interpretation.
package report

import (
	"math"

	"golang.org/x/text/message"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

// NotAvailable stands in for any figure that is not a finite number.
const NotAvailable = "n/a"

// smallEffect is the |relative improvement| in percent below which an
// insignificant result is attributed to a small effect size.
const smallEffect = 5.0

type Report struct {
	Locale  Locale
	Input   stats.TestInput
	Result  stats.StatisticalResult
	Verdict stats.Verdict

	Headline string
	Summary  string

	RateA  string
	RateB  string
	RangeA string
	RangeB string
	// BarWidthA and BarWidthB are percentages of the chart width.
	BarWidthA float64
	BarWidthB float64

	Improvement     string
	PValue          string
	ZScore          string
	ConfidenceLevel string
	Interval        string

	Interpretation []string
	Recommendation string
}

// Build renders result for the given locale. It never performs any
// statistics beyond formatting; the Wilson ranges come from the engine.
func Build(in stats.TestInput, result stats.StatisticalResult, locale Locale) Report {
	p := locale.printer()
	level := result.ConfidenceLevel.Percent()

	r := Report{
		Locale:          locale,
		Input:           in,
		Result:          result,
		Verdict:         result.Verdict(),
		RateA:           percent(p, result.RateA*100),
		RateB:           percent(p, result.RateB*100),
		RangeA:          interval(p, stats.WilsonInterval(in.ConversionsA, in.VisitorsA, result.ConfidenceLevel)),
		RangeB:          interval(p, stats.WilsonInterval(in.ConversionsB, in.VisitorsB, result.ConfidenceLevel)),
		Improvement:     percent(p, result.RelativeImprovement),
		PValue:          number(p, "%.4f", result.PValue),
		ZScore:          number(p, "%.2f", result.ZScore),
		ConfidenceLevel: p.Sprintf("%.0f%%", level),
		Interval:        interval(p, result.ConfidenceInterval),
	}
	r.BarWidthA, r.BarWidthB = barWidths(result.RateA, result.RateB)

	switch r.Verdict {
	case stats.VerdictSignificant:
		r.Headline = p.Sprintf("Statistically significant")
		r.Summary = p.Sprintf("There is a significant difference between the variants at a %.0f%% confidence level.", level)
		r.Interpretation = append(r.Interpretation,
			p.Sprintf("Your test shows a statistically significant difference with a p-value of %s.", r.PValue))

		imp := result.RelativeImprovement
		switch {
		case !finite(imp):
			r.Interpretation = append(r.Interpretation,
				p.Sprintf("Variant A has no conversions, so the relative improvement is not defined."))
		case imp > 0:
			r.Interpretation = append(r.Interpretation,
				p.Sprintf("Variant B outperforms variant A by about %s.", r.Improvement))
		default:
			r.Interpretation = append(r.Interpretation,
				p.Sprintf("Variant B performs worse than variant A by about %s.", percent(p, math.Abs(imp))))
		}

		if result.RateB > result.RateA {
			r.Recommendation = p.Sprintf("Consider implementing variant B, as the data provides strong evidence of an improvement.")
		} else {
			r.Recommendation = p.Sprintf("Stay with variant A, as variant B shows a statistically significant drop in performance.")
		}

	case stats.VerdictNotSignificant:
		r.Headline = p.Sprintf("Not statistically significant")
		r.Summary = p.Sprintf("The difference between the variants is not significant at a %.0f%% confidence level.", level)
		r.Interpretation = append(r.Interpretation,
			p.Sprintf("Your test does not show statistically significant results at a %.0f%% confidence level.", level))

		if imp := math.Abs(result.RelativeImprovement); imp < smallEffect {
			r.Interpretation = append(r.Interpretation,
				p.Sprintf("Small effect size detected. The difference between the variants (%s) may be too small to detect reliably.", percent(p, imp)))
			r.Recommendation = p.Sprintf("Consider whether this small difference is practically meaningful for your business before making a decision.")
		} else {
			r.Recommendation = p.Sprintf("Keep testing or consider adjusting your variants to produce a more substantial difference.")
		}

	default:
		r.Headline = p.Sprintf("Result indeterminate")
		r.Summary = p.Sprintf("The data does not allow a significance test at a %.0f%% confidence level.", level)
		r.Interpretation = append(r.Interpretation,
			p.Sprintf("The standard error is zero: every visitor in each variant behaved the same way, so no test statistic can be computed."))
		r.Recommendation = p.Sprintf("Collect more data until both variants show some variation.")
	}

	return r
}

// Labels returns the translated UI strings keyed by their English text.
func Labels(locale Locale) map[string]string {
	p := locale.printer()
	keys := []string{
		"A/B Test Significance Calculator", "Test results", "Conversion rates",
		"Variant A", "Variant B", "Visitors", "Conversions",
		"Relative improvement", "Relative lift from A to B", "Statistical details",
		"P-value", "Z-score", "Confidence level", "Confidence interval",
		"Difference between the rates", "Likely range", "What this means",
		"Recommendation", "Calculate", "Sample data", "Statistical concepts explained",
	}
	labels := make(map[string]string, len(keys))
	for _, k := range keys {
		labels[k] = p.Sprintf(message.Key(k, k))
	}
	return labels
}

// barWidths scales both rates against the larger one plus 20% headroom.
func barWidths(rateA, rateB float64) (float64, float64) {
	top := math.Max(rateA, rateB) * 1.2
	if top == 0 {
		return 0, 0
	}
	return rateA / top * 100, rateB / top * 100
}

func percent(p *message.Printer, v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return p.Sprintf("%.2f%%", v)
}

func number(p *message.Printer, format string, v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return p.Sprintf(format, v)
}

// interval formats bounds given as fractions on the percentage scale.
func interval(p *message.Printer, iv stats.Interval) string {
	if !finite(iv.Lower) || !finite(iv.Upper) {
		return NotAvailable
	}
	return p.Sprintf("%.2f%% to %.2f%%", iv.Lower*100, iv.Upper*100)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
