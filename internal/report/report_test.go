package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

func build(t *testing.T, va, ca, vb, cb int, level stats.ConfidenceLevel, locale Locale) Report {
	t.Helper()
	in := stats.TestInput{VisitorsA: va, ConversionsA: ca, VisitorsB: vb, ConversionsB: cb, ConfidenceLevel: level}
	return Build(in, stats.Calculate(in), locale)
}

func TestBuild_NotSignificantLargeEffect(t *testing.T) {
	r := build(t, 5000, 500, 5000, 550, stats.Confidence95, English)

	assert.Equal(t, stats.VerdictNotSignificant, r.Verdict)
	assert.Equal(t, "Not statistically significant", r.Headline)
	assert.Equal(t, "The difference between the variants is not significant at a 95% confidence level.", r.Summary)
	assert.Equal(t, "10.00%", r.RateA)
	assert.Equal(t, "11.00%", r.RateB)
	assert.Equal(t, "10.00%", r.Improvement)
	assert.Equal(t, "0.1028", r.PValue)
	assert.Equal(t, "1.63", r.ZScore)
	assert.Equal(t, "95%", r.ConfidenceLevel)
	assert.Contains(t, r.Interval, "2.20%")
	assert.Contains(t, r.RangeA, " to ")
	require.Len(t, r.Interpretation, 1)
	assert.Equal(t, "Keep testing or consider adjusting your variants to produce a more substantial difference.", r.Recommendation)
}

func TestBuild_SignificantImprovement(t *testing.T) {
	r := build(t, 5000, 500, 5000, 600, stats.Confidence95, English)

	assert.Equal(t, stats.VerdictSignificant, r.Verdict)
	assert.Equal(t, "Statistically significant", r.Headline)
	assert.Equal(t, "0.0014", r.PValue)
	assert.Equal(t, "3.20", r.ZScore)
	assert.Equal(t, []string{
		"Your test shows a statistically significant difference with a p-value of 0.0014.",
		"Variant B outperforms variant A by about 20.00%.",
	}, r.Interpretation)
	assert.Contains(t, r.Recommendation, "implementing variant B")
}

func TestBuild_SignificantDecline(t *testing.T) {
	r := build(t, 5000, 600, 5000, 500, stats.Confidence99, English)

	assert.Equal(t, stats.VerdictSignificant, r.Verdict)
	assert.Equal(t, "99%", r.ConfidenceLevel)
	assert.Contains(t, r.Interpretation, "Variant B performs worse than variant A by about 16.67%.")
	assert.Contains(t, r.Recommendation, "Stay with variant A")
}

func TestBuild_SmallEffect(t *testing.T) {
	r := build(t, 10000, 1000, 10000, 1030, stats.Confidence95, English)

	assert.Equal(t, stats.VerdictNotSignificant, r.Verdict)
	require.Len(t, r.Interpretation, 2)
	assert.Contains(t, r.Interpretation[1], "(3.00%)")
	assert.Contains(t, r.Recommendation, "practically meaningful")
}

func TestBuild_Indeterminate(t *testing.T) {
	r := build(t, 100, 0, 100, 0, stats.Confidence95, English)

	assert.Equal(t, stats.VerdictIndeterminate, r.Verdict)
	assert.Equal(t, "Result indeterminate", r.Headline)
	assert.Equal(t, NotAvailable, r.PValue)
	assert.Equal(t, NotAvailable, r.ZScore)
	assert.Equal(t, NotAvailable, r.Improvement)
	assert.Equal(t, 0.0, r.BarWidthA)
	assert.Equal(t, 0.0, r.BarWidthB)
	assert.Contains(t, r.Recommendation, "Collect more data")
}

func TestBuild_ZeroControlRate(t *testing.T) {
	r := build(t, 1000, 0, 1000, 10, stats.Confidence95, English)

	assert.Equal(t, stats.VerdictSignificant, r.Verdict)
	assert.Equal(t, NotAvailable, r.Improvement)
	assert.Contains(t, r.Interpretation, "Variant A has no conversions, so the relative improvement is not defined.")
	for _, line := range r.Interpretation {
		assert.NotContains(t, line, "Inf")
	}
}

func TestBuild_BarWidths(t *testing.T) {
	r := build(t, 5000, 500, 5000, 550, stats.Confidence95, English)

	assert.InDelta(t, 75.7576, r.BarWidthA, 1e-3)
	assert.InDelta(t, 83.3333, r.BarWidthB, 1e-3)
}

func TestBuild_German(t *testing.T) {
	r := build(t, 5000, 500, 5000, 550, stats.Confidence95, German)

	assert.Equal(t, "Nicht statistisch signifikant", r.Headline)
	assert.Equal(t, "10,00%", r.RateA)
	assert.Equal(t, "0,1028", r.PValue)
	assert.Contains(t, r.Interval, " bis ")
	assert.Contains(t, r.Summary, "Konfidenzniveau von 95%")
}

func TestConcepts(t *testing.T) {
	en := Concepts(English)
	de := Concepts(German)

	require.Len(t, en, 4)
	require.Len(t, de, 4)
	assert.Equal(t, "What is statistical significance?", en[0].Title)
	assert.Equal(t, "Was ist ein p-Wert?", de[1].Title)
	assert.Contains(t, en[2].Body, "A 95% confidence interval")
	for _, c := range append(en, de...) {
		assert.NotContains(t, c.Body, "%!")
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Variant A", Labels(English)["Variant A"])
	assert.Equal(t, "Variante A", Labels(German)["Variant A"])
	assert.Equal(t, "Berechnen", Labels(German)["Calculate"])
}

func TestParseLocale(t *testing.T) {
	l, err := ParseLocale("de-AT")
	require.NoError(t, err)
	assert.Equal(t, German, l)

	l, err = ParseLocale("en")
	require.NoError(t, err)
	assert.Equal(t, English, l)

	_, err = ParseLocale("fr")
	assert.Error(t, err)

	_, err = ParseLocale("!!")
	assert.Error(t, err)
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, German, Negotiate("de-DE,de;q=0.9,en;q=0.8"))
	assert.Equal(t, English, Negotiate("en-US,en;q=0.9"))
	assert.Equal(t, English, Negotiate("fr-FR"))
	assert.Equal(t, English, Negotiate())
}

func TestNewPayload_Finite(t *testing.T) {
	in := stats.TestInput{VisitorsA: 5000, ConversionsA: 500, VisitorsB: 5000, ConversionsB: 600, ConfidenceLevel: stats.Confidence95}
	p := NewPayload(stats.Calculate(in))

	assert.Empty(t, p.Indeterminate)
	require.NotNil(t, p.ZScore)
	assert.InDelta(t, 3.1976, *p.ZScore, 1e-4)
	assert.Equal(t, stats.VerdictSignificant, p.Verdict)
	assert.Equal(t, "0.95", p.ConfidenceLevel)
}

func TestNewPayload_NonFinite(t *testing.T) {
	in := stats.TestInput{VisitorsA: 100, ConversionsA: 0, VisitorsB: 100, ConversionsB: 0, ConfidenceLevel: stats.Confidence95}
	p := NewPayload(stats.Calculate(in))

	assert.Equal(t, []string{"zScore", "pValue", "relativeImprovement"}, p.Indeterminate)
	assert.Equal(t, stats.VerdictIndeterminate, p.Verdict)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"zScore":null`)
	assert.Contains(t, string(data), `"pValue":null`)
	assert.Contains(t, string(data), `"isSignificant":false`)
}
