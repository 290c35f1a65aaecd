package report

// Concept is one entry of the explanatory glossary shown next to the
// calculator.
type Concept struct {
	Title string
	Body  string
}

type conceptText struct {
	title, body     string
	titleDE, bodyDE string
}

var conceptTexts = []conceptText{
	{
		title:   "What is statistical significance?",
		titleDE: "Was ist statistische Signifikanz?",
		body:    "Statistical significance indicates whether the difference between variants is likely due to chance or represents a real effect. A result is statistically significant when the p-value is below the significance level (often 0.05 for a 95%% confidence level). This means there is strong evidence that the observed difference is not just random variation.",
		bodyDE:  "Statistische Signifikanz gibt an, ob der Unterschied zwischen den Varianten wahrscheinlich zufällig ist oder einen echten Effekt darstellt. Ein Ergebnis ist statistisch signifikant, wenn der p-Wert unter dem Signifikanzniveau liegt (oft 0,05 bei einem Konfidenzniveau von 95 %%). Das ist ein starker Hinweis darauf, dass der beobachtete Unterschied nicht nur zufällige Schwankung ist.",
	},
	{
		title:   "What is a p-value?",
		titleDE: "Was ist ein p-Wert?",
		body:    "The p-value is the probability of observing results at least as extreme as the current data, assuming there is no real difference between the variants. A smaller p-value (typically below 0.05) suggests the observed difference is unlikely to occur by chance.",
		bodyDE:  "Der p-Wert ist die Wahrscheinlichkeit, Ergebnisse zu beobachten, die mindestens so extrem sind wie die aktuellen Daten, wenn es keinen echten Unterschied zwischen den Varianten gibt. Ein kleinerer p-Wert (typischerweise unter 0,05) deutet darauf hin, dass der beobachtete Unterschied kaum zufällig entstanden ist.",
	},
	{
		title:   "What is a confidence interval?",
		titleDE: "Was ist ein Konfidenzintervall?",
		body:    "A confidence interval is a range of values that likely contains the true difference between the variants. A 95%% confidence interval means that if the test were repeated many times, 95%% of the calculated intervals would contain the true difference. Wider intervals indicate less precision.",
		bodyDE:  "Ein Konfidenzintervall ist ein Wertebereich, der den wahren Unterschied zwischen den Varianten wahrscheinlich enthält. Ein 95-%%-Konfidenzintervall bedeutet, dass bei vielfacher Wiederholung des Tests 95 %% der berechneten Intervalle den wahren Unterschied enthalten würden. Breitere Intervalle bedeuten eine geringere Genauigkeit.",
	},
	{
		title:   "Sample size and statistical power",
		titleDE: "Stichprobengröße und Teststärke",
		body:    "Larger samples increase statistical power, the ability to detect a true effect when it exists. With small samples you might miss meaningful differences. Make sure each variant has enough data to detect the effect size you care about; if unsure, aim for at least 1,000 visitors per variant.",
		bodyDE:  "Größere Stichproben erhöhen die Teststärke, also die Fähigkeit, einen echten Effekt zu erkennen, wenn er existiert. Bei kleinen Stichproben können bedeutsame Unterschiede übersehen werden. Sorgen Sie dafür, dass jede Variante genug Daten hat, um die für Sie relevante Effektgröße zu erkennen; im Zweifel mindestens 1.000 Besucher pro Variante.",
	},
}

// Concepts returns the glossary entries in display order.
func Concepts(locale Locale) []Concept {
	p := locale.printer()
	out := make([]Concept, len(conceptTexts))
	for i, c := range conceptTexts {
		out[i] = Concept{
			Title: p.Sprintf(c.title),
			Body:  p.Sprintf(c.body),
		}
	}
	return out
}
