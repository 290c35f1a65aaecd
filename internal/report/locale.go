package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Locale selects the language of rendered text and number formatting.
type Locale string

const (
	English Locale = "en"
	German  Locale = "de"
)

// DefaultLocale is used when nothing better can be negotiated.
const DefaultLocale = English

var (
	supported = []language.Tag{language.English, language.German}
	matcher   = language.NewMatcher(supported)
	messages  = catalog.NewBuilder(catalog.Fallback(language.English))
)

// ParseLocale accepts a BCP 47 tag whose base language is supported,
// e.g. "de", "de-AT" or "en-GB".
func ParseLocale(s string) (Locale, error) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q", s)
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return English, nil
	case "de":
		return German, nil
	}
	return "", fmt.Errorf("unsupported locale %q (en, de)", s)
}

// Negotiate picks the best supported locale for a list of preferences,
// each either a plain tag or an Accept-Language header value.
func Negotiate(prefs ...string) Locale {
	tag, _ := language.MatchStrings(matcher, prefs...)
	base, _ := tag.Base()
	if base.String() == "de" {
		return German
	}
	return English
}

// Tag returns the language tag for l.
func (l Locale) Tag() language.Tag {
	if l == German {
		return language.German
	}
	return language.English
}

func (l Locale) printer() *message.Printer {
	return message.NewPrinter(l.Tag(), message.Catalog(messages))
}

func init() {
	for key, de := range german {
		mustSet(key, de)
	}
	for _, c := range conceptTexts {
		mustSet(c.title, c.titleDE)
		mustSet(c.body, c.bodyDE)
	}
}

func mustSet(key, de string) {
	if err := messages.SetString(language.English, key, key); err != nil {
		panic(err)
	}
	if err := messages.SetString(language.German, key, de); err != nil {
		panic(err)
	}
}

// german maps every English message key to its German translation.
var german = map[string]string{
	// headlines
	"Statistically significant":     "Statistisch signifikant",
	"Not statistically significant": "Nicht statistisch signifikant",
	"Result indeterminate":          "Ergebnis unbestimmt",

	// summaries
	"There is a significant difference between the variants at a %.0f%% confidence level.":       "Es gibt einen signifikanten Unterschied zwischen den Varianten mit einem Konfidenzniveau von %.0f%%.",
	"The difference between the variants is not significant at a %.0f%% confidence level.":       "Der Unterschied zwischen den Varianten ist nicht signifikant bei einem Konfidenzniveau von %.0f%%.",
	"The data does not allow a significance test at a %.0f%% confidence level.":                   "Die Daten erlauben keinen Signifikanztest bei einem Konfidenzniveau von %.0f%%.",
	"Your test shows a statistically significant difference with a p-value of %s.":                "Ihr Test zeigt einen statistisch signifikanten Unterschied mit einem p-Wert von %s.",
	"Your test does not show statistically significant results at a %.0f%% confidence level.":    "Ihr Test zeigt keine statistisch signifikanten Ergebnisse bei einem Konfidenzniveau von %.0f%%.",
	"Variant B outperforms variant A by about %s.":                                                "Variante B übertrifft Variante A um etwa %s.",
	"Variant B performs worse than variant A by about %s.":                                        "Variante B schneidet schlechter ab als Variante A um etwa %s.",
	"Variant A has no conversions, so the relative improvement is not defined.":                   "Variante A hat keine Konversionen, daher ist die relative Verbesserung nicht definiert.",
	"Small effect size detected. The difference between the variants (%s) may be too small to detect reliably.": "Kleine Effektgröße festgestellt. Der Unterschied zwischen den Varianten (%s) ist möglicherweise zu gering, um zuverlässig erkannt zu werden.",
	"The standard error is zero: every visitor in each variant behaved the same way, so no test statistic can be computed.": "Der Standardfehler ist null: alle Besucher einer Variante haben sich gleich verhalten, daher lässt sich keine Teststatistik berechnen.",

	// recommendations
	"Consider implementing variant B, as the data provides strong evidence of an improvement.":                "Erwägen Sie die Implementierung von Variante B, da die Daten starke Hinweise auf eine Verbesserung liefern.",
	"Stay with variant A, as variant B shows a statistically significant drop in performance.":                "Bleiben Sie bei Variante A, da Variante B eine statistisch signifikante Leistungsminderung aufweist.",
	"Consider whether this small difference is practically meaningful for your business before making a decision.": "Überlegen Sie, ob dieser kleine Unterschied für Ihr Unternehmen praktisch bedeutsam ist, bevor Sie eine Entscheidung treffen.",
	"Keep testing or consider adjusting your variants to produce a more substantial difference.":              "Setzen Sie die Tests fort oder erwägen Sie, Ihre Varianten anzupassen, um einen wesentlicheren Unterschied zu erzielen.",
	"Collect more data until both variants show some variation.":                                              "Sammeln Sie weitere Daten, bis beide Varianten Schwankungen zeigen.",

	// numbers
	"%.2f%%":           "%.2f%%",
	"%.2f%% to %.2f%%": "%.2f%% bis %.2f%%",
	"%.4f":             "%.4f",
	"%.2f":             "%.2f",
	"%.0f%%":           "%.0f%%",

	// labels
	"A/B Test Significance Calculator": "A/B-Test Signifikanzrechner",
	"Test results":                     "Testergebnisse",
	"Conversion rates":                 "Konversionsraten",
	"Variant A":                        "Variante A",
	"Variant B":                        "Variante B",
	"Visitors":                         "Besucher",
	"Conversions":                      "Konversionen",
	"Relative improvement":             "Relative Verbesserung",
	"Relative lift from A to B":        "Relative Steigerung von A zu B",
	"Statistical details":              "Statistische Details",
	"P-value":                          "P-Wert",
	"Z-score":                          "Z-Wert",
	"Confidence level":                 "Konfidenzniveau",
	"Confidence interval":              "Konfidenzintervall",
	"Difference between the rates":     "Unterschied zwischen den Raten",
	"Likely range":                     "Plausibler Bereich",
	"What this means":                  "Was das bedeutet",
	"Recommendation":                   "Empfehlung",
	"Calculate":                        "Berechnen",
	"Sample data":                      "Beispieldaten",
	"Statistical concepts explained":   "Statistische Konzepte erklärt",
}
