package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gkobilansky/sigcalc/internal/metrics"
	"github.com/gkobilansky/sigcalc/internal/report"
	"github.com/gkobilansky/sigcalc/internal/stats"
	"github.com/gkobilansky/sigcalc/internal/store"
	"github.com/gkobilansky/sigcalc/internal/validate"
	"github.com/gkobilansky/sigcalc/internal/web"
)

// Page template data structures
type layoutData struct {
	Title   string
	Lang    string
	CSS     template.CSS
	Content template.HTML
}

type pageData struct {
	Lang     string
	Labels   map[string]string
	Notice   string
	Form     formValues
	Errors   map[string]string
	Levels   []levelOption
	Samples  []sampleLink
	Report   *report.Report
	Concepts []report.Concept
}

type formValues struct {
	VisitorsA    string
	ConversionsA string
	VisitorsB    string
	ConversionsB string
	Level        string
}

type levelOption struct {
	Value    string
	Label    string
	Selected bool
}

type sampleLink struct {
	Name        string
	Description string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r, r.URL.Query().Get("lang"))
	data := s.newPageData(r, locale)
	status := http.StatusOK

	if name := r.URL.Query().Get("sample"); name != "" {
		sample, err := s.store.GetSample(r.Context(), name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
			data.Notice = fmt.Sprintf("Unknown sample %q", name)
		case err != nil:
			s.logger.Error("failed to load sample", "error", err)
			http.Error(w, "Failed to load sample", http.StatusInternalServerError)
			return
		default:
			data.Form = formValues{
				VisitorsA:    strconv.Itoa(sample.VisitorsA),
				ConversionsA: strconv.Itoa(sample.ConversionsA),
				VisitorsB:    strconv.Itoa(sample.VisitorsB),
				ConversionsB: strconv.Itoa(sample.ConversionsB),
				Level:        string(sample.ConfidenceLevel),
			}
		}
	}

	s.renderPage(w, status, data)
}

func (s *Server) handleFormCalculate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	locale := s.locale(r, r.PostForm.Get("lang"))
	data := s.newPageData(r, locale)
	data.Form = formValues{
		VisitorsA:    r.PostForm.Get("visitorsA"),
		ConversionsA: r.PostForm.Get("conversionsA"),
		VisitorsB:    r.PostForm.Get("visitorsB"),
		ConversionsB: r.PostForm.Get("conversionsB"),
		Level:        r.PostForm.Get("confidenceLevel"),
	}
	if data.Form.Level == "" {
		data.Form.Level = string(s.cfg.DefaultConfidence)
	}

	in, err := validate.FromForm(r.PostForm)
	if err != nil {
		s.metrics.RecordValidationFailure(metrics.SourceForm)
		var verr *validate.Error
		if errors.As(err, &verr) {
			for _, fe := range verr.Fields {
				data.Errors[fe.Field] = fe.Message
			}
		}
		s.renderPage(w, http.StatusBadRequest, data)
		return
	}

	result, err := s.compute(in)
	if err != nil {
		s.logger.Error("calculation failed", "error", err, "input", in)
		http.Error(w, "Error calculating statistical significance", http.StatusInternalServerError)
		return
	}

	s.metrics.RecordCalculation(metrics.SourceForm, result.Verdict())
	rep := report.Build(in, result, locale)
	data.Report = &rep
	s.renderPage(w, http.StatusOK, data)
}

// locale prefers an explicit lang value, then Accept-Language, then the
// configured default.
func (s *Server) locale(r *http.Request, lang string) report.Locale {
	if lang != "" {
		if l, err := report.ParseLocale(lang); err == nil {
			return l
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return report.Negotiate(accept)
	}
	return s.cfg.Locale
}

func (s *Server) newPageData(r *http.Request, locale report.Locale) pageData {
	data := pageData{
		Lang:     string(locale),
		Labels:   report.Labels(locale),
		Form:     formValues{Level: string(s.cfg.DefaultConfidence)},
		Errors:   map[string]string{},
		Concepts: report.Concepts(locale),
	}

	samples, err := s.store.ListSamples(r.Context())
	if err != nil {
		s.logger.Warn("failed to list samples", "error", err)
	}
	for _, sample := range samples {
		data.Samples = append(data.Samples, sampleLink{Name: sample.Name, Description: sample.Description})
	}
	return data
}

func (d *pageData) levels() {
	d.Levels = make([]levelOption, len(stats.ConfidenceLevels))
	for i, level := range stats.ConfidenceLevels {
		d.Levels[i] = levelOption{
			Value:    string(level),
			Label:    fmt.Sprintf("%.0f%%", level.Percent()),
			Selected: string(level) == d.Form.Level,
		}
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	data.levels()

	// Load CSS
	cssBytes, err := web.Assets.ReadFile("assets/style.css")
	if err != nil {
		http.Error(w, "Failed to load styles", http.StatusInternalServerError)
		return
	}

	contentTmpl, err := template.ParseFS(web.Templates, "templates/calculator.html")
	if err != nil {
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	layoutTmpl, err := template.ParseFS(web.Templates, "templates/layout.html")
	if err != nil {
		http.Error(w, "Failed to parse layout", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	if err := layoutTmpl.Execute(&page, layoutData{
		Title:   data.Labels["A/B Test Significance Calculator"],
		Lang:    data.Lang,
		CSS:     template.CSS(cssBytes),
		Content: template.HTML(contentBuf.String()),
	}); err != nil {
		s.logger.Error("failed to render layout", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = page.WriteTo(w)
}
