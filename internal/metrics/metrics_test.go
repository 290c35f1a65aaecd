package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

func TestRecordCalculation(t *testing.T) {
	m := New(false)

	m.RecordCalculation(SourceAPI, stats.VerdictSignificant)
	m.RecordCalculation(SourceAPI, stats.VerdictSignificant)
	m.RecordCalculation(SourceForm, stats.VerdictIndeterminate)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("api", "significant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("form", "indeterminate")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CalculationsTotal.WithLabelValues("form", "not_significant")))
}

func TestRecordValidationFailure(t *testing.T) {
	m := New(false)

	m.RecordValidationFailure(SourceForm)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailuresTotal.WithLabelValues("form")))
}

func TestObserveRequest(t *testing.T) {
	m := New(false)

	m.ObserveRequest(http.MethodPost, "/api/calculate-significance", http.StatusOK, 3*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestSeparateRegistries(t *testing.T) {
	a := New(false)
	b := New(false)

	a.RecordValidationFailure(SourceAPI)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.ValidationFailuresTotal.WithLabelValues("api")))
}

func TestHandler(t *testing.T) {
	m := New(true)
	m.RecordCalculation(SourceForm, stats.VerdictNotSignificant)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `sigcalc_calculations_total{source="form",verdict="not_significant"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
