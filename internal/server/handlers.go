package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gkobilansky/sigcalc/internal/metrics"
	"github.com/gkobilansky/sigcalc/internal/report"
	"github.com/gkobilansky/sigcalc/internal/stats"
	"github.com/gkobilansky/sigcalc/internal/store"
	"github.com/gkobilansky/sigcalc/internal/validate"
)

// maxBodyBytes bounds request bodies of the JSON endpoints.
const maxBodyBytes = 1 << 20

type HealthResponse struct {
	Status        string `json:"status"`
	SamplesCount  int    `json:"samples_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string                `json:"message"`
	Errors  []validate.FieldError `json:"errors"`
}

// SampleResponse is the JSON form of a stored sample.
type SampleResponse struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	VisitorsA       int    `json:"visitorsA"`
	ConversionsA    int    `json:"conversionsA"`
	VisitorsB       int    `json:"visitorsB"`
	ConversionsB    int    `json:"conversionsB"`
	ConfidenceLevel string `json:"confidenceLevel"`
	BuiltIn         bool   `json:"builtIn"`
	CreatedAt       string `json:"createdAt"`
}

func newSampleResponse(s *store.Sample) SampleResponse {
	return SampleResponse{
		Name:            s.Name,
		Description:     s.Description,
		VisitorsA:       s.VisitorsA,
		ConversionsA:    s.ConversionsA,
		VisitorsB:       s.VisitorsB,
		ConversionsB:    s.ConversionsB,
		ConfidenceLevel: string(s.ConfidenceLevel),
		BuiltIn:         s.BuiltIn,
		CreatedAt:       s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	samples, err := s.store.ListSamples(r.Context())
	if err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		SamplesCount:  len(samples),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	in, err := validate.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.metrics.RecordValidationFailure(metrics.SourceAPI)
		s.logger.Debug("invalid calculation request", "error", err)
		writeValidationError(w, err)
		return
	}

	result, err := s.compute(in)
	if err != nil {
		s.logger.Error("calculation failed", "error", err, "input", in)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Error calculating statistical significance"})
		return
	}

	s.metrics.RecordCalculation(metrics.SourceAPI, result.Verdict())
	writeJSON(w, http.StatusOK, report.NewPayload(result))
}

// compute runs the engine and rejects results that break its
// post-conditions.
func (s *Server) compute(in stats.TestInput) (stats.StatisticalResult, error) {
	result := s.calculate(in)
	if err := result.Check(); err != nil {
		return stats.StatisticalResult{}, err
	}
	return result, nil
}

func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := s.store.ListSamples(r.Context())
	if err != nil {
		s.logger.Error("failed to list samples", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to load samples"})
		return
	}

	// Return empty array instead of null
	response := make([]SampleResponse, 0, len(samples))
	for _, sample := range samples {
		response = append(response, newSampleResponse(sample))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetSample(w http.ResponseWriter, r *http.Request) {
	sample, err := s.store.GetSample(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Sample not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to get sample", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to load sample"})
		return
	}
	writeJSON(w, http.StatusOK, newSampleResponse(sample))
}

func (s *Server) handleCreateSample(w http.ResponseWriter, r *http.Request) {
	in, err := validate.DecodeSampleJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.store.CreateSample(r.Context(), store.Sample{
		Name:            in.Name,
		Description:     in.Description,
		VisitorsA:       in.Input.VisitorsA,
		ConversionsA:    in.Input.ConversionsA,
		VisitorsB:       in.Input.VisitorsB,
		ConversionsB:    in.Input.ConversionsB,
		ConfidenceLevel: in.Input.ConfidenceLevel,
	})
	if errors.Is(err, store.ErrExists) {
		writeJSON(w, http.StatusConflict, messageResponse{Message: "Sample already exists"})
		return
	}
	if err != nil {
		s.logger.Error("failed to create sample", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to save sample"})
		return
	}

	s.logger.Info("sample created", "name", created.Name)
	writeJSON(w, http.StatusCreated, newSampleResponse(created))
}

func (s *Server) handleDeleteSample(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := s.store.DeleteSample(r.Context(), name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Sample not found"})
	case errors.Is(err, store.ErrBuiltIn):
		writeJSON(w, http.StatusForbidden, messageResponse{Message: "Built-in samples cannot be deleted"})
	case err != nil:
		s.logger.Error("failed to delete sample", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to delete sample"})
	default:
		s.logger.Info("sample deleted", "name", name)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *validate.Error
	if !errors.As(err, &verr) {
		verr = &validate.Error{Fields: []validate.FieldError{{Field: "body", Message: err.Error()}}}
	}
	writeJSON(w, http.StatusBadRequest, validationResponse{
		Message: "Invalid input data",
		Errors:  verr.Fields,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
