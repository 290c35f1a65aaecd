// Package validate is the schema layer in front of the statistics
// engine. Every entry point (JSON API, HTML form, CLI flags) converts its
// raw input through this package so the engine only ever sees counts
// that satisfy its preconditions.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

// MaxVisitors caps visitor counts so they convert to int without loss.
const MaxVisitors = 1_000_000_000_000

// Input mirrors the JSON body of a calculation request. Counts are
// pointers to floats so a missing field, a fractional value and a
// negative value can each be reported precisely instead of silently
// coerced.
type Input struct {
	VisitorsA       *float64 `json:"visitorsA" validate:"required,integer,gt=0,lte=1000000000000"`
	ConversionsA    *float64 `json:"conversionsA" validate:"required,integer,gte=0,ltefield=VisitorsA"`
	VisitorsB       *float64 `json:"visitorsB" validate:"required,integer,gt=0,lte=1000000000000"`
	ConversionsB    *float64 `json:"conversionsB" validate:"required,integer,gte=0,ltefield=VisitorsB"`
	ConfidenceLevel string   `json:"confidenceLevel" validate:"required,oneof=0.9 0.95 0.99"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("integer", validateInteger)
	_ = validate.RegisterValidation("slug", validateSlug)
}

// validateInteger accepts finite floats with no fractional part.
func validateInteger(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// Validate checks the struct tags and converts a validator failure
// into an *Error.
func (in *Input) Validate() error {
	if err := validate.Struct(in); err != nil {
		return translate(err)
	}
	return nil
}

// TestInput converts a validated Input into the engine's input record.
func (in *Input) TestInput() stats.TestInput {
	return stats.TestInput{
		VisitorsA:       int(*in.VisitorsA),
		ConversionsA:    int(*in.ConversionsA),
		VisitorsB:       int(*in.VisitorsB),
		ConversionsB:    int(*in.ConversionsB),
		ConfidenceLevel: stats.ConfidenceLevel(in.ConfidenceLevel),
	}
}

// DecodeJSON reads a JSON calculation request and validates it.
func DecodeJSON(r io.Reader) (stats.TestInput, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return stats.TestInput{}, decodeError(err)
	}
	if err := in.Validate(); err != nil {
		return stats.TestInput{}, err
	}
	return in.TestInput(), nil
}

// FromForm reads a calculation request from HTML form values. An empty
// confidenceLevel means the default level.
func FromForm(values url.Values) (stats.TestInput, error) {
	var in Input
	var fieldErrs []FieldError

	fields := []struct {
		name string
		dst  **float64
	}{
		{"visitorsA", &in.VisitorsA},
		{"conversionsA", &in.ConversionsA},
		{"visitorsB", &in.VisitorsB},
		{"conversionsB", &in.ConversionsB},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(values.Get(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{Field: f.name, Message: "must be a number"})
			continue
		}
		*f.dst = &v
	}

	in.ConfidenceLevel = strings.TrimSpace(values.Get("confidenceLevel"))
	if in.ConfidenceLevel == "" {
		in.ConfidenceLevel = string(stats.DefaultConfidence)
	}

	if err := in.Validate(); err != nil {
		var verr *Error
		if errors.As(err, &verr) {
			fieldErrs = mergeFieldErrors(fieldErrs, verr.Fields)
		}
	}
	if len(fieldErrs) > 0 {
		return stats.TestInput{}, &Error{Fields: fieldErrs}
	}
	return in.TestInput(), nil
}

// FromCounts validates counts that arrive already typed, e.g. from CLI
// flags or a stored sample.
func FromCounts(visitorsA, conversionsA, visitorsB, conversionsB int, level string) (stats.TestInput, error) {
	in := Input{
		VisitorsA:       count(visitorsA),
		ConversionsA:    count(conversionsA),
		VisitorsB:       count(visitorsB),
		ConversionsB:    count(conversionsB),
		ConfidenceLevel: level,
	}
	if err := in.Validate(); err != nil {
		return stats.TestInput{}, err
	}
	return in.TestInput(), nil
}

// Count validates a single count typed into an interactive prompt.
func Count(raw string, positive bool) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return errors.New("must be a number")
	}
	if v != math.Trunc(v) {
		return errors.New("must be an integer")
	}
	if positive && v <= 0 {
		return errors.New("must be greater than 0")
	}
	if v < 0 {
		return errors.New("must be at least 0")
	}
	if v > MaxVisitors {
		return fmt.Errorf("must be at most %d", int64(MaxVisitors))
	}
	return nil
}

func count(n int) *float64 {
	v := float64(n)
	return &v
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		msg := "must be a number"
		if typeErr.Field == "confidenceLevel" {
			msg = "must be a string"
		}
		return &Error{Fields: []FieldError{{Field: typeErr.Field, Message: msg}}}
	}
	if errors.Is(err, io.EOF) {
		return &Error{Fields: []FieldError{{Field: "body", Message: "request body is empty"}}}
	}
	return &Error{Fields: []FieldError{{Field: "body", Message: "malformed JSON"}}}
}

// mergeFieldErrors keeps the first message per field.
func mergeFieldErrors(first, second []FieldError) []FieldError {
	seen := make(map[string]bool, len(first))
	for _, fe := range first {
		seen[fe.Field] = true
	}
	for _, fe := range second {
		if !seen[fe.Field] {
			first = append(first, fe)
			seen[fe.Field] = true
		}
	}
	return first
}
