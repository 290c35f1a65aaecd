package validate

import (
	"encoding/json"
	"io"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// SampleInput is the body accepted when saving a named dataset.
type SampleInput struct {
	Name        string `json:"name" validate:"required,max=64,slug"`
	Description string `json:"description" validate:"max=200"`
	Input
}

// Sample is a validated named dataset.
type Sample struct {
	Name        string
	Description string
	Input       stats.TestInput
}

// Validate checks the name and the embedded counts.
func (s *SampleInput) Validate() error {
	if err := validate.Struct(s); err != nil {
		return translate(err)
	}
	return nil
}

// DecodeSampleJSON reads and validates a named dataset.
func DecodeSampleJSON(r io.Reader) (Sample, error) {
	var in SampleInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Sample{}, decodeError(err)
	}
	if in.ConfidenceLevel == "" {
		in.ConfidenceLevel = string(stats.DefaultConfidence)
	}
	if err := in.Validate(); err != nil {
		return Sample{}, err
	}
	return Sample{Name: in.Name, Description: in.Description, Input: in.TestInput()}, nil
}

// NewSample validates a named dataset built from typed counts.
func NewSample(name, description string, in stats.TestInput) (Sample, error) {
	s := SampleInput{Name: name, Description: description}
	s.VisitorsA = count(in.VisitorsA)
	s.ConversionsA = count(in.ConversionsA)
	s.VisitorsB = count(in.VisitorsB)
	s.ConversionsB = count(in.ConversionsB)
	s.ConfidenceLevel = string(in.ConfidenceLevel)
	if err := s.Validate(); err != nil {
		return Sample{}, err
	}
	return Sample{Name: name, Description: description, Input: s.TestInput()}, nil
}
