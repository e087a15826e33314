package model

import (
	"fmt"
	"strings"
)

// ExperienceLevel is the candidate's seniority as picked in the form.
type ExperienceLevel string

const (
	Beginner     ExperienceLevel = "Beginner"
	Intermediate ExperienceLevel = "Intermediate"
	Expert       ExperienceLevel = "Expert"
)

// ExperienceLevels lists the selector options in display order.
var ExperienceLevels = []ExperienceLevel{Beginner, Intermediate, Expert}

// ParseExperienceLevel matches s against the selector options, ignoring case
// and surrounding whitespace.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	for _, l := range ExperienceLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", &ValidationError{
		Field:   "experience_level",
		Message: fmt.Sprintf("%q is not one of Beginner, Intermediate, Expert", s),
	}
}

// Valid reports whether l is one of ExperienceLevels.
func (l ExperienceLevel) Valid() bool {
	for _, v := range ExperienceLevels {
		if l == v {
			return true
		}
	}
	return false
}

// ResumeFormat is the cosmetic layout choice. It has no effect on the prompt.
type ResumeFormat string

const (
	Chronological ResumeFormat = "Chronological"
	Functional    ResumeFormat = "Functional"
	Hybrid        ResumeFormat = "Hybrid"
)

// ResumeFormats lists the selector options in display order.
var ResumeFormats = []ResumeFormat{Chronological, Functional, Hybrid}

// ParseResumeFormat matches s against the selector options, ignoring case
// and surrounding whitespace.
func ParseResumeFormat(s string) (ResumeFormat, error) {
	for _, f := range ResumeFormats {
		if strings.EqualFold(strings.TrimSpace(s), string(f)) {
			return f, nil
		}
	}
	return "", &ValidationError{
		Field:   "resume_format",
		Message: fmt.Sprintf("%q is not one of Chronological, Functional, Hybrid", s),
	}
}

// Valid reports whether f is one of ResumeFormats.
func (f ResumeFormat) Valid() bool {
	for _, v := range ResumeFormats {
		if f == v {
			return true
		}
	}
	return false
}

// FormState is everything one session remembers between interactions.
type FormState struct {
	JobTitle        string          `json:"job_title"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Skills          []string        `json:"skills"`
	ResumeFormat    ResumeFormat    `json:"resume_format"`

	// Output of the last submission. At most one of these is non-empty.
	LastGeneratedSections string `json:"last_generated_sections"`
	LastError             string `json:"last_error,omitempty"`
}

// Clone returns a copy that shares no memory with f.
func (f FormState) Clone() FormState {
	out := f
	if f.Skills != nil {
		out.Skills = make([]string, len(f.Skills))
		copy(out.Skills, f.Skills)
	}
	return out
}

// PromptRequest is the input to the prompt template, built fresh per submission.
type PromptRequest struct {
	JobTitle        string
	Skills          string // comma-joined, "" when there are none
	ExperienceLevel ExperienceLevel
}

// NewPromptRequest derives the template input from the current form.
func NewPromptRequest(f FormState) PromptRequest {
	return PromptRequest{
		JobTitle:        f.JobTitle,
		Skills:          strings.Join(f.Skills, ", "),
		ExperienceLevel: f.ExperienceLevel,
	}
}

// InferenceResult is the outcome of one generation call.
type InferenceResult struct {
	Text string
	Err  error
}
