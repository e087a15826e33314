// Package session holds per-user form state and the stores that keep it
// between interactions.
package session

import "github.com/amishk599/smartresume/internal/model"

// State is one session's form. Only the form controller calls the setters.
type State struct {
	form model.FormState
}

// NewState returns a State initialised with defaults.
func NewState() *State {
	s := &State{}
	s.InitDefaults()
	return s
}

// FromForm wraps a stored form, filling any absent fields with defaults.
func FromForm(f model.FormState) *State {
	s := &State{form: f.Clone()}
	s.InitDefaults()
	return s
}

// InitDefaults sets each field to its default only when it is absent, so
// calling it on a populated state changes nothing.
func (s *State) InitDefaults() {
	if !s.form.ExperienceLevel.Valid() {
		s.form.ExperienceLevel = model.Beginner
	}
	if !s.form.ResumeFormat.Valid() {
		s.form.ResumeFormat = model.Chronological
	}
	if s.form.Skills == nil {
		s.form.Skills = []string{}
	}
}

// Form returns a snapshot of the current values.
func (s *State) Form() model.FormState {
	return s.form.Clone()
}

func (s *State) SetJobTitle(title string) { s.form.JobTitle = title }

func (s *State) SetExperienceLevel(l model.ExperienceLevel) { s.form.ExperienceLevel = l }

func (s *State) SetResumeFormat(f model.ResumeFormat) { s.form.ResumeFormat = f }

// SetSkills replaces the skill list with a copy of skills.
func (s *State) SetSkills(skills []string) {
	s.form.Skills = append([]string{}, skills...)
}

// SetResult records the outcome of a submission. A non-empty errMsg replaces
// any previously generated text.
func (s *State) SetResult(sections, errMsg string) {
	s.form.LastGeneratedSections = sections
	s.form.LastError = errMsg
}
