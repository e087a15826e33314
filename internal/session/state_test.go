package session

import (
	"testing"

	"github.com/amishk599/smartresume/internal/model"
)

func TestNewState_Defaults(t *testing.T) {
	f := NewState().Form()

	if f.JobTitle != "" {
		t.Errorf("JobTitle = %q, want empty", f.JobTitle)
	}
	if f.ExperienceLevel != model.Beginner {
		t.Errorf("ExperienceLevel = %q, want Beginner", f.ExperienceLevel)
	}
	if f.ResumeFormat != model.Chronological {
		t.Errorf("ResumeFormat = %q, want Chronological", f.ResumeFormat)
	}
	if f.Skills == nil || len(f.Skills) != 0 {
		t.Errorf("Skills = %#v, want empty non-nil slice", f.Skills)
	}
}

func TestInitDefaults_Idempotent(t *testing.T) {
	s := NewState()
	s.SetJobTitle("Data Analyst")
	s.SetExperienceLevel(model.Expert)
	s.SetResumeFormat(model.Functional)
	s.SetSkills([]string{"SQL", "Leadership"})
	s.SetResult("outline", "")

	before := s.Form()
	s.InitDefaults()
	s.InitDefaults()
	after := s.Form()

	if after.JobTitle != before.JobTitle ||
		after.ExperienceLevel != before.ExperienceLevel ||
		after.ResumeFormat != before.ResumeFormat ||
		after.LastGeneratedSections != before.LastGeneratedSections {
		t.Errorf("InitDefaults changed populated state: before %+v, after %+v", before, after)
	}
	if len(after.Skills) != 2 || after.Skills[0] != "SQL" || after.Skills[1] != "Leadership" {
		t.Errorf("Skills = %v, want [SQL Leadership]", after.Skills)
	}
}

func TestFromForm_FillsMissingEnums(t *testing.T) {
	s := FromForm(model.FormState{JobTitle: "Nurse"})
	f := s.Form()

	if f.JobTitle != "Nurse" {
		t.Errorf("JobTitle = %q, want Nurse", f.JobTitle)
	}
	if f.ExperienceLevel != model.Beginner || f.ResumeFormat != model.Chronological {
		t.Errorf("got level %q format %q, want defaults", f.ExperienceLevel, f.ResumeFormat)
	}
}

func TestForm_ReturnsCopy(t *testing.T) {
	s := NewState()
	s.SetSkills([]string{"Go"})

	f := s.Form()
	f.Skills[0] = "mutated"

	if got := s.Form().Skills[0]; got != "Go" {
		t.Errorf("Skills[0] = %q, want Go", got)
	}
}

func TestSetResult_ErrorReplacesContent(t *testing.T) {
	s := NewState()
	s.SetResult("old outline", "")
	s.SetResult("", "request failed")

	f := s.Form()
	if f.LastGeneratedSections != "" {
		t.Errorf("LastGeneratedSections = %q, want cleared", f.LastGeneratedSections)
	}
	if f.LastError != "request failed" {
		t.Errorf("LastError = %q", f.LastError)
	}
}
