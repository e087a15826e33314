package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/amishk599/smartresume/internal/model"
)

//go:embed prompts/resume_sections.md
var resumeSectionsPromptRaw string

// ResumeSectionsTemplate is the parsed default prompt.
// Parsed once at package init; reused on every Build call.
var ResumeSectionsTemplate = template.Must(template.New("resume_sections").Option("missingkey=error").Parse(resumeSectionsPromptRaw))

// Builder renders the resume-section prompt for one submission.
type Builder struct {
	tmpl *template.Template
}

// NewBuilder returns a Builder using tmpl, or ResumeSectionsTemplate when tmpl is nil.
func NewBuilder(tmpl *template.Template) *Builder {
	if tmpl == nil {
		tmpl = ResumeSectionsTemplate
	}
	return &Builder{tmpl: tmpl}
}

// LoadTemplate parses a replacement prompt from path. The file may reference
// {{.JobTitle}}, {{.ExperienceLevel}} and {{.Skills}}.
func LoadTemplate(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	tmpl, err := template.New("resume_sections").Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse prompt file %s: %w", path, err)
	}
	// Dry run so a template referencing unknown fields fails at startup, not on submit.
	if err := tmpl.Execute(&bytes.Buffer{}, model.PromptRequest{}); err != nil {
		return nil, fmt.Errorf("check prompt file %s: %w", path, err)
	}
	return tmpl, nil
}

// Build substitutes req into the template. The caller guarantees a non-empty job title.
func (b *Builder) Build(req model.PromptRequest) string {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, req); err != nil {
		// Templates are checked against PromptRequest when loaded.
		panic(fmt.Sprintf("render resume prompt: %v", err))
	}
	return buf.String()
}
