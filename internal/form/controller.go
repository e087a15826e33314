// Package form implements the resume form's event handlers. It is the only
// code that mutates session state.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/smartresume/internal/ai"
	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/prompt"
	"github.com/amishk599/smartresume/internal/session"
)

// Generator turns a rendered prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Controller applies user interactions to a session's State. It holds no
// per-session data, so one Controller serves every session.
type Controller struct {
	builder *prompt.Builder
	gen     Generator
	logger  *slog.Logger
}

// NewController wires the prompt builder and generator used by Submit.
func NewController(builder *prompt.Builder, gen Generator, logger *slog.Logger) *Controller {
	return &Controller{builder: builder, gen: gen, logger: logger}
}

// SetJobTitle stores text as typed, including the empty string.
func (c *Controller) SetJobTitle(st *session.State, text string) {
	st.SetJobTitle(text)
}

// SetExperienceLevel selects a level by display name. Unknown values leave
// the state unchanged.
func (c *Controller) SetExperienceLevel(st *session.State, value string) error {
	l, err := model.ParseExperienceLevel(value)
	if err != nil {
		return err
	}
	st.SetExperienceLevel(l)
	return nil
}

// SetResumeFormat selects a format by display name. Unknown values leave the
// state unchanged.
func (c *Controller) SetResumeFormat(st *session.State, value string) error {
	f, err := model.ParseResumeFormat(value)
	if err != nil {
		return err
	}
	st.SetResumeFormat(f)
	return nil
}

// AddSkill appends the trimmed text. Blank input is ignored; duplicates are kept.
func (c *Controller) AddSkill(st *session.State, text string) {
	skill := strings.TrimSpace(text)
	if skill == "" {
		return
	}
	st.SetSkills(append(st.Form().Skills, skill))
}

// RemoveSkill drops the first skill equal to text, if any.
func (c *Controller) RemoveSkill(st *session.State, text string) {
	skills := st.Form().Skills
	for i, s := range skills {
		if s == text {
			st.SetSkills(append(skills[:i], skills[i+1:]...))
			return
		}
	}
}

// BeginSubmit checks the form and captures the request to send. It returns
// model.ErrEmptyJobTitle when there is nothing to generate for.
func (c *Controller) BeginSubmit(st *session.State) (model.PromptRequest, error) {
	f := st.Form()
	if f.JobTitle == "" {
		return model.PromptRequest{}, model.ErrEmptyJobTitle
	}
	return model.NewPromptRequest(f), nil
}

// Generate renders req and calls the model. It does not touch any state, so
// it may run outside the session's event loop.
func (c *Controller) Generate(ctx context.Context, req model.PromptRequest) (string, error) {
	p := c.builder.Build(req)
	c.logger.Debug("submitting prompt",
		"job_title", req.JobTitle,
		"experience_level", req.ExperienceLevel,
		"skills", req.Skills,
	)
	return c.gen.Generate(ctx, p)
}

// CompleteSubmit records the outcome of Generate. A failure replaces any
// previously generated sections with a message for the user.
func (c *Controller) CompleteSubmit(st *session.State, text string, err error) {
	if err != nil {
		st.SetResult("", FailureMessage(err))
		return
	}
	st.SetResult(text, "")
}

// Submit runs BeginSubmit, Generate and CompleteSubmit in one call. The
// returned error is the validation or inference failure, already recorded in
// the state when it came from the model.
func (c *Controller) Submit(ctx context.Context, st *session.State) error {
	req, err := c.BeginSubmit(st)
	if err != nil {
		return err
	}
	start := time.Now()
	text, err := c.Generate(ctx, req)
	c.CompleteSubmit(st, text, err)
	if err != nil {
		return fmt.Errorf("generating resume sections: %w", err)
	}
	c.logger.Info("resume sections generated",
		"job_title", req.JobTitle,
		"duration", time.Since(start),
	)
	return nil
}

// FailureMessage is the text shown in place of generated content for err.
func FailureMessage(err error) string {
	var ierr *ai.InferenceError
	if errors.As(err, &ierr) {
		return ierr.UserMessage()
	}
	return fmt.Sprintf("Resume generation failed: %v", err)
}
