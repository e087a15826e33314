// Package tui is a single-session terminal rendition of the resume form.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/smartresume/internal/form"
	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/session"
)

// field is the form control that currently has focus.
type field int

const (
	fieldJobTitle field = iota
	fieldLevel
	fieldSkillInput
	fieldSkills
	fieldSubmit
	fieldFormat
	fieldCount
)

// Rows used by everything except the output viewport.
const formChrome = 22

// generatedMsg is sent when an async generation completes.
type generatedMsg struct {
	result model.InferenceResult
}

type formModel struct {
	ctx   context.Context
	ctrl  *form.Controller
	state *session.State

	jobInput    textinput.Model
	skillInput  textinput.Model
	spinner     spinner.Model
	output      viewport.Model
	levels      selector
	formats     selector
	focus       field
	skillCursor int

	generating bool
	warning    string
	width      int
	height     int
}

func newFormModel(ctx context.Context, ctrl *form.Controller, st *session.State) formModel {
	f := st.Form()

	job := textinput.New()
	job.Placeholder = "e.g. Data Analyst"
	job.Prompt = ""
	job.CharLimit = 120
	job.SetValue(f.JobTitle)
	job.Focus()

	skill := textinput.New()
	skill.Placeholder = "type a skill and press enter"
	skill.Prompt = ""
	skill.CharLimit = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	m := formModel{
		ctx:        ctx,
		ctrl:       ctrl,
		state:      st,
		jobInput:   job,
		skillInput: skill,
		spinner:    sp,
		output:     viewport.New(76, 8),
		levels:     newSelector(model.ExperienceLevels),
		formats:    newSelector(model.ResumeFormats),
		width:      80,
	}
	m.refreshOutput()
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.Width = max(m.width-6, 20)
		m.output.Height = max(m.height-formChrome, 3)
		m.refreshOutput()
		return m, nil

	case generatedMsg:
		m.generating = false
		m.ctrl.CompleteSubmit(m.state, msg.result.Text, msg.result.Err)
		m.refreshOutput()
		return m, nil

	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// One interaction at a time: nothing else is accepted until the
		// pending generation reports back.
		if m.generating {
			return m, nil
		}
		return m.updateKey(msg)
	}

	return m, nil
}

func (m formModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		return m.moveFocus(1)
	case "shift+tab", "up":
		return m.moveFocus(-1)
	case "ctrl+s":
		return m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}

	switch m.focus {
	case fieldJobTitle:
		var cmd tea.Cmd
		m.jobInput, cmd = m.jobInput.Update(msg)
		m.ctrl.SetJobTitle(m.state, m.jobInput.Value())
		return m, cmd

	case fieldLevel:
		if d := direction(msg); d != 0 {
			next := m.levels.step(string(m.state.Form().ExperienceLevel), d)
			m.setWarning(m.ctrl.SetExperienceLevel(m.state, next))
		}
		return m, nil

	case fieldSkillInput:
		if msg.Type == tea.KeyEnter {
			m.ctrl.AddSkill(m.state, m.skillInput.Value())
			m.skillInput.Reset()
			return m, nil
		}
		var cmd tea.Cmd
		m.skillInput, cmd = m.skillInput.Update(msg)
		return m, cmd

	case fieldSkills:
		skills := m.state.Form().Skills
		switch msg.String() {
		case "left", "h":
			m.skillCursor = clamp(m.skillCursor-1, 0, max(len(skills)-1, 0))
		case "right", "l":
			m.skillCursor = clamp(m.skillCursor+1, 0, max(len(skills)-1, 0))
		case "enter", "x", "delete", "backspace":
			if len(skills) > 0 {
				m.ctrl.RemoveSkill(m.state, skills[m.skillCursor])
				m.skillCursor = clamp(m.skillCursor, 0, max(len(skills)-2, 0))
			}
		}
		return m, nil

	case fieldSubmit:
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
		return m, nil

	case fieldFormat:
		if d := direction(msg); d != 0 {
			next := m.formats.step(string(m.state.Form().ResumeFormat), d)
			m.setWarning(m.ctrl.SetResumeFormat(m.state, next))
		}
		return m, nil
	}

	return m, nil
}

func direction(msg tea.KeyMsg) int {
	switch msg.String() {
	case "left", "h":
		return -1
	case "right", "l", " ":
		return 1
	}
	return 0
}

func (m formModel) moveFocus(delta int) (tea.Model, tea.Cmd) {
	m.focus = field((int(m.focus) + delta + int(fieldCount)) % int(fieldCount))
	m.jobInput.Blur()
	m.skillInput.Blur()

	var cmd tea.Cmd
	switch m.focus {
	case fieldJobTitle:
		cmd = m.jobInput.Focus()
	case fieldSkillInput:
		cmd = m.skillInput.Focus()
	case fieldSkills:
		m.skillCursor = clamp(m.skillCursor, 0, max(len(m.state.Form().Skills)-1, 0))
	}
	return m, cmd
}

func (m formModel) submit() (tea.Model, tea.Cmd) {
	req, err := m.ctrl.BeginSubmit(m.state)
	if err != nil {
		m.setWarning(err)
		return m, nil
	}
	m.warning = ""
	m.generating = true
	m.refreshOutput()
	return m, tea.Batch(m.spinner.Tick, m.generateCmd(req))
}

func (m formModel) generateCmd(req model.PromptRequest) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		text, err := ctrl.Generate(ctx, req)
		return generatedMsg{result: model.InferenceResult{Text: text, Err: err}}
	}
}

func (m *formModel) setWarning(err error) {
	m.warning = ""
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		m.warning = ve.Message
	}
}

func (m *formModel) refreshOutput() {
	f := m.state.Form()
	width := m.output.Width - 2
	switch {
	case m.generating:
		m.output.SetContent("")
	case f.LastError != "":
		m.output.SetContent(errorStyle.Width(width).Render(f.LastError))
	default:
		m.output.SetContent(lipgloss.NewStyle().Width(width).Render(f.LastGeneratedSections))
	}
	m.output.GotoTop()
}

func (m formModel) View() string {
	f := m.state.Form()
	var b strings.Builder

	b.WriteString(titleStyle.Render("💼 SmartResume AI 💼") + "\n")
	b.WriteString(headerStyle.Render("Build a Professional Resume with AI Assistance") + "\n")

	b.WriteString(m.label(fieldJobTitle, "Job Title") + m.jobInput.View() + "\n")
	b.WriteString(m.label(fieldLevel, "Experience Level") + m.levels.render(string(f.ExperienceLevel)) + "\n")
	b.WriteString(m.label(fieldSkillInput, "Enter a Skill") + m.skillInput.View() + "\n")
	b.WriteString(m.label(fieldSkills, "Skills added") + m.renderSkills(f.Skills) + "\n")

	btn := buttonStyle
	if m.focus == fieldSubmit {
		btn = activeButtonStyle
	}
	b.WriteString(btn.Render("Submit Job Info") + "\n")

	if m.warning != "" {
		b.WriteString(warningStyle.Render("⚠ "+m.warning) + "\n")
	}

	switch {
	case m.generating:
		b.WriteString(sectionTitleStyle.Render(m.spinner.View()+" Generating resume sections...") + "\n")
	case f.LastGeneratedSections != "" || f.LastError != "":
		b.WriteString(sectionTitleStyle.Render("Resume Sections for "+f.JobTitle) + "\n")
		b.WriteString(outputBorderStyle.Render(m.output.View()) + "\n")
	}

	b.WriteString(sectionTitleStyle.Render("Resume Format") + "\n")
	b.WriteString(m.label(fieldFormat, "Choose a format") + m.formats.render(string(f.ResumeFormat)) + "\n")
	b.WriteString(hintStyle.Render(fmt.Sprintf("You've selected the %s resume format.", f.ResumeFormat)) + "\n\n")

	status := " tab/↑↓ move  ←/→ change  enter add/remove/submit  ctrl+s submit  pgup/pgdn scroll  esc quit"
	b.WriteString(statusBarStyle.Width(m.width).Render(status))
	return b.String()
}

func (m formModel) label(f field, text string) string {
	if m.focus == f {
		return activeLabelStyle.Render("› " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m formModel) renderSkills(skills []string) string {
	if len(skills) == 0 {
		return optionStyle.Render("none yet")
	}
	chips := make([]string, len(skills))
	for i, s := range skills {
		if m.focus == fieldSkills && i == m.skillCursor {
			chips[i] = selectedChipStyle.Render(s + " ✕")
		} else {
			chips[i] = chipStyle.Render(s)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run launches the interactive form for one session in the alt screen and
// blocks until the user quits.
func Run(ctx context.Context, ctrl *form.Controller, st *session.State) error {
	m := newFormModel(ctx, ctrl, st)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
