package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/smartresume/internal/form"
	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/prompt"
	"github.com/amishk599/smartresume/internal/session"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, p string) (string, error) {
	g.prompts = append(g.prompts, p)
	return g.text, g.err
}

func newTestModel(gen *fakeGenerator) formModel {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := form.NewController(prompt.NewBuilder(nil), gen, logger)
	return newFormModel(context.Background(), ctrl, session.NewState())
}

func send(m formModel, msgs ...tea.Msg) formModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(formModel)
	}
	return m
}

func typeText(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	right = tea.KeyMsg{Type: tea.KeyRight}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
)

func TestTypingJobTitleUpdatesState(t *testing.T) {
	m := send(newTestModel(&fakeGenerator{}), typeText("Data Analyst"))

	if got := m.state.Form().JobTitle; got != "Data Analyst" {
		t.Errorf("JobTitle = %q, want Data Analyst", got)
	}
}

func TestLevelSelectorCycles(t *testing.T) {
	m := send(newTestModel(&fakeGenerator{}), tab, right)
	if got := m.state.Form().ExperienceLevel; got != model.Intermediate {
		t.Errorf("after right: %q, want Intermediate", got)
	}

	m = send(m, left, left)
	if got := m.state.Form().ExperienceLevel; got != model.Expert {
		t.Errorf("after wrapping left: %q, want Expert", got)
	}
}

func TestAddAndRemoveSkills(t *testing.T) {
	m := send(newTestModel(&fakeGenerator{}),
		tab, tab, // skill input
		typeText("Leadership"), enter,
		typeText("   "), enter,
		typeText("SQL"), enter,
	)
	if got := m.state.Form().Skills; !reflect.DeepEqual(got, []string{"Leadership", "SQL"}) {
		t.Fatalf("Skills = %v, want [Leadership SQL]", got)
	}
	if m.skillInput.Value() != "" {
		t.Errorf("skill input not cleared: %q", m.skillInput.Value())
	}

	m = send(m, tab, right, enter)
	if got := m.state.Form().Skills; !reflect.DeepEqual(got, []string{"Leadership"}) {
		t.Errorf("Skills = %v, want [Leadership]", got)
	}
}

func TestFormatSelectorOnlyChangesFormat(t *testing.T) {
	m := send(newTestModel(&fakeGenerator{}), typeText("Chef"))
	before := m.state.Form()

	// Back-tab from the job title wraps to the format selector.
	m = send(m, tea.KeyMsg{Type: tea.KeyShiftTab}, right)
	after := m.state.Form()

	if after.ResumeFormat != model.Functional {
		t.Errorf("ResumeFormat = %q, want Functional", after.ResumeFormat)
	}
	if after.JobTitle != before.JobTitle || after.ExperienceLevel != before.ExperienceLevel {
		t.Errorf("other fields changed: %+v -> %+v", before, after)
	}
	if !strings.Contains(m.View(), "You've selected the Functional resume format.") {
		t.Error("format message not rendered")
	}
}

func TestSubmitWithoutTitleWarns(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}
	m := newTestModel(gen)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(formModel)

	if cmd != nil {
		t.Error("expected no command for an empty job title")
	}
	if m.generating {
		t.Error("generation started without a job title")
	}
	if m.warning != model.EmptyJobTitleWarning {
		t.Errorf("warning = %q", m.warning)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("model called %d times, want 0", len(gen.prompts))
	}
}

func TestSubmitFlow(t *testing.T) {
	gen := &fakeGenerator{text: "Objective: lead analytics"}
	m := send(newTestModel(gen), typeText("Data Analyst"))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(formModel)
	if !m.generating || cmd == nil {
		t.Fatalf("generating = %v, cmd = %v", m.generating, cmd)
	}

	// Keys are dropped while the request is in flight.
	m = send(m, typeText("XYZ"))
	if got := m.state.Form().JobTitle; got != "Data Analyst" {
		t.Errorf("JobTitle changed during generation: %q", got)
	}

	req, err := m.ctrl.BeginSubmit(m.state)
	if err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	msg := m.generateCmd(req)()
	m = send(m, msg)

	if m.generating {
		t.Error("still generating after result arrived")
	}
	if got := m.state.Form().LastGeneratedSections; got != "Objective: lead analytics" {
		t.Errorf("sections = %q", got)
	}
	view := m.View()
	if !strings.Contains(view, "Resume Sections for Data Analyst") {
		t.Error("result heading not rendered")
	}
	if !strings.Contains(gen.prompts[0], "Data Analyst") {
		t.Errorf("prompt missing job title:\n%s", gen.prompts[0])
	}
}

func TestGenerationFailureShownInPlaceOfContent(t *testing.T) {
	m := newTestModel(&fakeGenerator{})
	m.state.SetJobTitle("Nurse")
	m.state.SetResult("old outline", "")
	m.generating = true

	m = send(m, generatedMsg{result: model.InferenceResult{Err: errors.New("timeout")}})

	f := m.state.Form()
	if f.LastGeneratedSections != "" || !strings.Contains(f.LastError, "timeout") {
		t.Errorf("result = %q / %q", f.LastGeneratedSections, f.LastError)
	}
	if !strings.Contains(m.output.View(), "timeout") {
		t.Error("failure message not in output viewport")
	}
}

func TestOutputWrapsByDisplayWidth(t *testing.T) {
	gen := &fakeGenerator{text: "Développeur Sécurité Réseau Énergie Données Qualité"}
	m := send(newTestModel(gen), tea.WindowSizeMsg{Width: 36, Height: 40})
	m.ctrl.CompleteSubmit(m.state, gen.text, nil)
	m.refreshOutput()

	view := m.output.View()
	if !strings.Contains(view, "Développeur Sécurité Réseau") {
		t.Errorf("accented words wrapped early:\n%s", view)
	}
	for _, line := range strings.Split(view, "\n") {
		if w := lipgloss.Width(line); w > m.output.Width {
			t.Errorf("line %q is %d columns, viewport is %d", line, w, m.output.Width)
		}
	}
}

func TestOutputKeepsBlankLines(t *testing.T) {
	gen := &fakeGenerator{text: "Objective\n\nLead teams and ship products"}
	m := send(newTestModel(gen), tea.WindowSizeMsg{Width: 80, Height: 40})
	m.ctrl.CompleteSubmit(m.state, gen.text, nil)
	m.refreshOutput()

	lines := strings.Split(m.output.View(), "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "Objective" || strings.TrimSpace(lines[1]) != "" {
		t.Errorf("paragraph break lost:\n%s", m.output.View())
	}
}
