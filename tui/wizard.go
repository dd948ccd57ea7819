// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/visamark/visamark/api"
	"github.com/visamark/visamark/assessment"
)

// requestTimeout bounds the wizard's question fetch and submission
// calls.
const requestTimeout = 30 * time.Second

// screen identifies which wizard screen is visible. The underlying
// assessment.Flow tracks the semantic stage; screens additionally
// cover the transient states (loading, submitting) that only the UI
// cares about.
type screen int

const (
	screenOrigin screen = iota
	screenDestination
	screenLoading
	screenQuestions
	screenNoQuestions
	screenSubmitting
)

// OutcomeKind classifies how the wizard ended.
type OutcomeKind int

const (
	// OutcomeAborted means the user quit before finishing.
	OutcomeAborted OutcomeKind = iota
	// OutcomeCompleted means the questionnaire was finished but not
	// submitted (no submit callback — the user is signed out). The
	// Submission field carries the answers.
	OutcomeCompleted
	// OutcomeSubmitted means the submission was accepted; SessionID
	// identifies the scored result.
	OutcomeSubmitted
)

// Outcome is the wizard's final state, read by the caller after the
// program exits.
type Outcome struct {
	Kind       OutcomeKind
	SessionID  string
	Submission api.Submission
}

// WizardConfig configures the assessment wizard.
type WizardConfig struct {
	// From and To preselect the country pair and skip the pickers.
	// Either both or neither must be set.
	From string
	To   string

	// FetchQuestions loads the question set for a country pair.
	FetchQuestions func(ctx context.Context, from, to string) ([]api.Question, error)

	// Submit sends the finished submission and returns the session ID
	// of the scored result. When nil the wizard ends with
	// OutcomeCompleted instead of submitting.
	Submit func(ctx context.Context, submission api.Submission) (string, error)
}

type questionsMsg struct {
	generation int
	questions  []api.Question
	err        error
}

type submitResultMsg struct {
	generation int
	sessionID  string
	err        error
}

// Wizard is the bubbletea model for the assessment questionnaire.
type Wizard struct {
	config WizardConfig
	keys   KeyMap
	theme  Theme

	flow   *assessment.Flow
	screen screen

	// cursor indexes the visible country picker.
	cursor int

	// origin holds the picked origin code until the destination pick
	// commits the pair to the flow.
	origin string

	// generation guards against stale fetch and submit results after
	// the user navigates back and forth.
	generation int

	// pendingSubmission is the payload in flight during
	// screenSubmitting. A retry after a failed send reuses the flow,
	// not this copy, so each attempt gets a fresh session ID.
	pendingSubmission api.Submission

	spinner  spinner.Model
	progress progress.Model

	notice  string
	outcome Outcome
	width   int
}

// NewWizard creates the wizard model.
func NewWizard(config WizardConfig) Wizard {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	wizard := Wizard{
		config:   config,
		keys:     DefaultKeyMap,
		theme:    DefaultTheme,
		flow:     assessment.NewFlow(),
		screen:   screenOrigin,
		spinner:  spin,
		progress: progress.New(progress.WithDefaultGradient()),
		width:    80,
	}

	if config.From != "" && config.To != "" {
		wizard.flow.SelectCountries(config.From, config.To)
		wizard.screen = screenLoading
	}
	return wizard
}

// Outcome returns how the wizard ended. Meaningful only after the
// program has finished.
func (w Wizard) Outcome() Outcome { return w.outcome }

func (w Wizard) Init() tea.Cmd {
	if w.screen == screenLoading {
		return tea.Batch(w.spinner.Tick, w.fetchQuestions())
	}
	return nil
}

func (w Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.progress.Width = min(msg.Width-8, 60)
		return w, nil

	case spinner.TickMsg:
		if w.screen == screenLoading || w.screen == screenSubmitting {
			var cmd tea.Cmd
			w.spinner, cmd = w.spinner.Update(msg)
			return w, cmd
		}
		return w, nil

	case questionsMsg:
		if msg.generation != w.generation || w.screen != screenLoading {
			return w, nil
		}
		if msg.err != nil {
			w.notice = api.UserMessage(msg.err)
			w.screen = screenDestination
			return w, nil
		}
		w.flow.SetQuestions(msg.questions)
		if w.flow.Stage() == assessment.StageNoQuestions {
			w.screen = screenNoQuestions
		} else {
			w.screen = screenQuestions
		}
		return w, nil

	case submitResultMsg:
		if msg.generation != w.generation || w.screen != screenSubmitting {
			return w, nil
		}
		if msg.err != nil {
			// The flow is untouched: the cursor is still at the last
			// question, so the user can adjust and submit again.
			w.notice = api.UserMessage(msg.err)
			w.screen = screenQuestions
			return w, nil
		}
		w.flow.Complete()
		w.outcome = Outcome{Kind: OutcomeSubmitted, SessionID: msg.sessionID}
		return w, tea.Quit

	case tea.KeyMsg:
		return w.handleKey(msg)
	}
	return w, nil
}

func (w Wizard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, w.keys.Quit) {
		w.outcome = Outcome{Kind: OutcomeAborted}
		return w, tea.Quit
	}

	switch w.screen {
	case screenOrigin:
		return w.handlePickerKey(msg, assessment.Origins)
	case screenDestination:
		return w.handlePickerKey(msg, assessment.Destinations)
	case screenQuestions:
		return w.handleQuestionKey(msg)
	case screenNoQuestions:
		if key.Matches(msg, w.keys.Back) {
			w.screen = screenDestination
			w.cursor = 0
			return w, nil
		}
	case screenLoading, screenSubmitting:
		// Input is disabled while a request is in flight; only quit
		// (handled above) gets through.
	}
	return w, nil
}

func (w Wizard) handlePickerKey(msg tea.KeyMsg, countries []assessment.Country) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Up):
		if w.cursor > 0 {
			w.cursor--
		}
	case key.Matches(msg, w.keys.Down):
		if w.cursor < len(countries)-1 {
			w.cursor++
		}
	case key.Matches(msg, w.keys.Back):
		if w.screen == screenDestination {
			w.screen = screenOrigin
			w.cursor = 0
		}
	case key.Matches(msg, w.keys.Select):
		selected := countries[w.cursor].Code
		if w.screen == screenOrigin {
			w.origin = selected
			w.screen = screenDestination
			w.cursor = 0
			return w, nil
		}
		if err := w.flow.SelectCountries(w.origin, selected); err != nil {
			w.notice = err.Error()
			return w, nil
		}
		w.notice = ""
		w.screen = screenLoading
		w.generation++
		return w, tea.Batch(w.spinner.Tick, w.fetchQuestions())
	}
	return w, nil
}

func (w Wizard) handleQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Yes):
		w.flow.Answer(w.flow.Question().ID, true)
		return w.advance()
	case key.Matches(msg, w.keys.No):
		w.flow.Answer(w.flow.Question().ID, false)
		return w.advance()
	case key.Matches(msg, w.keys.Toggle):
		w.flow.Answer(w.flow.Question().ID, !w.flow.Response().Answer)
	case key.Matches(msg, w.keys.Select):
		return w.advance()
	case key.Matches(msg, w.keys.Back):
		if w.flow.Cursor() == 0 {
			w.flow.Restart()
			w.screen = screenOrigin
			w.cursor = 0
			w.generation++
			return w, nil
		}
		w.flow.Retreat()
	}
	return w, nil
}

func (w Wizard) advance() (tea.Model, tea.Cmd) {
	w.notice = ""
	if !w.flow.Advance() {
		return w, nil
	}

	submission := w.flow.Submission()
	if w.config.Submit == nil {
		w.flow.Complete()
		w.outcome = Outcome{Kind: OutcomeCompleted, Submission: submission}
		return w, tea.Quit
	}

	w.pendingSubmission = submission
	w.screen = screenSubmitting
	w.generation++
	return w, tea.Batch(w.spinner.Tick, w.submit(submission))
}

func (w Wizard) fetchQuestions() tea.Cmd {
	generation := w.generation
	from, to := w.flow.Origin(), w.flow.Destination()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		questions, err := w.config.FetchQuestions(ctx, from, to)
		return questionsMsg{generation: generation, questions: questions, err: err}
	}
}

func (w Wizard) submit(submission api.Submission) tea.Cmd {
	generation := w.generation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sessionID, err := w.config.Submit(ctx, submission)
		return submitResultMsg{generation: generation, sessionID: sessionID, err: err}
	}
}

func (w Wizard) View() string {
	var body string
	switch w.screen {
	case screenOrigin:
		body = w.viewPicker("Where are you moving from?", assessment.Origins)
	case screenDestination:
		body = w.viewPicker("Where do you want to go?", assessment.Destinations)
	case screenLoading:
		body = fmt.Sprintf("%s Loading questions for %s → %s...",
			w.spinner.View(), w.flow.Origin(), w.flow.Destination())
	case screenQuestions:
		body = w.viewQuestion()
	case screenNoQuestions:
		body = lipgloss.NewStyle().Foreground(w.theme.NormalText).Render(
			fmt.Sprintf("No assessment questions are available for %s → %s yet.\n\nPress esc to pick another route, or q to quit.",
				w.flow.Origin(), w.flow.Destination()))
	case screenSubmitting:
		body = fmt.Sprintf("%s Submitting your answers...", w.spinner.View())
	}

	header := lipgloss.NewStyle().
		Foreground(w.theme.HeaderForeground).
		Bold(true).
		Render("Visa Eligibility Assessment")

	sections := []string{header, "", body}
	if w.notice != "" {
		notice := lipgloss.NewStyle().Foreground(w.theme.RiskHigh).Render(w.notice)
		sections = append(sections, "", notice)
	}
	sections = append(sections, "", w.viewHelp())
	return strings.Join(sections, "\n") + "\n"
}

func (w Wizard) viewPicker(title string, countries []assessment.Country) string {
	var builder strings.Builder
	builder.WriteString(lipgloss.NewStyle().Foreground(w.theme.NormalText).Render(title))
	builder.WriteString("\n\n")

	selectedStyle := lipgloss.NewStyle().
		Background(w.theme.SelectedBackground).
		Foreground(w.theme.SelectedForeground)
	normalStyle := lipgloss.NewStyle().Foreground(w.theme.NormalText)

	for index, country := range countries {
		line := fmt.Sprintf("  %s %s (%s)", country.Flag, country.Name, country.Code)
		if index == w.cursor {
			line = selectedStyle.Render("▸" + line[1:])
		} else {
			line = normalStyle.Render(line)
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	return builder.String()
}

func (w Wizard) viewQuestion() string {
	question := w.flow.Question()
	response := w.flow.Response()

	var builder strings.Builder

	counter := fmt.Sprintf("Question %d of %d", w.flow.Cursor()+1, len(w.flow.Questions()))
	builder.WriteString(lipgloss.NewStyle().Foreground(w.theme.FaintText).Render(counter))
	builder.WriteString("\n")
	builder.WriteString(w.progress.ViewAs(float64(w.flow.Progress()) / 100))
	builder.WriteString("\n\n")

	if question.Category != "" {
		builder.WriteString(lipgloss.NewStyle().Foreground(w.theme.FaintText).Render("[" + question.Category + "]"))
		builder.WriteString("\n")
	}
	builder.WriteString(lipgloss.NewStyle().Foreground(w.theme.NormalText).Bold(true).Render(question.Text))
	builder.WriteString("\n")
	if question.HelpText != "" {
		builder.WriteString(lipgloss.NewStyle().Foreground(w.theme.HelpText).Render(question.HelpText))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	yes := "  Yes"
	no := "  No"
	if response.Answer {
		yes = lipgloss.NewStyle().Foreground(w.theme.AnswerYes).Bold(true).Render("▸ Yes")
		no = lipgloss.NewStyle().Foreground(w.theme.FaintText).Render(no)
	} else {
		no = lipgloss.NewStyle().Foreground(w.theme.AnswerNo).Bold(true).Render("▸ No")
		yes = lipgloss.NewStyle().Foreground(w.theme.FaintText).Render(yes)
	}
	builder.WriteString(yes + "\n" + no + "\n")
	return builder.String()
}

func (w Wizard) viewHelp() string {
	style := lipgloss.NewStyle().Foreground(w.theme.HelpText)
	switch w.screen {
	case screenOrigin, screenDestination:
		return style.Render("j/k move · enter select · esc back · q quit")
	case screenQuestions:
		last := w.flow.Cursor() == len(w.flow.Questions())-1
		if last {
			return style.Render("y yes · n no · space toggle · enter submit · esc back · q quit")
		}
		return style.Render("y yes · n no · space toggle · enter next · esc back · q quit")
	default:
		return style.Render("q quit")
	}
}
