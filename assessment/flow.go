// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

// Package assessment implements the eligibility assessment wizard's
// state machine: country selection, a cursor over a dynamic question
// set, answer collection, and assembly of the atomic submission
// payload. The package is pure state — all network I/O (question
// fetch, submission, result retrieval) belongs to the caller, which
// feeds results back into the Flow.
package assessment

import (
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/visamark/visamark/api"
)

// Stage identifies the wizard's current state.
type Stage int

const (
	// StageCountries is the initial state: choosing the origin and
	// destination country pair.
	StageCountries Stage = iota
	// StageQuestions is the question loop: a zero-based cursor over
	// the fetched question list.
	StageQuestions
	// StageNoQuestions is the terminal display state entered when the
	// platform returns an empty question set for the chosen pair. Not
	// an error.
	StageNoQuestions
	// StageDone is reached after a successful submission.
	StageDone
)

// ErrCountriesRequired is returned by SelectCountries when either
// country is missing; the flow stays in StageCountries.
var ErrCountriesRequired = errors.New("assessment: both origin and destination countries are required")

// Flow is the assessment wizard state machine.
//
// Lifecycle: NewFlow → SelectCountries → SetQuestions → Answer/Advance/
// Retreat → (Advance at the last question signals submission) →
// Submission → Complete. A failed submission leaves the cursor at the
// last index so the user can retry by advancing again.
//
// Flow is not safe for concurrent use; the wizard drives it from a
// single event loop.
type Flow struct {
	stage       Stage
	origin      string
	destination string
	questions   []api.Question
	responses   []api.Response
	cursor      int
}

// NewFlow creates a Flow in StageCountries.
func NewFlow() *Flow {
	return &Flow{stage: StageCountries}
}

// Stage returns the wizard's current stage.
func (f *Flow) Stage() Stage { return f.stage }

// Origin returns the selected origin country code.
func (f *Flow) Origin() string { return f.origin }

// Destination returns the selected destination country code.
func (f *Flow) Destination() string { return f.destination }

// SelectCountries records the country pair. Both must be non-empty;
// otherwise ErrCountriesRequired is returned and the flow stays in
// StageCountries. On success the caller fetches the question set for
// the pair and hands it to SetQuestions.
func (f *Flow) SelectCountries(origin, destination string) error {
	if origin == "" || destination == "" {
		return ErrCountriesRequired
	}
	f.origin = origin
	f.destination = destination
	return nil
}

// SetQuestions installs the fetched question set and initializes one
// response per question with a default false answer. The response
// list's length and ordering always match the question list. An empty
// set moves the flow to StageNoQuestions.
func (f *Flow) SetQuestions(questions []api.Question) {
	f.questions = questions
	f.cursor = 0

	if len(questions) == 0 {
		f.responses = nil
		f.stage = StageNoQuestions
		return
	}

	f.responses = make([]api.Response, len(questions))
	for index, question := range questions {
		f.responses[index] = api.Response{
			QuestionID: question.ID,
			Question:   question.Text,
			Answer:     false,
			Weight:     question.Weight,
		}
	}
	f.stage = StageQuestions
}

// Answer overwrites the answer of the response matching questionID.
// Responses for all other questions are untouched, the cursor does
// not move, and responses are never added or removed. Returns false
// when no response matches.
func (f *Flow) Answer(questionID string, value bool) bool {
	for index := range f.responses {
		if f.responses[index].QuestionID == questionID {
			f.responses[index].Answer = value
			return true
		}
	}
	return false
}

// Advance moves the cursor forward. At the last index the cursor
// stays put and Advance returns true: the wizard submits instead of
// moving out of range.
func (f *Flow) Advance() (submit bool) {
	if f.cursor < len(f.questions)-1 {
		f.cursor++
		return false
	}
	return true
}

// Retreat moves the cursor backward. No-op at cursor zero.
func (f *Flow) Retreat() {
	if f.cursor > 0 {
		f.cursor--
	}
}

// Cursor returns the zero-based position in the question list.
func (f *Flow) Cursor() int { return f.cursor }

// Question returns the question under the cursor.
func (f *Flow) Question() api.Question { return f.questions[f.cursor] }

// Questions returns the installed question list.
func (f *Flow) Questions() []api.Question { return f.questions }

// Responses returns the response list. Callers must not reorder or
// resize it.
func (f *Flow) Responses() []api.Response { return f.responses }

// Response returns the response under the cursor.
func (f *Flow) Response() api.Response { return f.responses[f.cursor] }

// Progress returns the display progress percentage:
// 100 * (cursor+1) / total, rounded. Zero when no questions are
// loaded. Monotonically non-decreasing as the user advances.
func (f *Flow) Progress() int {
	if len(f.questions) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(f.cursor+1) / float64(len(f.questions))))
}

// Submission bundles the country pair and the full response list into
// one atomic submission with a freshly generated session ID. Called
// when Advance signals submission; a failed send leaves the flow
// unchanged so the user can retry.
func (f *Flow) Submission() api.Submission {
	return api.Submission{
		SessionID:   NewSessionID(),
		FromCountry: f.origin,
		ToCountry:   f.destination,
		Responses:   f.responses,
	}
}

// Complete marks the flow finished after a successful submission.
func (f *Flow) Complete() {
	f.stage = StageDone
}

// Restart returns the flow to StageCountries with all question state
// cleared. Used by the retake affordance; the next submission gets a
// new session ID.
func (f *Flow) Restart() {
	*f = Flow{stage: StageCountries}
}

// NewSessionID generates a client-side assessment session identifier.
// Random UUIDs rather than wall-clock timestamps, so rapid repeated
// submissions from the same client cannot collide.
func NewSessionID() string {
	return "session_" + uuid.NewString()
}
