// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui implements visamark's terminal user interface: the
// bubbletea assessment wizard and static renderers for scored
// results.
//
// The wizard ([Wizard]) owns only presentation state. The semantic
// questionnaire state — country pair, question cursor, answers,
// submission assembly — lives in assessment.Flow; the wizard drives
// it from the bubbletea event loop and runs all network calls as
// tea.Cmd functions so the UI stays responsive. A generation counter
// discards responses from requests the user has since navigated away
// from, and input is disabled while a fetch or submission is in
// flight so a slow server cannot be double-submitted.
package tui
