// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the visamark CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/visamark/main.go and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples. Unknown subcommands get a closest-match suggestion
// via Levenshtein edit distance.
//
// Authentication state lives in a [StoredSession] file at
// ~/.config/visamark/session.json, written by the login and register
// commands. [Connect] turns the stored state into a live [api.Session]
// whose token rotation is persisted back to the file and whose
// invalidation (a refresh the server rejects) deletes it.
//
// A questionnaire completed while signed out is kept as a
// [PendingAssessment] next to the session file and submitted
// automatically on the next login or registration.
package cli
