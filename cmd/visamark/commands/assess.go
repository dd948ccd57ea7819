// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/visamark/visamark/api"
	"github.com/visamark/visamark/assessment"
	"github.com/visamark/visamark/cmd/visamark/cli"
	"github.com/visamark/visamark/lib/config"
	"github.com/visamark/visamark/tui"
)

type assessParams struct {
	From    string `flag:"from"   desc:"origin country code (e.g. IN); skips the country picker"`
	To      string `flag:"to"     desc:"destination country code (e.g. CA); skips the country picker"`
	Retake  bool   `flag:"retake" desc:"start a new assessment even if you already completed one"`
	BaseURL string `flag:"base-url" desc:"API base URL (default: from config)"`
}

// AssessCommand returns the "assess" command: the interactive
// eligibility questionnaire. Works signed out — the finished
// questionnaire is saved locally and submitted on the next login or
// registration.
func AssessCommand(logger *slog.Logger) *cli.Command {
	var params assessParams

	return &cli.Command{
		Name:    "assess",
		Summary: "Take an eligibility assessment",
		Description: `Run the interactive eligibility questionnaire.

Pick your origin and destination country, answer the yes/no questions for
that route, and submit. Signed in, the result is available immediately via
"visamark results". Signed out, your answers are saved locally and
submitted automatically when you log in or register.`,
		Usage: "visamark assess [flags]",
		Examples: []cli.Example{
			{
				Description: "Start the wizard",
				Command:     "visamark assess",
			},
			{
				Description: "Skip the country picker",
				Command:     "visamark assess --from IN --to CA",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("assess", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return cli.Validation("the assessment wizard needs an interactive terminal")
			}
			if (params.From == "") != (params.To == "") {
				return cli.Validation("--from and --to must be given together")
			}
			if params.From != "" {
				if _, ok := assessment.OriginByCode(params.From); !ok {
					return cli.Validation("unknown origin country %q", params.From)
				}
				if _, ok := assessment.DestinationByCode(params.To); !ok {
					return cli.Validation("unknown destination country %q", params.To)
				}
			}

			// Signed in is optional here; a nil session means the
			// finished questionnaire is saved locally instead of
			// submitted.
			session, err := cli.Connect(logger)
			if err != nil {
				var commandErr *cli.CommandError
				if !errors.As(err, &commandErr) || commandErr.Category != cli.CategoryAuth {
					return err
				}
				session = nil
			}

			ctx := context.Background()

			if session != nil && !params.Retake {
				checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
				existing, err := session.MyAssessment(checkCtx)
				cancel()
				if err != nil {
					logger.Warn("checking existing assessment failed", "error", err)
				} else if existing != nil {
					fmt.Fprintln(os.Stderr, "You already have a completed assessment. Showing it; pass --retake to start over.")
					fmt.Print(tui.RenderResult(existing))
					return nil
				}
			}

			client, err := assessClient(session, params.BaseURL, logger)
			if err != nil {
				return err
			}

			wizard := tui.NewWizard(tui.WizardConfig{
				From: params.From,
				To:   params.To,
				FetchQuestions: func(ctx context.Context, from, to string) ([]api.Question, error) {
					return client.GuestQuestions(ctx, from, to)
				},
				Submit: wizardSubmit(session),
			})

			program := tea.NewProgram(wizard, tea.WithAltScreen())
			finalModel, err := program.Run()
			if err != nil {
				return cli.Internal("wizard failed: %w", err)
			}

			outcome := finalModel.(tui.Wizard).Outcome()
			switch outcome.Kind {
			case tui.OutcomeAborted:
				fmt.Fprintln(os.Stderr, "Assessment cancelled.")
				return nil

			case tui.OutcomeSubmitted:
				resultCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
				defer cancel()
				result, err := session.Result(resultCtx, outcome.SessionID)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Submitted (session %s), but fetching the result failed: %s\n",
						outcome.SessionID, api.UserMessage(err))
					fmt.Fprintf(os.Stderr, "Try \"visamark results %s\".\n", outcome.SessionID)
					return nil
				}
				fmt.Print(tui.RenderResult(result))
				return nil

			case tui.OutcomeCompleted:
				// Signed out: keep the answers for the next login.
				pending := &cli.PendingAssessment{
					Submission: outcome.Submission,
					SavedAt:    time.Now().UTC(),
				}
				if err := cli.SavePendingAssessment(pending); err != nil {
					return cli.Internal("save assessment: %w", err)
				}
				fmt.Fprintln(os.Stderr, "Assessment saved locally.")
				fmt.Fprintln(os.Stderr, "Run \"visamark register\" or \"visamark login\" to submit it and see your result.")
				return nil
			}
			return nil
		},
	}
}

// assessClient returns the API client used for fetching questions:
// the signed-in session's client when available, otherwise a fresh
// unauthenticated client (the question endpoints are public).
func assessClient(session *api.Session, baseURL string, logger *slog.Logger) (*api.Client, error) {
	if session != nil {
		return session.Client(), nil
	}
	if baseURL == "" {
		cfg, err := config.Load("")
		if err != nil {
			return nil, cli.Internal("load config: %w", err)
		}
		baseURL = cfg.API.BaseURL
	}
	client, err := api.NewClient(api.ClientConfig{BaseURL: baseURL, Logger: logger})
	if err != nil {
		return nil, cli.Internal("create client: %w", err)
	}
	return client, nil
}

// wizardSubmit returns the wizard's submit callback, or nil when
// signed out (the wizard then finishes without submitting).
func wizardSubmit(session *api.Session) func(context.Context, api.Submission) (string, error) {
	if session == nil {
		return nil
	}
	return func(ctx context.Context, submission api.Submission) (string, error) {
		return session.Submit(ctx, submission)
	}
}

