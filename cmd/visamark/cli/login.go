// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/visamark/visamark/api"
	"github.com/visamark/visamark/lib/config"
)

// loginParams holds the parameters for the login command.
type loginParams struct {
	BaseURL      string `flag:"base-url"      desc:"API base URL (default: from config)"`
	PasswordFile string `flag:"password-file" desc:"path to file containing the password, or - to read stdin (default: prompt)"`
}

// LoginCommand returns the "login" command. It signs in, saves the
// session to the well-known path (~/.config/visamark/session.json),
// and submits any questionnaire completed before signing in.
// Subsequent commands load the session transparently.
func LoginCommand(logger *slog.Logger) *Command {
	var params loginParams

	return &Command{
		Name:    "login",
		Summary: "Sign in and save the session locally",
		Description: `Sign in to the platform and save the session locally.

After login, commands like "visamark results" and "visamark profile" use the
saved session transparently — no flags needed. The session file is stored at
~/.config/visamark/session.json (or $VISAMARK_SESSION_FILE if set) with mode
0600 since it contains tokens.

If you completed an eligibility assessment before signing in, it is
submitted automatically as part of login.`,
		Usage: "visamark login <email> [flags]",
		Examples: []Example{
			{
				Description: "Sign in interactively (prompts for password)",
				Command:     "visamark login maria@example.com",
			},
			{
				Description: "Sign in against a specific server",
				Command:     "visamark login maria@example.com --base-url https://api.visamark.example/api/v1",
			},
		},
		Flags: func() *pflag.FlagSet {
			return FlagsFromParams("login", &params)
		},
		Run: func(args []string) error {
			if len(args) < 1 {
				return Validation("email is required\n\nUsage: visamark login <email> [flags]")
			}
			email := args[0]
			if len(args) > 1 {
				return Validation("unexpected argument: %s", args[1])
			}

			password, err := readPassword("Password: ", params.PasswordFile)
			if err != nil {
				return Internal("read password: %w", err)
			}

			baseURL, err := resolveBaseURL(params.BaseURL)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client, err := api.NewClient(api.ClientConfig{BaseURL: baseURL, Logger: logger})
			if err != nil {
				return Internal("create client: %w", err)
			}

			session, err := client.Login(ctx, email, password)
			if err != nil {
				return FromAPI(err)
			}

			if err := saveLiveSession(session, baseURL); err != nil {
				return Internal("save session: %w", err)
			}

			identity := session.Identity()
			fmt.Fprintf(os.Stderr, "Signed in as %s %s <%s>\n", identity.FirstName, identity.LastName, identity.Email)
			fmt.Fprintf(os.Stderr, "Session saved to %s\n", SessionFilePath())

			submitPendingAssessment(ctx, session, logger)
			return nil
		},
	}
}

// resolveBaseURL returns the explicit flag value if given, otherwise
// the configured API base.
func resolveBaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := config.Load("")
	if err != nil {
		return "", Internal("load config: %w", err)
	}
	return cfg.API.BaseURL, nil
}

// saveLiveSession persists a freshly authenticated session and wires
// its persistence hooks, so token rotation during the rest of the
// command run is written back too.
func saveLiveSession(session *api.Session, baseURL string) error {
	pair := session.Credentials()
	stored := &StoredSession{
		User:         session.Identity(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		BaseURL:      baseURL,
	}
	if err := SaveStoredSession(stored); err != nil {
		return err
	}
	session.OnCredentialsChanged = func(pair api.TokenPair) {
		updated := *stored
		updated.AccessToken = pair.AccessToken
		updated.RefreshToken = pair.RefreshToken
		_ = SaveStoredSession(&updated)
	}
	session.OnInvalidate = func() { _ = DeleteStoredSession() }
	return nil
}

// submitPendingAssessment submits a questionnaire saved before the
// user signed in. Failures are reported but never fail the sign-in
// itself; the pending record is kept so a later command can retry.
func submitPendingAssessment(ctx context.Context, session *api.Session, logger *slog.Logger) {
	pending, err := LoadPendingAssessment()
	if err != nil {
		logger.Warn("reading pending assessment failed", "error", err)
		return
	}
	if pending == nil {
		return
	}

	existing, err := session.MyAssessment(ctx)
	if err != nil {
		logger.Warn("checking existing assessment failed", "error", err)
		return
	}
	if existing != nil {
		fmt.Fprintf(os.Stderr, "You already have a completed assessment (session %s); discarding the locally saved one.\n", existing.SessionID)
		if err := DeletePendingAssessment(); err != nil {
			logger.Warn("removing pending assessment failed", "error", err)
		}
		return
	}

	sessionID, err := session.Submit(ctx, pending.Submission)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not submit your saved assessment: %s\n", api.UserMessage(err))
		fmt.Fprintln(os.Stderr, "It is kept locally; run \"visamark assess\" to try again.")
		return
	}
	if err := DeletePendingAssessment(); err != nil {
		logger.Warn("removing pending assessment failed", "error", err)
	}
	fmt.Fprintf(os.Stderr, "Saved assessment submitted. View it with \"visamark results %s\".\n", sessionID)
}
