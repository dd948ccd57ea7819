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
)

type registerParams struct {
	FirstName    string `flag:"first-name"    desc:"first name (required)"`
	LastName     string `flag:"last-name"     desc:"last name (required)"`
	Phone        string `flag:"phone"         desc:"phone number"`
	BaseURL      string `flag:"base-url"      desc:"API base URL (default: from config)"`
	PasswordFile string `flag:"password-file" desc:"path to file containing the password, or - to read stdin (default: prompt)"`
}

// RegisterCommand returns the "register" command for creating an
// account. On success the new session is saved exactly as "login"
// does, and any questionnaire completed beforehand is submitted.
func RegisterCommand(logger *slog.Logger) *Command {
	var params registerParams

	return &Command{
		Name:    "register",
		Summary: "Create an account and sign in",
		Description: `Create a new account, sign in, and save the session locally.

The password is prompted twice for confirmation unless --password-file is
given. If you completed an eligibility assessment before registering, it is
submitted automatically once the account exists.`,
		Usage: "visamark register <email> --first-name <name> --last-name <name> [flags]",
		Examples: []Example{
			{
				Description: "Create an account",
				Command:     "visamark register maria@example.com --first-name Maria --last-name Santos",
			},
		},
		Flags: func() *pflag.FlagSet {
			return FlagsFromParams("register", &params)
		},
		Run: func(args []string) error {
			if len(args) < 1 {
				return Validation("email is required\n\nUsage: visamark register <email> [flags]")
			}
			email := args[0]
			if len(args) > 1 {
				return Validation("unexpected argument: %s", args[1])
			}
			if params.FirstName == "" || params.LastName == "" {
				return Validation("--first-name and --last-name are required")
			}

			password, err := readPassword("Password: ", params.PasswordFile)
			if err != nil {
				return Internal("read password: %w", err)
			}
			if params.PasswordFile == "" {
				confirmation, err := readPassword("Confirm password: ", "")
				if err != nil {
					return Internal("read password: %w", err)
				}
				if confirmation != password {
					return Validation("passwords do not match")
				}
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

			session, err := client.Register(ctx, api.RegisterRequest{
				Email:     email,
				Password:  password,
				FirstName: params.FirstName,
				LastName:  params.LastName,
				Phone:     params.Phone,
			})
			if err != nil {
				return FromAPI(err)
			}

			if err := saveLiveSession(session, baseURL); err != nil {
				return Internal("save session: %w", err)
			}

			identity := session.Identity()
			fmt.Fprintf(os.Stderr, "Account created for %s %s <%s>\n", identity.FirstName, identity.LastName, identity.Email)
			fmt.Fprintf(os.Stderr, "Session saved to %s\n", SessionFilePath())

			submitPendingAssessment(ctx, session, logger)
			return nil
		},
	}
}
