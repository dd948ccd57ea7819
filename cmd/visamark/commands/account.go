// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/visamark/visamark/cmd/visamark/cli"
)

type accountUpdateParams struct {
	FirstName string `flag:"first-name" desc:"new first name"`
	LastName  string `flag:"last-name"  desc:"new last name"`
	Phone     string `flag:"phone"      desc:"new phone number"`
}

// AccountCommand returns the "account" command group for the account
// itself (as opposed to the applicant profile).
func AccountCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "account",
		Summary: "Manage your account",
		Subcommands: []*cli.Command{
			accountUpdateCommand(logger),
			accountPasswordCommand(logger),
			accountDeleteCommand(logger),
		},
	}
}

func accountUpdateCommand(logger *slog.Logger) *cli.Command {
	var params accountUpdateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Update account details",
		Usage:   "visamark account update [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("account update", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			fields := map[string]any{}
			if params.FirstName != "" {
				fields["firstName"] = params.FirstName
			}
			if params.LastName != "" {
				fields["lastName"] = params.LastName
			}
			if params.Phone != "" {
				fields["phone"] = params.Phone
			}
			if len(fields) == 0 {
				return cli.Validation("nothing to change — pass at least one of --first-name, --last-name, --phone")
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			identity, err := session.UpdateAccount(ctx, fields)
			if err != nil {
				return cli.FromAPI(err)
			}

			// Keep the stored session's identity in sync.
			stored, loadErr := cli.LoadStoredSession()
			if loadErr == nil {
				stored.User = identity
				if err := cli.SaveStoredSession(stored); err != nil {
					logger.Warn("persisting updated identity failed", "error", err)
				}
			}

			fmt.Fprintf(os.Stderr, "Account updated: %s %s <%s>\n", identity.FirstName, identity.LastName, identity.Email)
			return nil
		},
	}
}

func accountPasswordCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "password",
		Summary: "Change your password",
		Usage:   "visamark account password",
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			current, err := cli.ReadPassword("Current password: ")
			if err != nil {
				return cli.Internal("read password: %w", err)
			}
			next, err := cli.ReadPassword("New password: ")
			if err != nil {
				return cli.Internal("read password: %w", err)
			}
			confirmation, err := cli.ReadPassword("Confirm new password: ")
			if err != nil {
				return cli.Internal("read password: %w", err)
			}
			if next != confirmation {
				return cli.Validation("passwords do not match")
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if err := session.ChangePassword(ctx, current, next); err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintln(os.Stderr, "Password changed.")
			return nil
		},
	}
}

func accountDeleteCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Permanently delete your account",
		Description: `Permanently delete the account and everything attached to it:
profile, documents, assessments, and applications. This cannot be undone.`,
		Usage: "visamark account delete",
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			fmt.Fprint(os.Stderr, "This permanently deletes your account and all data. Type \"delete\" to confirm: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return cli.Internal("reading confirmation: %w", err)
			}
			if strings.TrimSpace(line) != "delete" {
				fmt.Fprintln(os.Stderr, "Aborted.")
				return nil
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if err := session.DeleteAccount(ctx); err != nil {
				return cli.FromAPI(err)
			}
			if err := cli.DeleteStoredSession(); err != nil {
				logger.Warn("removing session file failed", "error", err)
			}
			fmt.Fprintln(os.Stderr, "Account deleted.")
			return nil
		},
	}
}
