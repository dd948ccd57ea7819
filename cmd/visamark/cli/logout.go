// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// LogoutCommand returns the "logout" command. It tells the server to
// revoke the refresh token, then removes the local session file. The
// local file is removed even when the server call fails — the user
// asked to be signed out, and a dead token on the server is the
// server's problem.
func LogoutCommand(logger *slog.Logger) *Command {
	return &Command{
		Name:    "logout",
		Summary: "Sign out and remove the saved session",
		Usage:   "visamark logout",
		Run: func(args []string) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}

			session, err := Connect(logger)
			if err != nil {
				// No session to revoke; just make sure no file lingers.
				if removeErr := DeleteStoredSession(); removeErr != nil {
					return Internal("%v", removeErr)
				}
				fmt.Fprintln(os.Stderr, "Not signed in.")
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			session.Logout(ctx)
			if err := DeleteStoredSession(); err != nil {
				return Internal("%v", err)
			}
			fmt.Fprintln(os.Stderr, "Signed out.")
			return nil
		},
	}
}
