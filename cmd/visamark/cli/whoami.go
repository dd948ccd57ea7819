// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// WhoAmICommand returns the "whoami" command, which verifies the
// stored session against the server and prints the account it belongs
// to. A stale access token is refreshed transparently, so this doubles
// as a health check for the saved session.
func WhoAmICommand(logger *slog.Logger) *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the signed-in account",
		Usage:   "visamark whoami",
		Run: func(args []string) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}

			session, err := Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			identity, err := session.WhoAmI(ctx)
			if err != nil {
				return FromAPI(err)
			}

			fmt.Printf("%s %s <%s>\n", identity.FirstName, identity.LastName, identity.Email)
			if identity.Role != "" {
				fmt.Printf("Role: %s\n", identity.Role)
			}
			return nil
		},
	}
}
