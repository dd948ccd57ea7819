// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete visamark CLI command tree.
package commands

import (
	"fmt"

	"github.com/visamark/visamark/cmd/visamark/cli"
	"github.com/visamark/visamark/lib/version"
)

// Root builds and returns the complete visamark CLI command tree.
func Root() *cli.Command {
	logger := cli.NewCommandLogger()

	return &cli.Command{
		Name: "visamark",
		Description: `Visamark: visa eligibility assessment and application tracking.

Take an eligibility assessment for your migration route, manage your
applicant profile and documents, and follow your applications as they
move through review.`,
		Subcommands: []*cli.Command{
			cli.LoginCommand(logger),
			cli.RegisterCommand(logger),
			cli.LogoutCommand(logger),
			cli.WhoAmICommand(logger),
			AssessCommand(logger),
			ResultsCommand(logger),
			ProfileCommand(logger),
			DocumentsCommand(logger),
			FamilyCommand(logger),
			ApplicationsCommand(logger),
			SettingsCommand(logger),
			AccountCommand(logger),
			WatchCommand(logger),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("visamark %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Take an eligibility assessment (no account needed)",
				Command:     "visamark assess",
			},
			{
				Description: "Create an account",
				Command:     "visamark register maria@example.com --first-name Maria --last-name Santos",
			},
			{
				Description: "View your latest assessment result",
				Command:     "visamark results --mine",
			},
			{
				Description: "Upload a passport scan",
				Command:     "visamark documents upload passport ./passport.pdf",
			},
			{
				Description: "Follow your applications in real time",
				Command:     "visamark watch",
			},
		},
	}
}
