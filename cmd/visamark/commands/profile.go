// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/visamark/visamark/cmd/visamark/cli"
)

// ProfileCommand returns the "profile" command group.
func ProfileCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "profile",
		Summary: "View and edit your applicant profile",
		Subcommands: []*cli.Command{
			profileShowCommand(logger),
			profileUpdateCommand(logger),
		},
	}
}

func profileShowCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Print the profile as JSON",
		Usage:   "visamark profile show [section]",
		Examples: []cli.Example{
			{
				Description: "Print the whole profile",
				Command:     "visamark profile show",
			},
			{
				Description: "Print one section",
				Command:     "visamark profile show passport",
			},
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument: %s", args[1])
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			profile, err := session.Profile(ctx)
			if err != nil {
				return cli.FromAPI(err)
			}

			if len(args) == 1 {
				section, ok := profile.Sections[args[0]]
				if !ok {
					return cli.NotFound("profile has no section %q (have: %s)",
						args[0], strings.Join(sectionNames(profile.Sections), ", "))
				}
				return printIndented(section)
			}

			// Stable section order for humans and diffs.
			for _, name := range sectionNames(profile.Sections) {
				fmt.Printf("%s:\n", name)
				if err := printIndented(profile.Sections[name]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func profileUpdateCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "update",
		Summary: "Update one profile section",
		Description: `Update one profile section from a JSON document.

The JSON is given inline as the second argument, or read from a file with
the @path syntax. Only the named section changes; the rest of the profile
is untouched.`,
		Usage: "visamark profile update <section> <json|@file>",
		Examples: []cli.Example{
			{
				Description: "Update the contact section inline",
				Command:     `visamark profile update contact '{"phone": "+63 912 555 0111"}'`,
			},
			{
				Description: "Update the passport section from a file",
				Command:     "visamark profile update passport @passport.json",
			},
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return cli.Validation("section and JSON data are required\n\nUsage: visamark profile update <section> <json|@file>")
			}
			if len(args) > 2 {
				return cli.Validation("unexpected argument: %s", args[2])
			}
			section := args[0]

			raw := []byte(args[1])
			if strings.HasPrefix(args[1], "@") {
				var err error
				raw, err = os.ReadFile(args[1][1:])
				if err != nil {
					return cli.Validation("reading %s: %v", args[1][1:], err)
				}
			}
			var data map[string]any
			if err := json.Unmarshal(raw, &data); err != nil {
				return cli.Validation("section data is not valid JSON: %v", err)
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if err := session.UpdateProfileSection(ctx, section, data); err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintf(os.Stderr, "Updated %s.\n", section)
			return nil
		},
	}
}

func sectionNames(sections map[string]json.RawMessage) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printIndented(raw json.RawMessage) error {
	var buffer bytes.Buffer
	if err := json.Indent(&buffer, raw, "", "  "); err != nil {
		return cli.Internal("formatting response: %w", err)
	}
	fmt.Println(buffer.String())
	return nil
}
