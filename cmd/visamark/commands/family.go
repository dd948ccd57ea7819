// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/visamark/visamark/api"
	"github.com/visamark/visamark/cmd/visamark/cli"
)

type familyMemberParams struct {
	FirstName    string `flag:"first-name"   desc:"first name"`
	LastName     string `flag:"last-name"    desc:"last name"`
	Relationship string `flag:"relationship" desc:"relationship to you (spouse, child, ...)"`
	DateOfBirth  string `flag:"date-of-birth" desc:"date of birth (YYYY-MM-DD)"`
	Nationality  string `flag:"nationality"  desc:"nationality"`
}

// FamilyCommand returns the "family" command group for dependents on
// the applicant profile.
func FamilyCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "family",
		Summary: "Manage family members on your profile",
		Subcommands: []*cli.Command{
			familyListCommand(logger),
			familyAddCommand(logger),
			familyUpdateCommand(logger),
			familyRemoveCommand(logger),
		},
	}
}

func familyListCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "List family members",
		Usage:   "visamark family list",
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			members, err := session.FamilyMembers(ctx)
			if err != nil {
				return cli.FromAPI(err)
			}
			if len(members) == 0 {
				fmt.Println("No family members on file.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tRELATIONSHIP\tBORN\tNATIONALITY")
			for _, member := range members {
				fmt.Fprintf(writer, "%s\t%s %s\t%s\t%s\t%s\n",
					member.ID, member.FirstName, member.LastName,
					member.Relationship, member.DateOfBirth, member.Nationality)
			}
			return writer.Flush()
		},
	}
}

func familyAddCommand(logger *slog.Logger) *cli.Command {
	var params familyMemberParams

	return &cli.Command{
		Name:    "add",
		Summary: "Add a family member",
		Usage:   "visamark family add --first-name <name> --last-name <name> --relationship <rel> [flags]",
		Examples: []cli.Example{
			{
				Description: "Add a spouse",
				Command:     "visamark family add --first-name Jo --last-name Santos --relationship spouse --date-of-birth 1991-04-02",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("family add", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.FirstName == "" || params.LastName == "" || params.Relationship == "" {
				return cli.Validation("--first-name, --last-name, and --relationship are required")
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			member, err := session.AddFamilyMember(ctx, api.FamilyMember{
				FirstName:    params.FirstName,
				LastName:     params.LastName,
				Relationship: params.Relationship,
				DateOfBirth:  params.DateOfBirth,
				Nationality:  params.Nationality,
			})
			if err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintf(os.Stderr, "Added %s %s (id %s).\n", member.FirstName, member.LastName, member.ID)
			return nil
		},
	}
}

func familyUpdateCommand(logger *slog.Logger) *cli.Command {
	var params familyMemberParams

	return &cli.Command{
		Name:    "update",
		Summary: "Update a family member",
		Usage:   "visamark family update <id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("family update", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("member ID is required\n\nUsage: visamark family update <id> [flags]")
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			// Fetch the current record so unset flags keep their
			// existing values instead of blanking them.
			members, err := session.FamilyMembers(ctx)
			if err != nil {
				return cli.FromAPI(err)
			}
			var member *api.FamilyMember
			for i := range members {
				if members[i].ID == args[0] {
					member = &members[i]
					break
				}
			}
			if member == nil {
				return cli.NotFound("no family member with ID %s", args[0])
			}

			if params.FirstName != "" {
				member.FirstName = params.FirstName
			}
			if params.LastName != "" {
				member.LastName = params.LastName
			}
			if params.Relationship != "" {
				member.Relationship = params.Relationship
			}
			if params.DateOfBirth != "" {
				member.DateOfBirth = params.DateOfBirth
			}
			if params.Nationality != "" {
				member.Nationality = params.Nationality
			}

			if err := session.UpdateFamilyMember(ctx, *member); err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintln(os.Stderr, "Updated.")
			return nil
		},
	}
}

func familyRemoveCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "remove",
		Summary: "Remove a family member",
		Usage:   "visamark family remove <id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("member ID is required\n\nUsage: visamark family remove <id>")
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if err := session.RemoveFamilyMember(ctx, args[0]); err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintln(os.Stderr, "Removed.")
			return nil
		},
	}
}
