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

	"github.com/visamark/visamark/cmd/visamark/cli"
)

type applicationsParams struct {
	Status  string `flag:"status"  desc:"only show applications with this status (draft, submitted, under_review, approved, rejected)"`
	History bool   `flag:"history" desc:"include each application's status history"`
}

// ApplicationsCommand returns the "applications" command for listing
// visa applications and their processing status.
func ApplicationsCommand(logger *slog.Logger) *cli.Command {
	var params applicationsParams

	return &cli.Command{
		Name:    "applications",
		Summary: "List your visa applications",
		Usage:   "visamark applications [flags]",
		Examples: []cli.Example{
			{
				Description: "List everything",
				Command:     "visamark applications",
			},
			{
				Description: "Only applications under review, with history",
				Command:     "visamark applications --status under_review --history",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("applications", &params)
		},
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

			applications, err := session.Applications(ctx)
			if err != nil {
				return cli.FromAPI(err)
			}

			if params.Status != "" {
				filtered := applications[:0]
				for _, application := range applications {
					if application.Status == params.Status {
						filtered = append(filtered, application)
					}
				}
				applications = filtered
			}
			if len(applications) == 0 {
				fmt.Println("No applications.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tVISA\tDESTINATION\tSTATUS\tSUBMITTED")
			for _, application := range applications {
				submitted := ""
				if !application.SubmittedAt.IsZero() {
					submitted = application.SubmittedAt.Format("2006-01-02")
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					application.ID, application.VisaType, application.ToCountry,
					application.Status, submitted)
			}
			if err := writer.Flush(); err != nil {
				return err
			}

			if params.History {
				for _, application := range applications {
					if len(application.StatusHistory) == 0 {
						continue
					}
					fmt.Printf("\n%s:\n", application.ID)
					for _, change := range application.StatusHistory {
						line := fmt.Sprintf("  %s  %s", change.ChangedAt.Format("2006-01-02 15:04"), change.Status)
						if change.Note != "" {
							line += "  — " + change.Note
						}
						fmt.Println(line)
					}
				}
			}
			return nil
		},
	}
}
