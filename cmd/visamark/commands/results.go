// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/visamark/visamark/cmd/visamark/cli"
	"github.com/visamark/visamark/tui"
)

type resultsParams struct {
	Mine bool `flag:"mine,m" desc:"show your latest completed assessment"`
}

// ResultsCommand returns the "results" command for viewing a scored
// assessment.
func ResultsCommand(logger *slog.Logger) *cli.Command {
	var params resultsParams

	return &cli.Command{
		Name:    "results",
		Summary: "View an assessment result",
		Description: `View a scored assessment result.

Given a session ID, fetches that specific result. With --mine, fetches your
latest completed assessment. Without either, nothing is fetched — take an
assessment first with "visamark assess".`,
		Usage: "visamark results [session-id] [flags]",
		Examples: []cli.Example{
			{
				Description: "Show your latest result",
				Command:     "visamark results --mine",
			},
			{
				Description: "Show a specific result",
				Command:     "visamark results session_8f14e45f-ceea-467f-a0f9-d1c0a2b3c4d5",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("results", &params)
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument: %s", args[1])
			}
			if len(args) == 0 && !params.Mine {
				// No result to look up: do not touch the network.
				return cli.Validation("no assessment session given\n\nTake an assessment with \"visamark assess\", or pass --mine for your latest result.")
			}
			if len(args) == 1 && params.Mine {
				return cli.Validation("give either a session ID or --mine, not both")
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if params.Mine {
				result, err := session.MyAssessment(ctx)
				if err != nil {
					return cli.FromAPI(err)
				}
				if result == nil {
					return cli.NotFound("no completed assessment yet — take one with \"visamark assess\"")
				}
				fmt.Print(tui.RenderResult(result))
				return nil
			}

			result, err := session.Result(ctx, args[0])
			if err != nil {
				return cli.FromAPI(err)
			}
			fmt.Print(tui.RenderResult(result))
			return nil
		},
	}
}
