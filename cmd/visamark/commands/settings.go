// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/visamark/visamark/api"
	"github.com/visamark/visamark/cmd/visamark/cli"
)

type notificationsParams struct {
	Email string `flag:"email" desc:"email notifications on/off (true or false)"`
	SMS   string `flag:"sms"   desc:"SMS notifications on/off (true or false)"`
	Push  string `flag:"push"  desc:"push notifications on/off (true or false)"`
}

type preferencesParams struct {
	Language string `flag:"language" desc:"interface language (e.g. en, es)"`
	Timezone string `flag:"timezone" desc:"timezone (e.g. Asia/Manila)"`
}

// SettingsCommand returns the "settings" command group.
func SettingsCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "settings",
		Summary: "Update notification and display settings",
		Subcommands: []*cli.Command{
			settingsNotificationsCommand(logger),
			settingsPreferencesCommand(logger),
		},
	}
}

func settingsNotificationsCommand(logger *slog.Logger) *cli.Command {
	var params notificationsParams

	return &cli.Command{
		Name:    "notifications",
		Summary: "Set which notification channels are enabled",
		Usage:   "visamark settings notifications [flags]",
		Examples: []cli.Example{
			{
				Description: "Email only",
				Command:     "visamark settings notifications --email true --sms false --push false",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("settings notifications", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Email == "" && params.SMS == "" && params.Push == "" {
				return cli.Validation("nothing to change — pass at least one of --email, --sms, --push")
			}

			// All three channels are sent in one settings document, so
			// unset flags default to off rather than preserving the
			// server value. Passing every flag explicitly avoids
			// surprises.
			settings := api.NotificationSettings{}
			var err error
			if settings.Email, err = parseToggle("email", params.Email); err != nil {
				return err
			}
			if settings.SMS, err = parseToggle("sms", params.SMS); err != nil {
				return err
			}
			if settings.Push, err = parseToggle("push", params.Push); err != nil {
				return err
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if err := session.UpdateNotificationSettings(ctx, settings); err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintln(os.Stderr, "Notification settings updated.")
			return nil
		},
	}
}

func settingsPreferencesCommand(logger *slog.Logger) *cli.Command {
	var params preferencesParams

	return &cli.Command{
		Name:    "preferences",
		Summary: "Set language and timezone",
		Usage:   "visamark settings preferences [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("settings preferences", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Language == "" && params.Timezone == "" {
				return cli.Validation("nothing to change — pass --language and/or --timezone")
			}

			session, err := cli.Connect(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			err = session.UpdatePreferences(ctx, api.Preferences{
				Language: params.Language,
				Timezone: params.Timezone,
			})
			if err != nil {
				return cli.FromAPI(err)
			}
			fmt.Fprintln(os.Stderr, "Preferences updated.")
			return nil
		},
	}
}

func parseToggle(name, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, cli.Validation("--%s wants true or false, got %q", name, value)
	}
	return parsed, nil
}
