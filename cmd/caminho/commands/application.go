// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
	"github.com/caminho-app/caminho/portalapi"
)

func applicationCommand() *cli.Command {
	return &cli.Command{
		Name:    "application",
		Summary: "Inspect and annotate your application",
		Subcommands: []*cli.Command{
			applicationShowCommand(),
			applicationUpdateCommand(),
		},
	}
}

func applicationShowCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Show the full application record",
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "application show")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			application, err := session.Application(ctx)
			if err != nil {
				return err
			}
			printApplication(application)
			return nil
		},
	}
}

func applicationUpdateCommand() *cli.Command {
	var notes string
	return &cli.Command{
		Name:    "update",
		Summary: "Update the notes on your application",
		Usage:   "caminho application update --notes <text>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("update", pflag.ContinueOnError)
			flags.StringVar(&notes, "notes", "", "notes visible to the back office")
			return flags
		},
		Run: func(args []string) error {
			if notes == "" {
				return fmt.Errorf("--notes is required (status and progress are managed by the back office)")
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "application update")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			current, err := session.Application(ctx)
			if err != nil {
				return err
			}
			current.Notes = notes

			updated, err := session.UpdateApplication(ctx, *current)
			if err != nil {
				return err
			}
			printApplication(updated)
			return nil
		},
	}
}

func printApplication(application *portalapi.Application) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "status:\t%s\n", application.Status)
	fmt.Fprintf(writer, "progress:\t%d%%\n", application.ProgressPercentage)
	if application.Notes != "" {
		fmt.Fprintf(writer, "notes:\t%s\n", application.Notes)
	}
	fmt.Fprintf(writer, "updated:\t%s\n", application.UpdatedAt.Format("2006-01-02 15:04"))
	writer.Flush()
}
