// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
)

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Summary: "Show your application progress at a glance",
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "dashboard")
			session, err := cli.RequireSession(ctx, logger)
			if err != nil {
				return err
			}

			dashboard, err := session.Dashboard(ctx)
			if err != nil {
				return err
			}

			stats := dashboard.Stats
			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "status:\t%s\n", stats.ApplicationStatus)
			fmt.Fprintf(writer, "progress:\t%d%%\n", stats.ApplicationProgress)
			fmt.Fprintf(writer, "documents:\t%d\n", stats.DocumentCount)
			fmt.Fprintf(writer, "unread messages:\t%d\n", stats.UnreadMessages)
			fmt.Fprintf(writer, "completed lessons:\t%d\n", stats.CompletedLessons)
			return writer.Flush()
		},
	}
}
