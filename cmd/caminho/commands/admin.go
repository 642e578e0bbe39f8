// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/caminho-app/caminho/cmd/caminho/cli"
	"github.com/caminho-app/caminho/portalapi"
)

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Summary: "Back-office operations (admin accounts only)",
		Subcommands: []*cli.Command{
			adminUsersCommand(),
			adminUserCommand(),
			adminStatusCommand(),
			adminStatsCommand(),
			adminLabelCommand(),
		},
	}
}

func adminUsersCommand() *cli.Command {
	return &cli.Command{
		Name:    "users",
		Summary: "List all client accounts",
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "admin users")
			session, err := cli.RequireAdminSession(ctx, logger)
			if err != nil {
				return err
			}

			users, err := session.AdminUsers(ctx)
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tEMAIL\tSTATUS\tPROGRESS\tREGISTERED")
			for _, user := range users {
				fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%d%%\t%s\n",
					user.ID, user.Name, user.Email,
					user.ApplicationStatus, user.ProgressPercentage,
					user.RegisteredAt.Format("2006-01-02"))
			}
			return writer.Flush()
		},
	}
}

func adminUserCommand() *cli.Command {
	return &cli.Command{
		Name:    "user",
		Summary: "Show one client in full detail",
		Usage:   "caminho admin user <id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho admin user <id>")
			}
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "admin user")
			session, err := cli.RequireAdminSession(ctx, logger)
			if err != nil {
				return err
			}

			detail, err := session.AdminUserDetail(ctx, userID)
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "name:\t%s\n", detail.User.Name)
			fmt.Fprintf(writer, "email:\t%s\n", detail.User.Email)
			if detail.User.Phone != "" {
				fmt.Fprintf(writer, "phone:\t%s\n", detail.User.Phone)
			}
			if detail.Application != nil {
				fmt.Fprintf(writer, "status:\t%s\n", detail.Application.Status)
				fmt.Fprintf(writer, "progress:\t%d%%\n", detail.Application.ProgressPercentage)
				if detail.Application.Notes != "" {
					fmt.Fprintf(writer, "notes:\t%s\n", detail.Application.Notes)
				}
			}
			fmt.Fprintf(writer, "documents:\t%d\n", len(detail.Documents))
			for _, label := range detail.Labels {
				line := label.Type
				if label.Amount != nil {
					line = fmt.Sprintf("%s (%.2f)", line, *label.Amount)
				}
				if label.Note != "" {
					line = fmt.Sprintf("%s — %s", line, label.Note)
				}
				fmt.Fprintf(writer, "label %d:\t%s\n", label.ID, line)
			}
			return writer.Flush()
		},
	}
}

func adminStatusCommand() *cli.Command {
	var status string
	var progress int
	var notes string
	return &cli.Command{
		Name:    "status",
		Summary: "Update a client's application status",
		Usage:   "caminho admin status <user-id> --status <stage> [--progress <percent>] [--notes <text>]",
		Description: `Moves a client's application to a new stage. The progress
percentage defaults to the stage's suggested value but can be set
explicitly; the two are independent and the explicit value always
wins.`,
		Examples: []cli.Example{
			{Command: "caminho admin status 42 --status nif_completed"},
			{Command: "caminho admin status 42 --status nif_completed --progress 35"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flags.StringVar(&status, "status", "", "new application stage (required)")
			flags.IntVar(&progress, "progress", -1, "progress percentage (defaults to the stage's suggestion)")
			flags.StringVar(&notes, "notes", "", "notes for the client")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho admin status <user-id> --status <stage>")
			}
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			stage := portalapi.ApplicationStatus(status)
			if !stage.Valid() {
				return fmt.Errorf("unknown status %q (one of: %s)", status, statusList())
			}
			if progress < 0 {
				progress = stage.SuggestedProgress()
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "admin status")
			session, err := cli.RequireAdminSession(ctx, logger)
			if err != nil {
				return err
			}

			if err := session.UpdateApplicationStatus(ctx, portalapi.StatusUpdate{
				UserID:             userID,
				Status:             stage,
				ProgressPercentage: progress,
				Notes:              notes,
			}); err != nil {
				return err
			}
			fmt.Printf("user %d moved to %s (%d%%)\n", userID, stage, progress)
			return nil
		},
	}
}

func statusList() string {
	var list string
	for i, status := range portalapi.Statuses() {
		if i > 0 {
			list += ", "
		}
		list += string(status)
	}
	return list
}

func adminStatsCommand() *cli.Command {
	return &cli.Command{
		Name:    "stats",
		Summary: "Show portal-wide statistics",
		Run: func(args []string) error {
			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "admin stats")
			session, err := cli.RequireAdminSession(ctx, logger)
			if err != nil {
				return err
			}

			statistics, err := session.AdminStatistics(ctx)
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "total users:\t%d\n", statistics.TotalUsers)
			fmt.Fprintf(writer, "unread messages:\t%d\n", statistics.UnreadMessages)

			statuses := make([]string, 0, len(statistics.StatusBreakdown))
			for status := range statistics.StatusBreakdown {
				statuses = append(statuses, status)
			}
			sort.Strings(statuses)
			for _, status := range statuses {
				fmt.Fprintf(writer, "  %s:\t%d\n", status, statistics.StatusBreakdown[status])
			}
			return writer.Flush()
		},
	}
}

func adminLabelCommand() *cli.Command {
	return &cli.Command{
		Name:    "label",
		Summary: "Manage labels on client accounts",
		Subcommands: []*cli.Command{
			adminLabelAddCommand(),
			adminLabelListCommand(),
			adminLabelDeleteCommand(),
		},
	}
}

func adminLabelAddCommand() *cli.Command {
	var labelType, note string
	var amount float64
	return &cli.Command{
		Name:    "add",
		Summary: "Attach a label to a client",
		Usage:   "caminho admin label add <user-id> --type <type> [--amount <amount>] [--note <text>]",
		Examples: []cli.Example{
			{Command: "caminho admin label add 42 --type payment --amount 250 --note \"first installment\""},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("add", pflag.ContinueOnError)
			flags.StringVar(&labelType, "type", "", "label type (required)")
			flags.Float64Var(&amount, "amount", 0, "monetary amount, where relevant")
			flags.StringVar(&note, "note", "", "free-form note")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho admin label add <user-id> --type <type>")
			}
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			if labelType == "" {
				return fmt.Errorf("--type is required")
			}

			request := portalapi.LabelRequest{
				UserID: userID,
				Type:   labelType,
				Note:   note,
			}
			if amount != 0 {
				request.Amount = &amount
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "admin label add")
			session, err := cli.RequireAdminSession(ctx, logger)
			if err != nil {
				return err
			}

			label, err := session.AddUserLabel(ctx, request)
			if err != nil {
				return err
			}
			fmt.Printf("added label %d to user %d\n", label.ID, userID)
			return nil
		},
	}
}

func adminLabelListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "List a client's labels",
		Usage:   "caminho admin label list <user-id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho admin label list <user-id>")
			}
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "admin label list")
			session, err := cli.RequireAdminSession(ctx, logger)
			if err != nil {
				return err
			}

			labels, err := session.UserLabels(ctx, userID)
			if err != nil {
				return err
			}
			if len(labels) == 0 {
				fmt.Println("no labels")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tTYPE\tAMOUNT\tNOTE\tADDED")
			for _, label := range labels {
				amount := ""
				if label.Amount != nil {
					amount = fmt.Sprintf("%.2f", *label.Amount)
				}
				fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n",
					label.ID, label.Type, amount, label.Note,
					label.CreatedAt.Format("2006-01-02"))
			}
			return writer.Flush()
		},
	}
}

func adminLabelDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Remove a label",
		Usage:   "caminho admin label delete <label-id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caminho admin label delete <label-id>")
			}
			labelID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid label id %q", args[0])
			}

			ctx := context.Background()
			logger := cli.NewCommandLogger().With("command", "admin label delete")
			session, err := cli.RequireAdminSession(ctx, logger)
			if err != nil {
				return err
			}
			if err := session.DeleteUserLabel(ctx, labelID); err != nil {
				return err
			}
			fmt.Printf("deleted label %d\n", labelID)
			return nil
		},
	}
}
